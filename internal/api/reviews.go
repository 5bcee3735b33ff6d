package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hierovision/hierovision/client/internal/types"
)

func landmarkReviewsPath(landmarkID string) string {
	return "/landmarks/" + url.PathEscape(landmarkID) + "/reviews"
}

// ListReviews retrieves the reviews of one landmark.
func ListReviews(ctx context.Context, r Requester, landmarkID string) ([]types.Review, error) {
	if err := types.ValidateIDPresent(landmarkID, "landmarkId"); err != nil {
		return nil, err
	}
	var lr types.ListReviewsResponse
	if err := call(ctx, r, landmarkReviewsPath(landmarkID), RequestOptions{}, &lr); err != nil {
		return nil, err
	}
	if lr.Reviews == nil {
		return []types.Review{}, nil
	}
	return lr.Reviews, nil
}

// CreateReview posts a review on a landmark.
func CreateReview(ctx context.Context, r Requester, landmarkID string, req types.ReviewRequest) (*types.Review, error) {
	if err := types.ValidateIDPresent(landmarkID, "landmarkId"); err != nil {
		return nil, err
	}
	var rr types.ReviewResponse
	if err := call(ctx, r, landmarkReviewsPath(landmarkID), RequestOptions{Method: http.MethodPost, Body: req}, &rr); err != nil {
		return nil, err
	}
	if rr.Review == nil {
		return nil, errMissingField("review")
	}
	return rr.Review, nil
}

// UpdateReview replaces the rating and comment of a review.
func UpdateReview(ctx context.Context, r Requester, reviewID string, req types.ReviewRequest) (*types.Review, error) {
	if err := types.ValidateIDPresent(reviewID, "reviewId"); err != nil {
		return nil, err
	}
	var rr types.ReviewResponse
	if err := call(ctx, r, "/reviews/"+url.PathEscape(reviewID), RequestOptions{Method: http.MethodPut, Body: req}, &rr); err != nil {
		return nil, err
	}
	if rr.Review == nil {
		return nil, errMissingField("review")
	}
	return rr.Review, nil
}

// DeleteReview removes a review.
func DeleteReview(ctx context.Context, r Requester, reviewID string) error {
	if err := types.ValidateIDPresent(reviewID, "reviewId"); err != nil {
		return err
	}
	return call(ctx, r, "/reviews/"+url.PathEscape(reviewID), RequestOptions{Method: http.MethodDelete}, nil)
}
