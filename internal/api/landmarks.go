package api

import (
	"context"
	"net/url"

	"github.com/hierovision/hierovision/client/internal/types"
)

// ListLandmarks retrieves the full landmark catalogue. A missing landmarks
// field yields an empty slice.
func ListLandmarks(ctx context.Context, r Requester) ([]types.Landmark, error) {
	var lr types.ListLandmarksResponse
	if err := call(ctx, r, "/landmarks", RequestOptions{}, &lr); err != nil {
		return nil, err
	}
	if lr.Landmarks == nil {
		return []types.Landmark{}, nil
	}
	return lr.Landmarks, nil
}

// GetLandmark retrieves a single landmark.
func GetLandmark(ctx context.Context, r Requester, landmarkID string) (*types.Landmark, error) {
	if err := types.ValidateIDPresent(landmarkID, "landmarkId"); err != nil {
		return nil, err
	}
	var lr types.LandmarkResponse
	if err := call(ctx, r, "/landmarks/"+url.PathEscape(landmarkID), RequestOptions{}, &lr); err != nil {
		return nil, err
	}
	if lr.Landmark == nil {
		return nil, errMissingField("landmark")
	}
	return lr.Landmark, nil
}
