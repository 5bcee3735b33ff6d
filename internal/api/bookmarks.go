package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hierovision/hierovision/client/internal/types"
)

// ListBookmarks retrieves the authenticated user's bookmarks.
func ListBookmarks(ctx context.Context, r Requester) ([]types.Bookmark, error) {
	var lr types.ListBookmarksResponse
	if err := call(ctx, r, "/bookmarks", RequestOptions{}, &lr); err != nil {
		return nil, err
	}
	if lr.Bookmarks == nil {
		return []types.Bookmark{}, nil
	}
	return lr.Bookmarks, nil
}

// AddBookmark bookmarks a landmark and returns the server-confirmed record.
func AddBookmark(ctx context.Context, r Requester, landmarkID string) (*types.Bookmark, error) {
	if err := types.ValidateIDPresent(landmarkID, "landmarkId"); err != nil {
		return nil, err
	}
	var br types.BookmarkResponse
	req := types.AddBookmarkRequest{LandmarkID: landmarkID}
	if err := call(ctx, r, "/bookmarks", RequestOptions{Method: http.MethodPost, Body: req}, &br); err != nil {
		return nil, err
	}
	if br.Bookmark == nil {
		return nil, errMissingField("bookmark")
	}
	return br.Bookmark, nil
}

// RemoveBookmark deletes the bookmark for a landmark. The path carries the
// landmark id, not the bookmark id.
func RemoveBookmark(ctx context.Context, r Requester, landmarkID string) error {
	if err := types.ValidateIDPresent(landmarkID, "landmarkId"); err != nil {
		return err
	}
	return call(ctx, r, "/bookmarks/"+url.PathEscape(landmarkID), RequestOptions{Method: http.MethodDelete}, nil)
}
