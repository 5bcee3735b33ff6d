package api

import (
	"context"
	"io"
	"net/http"

	"github.com/hierovision/hierovision/client/internal/types"
)

const profilePath = "/user/profile"

// GetProfile fetches the authenticated user's profile.
func GetProfile(ctx context.Context, r Requester) (*types.ProfileResponse, error) {
	var out types.ProfileResponse
	if err := call(ctx, r, profilePath, RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile sends a partial profile update. Absent fields are omitted
// from the payload.
func UpdateProfile(ctx context.Context, r Requester, req types.UpdateProfileRequest) (*types.ProfileResponse, error) {
	var out types.ProfileResponse
	if err := call(ctx, r, profilePath, RequestOptions{Method: http.MethodPut, Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadAvatar sends an image as the user's avatar. The raw upload response
// is returned whatever its status.
func UploadAvatar(ctx context.Context, r Requester, fileName string, image io.Reader) (*types.UploadResponse, error) {
	if err := types.ValidateFieldPresent(fileName, "fileName"); err != nil {
		return nil, err
	}
	return r.Upload(ctx, "/user/avatar", MultipartForm{
		Files: []FilePart{{Field: "avatar", FileName: fileName, Reader: image}},
	})
}

// DeleteAvatar removes the user's avatar.
func DeleteAvatar(ctx context.Context, r Requester) (*types.StatusResponse, error) {
	var out types.StatusResponse
	if err := call(ctx, r, "/user/avatar", RequestOptions{Method: http.MethodDelete}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
