package api

import (
	"context"
	"net/http"

	"github.com/hierovision/hierovision/client/internal/types"
)

// Login exchanges credentials for a session. The caller inspects Success;
// an HTTP 2xx with Success=false is not an error at this layer.
func Login(ctx context.Context, r Requester, req types.LoginRequest) (*types.LoginResponse, error) {
	var out types.LoginResponse
	if err := call(ctx, r, "/auth/login", RequestOptions{Method: http.MethodPost, Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new account. It never yields a session.
func Signup(ctx context.Context, r Requester, req types.SignupRequest) (*types.StatusResponse, error) {
	var out types.StatusResponse
	if err := call(ctx, r, "/auth/register", RequestOptions{Method: http.MethodPost, Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout notifies the server that the current credential is being dropped.
func Logout(ctx context.Context, r Requester) error {
	return call(ctx, r, "/auth/logout", RequestOptions{Method: http.MethodPost}, nil)
}

// Verify checks the current credential and returns the server's view of the
// identity.
func Verify(ctx context.Context, r Requester) (*types.ProfileResponse, error) {
	var out types.ProfileResponse
	if err := call(ctx, r, "/auth/verify", RequestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword updates the password of the authenticated user.
func ChangePassword(ctx context.Context, r Requester, req types.ChangePasswordRequest) (*types.StatusResponse, error) {
	if err := types.ValidateFieldPresent(req.NewPassword, "newPassword"); err != nil {
		return nil, err
	}
	var out types.StatusResponse
	if err := call(ctx, r, "/auth/change-password", RequestOptions{Method: http.MethodPut, Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword asks the server to send a reset link to email.
func ResetPassword(ctx context.Context, r Requester, req types.ResetPasswordRequest) (*types.StatusResponse, error) {
	if err := types.ValidateFieldPresent(req.Email, "email"); err != nil {
		return nil, err
	}
	var out types.StatusResponse
	if err := call(ctx, r, "/auth/reset-password", RequestOptions{Method: http.MethodPost, Body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
