package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/hierovision/hierovision/client/internal/types"
)

// ListBookings retrieves the authenticated user's bookings.
func ListBookings(ctx context.Context, r Requester) ([]types.Booking, error) {
	var lr types.ListBookingsResponse
	if err := call(ctx, r, "/bookings", RequestOptions{}, &lr); err != nil {
		return nil, err
	}
	if lr.Bookings == nil {
		return []types.Booking{}, nil
	}
	return lr.Bookings, nil
}

// CreateBooking reserves a tour.
func CreateBooking(ctx context.Context, r Requester, req types.CreateBookingRequest) (*types.Booking, error) {
	if err := types.ValidateIDPresent(req.LandmarkID, "landmarkId"); err != nil {
		return nil, err
	}
	var br types.BookingResponse
	if err := call(ctx, r, "/bookings", RequestOptions{Method: http.MethodPost, Body: req}, &br); err != nil {
		return nil, err
	}
	if br.Booking == nil {
		return nil, errMissingField("booking")
	}
	return br.Booking, nil
}

// GetBooking retrieves a single booking.
func GetBooking(ctx context.Context, r Requester, bookingID string) (*types.Booking, error) {
	if err := types.ValidateIDPresent(bookingID, "bookingId"); err != nil {
		return nil, err
	}
	var br types.BookingResponse
	if err := call(ctx, r, "/bookings/"+url.PathEscape(bookingID), RequestOptions{}, &br); err != nil {
		return nil, err
	}
	if br.Booking == nil {
		return nil, errMissingField("booking")
	}
	return br.Booking, nil
}

// CancelBooking cancels a booking and returns its updated state.
func CancelBooking(ctx context.Context, r Requester, bookingID string) (*types.Booking, error) {
	if err := types.ValidateIDPresent(bookingID, "bookingId"); err != nil {
		return nil, err
	}
	var br types.BookingResponse
	if err := call(ctx, r, "/bookings/"+url.PathEscape(bookingID)+"/cancel", RequestOptions{Method: http.MethodPost}, &br); err != nil {
		return nil, err
	}
	if br.Booking == nil {
		return nil, errMissingField("booking")
	}
	return br.Booking, nil
}
