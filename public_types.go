package client

import (
	"github.com/hierovision/hierovision/client/internal/session"
	"github.com/hierovision/hierovision/client/internal/types"
)

// Public type aliases so SDK consumers can import only the client package.
type (
	// Domain entities
	User       = types.User
	Landmark   = types.Landmark
	Bookmark   = types.Bookmark
	Review     = types.Review
	Scan       = types.Scan
	Booking    = types.Booking
	Pagination = types.Pagination
	Document   = types.Document

	// Requests
	ProfileUpdate         = types.ProfileUpdate
	ChangePasswordRequest = types.ChangePasswordRequest
	SaveScanRequest       = types.SaveScanRequest
	CreateBookingRequest  = types.CreateBookingRequest

	// Responses
	StatusResponse    = types.StatusResponse
	ListScansResponse = types.ListScansResponse
	UploadResponse    = types.UploadResponse

	// Session
	SessionState = session.State
)

const (
	StateUninitialized = session.StateUninitialized
	StateRestoring     = session.StateRestoring
	StateAuthenticated = session.StateAuthenticated
	StateAnonymous     = session.StateAnonymous
)
