package types

import "encoding/json"

// ------------------------------
// Response Types
// ------------------------------

// LoginResponse mirrors /auth/login. Success is the domain flag; an HTTP 2xx
// with Success=false is still a failed login.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
	Message string `json:"message,omitempty"`
}

// StatusResponse is the generic {success, message} envelope.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ProfileResponse mirrors /user/profile and /auth/verify. User is kept raw so
// the session can shallow-merge exactly the fields the server sent.
type ProfileResponse struct {
	Success bool            `json:"success"`
	User    json.RawMessage `json:"user,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ListLandmarksResponse wraps GET /landmarks
type ListLandmarksResponse struct {
	Landmarks []Landmark `json:"landmarks"`
	Total     int        `json:"total,omitempty"`
}

// LandmarkResponse wraps GET /landmarks/{id}
type LandmarkResponse struct {
	Landmark *Landmark `json:"landmark"`
}

// ListBookmarksResponse wraps GET /bookmarks
type ListBookmarksResponse struct {
	Bookmarks []Bookmark `json:"bookmarks"`
	Total     int        `json:"total,omitempty"`
}

// BookmarkResponse wraps POST /bookmarks
type BookmarkResponse struct {
	Bookmark *Bookmark `json:"bookmark"`
}

// ListReviewsResponse wraps GET /landmarks/{id}/reviews
type ListReviewsResponse struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total,omitempty"`
}

// ReviewResponse wraps a single created or updated review
type ReviewResponse struct {
	Review *Review `json:"review"`
}

// Pagination mirrors the scan history paging block
type Pagination struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// ListScansResponse wraps GET /scans/user and /scans/recent
type ListScansResponse struct {
	Success    bool        `json:"success"`
	Scans      []Scan      `json:"scans"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ScanResponse wraps a single scan
type ScanResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Scan    *Scan  `json:"scan"`
}

// ListBookingsResponse wraps GET /bookings
type ListBookingsResponse struct {
	Bookings []Booking `json:"bookings"`
	Total    int       `json:"total,omitempty"`
}

// BookingResponse wraps a single booking
type BookingResponse struct {
	Booking *Booking `json:"booking"`
}

// UploadResponse is the raw result of a multipart upload. Non-2xx statuses
// are reported here, not as errors; callers inspect StatusCode and Body.
type UploadResponse struct {
	StatusCode int
	Body       Document
}

// OK reports whether the upload was answered with a 2xx status.
func (r *UploadResponse) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}
