package types

// ------------------------------
// Request Types
// ------------------------------

// LoginRequest holds credentials for /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest holds parameters for /auth/register
type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the caller-facing partial identity update. Nil fields are
// left untouched on the server.
type ProfileUpdate struct {
	Name *string
	Bio  *string
}

// UpdateProfileRequest is the wire payload for PUT /user/profile. The bio
// field travels as selectedCountry.
type UpdateProfileRequest struct {
	FullName        *string `json:"fullName,omitempty"`
	SelectedCountry *string `json:"selectedCountry,omitempty"`
}

// ChangePasswordRequest holds parameters for /auth/change-password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ResetPasswordRequest holds parameters for /auth/reset-password
type ResetPasswordRequest struct {
	Email string `json:"email"`
}

// AddBookmarkRequest holds parameters for POST /bookmarks
type AddBookmarkRequest struct {
	LandmarkID string `json:"landmark_id"`
}

// ReviewRequest holds parameters for creating or updating a review
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// SaveScanRequest holds a translation result to store in scan history
type SaveScanRequest struct {
	ImagePath      string  `json:"image_path,omitempty"`
	Description    string  `json:"description"`
	Translation    string  `json:"translation"`
	Confidence     float64 `json:"confidence"`
	PredictedClass *int    `json:"predicted_class,omitempty"`
}

// CreateBookingRequest holds parameters for POST /bookings
type CreateBookingRequest struct {
	LandmarkID   string `json:"landmark_id"`
	Date         string `json:"date"`
	Visitors     int    `json:"visitors"`
	TourType     string `json:"tour_type"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

// TranslateRequest holds text for /translate/english-to-hieroglyphs
type TranslateRequest struct {
	Text string `json:"text"`
}
