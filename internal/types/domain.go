package types

import "encoding/json"

// ------------------------------
// Core Domain Entities
// ------------------------------

// User is the authenticated identity held by the session.
//
// The server speaks uid/fullName/selectedCountry while the persisted form
// uses id/name/bio; UnmarshalJSON accepts both.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatarURL,omitempty"`
}

// userFragment captures which identity fields a payload actually carried.
type userFragment struct {
	ID              *string `json:"id"`
	UID             *string `json:"uid"`
	Name            *string `json:"name"`
	FullName        *string `json:"fullName"`
	Email           *string `json:"email"`
	Bio             *string `json:"bio"`
	SelectedCountry *string `json:"selectedCountry"`
	AvatarURL       *string `json:"avatarURL"`
}

// UnmarshalJSON decodes either key convention. Client-side keys win when a
// payload carries both.
func (u *User) UnmarshalJSON(data []byte) error {
	var f userFragment
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*u = User{}
	f.applyTo(u)
	return nil
}

func (f userFragment) applyTo(u *User) {
	if v := firstSet(f.ID, f.UID); v != nil {
		u.ID = *v
	}
	if v := firstSet(f.Name, f.FullName); v != nil {
		u.Name = *v
	}
	if f.Email != nil {
		u.Email = *f.Email
	}
	if v := firstSet(f.Bio, f.SelectedCountry); v != nil {
		u.Bio = *v
	}
	if f.AvatarURL != nil {
		u.AvatarURL = *f.AvatarURL
	}
}

func firstSet(vals ...*string) *string {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// MergeUser shallow-merges a raw identity fragment onto base: fields present
// in the fragment overwrite, absent ones are retained.
func MergeUser(base User, fragment json.RawMessage) (User, error) {
	if len(fragment) == 0 || string(fragment) == "null" {
		return base, nil
	}
	var f userFragment
	if err := json.Unmarshal(fragment, &f); err != nil {
		return base, err
	}
	f.applyTo(&base)
	return base, nil
}

// Landmark is a server-owned point of interest. The client never mutates it.
type Landmark struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Location       string   `json:"location"`
	Type           string   `json:"type"`
	Description    string   `json:"description"`
	Image          string   `json:"image"`
	HieroglyphName string   `json:"hieroglyphName"`
	Price          float64  `json:"price"`
	Tours          []string `json:"tours"`
	AverageRating  float64  `json:"averageRating"`
	ReviewCount    int      `json:"reviewCount"`
}

// Bookmark links a user to a landmark. At most one per (user, landmark).
type Bookmark struct {
	ID         string `json:"id"`
	LandmarkID string `json:"landmark_id"`
	UserID     string `json:"user_id"`
	CreatedAt  string `json:"created_at"`
}

// Review is a user's rating and comment on a landmark.
type Review struct {
	ID         string `json:"id"`
	LandmarkID string `json:"landmark_id"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// Scan is a saved hieroglyph scan or translation.
type Scan struct {
	ID              string   `json:"id"`
	UserUID         string   `json:"user_uid"`
	ImageURL        string   `json:"image_url"`
	Description     string   `json:"description"`
	PredictedClass  *int     `json:"predicted_class,omitempty"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
	Timestamp       string   `json:"timestamp"`
}

// Booking is a tour reservation for a landmark.
type Booking struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	LandmarkID   string  `json:"landmark_id"`
	LandmarkName string  `json:"landmark_name,omitempty"`
	Date         string  `json:"date"`
	Visitors     int     `json:"visitors"`
	TourType     string  `json:"tour_type"`
	TotalPrice   float64 `json:"total_price"`
	ContactName  string  `json:"contact_name"`
	ContactEmail string  `json:"contact_email"`
	ContactPhone string  `json:"contact_phone,omitempty"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// Document is opaque structured data the client passes through untouched.
type Document = map[string]any
