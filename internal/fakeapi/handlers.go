package fakeapi

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hierovision/hierovision/client/internal/types"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !decode(r, &req) || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Email and password are required"})
		return
	}
	s.mu.Lock()
	a, ok := s.accounts[req.Email]
	if !ok || a.Password != req.Password {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid email or password"})
		return
	}
	token := uuid.NewString()
	s.tokens[token] = a.ID
	user := a.wire()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": token, "user": user})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.SignupRequest
	if !decode(r, &req) || req.FullName == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "All fields are required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "Email already registered"})
		return
	}
	s.accounts[req.Email] = &account{ID: uuid.NewString(), Name: req.FullName, Email: req.Email, Password: req.Password}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "User registered successfully"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ *account) {
	s.mu.Lock()
	delete(s.tokens, bearer(r))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out"})
}

func (s *Server) handleVerify(w http.ResponseWriter, _ *http.Request, a *account) {
	s.mu.Lock()
	user := a.wire()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, a *account) {
	s.handleVerify(w, r, a)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, a *account) {
	var req types.UpdateProfileRequest
	if !decode(r, &req) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "No data provided"})
		return
	}
	s.mu.Lock()
	fragment := map[string]any{}
	if req.FullName != nil {
		a.Name = *req.FullName
		fragment["fullName"] = a.Name
	}
	if req.SelectedCountry != nil {
		a.Country = *req.SelectedCountry
		fragment["selectedCountry"] = a.Country
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": fragment, "message": "Profile updated"})
}

func (s *Server) handleUploadAvatar(w http.ResponseWriter, r *http.Request, a *account) {
	_, hdr, err := r.FormFile("avatar")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "No file provided"})
		return
	}
	s.mu.Lock()
	a.Avatar = "/uploads/avatars/" + hdr.Filename
	url := a.Avatar
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "avatarURL": url})
}

func (s *Server) handleDeleteAvatar(w http.ResponseWriter, _ *http.Request, a *account) {
	s.mu.Lock()
	a.Avatar = ""
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Avatar removed"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, a *account) {
	var req types.ChangePasswordRequest
	if !decode(r, &req) || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "New password is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.Password != req.CurrentPassword {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Current password is incorrect"})
		return
	}
	a.Password = req.NewPassword
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Password updated"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req types.ResetPasswordRequest
	if !decode(r, &req) || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Email is required"})
		return
	}
	// Same answer whether or not the account exists.
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "If the email exists, a reset link was sent"})
}

func (s *Server) handleListLandmarks(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := append([]types.Landmark{}, s.landmarks...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"landmarks": out, "total": len(out)})
}

func (s *Server) handleGetLandmark(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.landmarks {
		if l.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{"landmark": l})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"error": "Landmark not found"})
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	out := append([]types.Review{}, s.reviews[id]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"reviews": out, "total": len(out)})
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request, a *account) {
	id := mux.Vars(r)["id"]
	var req types.ReviewRequest
	if !decode(r, &req) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Rating and comment are required"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Rating must be between 1 and 5"})
		return
	}
	if req.Comment == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Comment cannot be empty"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rv := range s.reviews[id] {
		if rv.UserID == a.ID {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "You have already reviewed this landmark"})
			return
		}
	}
	rv := types.Review{
		ID: uuid.NewString(), LandmarkID: id, UserID: a.ID, UserName: a.Name,
		Rating: req.Rating, Comment: req.Comment, CreatedAt: now(), UpdatedAt: now(),
	}
	s.reviews[id] = append([]types.Review{rv}, s.reviews[id]...)
	s.recount(id)
	writeJSON(w, http.StatusCreated, map[string]any{"review": rv})
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request, a *account) {
	id := mux.Vars(r)["id"]
	var req types.ReviewRequest
	if !decode(r, &req) || req.Rating < 1 || req.Rating > 5 || req.Comment == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Rating and comment are required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for lid, list := range s.reviews {
		for i, rv := range list {
			if rv.ID != id {
				continue
			}
			if rv.UserID != a.ID {
				writeJSON(w, http.StatusForbidden, map[string]any{"error": "You can only update your own reviews"})
				return
			}
			rv.Rating, rv.Comment, rv.UpdatedAt = req.Rating, req.Comment, now()
			list[i] = rv
			s.recount(lid)
			writeJSON(w, http.StatusOK, map[string]any{"review": rv})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"error": "Review not found"})
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request, a *account) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for lid, list := range s.reviews {
		for i, rv := range list {
			if rv.ID != id {
				continue
			}
			if rv.UserID != a.ID {
				writeJSON(w, http.StatusForbidden, map[string]any{"error": "You can only delete your own reviews"})
				return
			}
			s.reviews[lid] = append(list[:i:i], list[i+1:]...)
			s.recount(lid)
			writeJSON(w, http.StatusOK, map[string]any{"message": "Review deleted successfully"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"error": "Review not found"})
}

// recount refreshes the landmark's aggregate rating. Callers hold s.mu.
func (s *Server) recount(landmarkID string) {
	list := s.reviews[landmarkID]
	total := 0
	for _, rv := range list {
		total += rv.Rating
	}
	for i := range s.landmarks {
		if s.landmarks[i].ID != landmarkID {
			continue
		}
		s.landmarks[i].ReviewCount = len(list)
		s.landmarks[i].AverageRating = 0
		if len(list) > 0 {
			s.landmarks[i].AverageRating = float64(total) / float64(len(list))
		}
	}
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, _ *http.Request, a *account) {
	s.mu.Lock()
	out := append([]types.Bookmark{}, s.bookmarks[a.ID]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"bookmarks": out, "total": len(out)})
}

func (s *Server) handleAddBookmark(w http.ResponseWriter, r *http.Request, a *account) {
	var req types.AddBookmarkRequest
	if !decode(r, &req) || req.LandmarkID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Landmark ID is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookmarks[a.ID] {
		if b.LandmarkID == req.LandmarkID {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Landmark already bookmarked"})
			return
		}
	}
	b := types.Bookmark{ID: uuid.NewString(), LandmarkID: req.LandmarkID, UserID: a.ID, CreatedAt: now()}
	s.bookmarks[a.ID] = append(s.bookmarks[a.ID], b)
	writeJSON(w, http.StatusCreated, map[string]any{"bookmark": b})
}

func (s *Server) handleRemoveBookmark(w http.ResponseWriter, r *http.Request, a *account) {
	landmarkID := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.bookmarks[a.ID]
	for i, b := range list {
		if b.LandmarkID == landmarkID {
			s.bookmarks[a.ID] = append(list[:i:i], list[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"message": "Bookmark removed successfully"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"error": "Bookmark not found"})
}

func (s *Server) handleSaveScan(w http.ResponseWriter, r *http.Request, a *account) {
	var req types.SaveScanRequest
	if !decode(r, &req) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "No data provided"})
		return
	}
	conf := req.Confidence
	sc := types.Scan{
		ID: uuid.NewString(), UserUID: a.ID, ImageURL: req.ImagePath,
		Description: req.Description, PredictedClass: req.PredictedClass,
		ConfidenceScore: &conf, Timestamp: now(),
	}
	s.mu.Lock()
	s.scans[a.ID] = append(s.scans[a.ID], sc)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Scan saved", "scan": sc})
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request, a *account) {
	page := limitParam(r, "page", 1)
	perPage := limitParam(r, "per_page", 10)
	s.mu.Lock()
	all := sortedScans(s.scans[a.ID])
	s.mu.Unlock()

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}
	pages := (len(all) + perPage - 1) / perPage
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"scans":   all[start:end],
		"pagination": types.Pagination{
			Page: page, PerPage: perPage, Total: len(all), Pages: pages,
			HasNext: page < pages, HasPrev: page > 1,
		},
	})
}

func (s *Server) handleRecentScans(w http.ResponseWriter, r *http.Request, a *account) {
	limit := limitParam(r, "limit", 5)
	s.mu.Lock()
	all := sortedScans(s.scans[a.ID])
	s.mu.Unlock()
	if len(all) > limit {
		all = all[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "scans": all})
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request, a *account) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.scans[a.ID] {
		if sc.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "scan": sc})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Scan not found"})
}

func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request, a *account) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.scans[a.ID]
	for i, sc := range list {
		if sc.ID == id {
			s.scans[a.ID] = append(list[:i:i], list[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Scan deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Scan not found"})
}

func (s *Server) handleListBookings(w http.ResponseWriter, _ *http.Request, a *account) {
	s.mu.Lock()
	out := append([]types.Booking{}, s.bookings[a.ID]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"bookings": out, "total": len(out)})
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request, a *account) {
	var req types.CreateBookingRequest
	if !decode(r, &req) || req.LandmarkID == "" || req.Date == "" || req.Visitors <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "landmark_id, date and visitors are required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var price float64
	for _, l := range s.landmarks {
		if l.ID == req.LandmarkID {
			price = l.Price
		}
	}
	b := types.Booking{
		ID: uuid.NewString(), UserID: a.ID, LandmarkID: req.LandmarkID, Date: req.Date,
		Visitors: req.Visitors, TourType: req.TourType, TotalPrice: price * float64(req.Visitors),
		ContactName: req.ContactName, ContactEmail: req.ContactEmail, ContactPhone: req.ContactPhone,
		Status: "pending", CreatedAt: now(), UpdatedAt: now(),
	}
	s.bookings[a.ID] = append(s.bookings[a.ID], b)
	writeJSON(w, http.StatusCreated, map[string]any{"booking": b})
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request, a *account) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings[a.ID] {
		if b.ID == id {
			writeJSON(w, http.StatusOK, map[string]any{"booking": b})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"error": "Booking not found"})
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request, a *account) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.bookings[a.ID]
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if list[i].Status == "cancelled" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Booking already cancelled"})
			return
		}
		list[i].Status, list[i].UpdatedAt = "cancelled", now()
		writeJSON(w, http.StatusOK, map[string]any{"booking": list[i]})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"error": "Booking not found"})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req types.TranslateRequest
	if !decode(r, &req) || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Text is required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"text": req.Text, "hieroglyphs": glyphs(req.Text)})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	f, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "No file part"})
		return
	}
	defer f.Close()
	n, _ := io.Copy(io.Discard, f)
	if n == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "Empty image"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"predicted_class": 7, "confidence": 0.93, "gardiner_code": "D4"})
}

func bearer(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) {
		return h[len(prefix):]
	}
	return ""
}

// glyphs maps letters onto uniliteral signs, enough for round-trip tests.
func glyphs(text string) string {
	table := map[rune]string{'a': "𓄿", 'b': "𓃀", 'e': "𓇋", 'm': "𓅓", 'n': "𓈖", 'r': "𓂋", 's': "𓋴", 't': "𓏏", 'y': "𓇌"}
	out := make([]rune, 0, len(text))
	for _, c := range text {
		if g, ok := table[c|0x20]; ok {
			out = append(out, []rune(g)...)
		}
	}
	return string(out)
}
