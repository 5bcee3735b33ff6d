package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hierovision/hierovision/client/internal/types"
)

// route asserts method and path then answers with body.
func route(t *testing.T, method, path string, status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, method, r.Method)
		assert.Equal(t, path, r.URL.Path)
		writeJSON(w, status, body)
	}
}

func TestEndpoints_RoutesAndDecoding(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("login", func(t *testing.T) {
		p := newTestPipeline(t, "", route(t, http.MethodPost, "/api/auth/login", 200,
			`{"success":true,"token":"t1","user":{"uid":"u1","fullName":"Ada","email":"a@x"}}`))
		lr, err := Login(ctx, p, types.LoginRequest{Email: "a@x", Password: "pw"})
		require.NoError(t, err)
		assert.True(t, lr.Success)
		assert.Equal(t, "t1", lr.Token)
		assert.Equal(t, "u1", lr.User.ID)
		assert.Equal(t, "Ada", lr.User.Name)
	})

	t.Run("signup sends fullName", func(t *testing.T) {
		p := newTestPipeline(t, "", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/auth/register", r.URL.Path)
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "Ada", body["fullName"])
			writeJSON(w, 201, `{"success":true,"message":"ok"}`)
		})
		sr, err := Signup(ctx, p, types.SignupRequest{FullName: "Ada", Email: "a@x", Password: "pw"})
		require.NoError(t, err)
		assert.True(t, sr.Success)
	})

	t.Run("logout", func(t *testing.T) {
		p := newTestPipeline(t, "t", route(t, http.MethodPost, "/api/auth/logout", 200, `{"success":true}`))
		require.NoError(t, Logout(ctx, p))
	})

	t.Run("verify keeps raw user", func(t *testing.T) {
		p := newTestPipeline(t, "t", route(t, http.MethodGet, "/api/auth/verify", 200, `{"success":true,"user":{"uid":"u1"}}`))
		vr, err := Verify(ctx, p)
		require.NoError(t, err)
		assert.JSONEq(t, `{"uid":"u1"}`, string(vr.User))
	})

	t.Run("update profile omits absent fields", func(t *testing.T) {
		p := newTestPipeline(t, "t", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, map[string]any{"fullName": "Bea"}, body)
			writeJSON(w, 200, `{"success":true,"user":{"fullName":"Bea"}}`)
		})
		name := "Bea"
		_, err := UpdateProfile(ctx, p, types.UpdateProfileRequest{FullName: &name})
		require.NoError(t, err)
	})

	t.Run("landmarks missing field is empty", func(t *testing.T) {
		p := newTestPipeline(t, "", route(t, http.MethodGet, "/api/landmarks", 200, `{}`))
		lms, err := ListLandmarks(ctx, p)
		require.NoError(t, err)
		assert.NotNil(t, lms)
		assert.Empty(t, lms)
	})

	t.Run("get landmark", func(t *testing.T) {
		p := newTestPipeline(t, "", route(t, http.MethodGet, "/api/landmarks/giza", 200, `{"landmark":{"id":"giza","reviewCount":2}}`))
		lm, err := GetLandmark(ctx, p, "giza")
		require.NoError(t, err)
		assert.Equal(t, 2, lm.ReviewCount)
	})

	t.Run("remove bookmark uses landmark id", func(t *testing.T) {
		p := newTestPipeline(t, "t", route(t, http.MethodDelete, "/api/bookmarks/giza", 200, `{"success":true}`))
		require.NoError(t, RemoveBookmark(ctx, p, "giza"))
	})

	t.Run("add bookmark", func(t *testing.T) {
		p := newTestPipeline(t, "t", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "giza", body["landmark_id"])
			writeJSON(w, 201, `{"bookmark":{"id":"b1","landmark_id":"giza","user_id":"u1"}}`)
		})
		bm, err := AddBookmark(ctx, p, "giza")
		require.NoError(t, err)
		assert.Equal(t, "b1", bm.ID)
	})

	t.Run("add bookmark without record", func(t *testing.T) {
		p := newTestPipeline(t, "t", route(t, http.MethodPost, "/api/bookmarks", 201, `{"success":true}`))
		_, err := AddBookmark(ctx, p, "giza")
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("reviews", func(t *testing.T) {
		p := newTestPipeline(t, "t", route(t, http.MethodGet, "/api/landmarks/giza/reviews", 200, `{"reviews":[{"id":"r1","rating":5}]}`))
		rs, err := ListReviews(ctx, p, "giza")
		require.NoError(t, err)
		require.Len(t, rs, 1)
		assert.Equal(t, 5, rs[0].Rating)
	})

	t.Run("update review", func(t *testing.T) {
		p := newTestPipeline(t, "t", route(t, http.MethodPut, "/api/reviews/r1", 200, `{"review":{"id":"r1","rating":2}}`))
		rv, err := UpdateReview(ctx, p, "r1", types.ReviewRequest{Rating: 2})
		require.NoError(t, err)
		assert.Equal(t, 2, rv.Rating)
	})

	t.Run("recent scans limit", func(t *testing.T) {
		p := newTestPipeline(t, "t", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/scans/recent", r.URL.Path)
			assert.Equal(t, "3", r.URL.Query().Get("limit"))
			writeJSON(w, 200, `{"success":true,"scans":[{"id":"s1"}]}`)
		})
		scans, err := RecentScans(ctx, p, 3)
		require.NoError(t, err)
		assert.Len(t, scans, 1)
	})

	t.Run("list scans paging", func(t *testing.T) {
		p := newTestPipeline(t, "t", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			writeJSON(w, 200, `{"success":true,"scans":[],"pagination":{"page":2,"pages":2}}`)
		})
		lr, err := ListScans(ctx, p, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, lr.Pagination.Page)
	})

	t.Run("cancel booking", func(t *testing.T) {
		p := newTestPipeline(t, "t", route(t, http.MethodPost, "/api/bookings/bk1/cancel", 200, `{"booking":{"id":"bk1","status":"cancelled"}}`))
		bk, err := CancelBooking(ctx, p, "bk1")
		require.NoError(t, err)
		assert.Equal(t, "cancelled", bk.Status)
	})

	t.Run("translate passes document through", func(t *testing.T) {
		p := newTestPipeline(t, "", route(t, http.MethodPost, "/api/translate/english-to-hieroglyphs", 200, `{"hieroglyphs":"𓂀"}`))
		doc, err := TranslateText(ctx, p, "eye")
		require.NoError(t, err)
		assert.Equal(t, "𓂀", doc["hieroglyphs"])
	})

	t.Run("avatar upload field", func(t *testing.T) {
		p := newTestPipeline(t, "t", func(w http.ResponseWriter, r *http.Request) {
			_, hdr, err := r.FormFile("avatar")
			if assert.NoError(t, err) {
				assert.Equal(t, "me.jpg", hdr.Filename)
			}
			writeJSON(w, 200, `{"success":true,"avatarURL":"/a/me.jpg"}`)
		})
		resp, err := UploadAvatar(ctx, p, "me.jpg", strings.NewReader("jpg"))
		require.NoError(t, err)
		assert.True(t, resp.OK())
	})
}

func TestEndpoints_ValidationMakesNoCalls(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	stub := &countingRequester{}

	_, err := GetLandmark(ctx, stub, "")
	assert.ErrorIs(t, err, types.ErrMissingID)
	_, err = AddBookmark(ctx, stub, " ")
	assert.ErrorIs(t, err, types.ErrMissingID)
	assert.ErrorIs(t, RemoveBookmark(ctx, stub, ""), types.ErrMissingID)
	_, err = ListReviews(ctx, stub, "")
	assert.ErrorIs(t, err, types.ErrMissingID)
	_, err = CreateReview(ctx, stub, "", types.ReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, types.ErrMissingID)
	assert.ErrorIs(t, DeleteReview(ctx, stub, ""), types.ErrMissingID)
	_, err = GetScan(ctx, stub, "")
	assert.ErrorIs(t, err, types.ErrMissingID)
	_, err = CancelBooking(ctx, stub, "")
	assert.ErrorIs(t, err, types.ErrMissingID)
	_, err = Predict(ctx, stub, "", strings.NewReader(""))
	assert.ErrorIs(t, err, types.ErrMissingField)
	_, err = ChangePassword(ctx, stub, types.ChangePasswordRequest{CurrentPassword: "old"})
	require.ErrorIs(t, err, types.ErrMissingField)
	assert.EqualError(t, err, "missing required field: newPassword")
	_, err = ResetPassword(ctx, stub, types.ResetPasswordRequest{})
	assert.EqualError(t, err, "missing required field: email")
	_, err = TranslateText(ctx, stub, " ")
	assert.ErrorIs(t, err, types.ErrMissingField)

	assert.Equal(t, int32(0), stub.calls.Load())
}
