package cache

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hierovision/hierovision/client/internal/types"
)

func TestReviews_CreateGrowsNewestFirst(t *testing.T) {
	t.Parallel()
	e := newEnv(t, false)
	r := NewReviews(e.deps)
	require.NoError(t, r.Load(context.Background(), "giza"))

	first, err := r.Add(context.Background(), 5, "stunning")
	require.NoError(t, err)
	require.Len(t, r.Reviews(), 1)
	assert.Equal(t, "Ada", r.Reviews()[0].UserName)

	rb := NewReviews(e.as(t, "Bea", "bea@example.com"))
	require.NoError(t, rb.Load(context.Background(), "giza"))
	require.Len(t, rb.Reviews(), 1)

	second, err := rb.Add(context.Background(), 3, "hot")
	require.NoError(t, err)
	got := rb.Reviews()
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
	assert.Equal(t, 4.0, rb.AverageRating())
}

func TestReviews_AddWithoutLandmark(t *testing.T) {
	t.Parallel()
	e := newEnv(t, false)
	r := NewReviews(e.deps)
	before := e.srv.TotalCalls()
	_, err := r.Add(context.Background(), 5, "where?")
	assert.ErrorIs(t, err, types.ErrMissingID)
	assert.Equal(t, before, e.srv.TotalCalls())
}

func TestReviews_AnonymousAddMakesNoCall(t *testing.T) {
	t.Parallel()
	e := newEnv(t, true)
	r := NewReviews(e.deps)
	require.NoError(t, r.Load(context.Background(), "giza"))
	before := e.srv.TotalCalls()

	_, err := r.Add(context.Background(), 5, "great")
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)
	_, err = r.Update(context.Background(), "r1", 4, "ok")
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)
	assert.ErrorIs(t, r.Delete(context.Background(), "r1"), types.ErrNotAuthenticated)
	assert.Equal(t, before, e.srv.TotalCalls())
}

func TestReviews_EmptyIDLoadIsNoop(t *testing.T) {
	t.Parallel()
	e := newEnv(t, true)
	r := NewReviews(e.deps)
	require.NoError(t, r.Load(context.Background(), ""))
	assert.Equal(t, 0, e.srv.TotalCalls())
	assert.Equal(t, "", r.LandmarkID())
}

func TestReviews_UpdateInPlaceAndUserReview(t *testing.T) {
	t.Parallel()
	e := newEnv(t, false)
	r := NewReviews(e.deps)
	require.NoError(t, r.Load(context.Background(), "giza"))
	rv, err := r.Add(context.Background(), 2, "crowded")
	require.NoError(t, err)

	mine, ok := r.UserReview()
	require.True(t, ok)
	assert.Equal(t, rv.ID, mine.ID)

	updated, err := r.Update(context.Background(), rv.ID, 5, "went back at dawn")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	got := r.Reviews()
	require.Len(t, got, 1)
	assert.Equal(t, "went back at dawn", got[0].Comment)
	assert.Equal(t, 5.0, r.AverageRating())
}

func TestReviews_DeleteRemovesOnlyMatch(t *testing.T) {
	t.Parallel()
	e := newEnv(t, false)
	rb := NewReviews(e.as(t, "Bea", "bea@example.com"))
	require.NoError(t, rb.Load(context.Background(), "giza"))
	theirs, err := rb.Add(context.Background(), 2, "meh")
	require.NoError(t, err)

	r := NewReviews(e.deps)
	require.NoError(t, r.Load(context.Background(), "giza"))
	mine, err := r.Add(context.Background(), 4, "fine")
	require.NoError(t, err)
	require.Len(t, r.Reviews(), 2)

	err = r.Delete(context.Background(), theirs.ID)
	require.Error(t, err, "the server refuses to delete another author's review")
	assert.Len(t, r.Reviews(), 2)

	require.NoError(t, r.Delete(context.Background(), mine.ID))
	got := r.Reviews()
	require.Len(t, got, 1)
	assert.Equal(t, theirs, &got[0])
	_, ok := r.UserReview()
	assert.False(t, ok)
}

func TestReviews_AverageRating(t *testing.T) {
	t.Parallel()
	r := NewReviews(Deps{})
	assert.Equal(t, 0.0, r.AverageRating())

	r.coll.mutate(func([]types.Review) []types.Review {
		return []types.Review{{ID: "a", Rating: 5}, {ID: "b", Rating: 3}, {ID: "c", Rating: 4}}
	})
	assert.Equal(t, 4.0, r.AverageRating())
}

func TestReviews_FailedLoadIsSticky(t *testing.T) {
	t.Parallel()
	e := newEnv(t, true)
	r := NewReviews(e.deps)
	e.srv.FailNext("GET /landmarks/{id}/reviews", http.StatusServiceUnavailable, `{"message":"maintenance"}`)

	err := r.Load(context.Background(), "giza")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503 - maintenance")
	assert.Equal(t, "Failed to fetch reviews", r.Err())
}

func TestReviews_SwitchingLandmarkDropsStaleResponse(t *testing.T) {
	t.Parallel()
	e := newEnv(t, false)
	gated := newGated(e.deps.API)
	d := e.deps
	d.API = gated
	r := NewReviews(d)

	// Seed a review on giza so its list is distinguishable.
	seed := NewReviews(e.deps)
	require.NoError(t, seed.Load(context.Background(), "giza"))
	_, err := seed.Add(context.Background(), 5, "seed")
	require.NoError(t, err)

	release := gated.hold("/landmarks/giza/reviews")
	slow := make(chan error, 1)
	go func() { slow <- r.Load(context.Background(), "giza") }()
	<-gated.fetched

	require.NoError(t, r.Load(context.Background(), "karnak"))
	release()
	require.NoError(t, <-slow)

	assert.Equal(t, "karnak", r.LandmarkID())
	assert.Empty(t, r.Reviews(), "giza's late answer must not land on karnak")
}

func TestReviews_MutationForPreviousLandmarkNotApplied(t *testing.T) {
	t.Parallel()
	e := newEnv(t, false)
	r := NewReviews(e.deps)
	require.NoError(t, r.Load(context.Background(), "giza"))

	rv, err := r.Add(context.Background(), 4, "ok")
	require.NoError(t, err)
	require.NoError(t, r.Load(context.Background(), "karnak"))

	r.mutateFor("giza", func(items []types.Review) []types.Review { return append(items, *rv) })
	assert.Empty(t, r.Reviews())
}
