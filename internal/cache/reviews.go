package cache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hierovision/hierovision/client/internal/api"
	"github.com/hierovision/hierovision/client/internal/types"
)

// Reviews holds the reviews of one landmark at a time.
type Reviews struct {
	api     api.Requester
	session types.Identity
	exec    Executor
	log     zerolog.Logger
	coll    *collection[types.Review]

	// landmarkID is guarded by coll.mu.
	landmarkID string
}

// NewReviews builds an empty review list. Load selects the landmark.
func NewReviews(d Deps) *Reviews {
	return &Reviews{
		api:     d.API,
		session: d.Session,
		exec:    d.Executor,
		log:     d.Logger.With().Str("cache", "reviews").Logger(),
		coll:    newCollection[types.Review]("reviews"),
	}
}

// Load switches the list to landmarkID and fetches its reviews. Switching
// landmarks empties the list first. An empty id does nothing.
func (r *Reviews) Load(ctx context.Context, landmarkID string) error {
	if landmarkID == "" {
		return nil
	}
	r.coll.mu.Lock()
	if r.landmarkID != landmarkID {
		r.landmarkID = landmarkID
		r.coll.items = []types.Review{}
		r.coll.err = ""
	}
	r.coll.mu.Unlock()
	return load(ctx, r.coll, r.log, func(ctx context.Context) ([]types.Review, error) {
		return api.ListReviews(ctx, r.api, landmarkID)
	})
}

// LandmarkID is the landmark the list was last loaded for.
func (r *Reviews) LandmarkID() string {
	r.coll.mu.RLock()
	defer r.coll.mu.RUnlock()
	return r.landmarkID
}

// Add posts a review on the current landmark and prepends the server's
// record.
func (r *Reviews) Add(ctx context.Context, rating int, comment string) (*types.Review, error) {
	if r.session.User() == nil {
		return nil, types.NotAuthenticated("add a review")
	}
	landmarkID := r.LandmarkID()
	if err := types.ValidateIDPresent(landmarkID, "landmarkId"); err != nil {
		return nil, err
	}

	var out *types.Review
	err := r.exec.Do(ctx, reviewsKey(landmarkID), func(ctx context.Context) error {
		rv, err := api.CreateReview(ctx, r.api, landmarkID, types.ReviewRequest{Rating: rating, Comment: comment})
		observeMutation("reviews", "create", err)
		if err != nil {
			r.log.Error().Err(err).Str("landmark_id", landmarkID).Msg("creating review")
			return err
		}
		out = rv
		rec := *rv
		r.mutateFor(landmarkID, func(items []types.Review) []types.Review {
			return append([]types.Review{rec}, items...)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update replaces the rating and comment of a review and swaps the server's
// record in place.
func (r *Reviews) Update(ctx context.Context, reviewID string, rating int, comment string) (*types.Review, error) {
	if r.session.User() == nil {
		return nil, types.NotAuthenticated("update a review")
	}
	landmarkID := r.LandmarkID()

	var out *types.Review
	err := r.exec.Do(ctx, reviewsKey(landmarkID), func(ctx context.Context) error {
		rv, err := api.UpdateReview(ctx, r.api, reviewID, types.ReviewRequest{Rating: rating, Comment: comment})
		observeMutation("reviews", "update", err)
		if err != nil {
			r.log.Error().Err(err).Str("review_id", reviewID).Msg("updating review")
			return err
		}
		out = rv
		rec := *rv
		r.mutateFor(landmarkID, func(items []types.Review) []types.Review {
			for i := range items {
				if items[i].ID == reviewID {
					items[i] = rec
				}
			}
			return items
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a review.
func (r *Reviews) Delete(ctx context.Context, reviewID string) error {
	if r.session.User() == nil {
		return types.NotAuthenticated("delete a review")
	}
	landmarkID := r.LandmarkID()

	return r.exec.Do(ctx, reviewsKey(landmarkID), func(ctx context.Context) error {
		err := api.DeleteReview(ctx, r.api, reviewID)
		observeMutation("reviews", "delete", err)
		if err != nil {
			r.log.Error().Err(err).Str("review_id", reviewID).Msg("deleting review")
			return err
		}
		r.mutateFor(landmarkID, func(items []types.Review) []types.Review {
			out := items[:0:0]
			for _, it := range items {
				if it.ID != reviewID {
					out = append(out, it)
				}
			}
			return out
		})
		return nil
	})
}

// UserReview returns the session user's review of the current landmark.
func (r *Reviews) UserReview() (types.Review, bool) {
	u := r.session.User()
	if u == nil {
		return types.Review{}, false
	}
	return r.coll.find(func(rv types.Review) bool { return rv.UserID == u.ID })
}

// AverageRating is the mean rating of the snapshot, 0 when it is empty.
func (r *Reviews) AverageRating() float64 {
	r.coll.mu.RLock()
	defer r.coll.mu.RUnlock()
	if len(r.coll.items) == 0 {
		return 0
	}
	sum := 0
	for _, rv := range r.coll.items {
		sum += rv.Rating
	}
	return float64(sum) / float64(len(r.coll.items))
}

// Reviews returns a copy of the snapshot, newest first.
func (r *Reviews) Reviews() []types.Review { return r.coll.snapshot() }

// Loading reports whether a load is in flight.
func (r *Reviews) Loading() bool { return r.coll.isLoading() }

// Err is the sticky load error.
func (r *Reviews) Err() string { return r.coll.stickyErr() }

// mutateFor applies fn only while the list still shows landmarkID.
func (r *Reviews) mutateFor(landmarkID string, fn func([]types.Review) []types.Review) {
	r.coll.mu.Lock()
	defer r.coll.mu.Unlock()
	if r.landmarkID != landmarkID {
		return
	}
	r.coll.items = fn(r.coll.items)
}

func reviewsKey(landmarkID string) string { return "reviews:" + landmarkID }
