package cache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hierovision/hierovision/client/internal/api"
	"github.com/hierovision/hierovision/client/internal/types"
)

// Landmarks is the read-only landmark catalogue.
type Landmarks struct {
	api  api.Requester
	log  zerolog.Logger
	coll *collection[types.Landmark]
}

// NewLandmarks builds an empty catalogue. Call Load to fill it.
func NewLandmarks(d Deps) *Landmarks {
	return &Landmarks{
		api:  d.API,
		log:  d.Logger.With().Str("cache", "landmarks").Logger(),
		coll: newCollection[types.Landmark]("landmarks"),
	}
}

// Load replaces the catalogue with the server's. On failure the previous
// snapshot is kept and Err reports the failure until the next good load,
// so callers may ignore the returned error.
func (l *Landmarks) Load(ctx context.Context) error {
	return load(ctx, l.coll, l.log, func(ctx context.Context) ([]types.Landmark, error) {
		return api.ListLandmarks(ctx, l.api)
	})
}

// Landmarks returns a copy of the catalogue.
func (l *Landmarks) Landmarks() []types.Landmark { return l.coll.snapshot() }

// Lookup finds a landmark in the snapshot by id.
func (l *Landmarks) Lookup(id string) (types.Landmark, bool) {
	return l.coll.find(func(lm types.Landmark) bool { return lm.ID == id })
}

// Get fetches one landmark from the server without touching the snapshot.
func (l *Landmarks) Get(ctx context.Context, id string) (*types.Landmark, error) {
	lm, err := api.GetLandmark(ctx, l.api, id)
	if err != nil {
		l.log.Error().Err(err).Str("landmark_id", id).Msg("fetching landmark")
		return nil, err
	}
	return lm, nil
}

// Refresh re-fetches one landmark and swaps it into the snapshot, picking up
// server-side aggregates such as the review count after a review changes.
// A landmark missing from the snapshot is appended.
func (l *Landmarks) Refresh(ctx context.Context, id string) (*types.Landmark, error) {
	lm, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fresh := *lm
	l.coll.mutate(func(items []types.Landmark) []types.Landmark {
		for i := range items {
			if items[i].ID == fresh.ID {
				items[i] = fresh
				return items
			}
		}
		return append(items, fresh)
	})
	return lm, nil
}

// Loading reports whether a load is in flight.
func (l *Landmarks) Loading() bool { return l.coll.isLoading() }

// Err is the sticky load error, empty after a successful load.
func (l *Landmarks) Err() string { return l.coll.stickyErr() }
