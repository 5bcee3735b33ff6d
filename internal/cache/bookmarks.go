package cache

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hierovision/hierovision/client/internal/api"
	"github.com/hierovision/hierovision/client/internal/types"
)

const bookmarksKey = "bookmarks"

// Bookmarks is the session user's bookmark list.
type Bookmarks struct {
	api     api.Requester
	session types.Identity
	exec    Executor
	log     zerolog.Logger
	coll    *collection[types.Bookmark]

	// ownerMu also orders snapshot appends against session resets.
	ownerMu sync.Mutex
	owner   string // user id the snapshot was last loaded for
}

// NewBookmarks builds an empty bookmark list bound to session.
func NewBookmarks(d Deps) *Bookmarks {
	return &Bookmarks{
		api:     d.API,
		session: d.Session,
		exec:    d.Executor,
		log:     d.Logger.With().Str("cache", "bookmarks").Logger(),
		coll:    newCollection[types.Bookmark]("bookmarks"),
	}
}

// Load fetches the bookmarks of the current session user. Without a session
// the snapshot is cleared and nothing is sent. A failure is also kept in
// Err, so callers may ignore the returned error.
func (b *Bookmarks) Load(ctx context.Context) error {
	u := b.session.User()
	if u == nil {
		b.ownerMu.Lock()
		b.owner = ""
		b.coll.reset()
		b.ownerMu.Unlock()
		return nil
	}
	b.setOwner(u)
	return load(ctx, b.coll, b.log, func(ctx context.Context) ([]types.Bookmark, error) {
		return api.ListBookmarks(ctx, b.api)
	})
}

// OnSessionChange reloads when the identity behind the snapshot changed.
func (b *Bookmarks) OnSessionChange(ctx context.Context, u *types.User) error {
	b.ownerMu.Lock()
	same := b.owner == ownerKey(u)
	b.ownerMu.Unlock()
	if same {
		return nil
	}
	return b.Load(ctx)
}

// Add bookmarks a landmark and appends the server's record.
func (b *Bookmarks) Add(ctx context.Context, landmarkID string) (*types.Bookmark, error) {
	if b.session.User() == nil {
		return nil, types.NotAuthenticated("bookmark landmarks")
	}
	var out *types.Bookmark
	err := b.exec.Do(ctx, bookmarksKey, func(ctx context.Context) error {
		bm, err := b.add(ctx, landmarkID)
		out = bm
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes the bookmark for a landmark.
func (b *Bookmarks) Remove(ctx context.Context, landmarkID string) error {
	if b.session.User() == nil {
		return types.NotAuthenticated("remove bookmarks")
	}
	return b.exec.Do(ctx, bookmarksKey, func(ctx context.Context) error {
		return b.remove(ctx, landmarkID)
	})
}

// Toggle flips the bookmark state of a landmark and reports the new state.
// The membership check and the mutation run as one queued step, so rapid
// toggles alternate.
func (b *Bookmarks) Toggle(ctx context.Context, landmarkID string) (bool, error) {
	if b.session.User() == nil {
		return false, types.NotAuthenticated("bookmark landmarks")
	}
	var bookmarked bool
	err := b.exec.Do(ctx, bookmarksKey, func(ctx context.Context) error {
		if b.IsBookmarked(landmarkID) {
			if err := b.remove(ctx, landmarkID); err != nil {
				bookmarked = true
				return err
			}
			bookmarked = false
			return nil
		}
		if _, err := b.add(ctx, landmarkID); err != nil {
			return err
		}
		bookmarked = true
		return nil
	})
	return bookmarked, err
}

// IsBookmarked reports whether the snapshot holds a bookmark for landmarkID.
func (b *Bookmarks) IsBookmarked(landmarkID string) bool {
	_, ok := b.coll.find(func(bm types.Bookmark) bool { return bm.LandmarkID == landmarkID })
	return ok
}

// Bookmarks returns a copy of the snapshot.
func (b *Bookmarks) Bookmarks() []types.Bookmark { return b.coll.snapshot() }

// Loading reports whether a load is in flight.
func (b *Bookmarks) Loading() bool { return b.coll.isLoading() }

// Err is the sticky load error.
func (b *Bookmarks) Err() string { return b.coll.stickyErr() }

func (b *Bookmarks) add(ctx context.Context, landmarkID string) (*types.Bookmark, error) {
	b.ownerMu.Lock()
	startOwner := b.owner
	b.ownerMu.Unlock()
	startUser := ownerKey(b.session.User())

	bm, err := api.AddBookmark(ctx, b.api, landmarkID)
	observeMutation("bookmarks", "add", err)
	if err != nil {
		b.log.Error().Err(err).Str("landmark_id", landmarkID).Msg("adding bookmark")
		return nil, err
	}
	rec := *bm
	b.ownerMu.Lock()
	defer b.ownerMu.Unlock()
	if b.owner != startOwner || ownerKey(b.session.User()) != startUser {
		b.log.Debug().Str("landmark_id", landmarkID).Msg("session changed, bookmark not applied to snapshot")
		return bm, nil
	}
	b.coll.mutate(func(items []types.Bookmark) []types.Bookmark { return append(items, rec) })
	return bm, nil
}

func (b *Bookmarks) remove(ctx context.Context, landmarkID string) error {
	err := api.RemoveBookmark(ctx, b.api, landmarkID)
	observeMutation("bookmarks", "remove", err)
	if err != nil {
		b.log.Error().Err(err).Str("landmark_id", landmarkID).Msg("removing bookmark")
		return err
	}
	b.coll.mutate(func(items []types.Bookmark) []types.Bookmark {
		out := items[:0:0]
		for _, it := range items {
			if it.LandmarkID != landmarkID {
				out = append(out, it)
			}
		}
		return out
	})
	return nil
}

func (b *Bookmarks) setOwner(u *types.User) {
	b.ownerMu.Lock()
	b.owner = ownerKey(u)
	b.ownerMu.Unlock()
}

func ownerKey(u *types.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}
