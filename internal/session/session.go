// Package session owns the in-memory database handle shared by all requests.
//
// A Session holds at most one open database. Loading a new image replaces
// the handle atomically: requests running under View finish against the old
// handle, later requests see the new one, and the old handle is closed once
// nothing references it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bryan-buckman/condominio/internal/database"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrSourceUnavailable is returned when neither the requested source
	// nor the fallback produced a usable database.
	ErrSourceUnavailable = errors.New("database source unavailable")
	// ErrNotLoaded is returned by View before the first successful load.
	ErrNotLoaded = errors.New("no database loaded")
)

// LoadEvent describes a successful load.
type LoadEvent struct {
	Generation string
	Source     string
	Size       int
	Fallback   bool
	LoadedAt   time.Time
}

// Session is safe for concurrent use.
type Session struct {
	fetcher     Fetcher
	fallbackURL string
	log         logrus.FieldLogger
	now         func() time.Time

	mu      sync.RWMutex
	db      *database.DB
	current LoadEvent

	loadMu sync.Mutex
	group  singleflight.Group

	subsMu  sync.Mutex
	subs    map[int]func(LoadEvent)
	nextSub int
}

// New creates an empty session. fallbackURL may be empty.
func New(fetcher Fetcher, fallbackURL string, log logrus.FieldLogger) *Session {
	return &Session{
		fetcher:     fetcher,
		fallbackURL: fallbackURL,
		log:         log,
		now:         time.Now,
		subs:        make(map[int]func(LoadEvent)),
	}
}

// Load fetches and opens the image at src. If src cannot be fetched or is
// not a valid database, the fallback source is tried. Concurrent loads of
// the same source share a single fetch.
func (s *Session) Load(ctx context.Context, src string) (LoadEvent, error) {
	v, err, _ := s.group.Do(src, func() (any, error) {
		shared, cancel := sharedContext(ctx)
		defer cancel()
		return s.load(shared, src)
	})
	if err != nil {
		return LoadEvent{}, err
	}
	return v.(LoadEvent), nil
}

// sharedContext detaches a coalesced load from the cancellation of the
// caller that started it. A deadline on ctx still applies; HTTP fetches are
// also bounded by the fetcher timeout.
func sharedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(detached, deadline)
	}
	return detached, func() {}
}

func (s *Session) load(ctx context.Context, src string) (LoadEvent, error) {
	ev, primaryErr := s.loadFrom(ctx, src, false)
	if primaryErr == nil {
		return ev, nil
	}
	if s.fallbackURL == "" || s.fallbackURL == src {
		return LoadEvent{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, primaryErr)
	}

	s.log.WithError(primaryErr).WithFields(logrus.Fields{
		"source":   src,
		"fallback": s.fallbackURL,
	}).Warn("Database source failed, loading fallback")

	ev, fallbackErr := s.loadFrom(ctx, s.fallbackURL, true)
	if fallbackErr != nil {
		return LoadEvent{}, fmt.Errorf("%w: %v; fallback: %v", ErrSourceUnavailable, primaryErr, fallbackErr)
	}
	return ev, nil
}

func (s *Session) loadFrom(ctx context.Context, src string, fallback bool) (LoadEvent, error) {
	image, err := s.fetcher.Fetch(ctx, src)
	if err != nil {
		return LoadEvent{}, err
	}
	return s.replace(ctx, src, image, fallback)
}

// LoadBytes opens an image supplied by the caller, e.g. an upload. On
// failure the current handle is left untouched.
func (s *Session) LoadBytes(ctx context.Context, name string, image []byte) (LoadEvent, error) {
	return s.replace(ctx, name, image, false)
}

func (s *Session) replace(ctx context.Context, src string, image []byte, fallback bool) (LoadEvent, error) {
	ev, err := s.swap(ctx, src, image, fallback)
	if err != nil {
		return LoadEvent{}, err
	}
	// Subscribers run outside loadMu so they may trigger loads themselves.
	s.notify(ev)
	return ev, nil
}

func (s *Session) swap(ctx context.Context, src string, image []byte, fallback bool) (LoadEvent, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	db, err := database.Open(ctx, image)
	if err != nil {
		return LoadEvent{}, fmt.Errorf("open %s: %w", src, err)
	}

	ev := LoadEvent{
		Generation: uuid.NewString(),
		Source:     src,
		Size:       db.Size(),
		Fallback:   fallback,
		LoadedAt:   s.now(),
	}

	s.mu.Lock()
	old := s.db
	s.db = db
	s.current = ev
	s.mu.Unlock()

	// No View can still hold old once the write lock was granted.
	if old != nil {
		if err := old.Close(); err != nil {
			s.log.WithError(err).Warn("Failed to close previous database")
		}
	}

	s.log.WithFields(logrus.Fields{
		"source":     src,
		"size":       humanize.Bytes(uint64(ev.Size)),
		"generation": ev.Generation,
		"fallback":   fallback,
	}).Info("Database loaded")
	return ev, nil
}

// View runs fn against the current database. The handle is guaranteed not
// to be replaced or closed until fn returns.
func (s *Session) View(fn func(database.Store) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrNotLoaded
	}
	return fn(s.db)
}

// Current reports the last successful load.
func (s *Session) Current() (LoadEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.db != nil
}

// Subscribe registers fn to be called after every successful load.
// Calls happen on the loading goroutine after the new handle is in place;
// order across subscribers is unspecified. fn may itself load. The
// returned func removes the subscription.
func (s *Session) Subscribe(fn func(LoadEvent)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

func (s *Session) notify(ev LoadEvent) {
	s.subsMu.Lock()
	fns := make([]func(LoadEvent), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Close releases the current database.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.current = LoadEvent{}
	return err
}
