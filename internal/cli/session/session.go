// Package session owns "who is logged in" for the CLI.
//
// A Store keeps the authenticated user record and a loading flag, and keeps
// them in sync with two persisted slots (bearer token, serialized user) and
// with the API client's Authorization header.
//
// Lifecycle: Open creates a Store and restores any persisted session
// (Unknown -> Authenticated | Unauthenticated). SignIn moves any state to
// Authenticated, SignOut moves any state to Unauthenticated, and
// UpdateUserProfile is only valid while Authenticated. Close disposes the
// Store; every later operation fails with ErrClosed.
//
// Only one operation runs at a time. A call made while another is in flight
// fails fast with ErrBusy instead of interleaving with it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ignite-gym/ignitegym/internal/cli/client"
	"github.com/ignite-gym/ignitegym/internal/cli/storage"
)

var (
	ErrBusy             = errors.New("another session operation is in progress")
	ErrNotAuthenticated = errors.New("not signed in")
	ErrClosed           = errors.New("session store is closed")

	errIncompleteSession = errors.New("sign-in response is missing user or token")
	errEmptyUser         = errors.New("persisted user record is empty")
)

// State is the position of the store in its lifecycle
type State int

const (
	StateUnknown State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is the published state. User is nil unless State is
// StateAuthenticated.
type Snapshot struct {
	State   State
	User    *client.User
	Loading bool
}

// API is the part of the API client the store depends on
type API interface {
	SignIn(ctx context.Context, email, password string) (*client.SessionResponse, error)
	SetToken(token string)
	ClearToken()
}

// Store is the session-state owner
type Store struct {
	api     API
	storage storage.Store
	log     zerolog.Logger

	// op is held for the whole duration of an operation
	op sync.Mutex

	mu         sync.Mutex
	state      State
	user       *client.User
	loading    bool
	closed     bool
	listeners  map[int]func(Snapshot)
	nextListen int
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for absorbed failures
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// New creates a Store in StateUnknown without touching storage.
// Most callers want Open.
func New(api API, store storage.Store, opts ...Option) *Store {
	s := &Store{
		api:       api,
		storage:   store,
		log:       zerolog.Nop(),
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a Store and restores the persisted session
func Open(ctx context.Context, api API, store storage.Store, opts ...Option) *Store {
	s := New(api, store, opts...)
	s.Restore(ctx)
	return s
}

// Snapshot returns the current published state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// User returns a copy of the published user, or nil
func (s *Store) User() *client.User {
	return s.Snapshot().User
}

// Subscribe registers fn to receive every published state change.
// fn is called synchronously, outside the store's locks. The returned
// function unregisters it.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextListen
	s.nextListen++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close disposes the store. It waits for an in-flight operation to finish.
func (s *Store) Close() {
	s.op.Lock()
	defer s.op.Unlock()

	s.mu.Lock()
	s.closed = true
	s.listeners = make(map[int]func(Snapshot))
	s.mu.Unlock()
}

// Restore reads the persisted token and user. When both are present the
// token is installed on the API client and the user is published;
// otherwise the store ends Unauthenticated with no token installed.
// Restore never fails: storage errors are logged and treated as "no
// previous session".
func (s *Store) Restore(ctx context.Context) {
	if err := s.begin(); err != nil {
		s.log.Warn().Err(err).Msg("Session restore skipped")
		return
	}
	defer s.end()

	user, token, err := s.readPersisted(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to restore session, continuing signed out")
	}

	if user == nil || token == "" {
		s.api.ClearToken()
		s.publish(StateUnauthenticated, nil)
		return
	}

	s.api.SetToken(token)
	s.publish(StateAuthenticated, user)
	s.log.Debug().Str("user_id", user.ID).Msg("Session restored")
}

func (s *Store) readPersisted(ctx context.Context) (*client.User, string, error) {
	rawUser, err := s.storage.Get(ctx, storage.KeyUser)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read user: %w", err)
	}

	token, err := s.storage.Get(ctx, storage.KeyToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read token: %w", err)
	}

	var user *client.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, "", fmt.Errorf("failed to decode persisted user: %w", err)
	}
	if user == nil || user.ID == "" {
		return nil, "", errEmptyUser
	}
	return user, token, nil
}

// SignIn authenticates against the API. The user and token are persisted
// first; only when both writes succeed is the token installed and the user
// published. A persistence failure is reported as a failed sign-in and the
// slots are put back the way they were before the attempt.
//
// Backend errors (*client.AppError) and transport errors are returned
// unchanged, and the previously published state is left as it was.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	resp, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	if resp == nil || resp.User == nil || resp.Token == "" {
		return errIncompleteSession
	}

	prev := s.savedSlots(ctx)
	if err := s.persist(ctx, resp.User, resp.Token); err != nil {
		s.rollback(ctx, prev)
		return fmt.Errorf("failed to save session: %w", err)
	}

	s.api.SetToken(resp.Token)
	s.publish(StateAuthenticated, resp.User)
	s.log.Info().Str("user_id", resp.User.ID).Msg("Signed in")
	return nil
}

func (s *Store) persist(ctx context.Context, user *client.User, token string) error {
	if err := s.saveUser(ctx, user); err != nil {
		return err
	}
	if err := s.storage.Set(ctx, storage.KeyToken, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

func (s *Store) saveUser(ctx context.Context, user *client.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyUser, string(data)); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	return nil
}

// savedSlots captures the persisted slots so a failed write can be undone.
// A nil value means the slot was empty. Slots that cannot be read are left
// out, and rollback does not touch them.
func (s *Store) savedSlots(ctx context.Context) map[string]*string {
	prev := make(map[string]*string, 2)
	for _, key := range []string{storage.KeyUser, storage.KeyToken} {
		v, err := s.storage.Get(ctx, key)
		switch {
		case err == nil:
			prev[key] = &v
		case errors.Is(err, storage.ErrNotFound):
			prev[key] = nil
		default:
			s.log.Warn().Err(err).Str("slot", key).Msg("Cannot read saved slot, it will not be rolled back")
		}
	}
	return prev
}

func (s *Store) rollback(ctx context.Context, prev map[string]*string) {
	var errs []error
	for key, value := range prev {
		if value == nil {
			errs = append(errs, s.storage.Remove(ctx, key))
			continue
		}
		errs = append(errs, s.storage.Set(ctx, key, *value))
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Warn().Err(err).Msg("Failed to roll back partially saved session")
	}
}

func (s *Store) removePersisted(ctx context.Context) error {
	return errors.Join(
		s.storage.Remove(ctx, storage.KeyUser),
		s.storage.Remove(ctx, storage.KeyToken),
	)
}

// SignOut clears the published user and the API token, then removes both
// persisted slots. Memory is signed out even when removal fails; the
// removal error is returned. Signing out twice is not an error.
func (s *Store) SignOut(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	s.publish(StateUnauthenticated, nil)
	s.api.ClearToken()

	if err := s.removePersisted(ctx); err != nil {
		return fmt.Errorf("failed to clear saved session: %w", err)
	}
	s.log.Info().Msg("Signed out")
	return nil
}

// UpdateUserProfile persists user and then publishes it. The token is not
// touched. Fails with ErrNotAuthenticated outside StateAuthenticated.
func (s *Store) UpdateUserProfile(ctx context.Context, user client.User) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if s.Snapshot().State != StateAuthenticated {
		return ErrNotAuthenticated
	}

	if err := s.saveUser(ctx, &user); err != nil {
		return err
	}

	s.publish(StateAuthenticated, &user)
	return nil
}

// begin takes the operation guard and raises the loading flag
func (s *Store) begin() error {
	if !s.op.TryLock() {
		return ErrBusy
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.op.Unlock()
		return ErrClosed
	}
	s.loading = true
	snap, listeners := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	return nil
}

// end lowers the loading flag and releases the operation guard
func (s *Store) end() {
	s.mu.Lock()
	s.loading = false
	snap, listeners := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	s.op.Unlock()
}

func (s *Store) publish(state State, user *client.User) {
	s.mu.Lock()
	s.state = state
	s.user = cloneUser(user)
	snap, listeners := s.snapshotLocked(), s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, snap)
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{State: s.state, User: cloneUser(s.user), Loading: s.loading}
}

func (s *Store) listenersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(Snapshot), snap Snapshot) {
	for _, fn := range listeners {
		fn(snap)
	}
}

func cloneUser(u *client.User) *client.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
