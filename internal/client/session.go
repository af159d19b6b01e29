package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/anindta/task-management-project/internal/auth"
)

// Storage keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// DefaultTimeout bounds a request without a context deadline.
const DefaultTimeout = 10 * time.Second

// State of a Session.
type State int

// Session states.
const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// User is the persisted user summary.
type User struct {
	ID       uint64 `json:"id"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

// Menu is a menu the user may see.
type Menu = auth.MenuEntry

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	UserID uint64 `json:"userId"`
}

// Session talks to the API on behalf of one user.
type Session struct {
	baseURL string
	store   fiber.Storage
	timeout time.Duration

	busy atomic.Bool

	mu      sync.RWMutex
	state   State
	token   string
	user    *User
	menus   []Menu
	subs    map[int]func(State)
	nextSub int
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout sets the timeout of requests without a context deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// New creates a session for the API at baseURL and rehydrates it from store.
func New(baseURL string, store fiber.Storage, opts ...Option) (*Session, error) {
	if store == nil {
		return nil, errors.New("client: storage is nil")
	}

	s := &Session{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		timeout: DefaultTimeout,
		subs:    map[int]func(State){},
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.rehydrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Session) rehydrate() error {
	token, err := s.store.Get(KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}

	if len(token) == 0 {
		return nil
	}

	s.token = string(token)
	s.state = Authenticated

	raw, err := s.store.Get(KeyUser)
	if err != nil {
		return fmt.Errorf("failed to read user: %w", err)
	}

	if len(raw) == 0 {
		return nil
	}

	var u User
	if err = json.Unmarshal(raw, &u); err != nil {
		log.Warn().Err(err).Msg("ignoring unreadable stored user")

		return nil
	}

	s.user = &u

	return nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Token returns the cached token or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// User returns the cached user summary or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}

	u := *s.user

	return &u
}

// Role returns the cached role name, "Guest" without a user.
func (s *Session) Role() string {
	if u := s.User(); u != nil && u.Role != "" {
		return u.Role
	}

	return "Guest"
}

// Menus returns the cached menus.
func (s *Session) Menus() []Menu {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Menu{}, s.menus...)
}

// CanSee reports whether the cached menus contain name.
func (s *Session) CanSee(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.menus {
		if m.Name == name {
			return true
		}
	}

	return false
}

// Subscribe calls fn on every state change until the returned func is called.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st

	fns := make([]func(State), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

// Login authenticates and caches token, user and menus.
// A failed menu fetch is logged and leaves the menus empty, the login still succeeds.
func (s *Session) Login(ctx context.Context, username, password string) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrLoginInProgress
	}
	defer s.busy.Store(false)

	s.setState(Authenticating)

	var resp loginResponse

	err := s.send(ctx, fiber.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, &resp, false)
	if err != nil {
		s.forget()

		return err
	}

	u := User{ID: resp.UserID, Role: resp.Role, Username: username}

	if err = s.persist(resp.Token, &u); err != nil {
		s.forget()

		return err
	}

	s.mu.Lock()
	s.token = resp.Token
	s.user = &u
	s.menus = nil
	s.mu.Unlock()

	if _, err = s.RefreshMenus(ctx); err != nil {
		log.Warn().Err(err).Str("username", username).Msg("failed to load menus")
	}

	s.setState(Authenticated)

	return nil
}

func (s *Session) persist(token string, u *User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if err = s.store.Set(KeyToken, []byte(token), 0); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	if err = s.store.Set(KeyUser, raw, 0); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}

	return nil
}

// Logout drops token, user and menus. The token stays valid on the server until it expires.
func (s *Session) Logout() {
	s.forget()
}

func (s *Session) forget() {
	for _, key := range []string{KeyToken, KeyUser} {
		if err := s.store.Delete(key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to clear session storage")
		}
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.menus = nil
	s.mu.Unlock()

	s.setState(Unauthenticated)
}

// RefreshMenus fetches the caller's menus and caches them.
func (s *Session) RefreshMenus(ctx context.Context) ([]Menu, error) {
	var menus []Menu
	if err := s.Do(ctx, fiber.MethodGet, "/auth/my-menus", nil, &menus); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.menus = menus
	s.mu.Unlock()

	return append([]Menu{}, menus...), nil
}

// Do sends body as JSON to path and decodes the answer into out.
// The cached token is sent as bearer. Either body or out may be nil.
func (s *Session) Do(ctx context.Context, method, path string, body, out any) error {
	return s.send(ctx, method, path, body, out, true)
}

func (s *Session) send(ctx context.Context, method, path string, body, out any, withToken bool) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(s.baseURL + path)

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)

		return fmt.Errorf("invalid request %s %s: %w", method, path, err)
	}

	timeout := s.timeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}

	a.Timeout(timeout)

	if token := s.Token(); withToken && token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	if body != nil {
		a.JSON(body)
	}

	code, respBody, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", method, path, errors.Join(errs...))
	}

	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return &APIError{Status: code, Message: strings.TrimSpace(string(respBody))}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}

	return nil
}
