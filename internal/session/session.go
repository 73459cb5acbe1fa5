// Package session owns the signed-in user, the bearer token and the set of saved recipe ids.
//
// A [Store] is the only writer of session state. It is created once and handed to views and
// commands; any of them may report an auth failure through [Store.HandleError], which logs the
// user out locally.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/api"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Messages shown when the backend gives no detail.
const (
	LoginFallback  = "Failed to login"
	SignupFallback = "Failed to sign up"
)

// savedPageSize is the page size used while collecting every saved recipe id.
const savedPageSize = 100

// API is the part of the backend client the store uses.
type API interface {
	SetToken(accessToken string)
	Login(ctx context.Context, username, password string) (*oauth2.Token, error)
	Signup(ctx context.Context, username, password string) (*models.User, error)
	Me(ctx context.Context) (*models.User, error)
	SavedRecipes(ctx context.Context, skip, limit int) (*models.RecipePage, error)
	SaveRecipe(ctx context.Context, id int) error
	UnsaveRecipe(ctx context.Context, id int) error
}

// TokenStore persists the access token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token, username string) error
	Clear() error
}

// Options configures a [Store].
type Options struct {
	Logger *log.Logger
	// Token, when set, is used instead of the persisted token and is never written back.
	Token string
	// Now is the clock used for token expiry. Defaults to time.Now.
	Now func() time.Time
}

// Failure is a login or signup failure carrying the message to show the user.
type Failure struct {
	Message string
	Err     error
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// State is a copy of the session at one instant.
type State struct {
	User       *models.User `json:"user"`
	Token      string       `json:"-"`
	SavedIDs   []int        `json:"saved_recipe_ids"`
	SavedCount int          `json:"saved_recipe_count"`
}

// Store holds session state.
type Store struct {
	api      API
	tokens   TokenStore
	logger   *log.Logger
	now      func() time.Time
	override string

	mu         sync.RWMutex
	user       *models.User
	token      string
	saved      map[int]struct{}
	savedCount int
}

// New creates a logged-out store. Call [Store.Init] to resume a persisted session.
func New(client API, tokens TokenStore, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		api:      client,
		tokens:   tokens,
		logger:   opts.Logger,
		now:      opts.Now,
		override: opts.Token,
		saved:    make(map[int]struct{}),
	}
}

// Init resumes the persisted session. An expired token is discarded without a network call;
// a profile fetch failure logs out. Init only returns an error when the token store fails or
// ctx is cancelled, in which case the session is left logged out but the token is kept.
func (s *Store) Init(ctx context.Context) error {
	token := s.override
	if token == "" && s.tokens != nil {
		stored, err := s.tokens.Load()
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		token = stored
	}
	if token == "" {
		s.reset()
		return nil
	}

	if Expired(token, s.now()) {
		s.logger.Info("stored session expired")
		s.Logout()
		return nil
	}

	if err := s.load(ctx, token); err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			s.api.SetToken("")
			return err
		}
		s.logger.Warn("could not restore session", "error", err)
		s.Logout()
	}
	return nil
}

// load installs token, fetches the profile and then the saved recipe ids.
func (s *Store) load(ctx context.Context, token string) error {
	s.api.SetToken(token)

	user, err := s.api.Me(ctx)
	if err != nil {
		return err
	}

	ids, count, err := s.fetchSaved(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("could not fetch saved recipes", "error", err)
		ids, count = nil, 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.token = token
	s.saved = make(map[int]struct{}, len(ids))
	for _, id := range ids {
		s.saved[id] = struct{}{}
	}
	s.savedCount = count
	return nil
}

// fetchSaved pages through the saved list until total_count ids are collected.
func (s *Store) fetchSaved(ctx context.Context) ([]int, int, error) {
	var ids []int
	total := 0
	for skip := 0; ; skip += savedPageSize {
		page, err := s.api.SavedRecipes(ctx, skip, savedPageSize)
		if err != nil {
			return nil, 0, err
		}
		total = page.TotalCount
		ids = append(ids, models.IDs(page.Recipes)...)
		if len(page.Recipes) == 0 || len(ids) >= total {
			break
		}
	}
	return ids, total, nil
}

// Login exchanges credentials for a token, persists it and loads the profile.
func (s *Store) Login(ctx context.Context, username, password string) error {
	if err := ValidateLogin(username, password); err != nil {
		return err
	}

	tok, err := s.api.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &Failure{Message: api.Message(err, LoginFallback), Err: err}
	}

	if s.tokens != nil {
		if err := s.tokens.Save(tok.AccessToken, username); err != nil {
			s.logger.Warn("could not persist session", "error", err)
		}
	}

	if err := s.load(ctx, tok.AccessToken); err != nil {
		s.Logout()
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &Failure{Message: api.Message(err, LoginFallback), Err: err}
	}
	s.logger.Info("logged in", "username", username)
	return nil
}

// Signup creates an account. It does not log in.
func (s *Store) Signup(ctx context.Context, form SignupForm) error {
	if err := form.Validate(); err != nil {
		return err
	}

	if _, err := s.api.Signup(ctx, strings.TrimSpace(form.Username), form.Password); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &Failure{Message: api.Message(err, SignupFallback), Err: err}
	}
	return nil
}

// Logout forgets the session locally and in the token store.
func (s *Store) Logout() {
	if s.tokens != nil {
		if err := s.tokens.Clear(); err != nil {
			s.logger.Warn("could not clear stored session", "error", err)
		}
	}
	s.reset()
}

func (s *Store) reset() {
	s.api.SetToken("")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	s.saved = make(map[int]struct{})
	s.savedCount = 0
}

// ToggleSave saves or unsaves a recipe and returns whether it is now saved.
// The local set only changes once the backend confirms.
func (s *Store) ToggleSave(ctx context.Context, id int) (bool, error) {
	if !s.Authenticated() {
		return false, fmt.Errorf("%w: login to save recipes", shared.ErrNotAuthenticated)
	}

	wasSaved := s.IsSaved(id)
	var err error
	if wasSaved {
		err = s.api.UnsaveRecipe(ctx, id)
	} else {
		err = s.api.SaveRecipe(ctx, id)
	}
	if err != nil {
		s.HandleError(err)
		return wasSaved, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if wasSaved {
		delete(s.saved, id)
		s.savedCount = max(0, s.savedCount-1)
	} else {
		s.saved[id] = struct{}{}
		s.savedCount++
	}
	return !wasSaved, nil
}

// HandleError logs out when err is an auth failure and reports whether it did.
func (s *Store) HandleError(err error) bool {
	if !api.IsAuthFailure(err) {
		return false
	}
	if s.Authenticated() {
		s.logger.Info("session rejected by backend, logging out")
	}
	s.Logout()
	return true
}

// IsSaved reports whether the user saved recipe id.
func (s *Store) IsSaved(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.saved[id]
	return ok
}

// SavedCount is the backend's saved total adjusted by local toggles.
func (s *Store) SavedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.savedCount
}

// User returns a copy of the signed-in user, or nil.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin
}

// Snapshot copies the current state. SavedIDs is sorted.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := State{Token: s.token, SavedCount: s.savedCount, SavedIDs: make([]int, 0, len(s.saved))}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	for id := range s.saved {
		st.SavedIDs = append(st.SavedIDs, id)
	}
	sort.Ints(st.SavedIDs)
	return st
}

// Expired reports whether token is a JWT whose exp claim is before now. Tokens that cannot be
// parsed are left for the backend to judge.
func Expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(now)
}
