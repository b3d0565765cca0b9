// Package session owns the authenticated user: login and registration
// against the backend, and the locally persisted profile + bearer token
// that define "is a user logged in".
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/signify-health/signify-client/internal/gateway"
	"github.com/signify-health/signify-client/internal/models"
)

// KV is the slice of local storage the session layer needs.
type KV interface {
	Get(key string) (string, bool, error)
	SetMany(pairs map[string]string) error
	DeleteMany(keys ...string) error
}

// Gateway performs authenticated JSON round-trips.
type Gateway interface {
	JSON(ctx context.Context, method, endpoint string, body, out any) error
}

// Storage keys. Token and profile are always written and cleared
// together.
const (
	tokenKey  = "auth_token"
	userKey   = "auth_user"
	deviceKey = "device_id"
)

var (
	// ErrNotRegistered means the phone number has no backend record.
	// Callers are expected to route the user to registration; this is a
	// recoverable state, not a defect.
	ErrNotRegistered = errors.New("phone number not registered")

	// ErrPhoneRequired rejects a login or registration with no phone.
	ErrPhoneRequired = errors.New("phone number required")

	// ErrLocationRequired rejects a registration missing its location
	// triple.
	ErrLocationRequired = errors.New("country, district and sector are required")
)

// Store is the session store. Construct with NewStore; the zero value is
// not usable.
type Store struct {
	kv   KV
	gw   Gateway
	seal *Sealer
}

// Option configures a Store.
type Option func(*Store)

// WithSealer encrypts the persisted profile at rest.
func WithSealer(s *Sealer) Option {
	return func(st *Store) { st.seal = s }
}

// NewStore builds a session store over local storage and the gateway.
func NewStore(kv KV, gw Gateway, opts ...Option) *Store {
	st := &Store{kv: kv, gw: gw}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Login looks up the user by phone number and persists the session.
// Returns ErrNotRegistered when the backend has no record for the phone.
func (s *Store) Login(ctx context.Context, phone string) (*models.AuthUser, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	var user models.AuthUser
	err := s.gw.JSON(ctx, http.MethodGet, "/users/phone/"+url.PathEscape(phone), nil, &user)
	var httpErr *gateway.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
		return nil, ErrNotRegistered
	}
	if err != nil {
		return nil, err
	}
	if user.UserID == "" {
		// Empty 200/204 reply: the lookup succeeded but found nobody.
		return nil, ErrNotRegistered
	}
	if err := s.persist(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a new user record and persists the session. The
// location triple is mandatory; the display name is not.
func (s *Store) Register(ctx context.Context, reg models.RegisterUser) (*models.AuthUser, error) {
	reg.PhoneNumber = strings.TrimSpace(reg.PhoneNumber)
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Country = strings.TrimSpace(reg.Country)
	reg.District = strings.TrimSpace(reg.District)
	reg.Sector = strings.TrimSpace(reg.Sector)
	if reg.PhoneNumber == "" {
		return nil, ErrPhoneRequired
	}
	if reg.Country == "" || reg.District == "" || reg.Sector == "" {
		return nil, ErrLocationRequired
	}
	var user models.AuthUser
	if err := s.gw.JSON(ctx, http.MethodPost, "/users", reg, &user); err != nil {
		return nil, err
	}
	if err := s.persist(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// persist writes token and profile atomically. The backend issues no
// real credential yet, so the token is the user id; Tokens keeps that
// detail away from every other component.
func (s *Store) persist(user *models.AuthUser) error {
	profile, err := json.Marshal(user)
	if err != nil {
		return err
	}
	stored := string(profile)
	if s.seal != nil {
		stored, err = s.seal.Seal(profile)
		if err != nil {
			return err
		}
	}
	return s.kv.SetMany(map[string]string{
		tokenKey: user.UserID,
		userKey:  stored,
	})
}

// CurrentUser returns the persisted profile, or nil when none is stored
// or the stored data cannot be decoded. Corruption degrades to
// logged-out rather than failing.
func (s *Store) CurrentUser() *models.AuthUser {
	stored, ok, err := s.kv.Get(userKey)
	if err != nil || !ok {
		return nil
	}
	raw := []byte(stored)
	if s.seal != nil {
		raw, err = s.seal.Open(stored)
		if err != nil {
			log.Printf("session: unreadable stored profile: %v", err)
			return nil
		}
	}
	var user models.AuthUser
	if err := json.Unmarshal(raw, &user); err != nil {
		log.Printf("session: corrupt stored profile: %v", err)
		return nil
	}
	if user.UserID == "" {
		return nil
	}
	return &user
}

// IsAuthenticated reports whether a user is logged in.
func (s *Store) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// Logout clears the persisted session. Idempotent.
func (s *Store) Logout() error {
	return s.kv.DeleteMany(tokenKey, userKey)
}
