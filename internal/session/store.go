package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/placeboard/placeboard/internal/crypto"
	"github.com/placeboard/placeboard/internal/storage"
)

// SlotKey is the storage slot holding the encrypted bundle.
const SlotKey = "auth_data"

var (
	// ErrNoSession means the slot is empty.
	ErrNoSession = errors.New("no session")

	// ErrCorrupt means the slot could not be decrypted or parsed.
	ErrCorrupt = errors.New("session corrupt")

	// ErrInvalidBundle means the slot parsed but lacks a token or user.
	ErrInvalidBundle = errors.New("session bundle invalid")
)

// Store is the only reader and writer of the session slot
type Store struct {
	slots  storage.Slots
	cipher crypto.Cipher
	key    string
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Store
type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSlotKey overrides SlotKey
func WithSlotKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func New(slots storage.Slots, c crypto.Cipher, opts ...Option) *Store {
	s := &Store{
		slots:  slots,
		cipher: c,
		key:    SlotKey,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save replaces the stored bundle. It reports false if the bundle could
// not be encoded, encrypted or written.
func (s *Store) Save(accessToken, refreshToken string, user any, roles any) bool {
	if err := s.save(accessToken, refreshToken, user, roles); err != nil {
		s.logger.Error().Err(err).Str("slot", s.key).Msg("Failed to save session")
		return false
	}
	return true
}

func (s *Store) save(accessToken, refreshToken string, user any, roles any) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	b := Bundle{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         rawUser,
		Roles:        NormalizeRoles(roles),
		Timestamp:    s.now().UnixMilli(),
	}

	plain, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}

	sealed, err := s.cipher.Encrypt(string(plain))
	if err != nil {
		return fmt.Errorf("failed to encrypt bundle: %w", err)
	}

	if err := s.slots.Set(s.key, sealed); err != nil {
		return fmt.Errorf("failed to write slot: %w", err)
	}
	return nil
}

// Load returns the stored bundle, or nil when there is none or it is
// unreadable. An invalid bundle is purged before returning nil.
func (s *Store) Load() *Bundle {
	b, err := s.Inspect()
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			s.logger.Warn().Err(err).Str("slot", s.key).Msg("Discarding stored session")
		}
		return nil
	}
	return b
}

// Inspect is Load with the reason for a missing session: ErrNoSession,
// ErrCorrupt, ErrInvalidBundle or a storage error. It purges invalid
// bundles the same way Load does.
func (s *Store) Inspect() (*Bundle, error) {
	sealed, err := s.slots.Get(s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}

	plain, err := s.cipher.Decrypt(sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var b Bundle
	if err := json.Unmarshal([]byte(plain), &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if !b.Valid() {
		if err := s.slots.Remove(s.key); err != nil {
			s.logger.Error().Err(err).Str("slot", s.key).Msg("Failed to purge invalid session")
		}
		return nil, ErrInvalidBundle
	}

	if b.Roles == nil {
		b.Roles = []string{}
	}
	return &b, nil
}

// Tokens returns the stored token pair
func (s *Store) Tokens() *Tokens {
	b := s.Load()
	if b == nil {
		return nil
	}
	return &Tokens{AccessToken: b.AccessToken, RefreshToken: b.RefreshToken}
}

func (s *Store) AccessToken() string {
	if b := s.Load(); b != nil {
		return b.AccessToken
	}
	return ""
}

func (s *Store) RefreshToken() string {
	if b := s.Load(); b != nil {
		return b.RefreshToken
	}
	return ""
}

// Roles returns the stored roles, empty when signed out
func (s *Store) Roles() []string {
	if b := s.Load(); b != nil {
		return b.Roles
	}
	return []string{}
}

// HasRole reports whether the stored roles include role
func (s *Store) HasRole(role string) bool {
	return slices.Contains(s.Roles(), role)
}

// User returns the stored user record as raw JSON, nil when signed out
func (s *Store) User() json.RawMessage {
	if b := s.Load(); b != nil {
		return b.User
	}
	return nil
}

// DecodeUser unmarshals the stored user into v
func (s *Store) DecodeUser(v any) bool {
	raw := s.User()
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to decode stored user")
		return false
	}
	return true
}

// Clear removes the slot. It reports false if storage refused.
func (s *Store) Clear() bool {
	if err := s.slots.Remove(s.key); err != nil {
		s.logger.Error().Err(err).Str("slot", s.key).Msg("Failed to clear session")
		return false
	}
	return true
}

// IsAuthenticated reports whether a valid bundle is stored
func (s *Store) IsAuthenticated() bool {
	return s.Load().Valid()
}
