package session

import (
	"bytes"
	"encoding/json"
)

// Bundle is the unit persisted in the slot
type Bundle struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         json.RawMessage `json:"user"`
	Roles        []string        `json:"roles"`
	Timestamp    int64           `json:"timestamp"` // epoch milliseconds
}

// Tokens is the token pair of a bundle
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Valid reports whether both the access token and the user are present
func (b *Bundle) Valid() bool {
	return b != nil && b.AccessToken != "" && hasUser(b.User)
}

// hasUser rejects a missing user and the falsy literals null, false, 0
// and "".
func hasUser(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	}
	return true
}

// NormalizeRoles turns whatever the login response carried into a clean
// slice: a single role is wrapped, nil, empty and non-string entries are
// dropped, and the result is never nil.
func NormalizeRoles(v any) []string {
	roles := []string{}

	add := func(r any) {
		switch r := r.(type) {
		case nil:
		case string:
			if r != "" {
				roles = append(roles, r)
			}
		case *string:
			if r != nil && *r != "" {
				roles = append(roles, *r)
			}
		}
	}

	switch v := v.(type) {
	case []string:
		for _, r := range v {
			add(r)
		}
	case []*string:
		for _, r := range v {
			add(r)
		}
	case []any:
		for _, r := range v {
			add(r)
		}
	default:
		add(v)
	}
	return roles
}
