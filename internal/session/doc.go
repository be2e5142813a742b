// Package session persists the signed-in user's authentication bundle
// (tokens, profile, roles) in a single encrypted storage slot.
//
// The Store never returns errors to its callers. Failures are logged and
// reported as nil or false, which callers treat as "signed out". A slot
// that decrypts but does not hold a valid bundle is removed the next time
// it is loaded.
package session
