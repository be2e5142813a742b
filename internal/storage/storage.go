// Package storage provides the durable key/value slots the session store
// persists into. Every backend stores opaque strings; encryption happens
// above this layer.
package storage

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/placeboard/placeboard/internal/config"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("slot not found")

// ErrUnreadable is returned by Get when the backing document cannot be
// parsed. Set and Remove overwrite such a document.
var ErrUnreadable = errors.New("storage document is unreadable")

// Slots is a key/value store over string keys and values. Remove on a
// missing key is not an error.
type Slots interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// Backend is a Slots implementation that owns resources.
type Backend interface {
	Slots
	Close() error
}

// Open builds the backend named by cfg.Backend
func Open(cfg config.SessionConfig) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemory(), nil
	case config.BackendFile:
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("file backend requires a path")
		}
		return NewFile(cfg.FilePath), nil
	case config.BackendKeyring:
		return NewKeyring(KeyringService), nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.DatabasePath)
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		return NewRedis(client, RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
