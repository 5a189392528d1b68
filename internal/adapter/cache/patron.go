// Package cache holds Redis read-through wrappers around collaborator
// lookups.
package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"loans-service/internal/domain/patron"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

const patronKeyPrefix = "loans:patron:"

// PatronDirectory caches found patrons for ttl. Misses, NotFound answers and
// Redis failures all go to the wrapped directory.
type PatronDirectory struct {
	next patron.Directory
	rdb  *redis.Client
	ttl  time.Duration
}

var _ patron.Directory = (*PatronDirectory)(nil)

// NewPatronDirectory returns next unchanged when caching is off.
func NewPatronDirectory(next patron.Directory, rdb *redis.Client, ttl time.Duration) patron.Directory {
	if rdb == nil || ttl <= 0 {
		return next
	}
	return &PatronDirectory{next: next, rdb: rdb, ttl: ttl}
}

func (d *PatronDirectory) GetByPatronID(ctx context.Context, patronID string) (*patron.Patron, error) {
	key := patronKeyPrefix + patronID

	raw, err := d.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p patron.Patron
		if jerr := jsonAPI.Unmarshal(raw, &p); jerr == nil {
			return &p, nil
		}
		log.Printf("patron cache: dropping corrupt entry %s", key)
		_ = d.rdb.Del(ctx, key).Err()
	case !errors.Is(err, redis.Nil):
		log.Printf("patron cache: get %s: %v", key, err)
	}

	p, err := d.next.GetByPatronID(ctx, patronID)
	if err != nil || p == nil {
		return p, err
	}
	if payload, jerr := jsonAPI.Marshal(p); jerr == nil {
		if serr := d.rdb.Set(ctx, key, payload, d.ttl).Err(); serr != nil {
			log.Printf("patron cache: set %s: %v", key, serr)
		}
	}
	return p, nil
}
