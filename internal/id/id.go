// Package id generates payment identities.
package id

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// New returns a fresh opaque payment identity. UUIDv4 is preferred; if
// random generation fails, a timestamp plus pseudo-random suffix keeps
// identities unique enough for a single-user store.
func New() string {
	u, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("p-%d-%x", time.Now().UnixNano(), rand.Int63())
	}
	return u.String()
}
