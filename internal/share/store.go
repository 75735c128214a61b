// Package share stores article snapshots under short opaque IDs used to build
// public share links.
package share

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrNotFound is returned when a share ID does not exist.
var ErrNotFound = errors.New("shared article not found")

// idLength is the number of hex characters in a share ID.
const idLength = 12

// maxIDAttempts bounds the collision retry loop in Create.
const maxIDAttempts = 5

// Record is a stored article snapshot with its view counter.
type Record struct {
	Article   json.RawMessage `json:"article"`
	CreatedAt time.Time       `json:"created_at"`
	Views     int64           `json:"views"`
}

// Store is the share-link storage contract. Get increments the view counter
// as a side effect of a successful read.
type Store interface {
	Create(article json.RawMessage, articleURL string) (string, error)
	Get(id string) (*Record, error)
	Close() error
}

// newID derives a share ID from the article URL, current time, and a retry
// counter. Truncated to 12 hex characters; the attempt counter keeps retries
// from re-deriving a colliding ID.
func newID(articleURL string, now time.Time, attempt int) string {
	h := sha256.New()
	h.Write([]byte(articleURL))
	h.Write([]byte(strconv.FormatInt(now.UnixNano(), 10)))
	h.Write([]byte(strconv.Itoa(attempt)))
	return hex.EncodeToString(h.Sum(nil))[:idLength]
}

var errIDSpaceExhausted = fmt.Errorf("could not derive a unique share ID after %d attempts", maxIDAttempts)
