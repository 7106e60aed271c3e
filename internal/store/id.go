package store

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	idEntropyMu sync.Mutex
	idEntropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewID returns a lexically sortable ULID string.
func NewID() string {
	return newIDAt(time.Now())
}

// NewPrefixedID is used for handles that are shown to clients, e.g. "conn_01J...".
func NewPrefixedID(prefix string) string {
	return prefix + "_" + newIDAt(time.Now())
}

func newIDAt(t time.Time) string {
	idEntropyMu.Lock()
	defer idEntropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), idEntropy).String()
}
