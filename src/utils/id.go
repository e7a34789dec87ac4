package utils

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// monotonic within the same millisecond
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// NewRecordID returns a time-sortable ULID for trade records.
func NewRecordID(at time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(at.UTC()), mono)
	if err != nil {
		// entropy exhausted within one millisecond; fall back to a fresh reader
		id = ulid.MustNew(ulid.Timestamp(at.UTC()), cryptoRand.Reader)
	}
	return id.String()
}

// NewPositionID returns an opaque unique position id.
func NewPositionID() string {
	return uuid.NewString()
}
