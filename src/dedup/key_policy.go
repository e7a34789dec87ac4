package dedup

import (
	"fmt"
	"strings"
	"time"

	"papertrader/src/model"
	"papertrader/src/utils"
)

type KeyMode string

const (
	// KeyWindow keys on the explicit dedup key, or the token, and relies on
	// the set's window for expiry.
	KeyWindow KeyMode = "window"
	// KeyBucket appends the start of the time bucket the signal arrived in.
	KeyBucket KeyMode = "bucket"
)

type KeyPolicy struct {
	Mode   KeyMode
	Bucket time.Duration
}

// Key derives the dedup key for sig received at now.
func (p KeyPolicy) Key(sig model.Signal, now time.Time) string {
	base := strings.TrimSpace(sig.DedupKey)
	if base == "" {
		base = strings.ToLower(strings.TrimSpace(sig.TokenID))
	}
	if p.Mode != KeyBucket || p.Bucket <= 0 {
		return base
	}
	return fmt.Sprintf("%s@%d", base, utils.BucketStart(now, p.Bucket).Unix())
}
