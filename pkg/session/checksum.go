package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	jsoniter "github.com/json-iterator/go"
)

// Checksum is a digest of a session's id, cookie attributes and data.
// A session is dirty when its current checksum differs from the one recorded
// at its last successful write.
type Checksum uint64

// canonical encodes map keys in sorted order, which keeps the digest
// independent of map iteration order.
var canonical = jsoniter.ConfigCompatibleWithStandardLibrary

// checksumFields lists what the checksum covers. LastActivity is left out:
// resuming a session must not make it dirty.
type checksumFields struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Lifetime   time.Time      `json:"lifetime"`
	MaximumAge time.Duration  `json:"maximumAge"`
	Domain     string         `json:"domain"`
	Path       string         `json:"path"`
	Secure     bool           `json:"secure"`
	HTTPOnly   bool           `json:"httpOnly"`
	Data       map[string]any `json:"data"`
}

// Checksum digests the record. It never fails: values the canonical encoder
// rejects (channels, functions, NaN) fall back to their fmt representation.
func (r Record) Checksum() Checksum {
	fields := checksumFields{
		ID:         r.ID,
		Name:       r.Name,
		Lifetime:   r.Lifetime.UTC(),
		MaximumAge: r.MaximumAge,
		Domain:     r.Domain,
		Path:       r.Path,
		Secure:     r.Secure,
		HTTPOnly:   r.HTTPOnly,
		Data:       r.Data,
	}

	h := xxhash.New()
	if err := canonical.NewEncoder(h).Encode(fields); err == nil {
		return Checksum(h.Sum64())
	}

	h.Reset()
	fields.Data = nil
	_ = canonical.NewEncoder(h).Encode(fields)

	keys := make([]string, 0, len(r.Data))
	for k := range r.Data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(h, "%q=%#v;", k, r.Data[k])
	}

	return Checksum(h.Sum64())
}
