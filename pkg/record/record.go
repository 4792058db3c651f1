package record

import (
	"errors"
	"maps"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Record is the durable representation of a session: an opaque id, an
// arbitrary payload and its lifecycle timestamps. A zero ExpiresAt means the
// record never expires on its own.
type Record struct {
	SID       string         `msgpack:"sid"`
	Payload   map[string]any `msgpack:"payload"`
	CreatedAt time.Time      `msgpack:"created_at"`
	UpdatedAt time.Time      `msgpack:"updated_at"`
	ExpiresAt time.Time      `msgpack:"expires_at,omitempty"`
}

// New returns a fresh record for the given session id.
func New(sid string) *Record {
	now := time.Now()
	return &Record{
		SID:       sid,
		Payload:   make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Expired reports whether the record's expiry has passed. Expired records
// are filtered at read time; nothing sweeps them eagerly.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// TTL returns the remaining lifetime relative to now, or zero if the record
// has no expiry.
func (r *Record) TTL(now time.Time) time.Duration {
	if r.ExpiresAt.IsZero() {
		return 0
	}
	return r.ExpiresAt.Sub(now)
}

// Clone returns a deep copy so shared stores never hand out aliased payload
// maps.
func (r *Record) Clone() *Record {
	cp := *r
	if r.Payload != nil {
		cp.Payload = make(map[string]any, len(r.Payload))
		maps.Copy(cp.Payload, r.Payload)
	}
	return &cp
}

// Encode serializes the record into the compact binary form used by cache
// mirrors.
func (r *Record) Encode() ([]byte, error) {
	if r == nil {
		return nil, ErrNilRecord
	}
	return msgpack.Marshal(r)
}

// Decode deserializes a cache entry back into a record.
func Decode(data []byte) (*Record, error) {
	if len(data) == 0 {
		return nil, ErrNilRecord
	}

	var r Record
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.SID == "" {
		return nil, errors.Join(ErrEmptySID, errors.New("decoded record has no sid"))
	}
	if r.Payload == nil {
		r.Payload = make(map[string]any)
	}
	return &r, nil
}
