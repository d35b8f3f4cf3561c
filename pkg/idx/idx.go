package idx

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a 32 character lowercase hex identifier. Game clients expect account,
// client and session ids in this form, so every id is the hex encoding of a
// monotonic ULID and sorts by creation time.
type ID string

// Zero represents the zero value ID. Sessions created by the
// client_credentials grant carry it as their account id.
const Zero ID = ""

const (
	SizeBytes = 16
	SizeHex   = SizeBytes * 2
)

// ErrInvalid reports a malformed id string.
var ErrInvalid = errors.New("idx: invalid id")

// entropy is shared by every id minted in the process. Monotonic entropy is
// not safe for concurrent use, hence mu.
var (
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
)

// New returns an id stamped with the current UTC time.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt returns an id stamped with t. Ids minted within the same millisecond
// still sort in the order they were created.
func NewAt(t time.Time) ID {
	mu.Lock()
	defer mu.Unlock()

	if entropy == nil {
		entropy = ulid.Monotonic(rand.Reader, 0)
	}
	u := ulid.MustNew(ulid.Timestamp(t), entropy)
	return ID(hex.EncodeToString(u[:]))
}

// Parse validates s and returns it as an ID. Upper case hex is accepted and
// folded to lower case.
func Parse(s string) (ID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != SizeHex {
		return Zero, ErrInvalid
	}
	if _, err := hex.DecodeString(s); err != nil {
		return Zero, ErrInvalid
	}
	return ID(s), nil
}

// MustParse parses or panics. Useful for hard-coded IDs in tests and for the
// well-known client ids.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether id is the zero value.
func (id ID) IsZero() bool { return id == Zero }

// String returns the canonical string form.
func (id ID) String() string { return string(id) }

// Time extracts the embedded UTC timestamp from the ID. Ids that were not
// minted by this package (well-known client ids, for instance) decode to
// whatever their leading bytes say, zero ids yield the zero time.
func (id ID) Time() time.Time {
	if id.IsZero() {
		return time.Time{}
	}

	b, err := hex.DecodeString(id.String())
	if err != nil || len(b) != SizeBytes {
		return time.Time{}
	}

	var u ulid.ULID
	copy(u[:], b)
	return ulid.Time(u.Time())
}

// Compare reports the lexical ordering between a and b.
func Compare(a, b ID) int {
	return strings.Compare(a.String(), b.String())
}
