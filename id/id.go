// Package id defines TypeID-based identity types for ledger records.
//
// Reward records, withdrawal records and genesis-node applications use a
// single ID struct with a prefix identifying the record type. IDs are
// K-sortable (UUIDv7-based), globally unique and URL-safe in the format
// "prefix_suffix". Order ids are deliberately NOT TypeIDs: orders carry a
// monotonically assigned uint64 sequence owned by the store.
package id

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the record type encoded in a TypeID.
type Prefix string

// Prefix constants for all record types.
const (
	PrefixReward      Prefix = "rwd" // Reward record
	PrefixWithdrawal  Prefix = "wdr" // Withdrawal record
	PrefixApplication Prefix = "gna" // Genesis-node application
)

// ID is the identifier type for append-only ledger records.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receiver for UnmarshalText.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix.
// It panics if prefix is not a valid TypeID prefix (programming error).
func New(prefix Prefix) ID {
	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}
	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g. "rwd_01h2xcejqtf2nbrexx3vqjhp41").
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}
	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates its prefix.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}
	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}
	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}
	return parsed
}

// RewardID is a type-safe identifier for reward records (prefix "rwd").
type RewardID = ID

// WithdrawalID is a type-safe identifier for withdrawal records (prefix "wdr").
type WithdrawalID = ID

// ApplicationID is a type-safe identifier for genesis applications (prefix "gna").
type ApplicationID = ID

// NewRewardID generates a new unique reward-record ID.
func NewRewardID() ID { return New(PrefixReward) }

// NewWithdrawalID generates a new unique withdrawal-record ID.
func NewWithdrawalID() ID { return New(PrefixWithdrawal) }

// NewApplicationID generates a new unique genesis-application ID.
func NewApplicationID() ID { return New(PrefixApplication) }

// ParseRewardID parses a string and validates the "rwd" prefix.
func ParseRewardID(s string) (ID, error) { return ParseWithPrefix(s, PrefixReward) }

// ParseWithdrawalID parses a string and validates the "wdr" prefix.
func ParseWithdrawalID(s string) (ID, error) { return ParseWithPrefix(s, PrefixWithdrawal) }

// ParseApplicationID parses a string and validates the "gna" prefix.
func ParseApplicationID(s string) (ID, error) { return ParseWithPrefix(s, PrefixApplication) }

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}
	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}
	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool { return !i.valid }

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}
	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
