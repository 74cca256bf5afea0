// Package types provides common types used across the staking ledger.
package types

import "time"

// Entity is the base type for persisted records with wall-clock timestamps.
// These are bookkeeping times only; ledger semantics run on the logical
// clock, never on Entity fields.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntity creates an Entity with current timestamps.
func NewEntity() Entity {
	now := time.Now().UTC()
	return Entity{CreatedAt: now, UpdatedAt: now}
}

// Touch updates the UpdatedAt timestamp to now.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}
