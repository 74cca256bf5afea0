package stakeledger

import "github.com/xraph/stakeledger/types"

// Re-export common types for convenience so users don't have to import types package.

// Amount is re-exported from types package.
type Amount = types.Amount

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Amount constructors
var (
	Zero         = types.Zero
	One          = types.One
	FromUnits    = types.FromUnits
	FromRaw      = types.FromRaw
	FromFraction = types.FromFraction
	Parse        = types.Parse
	MustParse    = types.MustParse
	Sum          = types.Sum
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
