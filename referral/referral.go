// Package referral implements the upline forest rules: each user binds to
// exactly one referrer at most once, edges only ever point at accounts that
// already exist, and ancestor walks are depth-bounded. Because an edge is
// added once and only toward an existing node, no node can become its own
// ancestor and the structure stays a forest by construction.
package referral

import "errors"

// Bind rule violations. The engine maps these onto its public taxonomy.
var (
	ErrAlreadyBound  = errors.New("referral: user already has a referrer")
	ErrSelfReferral  = errors.New("referral: user cannot refer themselves")
	ErrNotRegistered = errors.New("referral: referrer has never interacted")
)

// ValidateBind checks the bind(user, referrer) preconditions.
// root is the sentinel id representing "no upline" and is always valid;
// referrerExists reports whether the referrer account is already known.
func ValidateBind(user, referrer, root, currentReferrer string, referrerExists bool) error {
	if currentReferrer != "" {
		return ErrAlreadyBound
	}
	if referrer == user {
		return ErrSelfReferral
	}
	if referrer != root && !referrerExists {
		return ErrNotRegistered
	}
	return nil
}

// Resolver looks up the referrer of an account. Empty string means the walk
// is over (unbound account or the root sentinel).
type Resolver func(addr string) (referrer string, err error)

// WalkUp visits the ancestor chain of addr, nearest first, calling visit for
// each ancestor that is neither empty nor the root sentinel. The walk stops
// after maxDepth hops, when the chain ends, or when visit returns false.
func WalkUp(addr, root string, maxDepth int, resolve Resolver, visit func(ancestor string, depth int) (bool, error)) error {
	current := addr
	for depth := 1; depth <= maxDepth; depth++ {
		parent, err := resolve(current)
		if err != nil {
			return err
		}
		if parent == "" || parent == root {
			return nil
		}
		ok, err := visit(parent, depth)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		current = parent
	}
	return nil
}
