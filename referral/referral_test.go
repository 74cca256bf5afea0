package referral

import (
	"errors"
	"testing"
)

func TestValidateBind(t *testing.T) {
	tests := []struct {
		name            string
		user            string
		referrer        string
		currentReferrer string
		referrerExists  bool
		wantErr         error
	}{
		{"bind to root", "alice", "root", "", false, nil},
		{"bind to existing user", "alice", "bob", "", true, nil},
		{"already bound", "alice", "bob", "root", true, ErrAlreadyBound},
		{"already bound to root", "alice", "bob", "root", false, ErrAlreadyBound},
		{"self referral", "alice", "alice", "", false, ErrSelfReferral},
		{"unknown referrer", "alice", "ghost", "", false, ErrNotRegistered},
		{"root never needs to exist", "alice", "root", "", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBind(tt.user, tt.referrer, "root", tt.currentReferrer, tt.referrerExists)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// chainResolver resolves referrers from a fixed parent map.
func chainResolver(parents map[string]string) Resolver {
	return func(addr string) (string, error) {
		return parents[addr], nil
	}
}

func TestWalkUpVisitsNearestFirst(t *testing.T) {
	parents := map[string]string{
		"d": "c",
		"c": "b",
		"b": "a",
		"a": "root",
	}

	var visited []string
	err := WalkUp("d", "root", 10, chainResolver(parents),
		func(ancestor string, depth int) (bool, error) {
			visited = append(visited, ancestor)
			if depth != len(visited) {
				t.Errorf("depth %d at visit %d", depth, len(visited))
			}
			return true, nil
		})
	if err != nil {
		t.Fatalf("WalkUp failed: %v", err)
	}

	want := []string{"c", "b", "a"}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Errorf("visit %d: got %q, want %q", i, visited[i], want[i])
		}
	}
}

func TestWalkUpStopsAtRoot(t *testing.T) {
	parents := map[string]string{"b": "a", "a": "root"}

	count := 0
	err := WalkUp("b", "root", 10, chainResolver(parents),
		func(string, int) (bool, error) {
			count++
			return true, nil
		})
	if err != nil {
		t.Fatalf("WalkUp failed: %v", err)
	}
	if count != 1 {
		t.Errorf("visited %d ancestors, want 1 (root excluded)", count)
	}
}

func TestWalkUpStopsAtUnboundAccount(t *testing.T) {
	// "a" has no parent entry at all.
	parents := map[string]string{"b": "a"}

	count := 0
	if err := WalkUp("b", "root", 10, chainResolver(parents),
		func(string, int) (bool, error) {
			count++
			return true, nil
		}); err != nil {
		t.Fatalf("WalkUp failed: %v", err)
	}
	if count != 1 {
		t.Errorf("visited %d ancestors, want 1", count)
	}
}

func TestWalkUpDepthBound(t *testing.T) {
	// A long chain: u0 <- u1 <- ... <- u9.
	parents := map[string]string{}
	chain := []string{"u0", "u1", "u2", "u3", "u4", "u5", "u6", "u7", "u8", "u9"}
	for i := 1; i < len(chain); i++ {
		parents[chain[i]] = chain[i-1]
	}

	count := 0
	if err := WalkUp("u9", "root", 3, chainResolver(parents),
		func(string, int) (bool, error) {
			count++
			return true, nil
		}); err != nil {
		t.Fatalf("WalkUp failed: %v", err)
	}
	if count != 3 {
		t.Errorf("visited %d ancestors, want 3", count)
	}
}

func TestWalkUpVisitorCanStop(t *testing.T) {
	parents := map[string]string{"c": "b", "b": "a"}

	count := 0
	if err := WalkUp("c", "root", 10, chainResolver(parents),
		func(string, int) (bool, error) {
			count++
			return false, nil
		}); err != nil {
		t.Fatalf("WalkUp failed: %v", err)
	}
	if count != 1 {
		t.Errorf("visited %d ancestors after early stop, want 1", count)
	}
}

func TestWalkUpPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")

	err := WalkUp("b", "root", 10,
		func(string) (string, error) { return "", boom },
		func(string, int) (bool, error) { return true, nil })
	if !errors.Is(err, boom) {
		t.Errorf("resolver error not propagated: %v", err)
	}

	err = WalkUp("b", "root", 10,
		chainResolver(map[string]string{"b": "a"}),
		func(string, int) (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Errorf("visitor error not propagated: %v", err)
	}
}
