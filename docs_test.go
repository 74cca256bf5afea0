package stakeledger_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/xraph/stakeledger"
	"github.com/xraph/stakeledger/oracle"
	"github.com/xraph/stakeledger/store/memory"
	"github.com/xraph/stakeledger/token"
	"github.com/xraph/stakeledger/types"
)

// TestDocumentationExamples verifies that the examples in the package
// documentation compile and run.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create store (memory for demo, use PostgreSQL in production)
		store := memory.New()
		bank := token.NewMemory()

		l := stakeledger.New(store,
			stakeledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			stakeledger.WithToken(bank),
			stakeledger.WithOracle(oracle.NewFixed(stakeledger.One())),
			stakeledger.WithAdmin("admin"),
		)

		ctx := context.Background()
		if err := l.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer l.Stop()

		// Bind a referrer, then stake
		bank.Credit("alice", stakeledger.FromUnits(1000))
		if err := l.BindReferrer(ctx, "alice", "root"); err != nil {
			t.Fatal(err)
		}
		if _, err := l.Stake(ctx, "alice", stakeledger.FromUnits(1000)); err != nil {
			t.Fatal(err)
		}

		info, err := l.GetUserInfo(ctx, "alice")
		if err != nil {
			t.Fatal(err)
		}
		if !info.TotalStaked.Equal(stakeledger.FromUnits(1000)) {
			t.Errorf("TotalStaked: got %s", info.TotalStaked.String())
		}
	})

	t.Run("AmountExamples", func(t *testing.T) {
		// Constructors
		_ = types.FromUnits(1000)       // 1000.0
		_ = types.FromFraction(9, 1000) // a 0.9% rate
		_ = types.Zero()

		// Arithmetic
		a := types.FromUnits(1000)
		rate := types.FromFraction(9, 1000)
		yield := a.MulRate(rate) // 9.0

		// Comparison
		if yield.GreaterThan(a) {
			t.Error("yield exceeds principal")
		}

		// Formatting
		if yield.String() != "9" {
			t.Errorf("String: got %s", yield.String())
		}
		if rate.String() != "0.009" {
			t.Errorf("String: got %s", rate.String())
		}
	})

	t.Run("LPOracleExample", func(t *testing.T) {
		bank := token.NewMemory()
		bank.SetReserves(types.FromUnits(1000), types.FromUnits(2000))

		lp := oracle.NewLP(bank)
		price, err := lp.CurrentPrice(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		// 2000 token / 1000 currency = 2.0
		if !price.Equal(types.FromFraction(2, 1)) {
			t.Errorf("LP price: got %s, want 2", price.String())
		}
	})
}
