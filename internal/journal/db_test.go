package journal

import (
	"testing"
	"time"

	"polysim/internal/ledger"
)

func TestMigrate_CreatesAllTables(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	if err := Migrate(database); err != nil {
		t.Fatal(err)
	}

	tables := []string{
		"schema_version",
		"sim_trades",
		"bankroll_snapshots",
	}

	for _, table := range tables {
		row := database.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, table)
		var count int
		if err := row.Scan(&count); err != nil {
			t.Fatalf("checking table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("table %s not found", table)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	// Run twice — should not error.
	if err := Migrate(database); err != nil {
		t.Fatal(err)
	}
	if err := Migrate(database); err != nil {
		t.Fatal(err)
	}
}

func TestRecorder_TradeRoundTrip(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	if err := Migrate(database); err != nil {
		t.Fatal(err)
	}

	rec := NewRecorder(database)

	profit := 12.5
	trades := []ledger.Trade{
		{
			ID: "t1", MarketID: "m1", MarketTitle: "Test?", Timestamp: time.Now(),
			Action: "BUY", Outcome: "Yes", Price: 0.40, Size: 50,
			Strategy: "arbitrage", Reason: "entry",
		},
		{
			ID: "t2", MarketID: "m1", MarketTitle: "Test?", Timestamp: time.Now(),
			Action: "SELL", Outcome: "Yes", Price: 0.50, Size: 50,
			Strategy: "arbitrage", Reason: "exit", Profit: &profit,
		},
	}
	for _, trade := range trades {
		if err := rec.RecordTrade(trade); err != nil {
			t.Fatal(err)
		}
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM sim_trades`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 trades, got %d", count)
	}

	// Re-recording the same trade id is a no-op, not an error.
	if err := rec.RecordTrade(trades[0]); err != nil {
		t.Fatal(err)
	}
	if err := database.QueryRow(`SELECT COUNT(*) FROM sim_trades`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("duplicate insert changed row count to %d", count)
	}
}

func TestRecorder_BankrollSnapshot(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	if err := Migrate(database); err != nil {
		t.Fatal(err)
	}

	rec := NewRecorder(database)
	err = rec.SnapshotBankroll(ledger.Stats{
		Balance:          1900,
		RealizedProfit:   -50,
		UnrealizedProfit: 10,
		NetWorth:         1960,
		ActivePositions:  2,
	})
	if err != nil {
		t.Fatal(err)
	}

	var netWorth float64
	if err := database.QueryRow(`SELECT net_worth FROM bankroll_snapshots`).Scan(&netWorth); err != nil {
		t.Fatal(err)
	}
	if netWorth != 1960 {
		t.Errorf("expected net worth 1960, got %.2f", netWorth)
	}
}
