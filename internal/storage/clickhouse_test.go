package storage

import (
	"context"
	"testing"

	"github.com/ijiraq/MainBeltComets/internal/mpc"
)

// setupTestClickHouse returns nil if no ClickHouse server is
// available.
func setupTestClickHouse(t *testing.T) *ClickHouseDB {
	t.Helper()

	ctx := context.Background()
	ch, err := OpenClickHouse(ctx, DefaultConfig().ClickHouse)
	if err != nil {
		return nil
	}
	if err := ch.CreateSchema(ctx); err != nil {
		_ = ch.Close()
		return nil
	}
	return ch
}

func TestClickHouseInsertObservations(t *testing.T) {
	ch := setupTestClickHouse(t)
	if ch == nil {
		t.Skip("No ClickHouse connection available")
	}
	defer ch.Close()

	ctx := context.Background()
	obs, _, err := mpc.ParseObservation(testLine)
	if err != nil || obs == nil {
		t.Fatalf("parse: %v", err)
	}

	batch := []InsertParams{
		ParamsFromObservation(obs, testLine),
		ParamsFromObservation(obs, testLine),
	}
	if err := ch.InsertObservations(ctx, batch); err != nil {
		t.Fatalf("insert batch failed: %v", err)
	}

	counts, err := ch.CountByObservatory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts["568"] == 0 {
		t.Error("counts[568] = 0, want at least the inserted rows")
	}

	if _, err := ch.CountByObject(ctx, 10); err != nil {
		t.Fatal(err)
	}
}
