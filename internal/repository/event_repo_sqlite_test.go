package repository_test

import (
	"context"
	"testing"
	"time"

	"vacuum_bridge/internal/models"
	"vacuum_bridge/internal/repository"
	"vacuum_bridge/internal/repository/db"
)

func TestEventSQLite_RoundTripInMemory(t *testing.T) {
	conn, err := db.InitDB(":memory:")
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	defer func() { _ = conn.Close() }()

	repo := repository.NewEventSQLite(conn)
	ctx := context.Background()
	base := time.Date(2025, 4, 18, 12, 0, 0, 0, time.UTC)

	events := []models.FleetEvent{
		{OccurredAt: base, Type: models.EventAlarmTransition, Description: "Alarm ARMED_AWAY"},
		{OccurredAt: base.Add(time.Minute), Type: models.EventStart, DeviceID: "a", Description: "Started"},
		{OccurredAt: base.Add(2 * time.Minute), Type: models.EventStart, DeviceID: "b", Description: "Started"},
	}
	for _, e := range events {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := repo.List(ctx, repository.EventQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].Type != models.EventAlarmTransition {
		t.Fatalf("unexpected events: %+v", all)
	}

	starts, err := repo.List(ctx, repository.EventQuery{Type: "start", DeviceID: "b"})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(starts) != 1 || starts[0].DeviceID != "b" {
		t.Fatalf("unexpected filtered events: %+v", starts)
	}
	if !starts[0].OccurredAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("occurred_at round trip: got %v", starts[0].OccurredAt)
	}
}
