package repository

import (
	"context"
	"database/sql"
	"time"

	"vacuum_bridge/internal/models"
)

// EventQuery filters journal reads. Zero values mean "no constraint".
type EventQuery struct {
	From     time.Time
	To       time.Time
	Type     string
	DeviceID string
	Limit    int
}

type EventRepo interface {
	Append(ctx context.Context, e models.FleetEvent) error
	List(ctx context.Context, q EventQuery) ([]models.FleetEvent, error)
}

type Repository struct {
	EventRepo EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
	}
}
