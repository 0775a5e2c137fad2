package repository

import (
	"context"
	"database/sql"
	"time"

	"thermal_regulator/internal/models"
)

type Authorization interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// StateRepo stores the latest controller snapshot for monitoring. It is never read back into the
// controller.
type StateRepo interface {
	Save(ctx context.Context, s models.ControllerSnapshot) error
	Load(ctx context.Context) (models.ControllerSnapshot, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.ControllerEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.ControllerEvent, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
