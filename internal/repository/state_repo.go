package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"thermal_regulator/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	controllerStateRowID = 1

	insertOrUpdateStateSQL = `
		INSERT INTO controller_state (id, mode, reading_c, sensor_ok, target_c, heater, position, entered_at, entering, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			mode=excluded.mode,
			reading_c=excluded.reading_c,
			sensor_ok=excluded.sensor_ok,
			target_c=excluded.target_c,
			heater=excluded.heater,
			position=excluded.position,
			entered_at=excluded.entered_at,
			entering=excluded.entering,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT mode, reading_c, sensor_ok, target_c, heater, position, entered_at, entering, updated_at
		FROM controller_state WHERE id=?
	`
)

// utcOrNow returns t in UTC, or the current UTC time when t is zero.
func utcOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// Save upserts the single controller_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, s models.ControllerSnapshot) error {
	_, err := r.db.ExecContext(ctx, insertOrUpdateStateSQL,
		controllerStateRowID,
		s.Mode.String(),
		s.ReadingC,
		s.SensorOK,
		int(s.TargetC),
		s.Outputs.HeaterEnabled,
		s.Outputs.Position,
		utcOrNow(s.EnteredAt),
		s.Entering,
		utcOrNow(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save controller state: %w", err)
	}
	return nil
}

// Load fetches the stored snapshot. A zero snapshot (UpdatedAt.IsZero) means nothing was saved yet.
func (r *StateSQLite) Load(ctx context.Context) (models.ControllerSnapshot, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, controllerStateRowID)

	var (
		s      models.ControllerSnapshot
		mode   string
		target int
	)
	if err := row.Scan(
		&mode,
		&s.ReadingC,
		&s.SensorOK,
		&target,
		&s.Outputs.HeaterEnabled,
		&s.Outputs.Position,
		&s.EnteredAt,
		&s.Entering,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ControllerSnapshot{}, nil
		}
		return models.ControllerSnapshot{}, fmt.Errorf("load controller state: %w", err)
	}

	m, err := models.ParseControlMode(mode)
	if err != nil {
		return models.ControllerSnapshot{}, fmt.Errorf("load controller state: %w", err)
	}
	s.Mode = m
	s.TargetC = models.SetpointCommand(target)
	s.EnteredAt = s.EnteredAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
