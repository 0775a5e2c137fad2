package service

import (
	"context"
	"time"

	"thermal_regulator/internal/config"
	"thermal_regulator/internal/keypad"
	"thermal_regulator/internal/models"
	"thermal_regulator/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Setpoint forwards remote operator input to the control loop through the key queue.
type Setpoint interface {
	PressKeys(ctx context.Context, keys string) error
	SetTarget(ctx context.Context, target int) error
	Cancel(ctx context.Context) error
}

// Monitoring exposes the read-only controller snapshot.
type Monitoring interface {
	GetState(ctx context.Context) (models.ControllerSnapshot, error)
}

// EventLog exposes the append-only controller event log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ControllerEvent, error)
}

// LiveState is the loop's published snapshot.
type LiveState interface {
	Snapshot() models.ControllerSnapshot
}

// Deps carries the non-repository collaborators.
type Deps struct {
	Keys *keypad.Queue
	// Live is the running loop. cmd/main.go always sets it; a nil Live makes Monitoring read the
	// state repo, which serves tests and tools that open the database without a loop.
	Live LiveState
	Auth config.AuthConfig
}

type Service struct {
	Setpoint
	Monitoring
	EventLog
	Authorization
}

func NewService(repos *repository.Repository, d Deps) *Service {
	return &Service{
		Setpoint:      NewSetpointService(d.Keys),
		Monitoring:    NewMonitoringService(repos.StateRepo, d.Live),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, d.Auth.SigningKey, d.Auth.TokenTTL),
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
