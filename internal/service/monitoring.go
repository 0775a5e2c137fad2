package service

import (
	"context"
	"time"

	"thermal_regulator/internal/models"
	"thermal_regulator/internal/repository"
)

type MonitoringService struct {
	stateRepo repository.StateRepo
	live      LiveState
}

func NewMonitoringService(stateRepo repository.StateRepo, live LiveState) *MonitoringService {
	return &MonitoringService{stateRepo: stateRepo, live: live}
}

// GetState returns the loop's live snapshot. Without a loop (tests, offline tools reading the
// database) it returns the last persisted snapshot, or a baseline Idle one if nothing is stored.
func (s *MonitoringService) GetState(ctx context.Context) (models.ControllerSnapshot, error) {
	if s.live != nil {
		snap := s.live.Snapshot()
		snap.EnteredAt = toUTC(snap.EnteredAt)
		snap.UpdatedAt = toUTC(snap.UpdatedAt)
		return snap, nil
	}

	snap, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.ControllerSnapshot{}, err
	}
	if snap.UpdatedAt.IsZero() {
		return s.baselineState(), nil
	}
	snap.EnteredAt = toUTC(snap.EnteredAt)
	snap.UpdatedAt = toUTC(snap.UpdatedAt)
	return snap, nil
}

// baselineState is reported before the loop has persisted anything.
func (s *MonitoringService) baselineState() models.ControllerSnapshot {
	now := time.Now().UTC()
	return models.ControllerSnapshot{
		Mode:      models.ModeIdle,
		TargetC:   models.NoTarget,
		Outputs:   models.Off,
		EnteredAt: now,
		UpdatedAt: now,
	}
}
