package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"thermal_regulator/internal/models"
	"thermal_regulator/internal/repository"
	"thermal_regulator/internal/repository/db"
)

func openTestDB(t *testing.T) *repository.Repository {
	t.Helper()
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "controller.db"))
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return repository.NewRepository(conn)
}

func TestSQLite_StateRoundTrip(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()

	empty, err := repos.StateRepo.Load(ctx)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if !empty.UpdatedAt.IsZero() {
		t.Fatalf("expected empty snapshot, got %+v", empty)
	}

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	want := models.ControllerSnapshot{
		ReadingC:  97.5,
		SensorOK:  true,
		TargetC:   100,
		Outputs:   models.ActuatorOutputs{HeaterEnabled: true, Position: 100},
		Mode:      models.ModeStabilizing,
		EnteredAt: at,
		UpdatedAt: at.Add(2 * time.Second),
	}
	if err := repos.StateRepo.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want.Mode = models.ModeTargetReached
	want.UpdatedAt = at.Add(7 * time.Second)
	if err := repos.StateRepo.Save(ctx, want); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}

	got, err := repos.StateRepo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Mode != models.ModeTargetReached || got.TargetC != 100 || got.Outputs != want.Outputs {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
	if !got.UpdatedAt.Equal(want.UpdatedAt) || !got.EnteredAt.Equal(at) {
		t.Fatalf("timestamps not preserved: entered=%v updated=%v", got.EnteredAt, got.UpdatedAt)
	}
}

func TestSQLite_EventsFilterByTypeAndRange(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, typ := range []string{models.EventControllerStarted, models.EventModeChange, models.EventOverheat, models.EventModeChange} {
		err := repos.EventRepo.Append(ctx, models.ControllerEvent{
			OccurredAt:  base.Add(time.Duration(i) * time.Second),
			Type:        typ,
			Description: typ,
			Metadata:    map[string]any{"i": i},
		})
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	all, err := repos.EventRepo.List(ctx, time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 4 || all[0].Type != models.EventControllerStarted {
		t.Fatalf("unexpected events: %+v", all)
	}

	changes, err := repos.EventRepo.List(ctx, base.Add(2*time.Second), time.Time{}, "mode_change")
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(changes) != 1 || !changes[0].OccurredAt.Equal(base.Add(3*time.Second)) {
		t.Fatalf("unexpected filtered events: %+v", changes)
	}
}

func TestSQLite_UsersUnique(t *testing.T) {
	repos := openTestDB(t)
	ctx := context.Background()

	id, err := repos.Auth.Create(ctx, "operator", "hash")
	if err != nil || id == 0 {
		t.Fatalf("Create: id=%d err=%v", id, err)
	}
	if _, err := repos.Auth.Create(ctx, "operator", "other"); !errors.Is(err, repository.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	u, err := repos.Auth.GetByUsername(ctx, "operator")
	if err != nil || u == nil || u.ID != id {
		t.Fatalf("GetByUsername: %+v %v", u, err)
	}
}
