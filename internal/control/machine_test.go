package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"thermal_regulator/internal/models"
)

func TestNextMode_OverheatOverridesEverything(t *testing.T) {
	for _, mode := range models.Modes {
		for _, target := range []models.SetpointCommand{0, 40, 100, 125} {
			for _, reading := range []float64{125, 125.01, 150} {
				got := NextMode(Inputs{Reading: reading, Target: target, Mode: mode, Dwell: time.Hour})
				require.Equal(t, models.ModeOverheat, got, "mode=%s target=%d reading=%.2f", mode, target, reading)
				require.Equal(t, models.Off, DeriveOutputs(got, target, reading, models.ActuatorOutputs{HeaterEnabled: true, Position: 90}))
			}
		}
	}
}

func TestNextMode_NoTargetForcesIdle(t *testing.T) {
	for _, mode := range models.Modes {
		for _, reading := range []float64{-10, 0, 50, 124.9} {
			got := NextMode(Inputs{Reading: reading, Target: models.NoTarget, Mode: mode})
			require.Equal(t, models.ModeIdle, got)
			require.Equal(t, models.Off, DeriveOutputs(got, models.NoTarget, reading, models.ActuatorOutputs{HeaterEnabled: true, Position: 50}))
		}
	}
}

func TestNextMode_Table(t *testing.T) {
	const target models.SetpointCommand = 100

	tests := []struct {
		name    string
		mode    models.ControlMode
		reading float64
		dwell   time.Duration
		want    models.ControlMode
	}{
		{"idle below band heats", models.ModeIdle, 80, 0, models.ModeHeating},
		{"idle at target reaches", models.ModeIdle, 97, 0, models.ModeTargetReached},
		{"idle lower band edge counts as at target", models.ModeIdle, 96, 0, models.ModeTargetReached},
		{"heating below band stays", models.ModeHeating, 90, time.Minute, models.ModeHeating},
		{"heating at target stabilizes", models.ModeHeating, 98, 0, models.ModeStabilizing},
		{"stabilizing short dwell stays", models.ModeStabilizing, 100, 4999 * time.Millisecond, models.ModeStabilizing},
		{"stabilizing full dwell reaches", models.ModeStabilizing, 100, 5 * time.Second, models.ModeTargetReached},
		{"stabilizing drops below band heats", models.ModeStabilizing, 95, 10 * time.Second, models.ModeHeating},
		{"reached stays inside band", models.ModeTargetReached, 96, 0, models.ModeTargetReached},
		{"reached below band heats", models.ModeTargetReached, 95.9, 0, models.ModeHeating},
		{"overheat recovers at target", models.ModeOverheat, 102, 0, models.ModeTargetReached},
		{"overheat recovers below band", models.ModeOverheat, 50, 0, models.ModeHeating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextMode(Inputs{Reading: tt.reading, Target: target, Mode: tt.mode, Dwell: tt.dwell})
			require.Equal(t, tt.want, got)
		})
	}
}

// Above the band every mode ends in Idle. Outside Overheat the override order cannot be observed
// here because no table row fires above the band.
func TestNextMode_DriftOutEvaluatedBeforeTable(t *testing.T) {
	const target models.SetpointCommand = 60

	for _, mode := range models.Modes {
		t.Run(mode.String(), func(t *testing.T) {
			got := NextMode(Inputs{Reading: 64.1, Target: target, Mode: mode, Dwell: time.Minute})
			require.Equal(t, models.ModeIdle, got)
		})
	}

	got := NextMode(Inputs{Reading: 64, Target: target, Mode: models.ModeHeating})
	require.Equal(t, models.ModeStabilizing, got, "upper band edge is still at target")
}

func TestNextMode_OverheatHoldsAboveRecoveryInsideBand(t *testing.T) {
	got := NextMode(Inputs{Reading: 122, Target: 120, Mode: models.ModeOverheat})
	require.Equal(t, models.ModeOverheat, got)

	got = NextMode(Inputs{Reading: 120, Target: 120, Mode: models.ModeOverheat})
	require.Equal(t, models.ModeOverheat, got, "recovery needs reading < 120")
}

// Above the band the drift-out override sets Idle, and the Overheat row only acts below 120, so
// nothing restores Overheat: the controller leaves Overheat at 121 without waiting for the
// 5-degree recovery margin. This is the one observable effect of applying the override before
// the table.
func TestNextMode_DriftOutLeavesOverheatBeforeRecoveryMargin(t *testing.T) {
	got := NextMode(Inputs{Reading: 121, Target: 100, Mode: models.ModeOverheat})
	require.Equal(t, models.ModeIdle, got)
}

func TestNextMode_OverheatRecoveryAboveBandGoesIdle(t *testing.T) {
	got := NextMode(Inputs{Reading: 115, Target: 100, Mode: models.ModeOverheat})
	require.Equal(t, models.ModeIdle, got)
}

func TestEngageMode(t *testing.T) {
	mode, ok := EngageMode(20, 80)
	require.True(t, ok)
	require.Equal(t, models.ModeHeating, mode)

	mode, ok = EngageMode(78, 80)
	require.True(t, ok)
	require.Equal(t, models.ModeStabilizing, mode)

	_, ok = EngageMode(90, 80)
	require.False(t, ok)
}
