package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"thermal_regulator/internal/models"
)

// fakeEventRepo is a minimal stub that satisfies the repository.EventRepo interface.
type fakeEventRepo struct {
	gotFrom time.Time
	gotTo   time.Time
	gotType string

	events []models.ControllerEvent
	err    error

	appended  []models.ControllerEvent
	appendErr error

	calls int
}

func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.ControllerEvent, error) {
	f.calls++
	f.gotFrom = from
	f.gotTo = to
	f.gotType = typ
	return f.events, f.err
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.ControllerEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, e)
	return nil
}

func Test_toUTC(t *testing.T) {
	t.Parallel()

	if got := toUTC(time.Time{}); !got.IsZero() {
		t.Fatalf("zero time must stay zero, got %v", got)
	}
	in := time.Date(2025, time.August, 1, 12, 34, 56, 0, time.FixedZone("UTC+3", 3*3600))
	want := time.Date(2025, time.August, 1, 9, 34, 56, 0, time.UTC)
	if got := toUTC(in); got.Location() != time.UTC || !got.Equal(want) {
		t.Fatalf("toUTC(%v) = %v, want %v", in, got, want)
	}
}

func Test_normalizeEventType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in  string
		exp string
	}{
		{in: "", exp: ""},
		{in: "  START ", exp: "START"},
		{in: "overheat", exp: "OVERHEAT"},
		{in: " mode_change ", exp: "MODE_CHANGE"},
	}
	for _, c := range cases {
		if got := normalizeEventType(c.in); got != c.exp {
			t.Fatalf("normalizeEventType(%q) = %q; want %q", c.in, got, c.exp)
		}
	}
}

func Test_normalizeAndValidateFilter(t *testing.T) {
	t.Parallel()

	fromLocal := time.Date(2025, time.September, 10, 10, 0, 0, 0, time.FixedZone("UTC+2", 2*3600))
	toUTCTime := time.Date(2025, time.September, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		in       LogFilter
		wantFrom time.Time
		wantType string
		wantErr  error
	}{
		{name: "all zero ok", in: LogFilter{}},
		{
			name: "from after to",
			in: LogFilter{
				From: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC),
			},
			wantErr: errInvalidTimeRange,
		},
		{name: "negative limit", in: LogFilter{Limit: -1}, wantErr: errInvalidLimit},
		{name: "unknown type", in: LogFilter{Type: "telemetry"}, wantErr: errUnknownEventType},
		{
			name:     "normalize tz and type",
			in:       LogFilter{From: fromLocal, To: toUTCTime, Type: " sensor_fault "},
			wantFrom: time.Date(2025, time.September, 10, 8, 0, 0, 0, time.UTC),
			wantType: models.EventSensorFault,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gotFrom, _, gotType, err := normalizeAndValidateFilter(tc.in)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected err %v; got %v", tc.wantErr, err)
			}
			if tc.wantErr != nil && !IsInvalidFilter(err) {
				t.Fatalf("IsInvalidFilter(%v) = false", err)
			}
			if !tc.wantFrom.IsZero() && !gotFrom.Equal(tc.wantFrom) {
				t.Fatalf("from: got %v; want %v", gotFrom, tc.wantFrom)
			}
			if gotType != tc.wantType {
				t.Fatalf("type: got %q; want %q", gotType, tc.wantType)
			}
		})
	}
}

func TestEventLogService_List_DelegatesNormalizedParams(t *testing.T) {
	t.Parallel()

	frepo := &fakeEventRepo{events: []models.ControllerEvent{{EventID: "1"}}}
	svc := NewEventLogService(frepo)

	fromLocal := time.Date(2025, time.October, 1, 10, 0, 0, 0, time.FixedZone("UTC+5", 5*3600))
	toLocal := time.Date(2025, time.October, 1, 12, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))

	out, err := svc.List(context.Background(), LogFilter{From: fromLocal, To: toLocal, Type: "  overheat "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].EventID != "1" {
		t.Fatalf("unexpected events: %+v", out)
	}
	if frepo.calls != 1 {
		t.Fatalf("repo List should be called once, got %d", frepo.calls)
	}
	if want := time.Date(2025, time.October, 1, 5, 0, 0, 0, time.UTC); !frepo.gotFrom.Equal(want) {
		t.Fatalf("repo gotFrom=%v; want %v", frepo.gotFrom, want)
	}
	if want := time.Date(2025, time.October, 1, 14, 30, 0, 0, time.UTC); !frepo.gotTo.Equal(want) {
		t.Fatalf("repo gotTo=%v; want %v", frepo.gotTo, want)
	}
	if frepo.gotType != models.EventOverheat {
		t.Fatalf("repo gotType=%q; want %q", frepo.gotType, models.EventOverheat)
	}
}

func TestEventLogService_List_LimitKeepsMostRecent(t *testing.T) {
	t.Parallel()

	frepo := &fakeEventRepo{events: []models.ControllerEvent{{EventID: "1"}, {EventID: "2"}, {EventID: "3"}}}
	svc := NewEventLogService(frepo)

	out, err := svc.List(context.Background(), LogFilter{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].EventID != "2" || out[1].EventID != "3" {
		t.Fatalf("unexpected events: %+v", out)
	}
}

func TestEventLogService_List_ValidationError(t *testing.T) {
	t.Parallel()

	frepo := &fakeEventRepo{}
	svc := NewEventLogService(frepo)

	_, err := svc.List(context.Background(), LogFilter{
		From: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, errInvalidTimeRange) {
		t.Fatalf("expected errInvalidTimeRange; got %v", err)
	}
	if frepo.calls != 0 {
		t.Fatalf("repo should not be called on validation error, calls=%d", frepo.calls)
	}
}

func TestEventLogService_List_RepoErrorPropagation(t *testing.T) {
	t.Parallel()

	frepo := &fakeEventRepo{err: errors.New("db down")}
	svc := NewEventLogService(frepo)

	_, err := svc.List(context.Background(), LogFilter{})
	if !errors.Is(err, frepo.err) {
		t.Fatalf("expected repo error to propagate; got %v", err)
	}
}
