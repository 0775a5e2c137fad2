package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"thermal_regulator/internal/logger"
	"thermal_regulator/internal/models"
	"thermal_regulator/internal/repository"

	"github.com/google/uuid"
)

const recorderWriteTimeout = 2 * time.Second

type record struct {
	snap   models.ControllerSnapshot
	events []models.ControllerEvent
}

// RecorderService hands snapshots and events from the control loop to sqlite on its own
// goroutine. Record never blocks; when the buffer is full the record is dropped and counted.
type RecorderService struct {
	stateRepo repository.StateRepo
	eventRepo repository.EventRepo
	log       *logger.Logger

	ch        chan record
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64
}

func NewRecorderService(stateRepo repository.StateRepo, eventRepo repository.EventRepo, log *logger.Logger, buffer int) *RecorderService {
	if buffer < 1 {
		buffer = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RecorderService{
		stateRepo: stateRepo,
		eventRepo: eventRepo,
		log:       log,
		ch:        make(chan record, buffer),
		done:      make(chan struct{}),
	}
}

// Record queues one snapshot with the events that produced it. It must not be called after Close.
func (r *RecorderService) Record(snap models.ControllerSnapshot, events []models.ControllerEvent) {
	select {
	case r.ch <- record{snap: snap, events: events}:
	default:
		if n := r.dropped.Add(1); n == 1 || n%100 == 0 {
			r.log.Warnw("recorder_dropped", "dropped_total", n)
		}
	}
}

// Dropped returns how many records were discarded because the writer fell behind.
func (r *RecorderService) Dropped() int64 { return r.dropped.Load() }

// Run writes queued records until Close. Call it on its own goroutine.
func (r *RecorderService) Run() {
	defer close(r.done)
	for rec := range r.ch {
		r.write(rec)
	}
}

// Close stops accepting records and waits for the queued ones to be written.
func (r *RecorderService) Close() {
	r.closeOnce.Do(func() { close(r.ch) })
	<-r.done
}

func (r *RecorderService) write(rec record) {
	ctx, cancel := context.WithTimeout(context.Background(), recorderWriteTimeout)
	defer cancel()

	for _, e := range rec.events {
		if e.EventID == "" {
			e.EventID = uuid.NewString()
		}
		if err := r.eventRepo.Append(ctx, e); err != nil {
			r.log.Errorw("event_append_failed", "type", e.Type, "err", err)
		}
	}
	if err := r.stateRepo.Save(ctx, rec.snap); err != nil {
		r.log.Errorw("state_save_failed", "err", err)
	}
}
