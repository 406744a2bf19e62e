package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RecorderConfig configures the asynchronous recorder.
type RecorderConfig struct {
	// Enabled turns recording on. A disabled recorder accepts and drops
	// every record.
	Enabled bool

	// AsyncBuffer is the size of the write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout bounds both enqueueing and each storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// WriteObserver is notified of every storage write.
type WriteObserver interface {
	ObserveAuditWrite(success bool, d time.Duration)
}

// Recorder writes audit records in the background so evaluations never wait
// on storage.
type Recorder struct {
	storage    Storage
	config     *RecorderConfig
	observer   WriteObserver
	recordChan chan *Record
	wg         sync.WaitGroup
	done       chan struct{}
	closeOnce  sync.Once
	logger     *slog.Logger
}

// NewRecorder creates a recorder and starts its worker.
func NewRecorder(storage Storage, config *RecorderConfig, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *Record, config.AsyncBuffer),
		done:       make(chan struct{}),
		logger:     logger.With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"enabled", config.Enabled,
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
	)
	return r
}

// SetObserver installs a write observer. It must be called before the first
// Record.
func (r *Recorder) SetObserver(o WriteObserver) {
	r.observer = o
}

// Record queues rec for writing, assigning an ID when it has none. It
// returns a *RecorderError when the buffer stays full for WriteTimeout or
// the recorder is closed.
func (r *Recorder) Record(ctx context.Context, rec *Record) error {
	if !r.config.Enabled || rec == nil {
		return nil
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	select {
	case <-r.done:
		return &RecorderError{RecordID: rec.ID, Cause: context.Canceled}
	default:
	}

	timer := time.NewTimer(r.config.WriteTimeout)
	defer timer.Stop()

	select {
	case r.recordChan <- rec:
		r.logger.Debug("audit record enqueued",
			"record_id", rec.ID,
			"evaluation_id", rec.EvaluationID,
			"loan_id", rec.LoanID,
		)
		return nil
	case <-timer.C:
		r.logger.Error("audit channel full, dropping record",
			"record_id", rec.ID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return &RecorderError{RecordID: rec.ID, Cause: context.DeadlineExceeded}
	case <-ctx.Done():
		return &RecorderError{RecordID: rec.ID, Cause: ctx.Err()}
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping record", "record_id", rec.ID)
		return &RecorderError{RecordID: rec.ID, Cause: context.Canceled}
	}
}

// Close stops accepting records, drains the buffer and waits for the
// worker to exit. It does not close the storage.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.logger.Info("shutting down audit recorder")
		close(r.done)
		r.wg.Wait()
		r.logger.Info("audit recorder shut down complete")
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case rec := <-r.recordChan:
			r.write(rec)
		case <-r.done:
			r.logger.Info("draining audit channel before shutdown",
				"pending_count", len(r.recordChan),
			)
			for {
				select {
				case rec := <-r.recordChan:
					r.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(rec *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := r.storage.Store(ctx, rec)
	duration := time.Since(start)

	if r.observer != nil {
		r.observer.ObserveAuditWrite(err == nil, duration)
	}

	if err != nil {
		r.logger.Error("failed to store audit record",
			"record_id", rec.ID,
			"evaluation_id", rec.EvaluationID,
			"error", err,
		)
		return
	}

	r.logger.Debug("audit record stored",
		"record_id", rec.ID,
		"evaluation_id", rec.EvaluationID,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"record_id", rec.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
