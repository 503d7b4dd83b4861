package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"biosync/internal/core/domain"
	coreerrors "biosync/internal/core/errors"
	"biosync/internal/core/ports"
)

const DefaultDeviceTimeout = 15 * time.Second

// Options tunes a SyncServiceImpl. Zero values fall back to defaults.
type Options struct {
	StartDate time.Time
	Strategy  domain.Strategy
	Timeout   time.Duration
	Guard     *DeviceGuard
	Logger    *slog.Logger

	// Now and NewRunID are overridable for tests.
	Now      func() time.Time
	NewRunID func() string

	// OnTransition observes every state change of every run.
	OnTransition func(runID string, s State)

	// Recorder receives the outcome of every run that got past the guard.
	Recorder ports.RunRecorder
}

// SyncServiceImpl is the default implementation of SyncService.
type SyncServiceImpl struct {
	device ports.Device
	sinks  []ports.Sink
	opts   Options
}

// NewSyncService constructs a new SyncServiceImpl.
func NewSyncService(device ports.Device, sinks []ports.Sink, opts Options) *SyncServiceImpl {
	if opts.Strategy == nil {
		opts.Strategy = domain.DayPositional{MiddleCutoff: 12}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultDeviceTimeout
	}
	if opts.Guard == nil {
		opts.Guard = defaultGuard
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewRunID == nil {
		opts.NewRunID = newRunID
	}
	return &SyncServiceImpl{device: device, sinks: sinks, opts: opts}
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *SyncServiceImpl) DeviceID() string { return s.device.ID() }

func (s *SyncServiceImpl) Strategy() string { return s.opts.Strategy.Name() }

// run carries the per-invocation state so the service itself stays reusable.
type run struct {
	id    string
	state State
	log   *slog.Logger
	svc   *SyncServiceImpl
}

func (r *run) enter(st State) {
	r.state = st
	r.log.Debug("sync state", "state", st.String())
	if r.svc.opts.OnTransition != nil {
		r.svc.opts.OnTransition(r.id, st)
	}
}

// Sync performs one complete run: connect, read, reconcile, export, and
// release. Connection and retrieval errors abort the run. Sink errors are
// joined into the returned error while the result is still returned.
func (s *SyncServiceImpl) Sync(ctx context.Context) (*domain.SyncResult, error) {
	release, err := s.opts.Guard.Acquire(ctx, s.device.ID())
	if err != nil {
		return nil, err
	}
	defer release()

	r := &run{id: s.opts.NewRunID(), state: Idle, svc: s}
	r.log = s.opts.Logger.With("run_id", r.id, "device", s.device.ID())

	started := s.opts.Now()
	result, err := s.execute(ctx, r)
	s.record(r, started, result, err)
	return result, err
}

func (s *SyncServiceImpl) record(r *run, started time.Time, result *domain.SyncResult, err error) {
	if s.opts.Recorder == nil {
		return
	}
	outcome := domain.OutcomeOK
	switch {
	case err != nil && result != nil:
		outcome = domain.OutcomePartial
	case err != nil:
		outcome = domain.OutcomeFailed
	}
	rec := domain.RunRecord{
		DeviceID: s.device.ID(),
		RunID:    r.id,
		Started:  started,
		Duration: max(s.opts.Now().Sub(started), 0),
		Outcome:  outcome,
	}
	if err := s.opts.Recorder.RecordRun(rec); err != nil {
		r.log.Warn("record run stats", "error", err)
	}
}

func (s *SyncServiceImpl) execute(ctx context.Context, r *run) (result *domain.SyncResult, err error) {
	r.enter(Connecting)
	r.log.Info("connecting to device", "address", s.device.Address())

	connectCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	conn, err := s.device.Connect(connectCtx)
	cancel()
	if err != nil {
		r.enter(Failed)
		r.log.Error("connect failed", "error", err)
		return nil, &coreerrors.ConnectionError{Device: s.device.ID(), Err: err}
	}

	// Release runs on every path from here on, including panics.
	var partial bool
	defer func() {
		p := recover()
		r.enter(Closing)
		s.release(ctx, conn, r.log)
		if p != nil {
			r.enter(Failed)
			panic(p)
		}
		if err != nil && !partial {
			r.enter(Failed)
			return
		}
		r.enter(Done)
	}()

	r.enter(FetchingDirectory)
	entries, err := withTimeout(ctx, s.opts.Timeout, conn.Directory)
	if err != nil {
		return nil, &coreerrors.DataRetrievalError{Op: "directory", Err: err}
	}
	r.log.Info("directory read", "users", len(entries))

	r.enter(FetchingPunches)
	punches, err := withTimeout(ctx, s.opts.Timeout, conn.Punches)
	if err != nil {
		return nil, &coreerrors.DataRetrievalError{Op: "punches", Err: err}
	}
	r.log.Info("punches read", "records", len(punches))

	r.enter(Reconciling)
	result, err = s.reconcile(r, entries, punches)
	if err != nil {
		return nil, err
	}

	r.enter(Exporting)
	if err = s.export(ctx, result, r.log); err != nil {
		partial = true
		r.log.Warn("sync finished with export failures", "error", err)
		return result, err
	}

	r.log.Info("sync complete",
		"employees", result.Metadata.TotalEmployees,
		"records", result.Metadata.TotalRecords,
		"strategy", result.Metadata.Strategy,
	)
	return result, nil
}

func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

func (s *SyncServiceImpl) reconcile(r *run, entries []domain.DirectoryEntry, punches []domain.RawPunch) (*domain.SyncResult, error) {
	if err := domain.ValidatePunches(punches); err != nil {
		return nil, &coreerrors.DataRetrievalError{Op: "punches", Err: err}
	}

	dir := domain.NewDirectory(entries)
	filtered := domain.FilterSince(punches, s.opts.StartDate)
	unique := domain.Dedup(filtered)
	labels := domain.Classify(unique, s.opts.Strategy)
	events := domain.BuildEvents(unique, labels, s.device.ID())

	agg := domain.NewAggregator(dir)
	agg.Add(events...)
	attendance := agg.Result()

	r.log.Debug("reconciled",
		"fetched", len(punches),
		"filtered", len(filtered),
		"unique", len(unique),
	)

	meta := domain.Summarize(domain.SyncMetadata{
		RunID:     r.id,
		LastSync:  s.opts.Now(),
		StartDate: s.opts.StartDate,
		DeviceID:  s.device.ID(),
		Strategy:  s.opts.Strategy.Name(),
	}, attendance)

	return &domain.SyncResult{
		Metadata:   meta,
		Directory:  dir.Employees(),
		Attendance: attendance,
	}, nil
}

// export fans the result out to every sink. One sink failing does not stop
// the others.
func (s *SyncServiceImpl) export(ctx context.Context, result *domain.SyncResult, log *slog.Logger) error {
	errs := make([]error, len(s.sinks))
	var g errgroup.Group
	for i, sink := range s.sinks {
		g.Go(func() error {
			if err := sink.Export(ctx, result); err != nil {
				log.Error("sink export failed", "sink", sink.Name(), "error", err)
				errs[i] = &coreerrors.ExportError{Sink: sink.Name(), Err: err}
				return nil
			}
			log.Info("sink export done", "sink", sink.Name())
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// release re-enables the device and disconnects. Failures are logged and
// never replace the run's own error.
func (s *SyncServiceImpl) release(ctx context.Context, conn ports.DeviceConn, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.Timeout)
	defer cancel()

	if err := conn.Enable(ctx); err != nil {
		log.Error("re-enable device failed", "error", err)
	}
	if err := conn.Disconnect(); err != nil {
		log.Error("disconnect failed", "error", err)
	}
	log.Info("device connection released")
}
