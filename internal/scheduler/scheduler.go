// Package scheduler runs statement processing keyed by session id, with at
// most one run in flight per session.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-intelligence/internal/detector"
	"github.com/insightdelivered/statement-intelligence/internal/extractor"
	"github.com/insightdelivered/statement-intelligence/internal/logger"
	"github.com/insightdelivered/statement-intelligence/internal/models"
	"github.com/insightdelivered/statement-intelligence/internal/rules"
	"github.com/insightdelivered/statement-intelligence/internal/store"
)

var (
	// ErrAlreadyRunning is returned when a session already has a run in flight.
	ErrAlreadyRunning = errors.New("session is already being processed")
	// ErrParseTimeout marks a run that exceeded the parse timeout.
	ErrParseTimeout = errors.New("parse timeout")
	// ErrNotFound is returned for sessions the scheduler has never run.
	ErrNotFound = errors.New("session not found")
)

// DefaultParseTimeout bounds extraction and parsing of one statement.
const DefaultParseTimeout = 30 * time.Second

// Status is the state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Processor runs one statement through the pipeline.
type Processor interface {
	Process(ctx context.Context, in detector.Input) (*detector.Result, error)
}

// ExtractFunc turns uploaded bytes into statement text.
type ExtractFunc func(ctx context.Context, data []byte) (string, error)

// Options configure a Scheduler. Zero values take the defaults.
type Options struct {
	ParseTimeout time.Duration
	Extract      ExtractFunc
	// Store, when set, records fingerprints of completed runs so the
	// run reports which transactions are new to the owner.
	Store store.FingerprintStore
}

// Request is one statement to process for a session.
type Request struct {
	SessionID string
	OwnerID   string
	Bank      models.BankType
	Data      []byte
	Rules     *rules.RuleSet
}

// Run is the state of the latest run of a session. Result is only set on
// completed runs; partial output of failed or cancelled runs is discarded.
type Run struct {
	ID              string           `json:"id"`
	SessionID       string           `json:"sessionId"`
	Status          Status           `json:"status"`
	StartedAt       time.Time        `json:"startedAt"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	Error           string           `json:"error,omitempty"`
	NewTransactions *int             `json:"newTransactions,omitempty"`
	Duplicates      *int             `json:"duplicates,omitempty"`
	Result          *detector.Result `json:"result,omitempty"`
}

type entry struct {
	run    Run
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler owns the session to run-state map. Distinct sessions run
// concurrently; a second request for a session that is still running is
// rejected rather than queued.
type Scheduler struct {
	proc Processor
	opts Options
	log  zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*entry
	wg       sync.WaitGroup
}

// New returns a scheduler running requests through proc.
func New(proc Processor, log zerolog.Logger, opts Options) *Scheduler {
	if opts.ParseTimeout <= 0 {
		opts.ParseTimeout = DefaultParseTimeout
	}
	if opts.Extract == nil {
		opts.Extract = extractor.Text
	}
	return &Scheduler{
		proc:     proc,
		opts:     opts,
		log:      log,
		sessions: make(map[string]*entry),
	}
}

// Start begins processing req in the background and returns the new run.
// The run is detached from ctx's cancellation; use Cancel to stop it.
func (s *Scheduler) Start(ctx context.Context, req Request) (Run, error) {
	_, run, err := s.start(ctx, req)
	return run, err
}

func (s *Scheduler) start(ctx context.Context, req Request) (*entry, Run, error) {
	if req.SessionID == "" {
		return nil, Run{}, errors.New("session id is required")
	}

	s.mu.Lock()
	if e, ok := s.sessions[req.SessionID]; ok && e.run.Status == StatusRunning {
		s.mu.Unlock()
		return nil, Run{}, fmt.Errorf("%w: %s", ErrAlreadyRunning, req.SessionID)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e := &entry{
		run: Run{
			ID:        uuid.New().String(),
			SessionID: req.SessionID,
			Status:    StatusRunning,
			StartedAt: time.Now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.sessions[req.SessionID] = e
	s.wg.Add(1)
	run := e.run
	s.mu.Unlock()

	log := logger.WithFields(s.log, map[string]interface{}{
		"session_id": req.SessionID,
		"run_id":     run.ID,
	})
	log.Info().Str("bank", string(req.Bank)).Int("bytes", len(req.Data)).Msg("run started")

	go s.execute(logger.WithContext(runCtx, log), e, req)
	return e, run, nil
}

// Run processes req and waits for it to finish. Cancelling ctx cancels the
// run. The error only reports scheduling problems; check the returned run's
// Status for the outcome.
func (s *Scheduler) Run(ctx context.Context, req Request) (Run, error) {
	e, _, err := s.start(ctx, req)
	if err != nil {
		return Run{}, err
	}
	stop := context.AfterFunc(ctx, e.cancel)
	defer stop()
	return s.waitEntry(context.WithoutCancel(ctx), e)
}

// Get returns the latest run of a session.
func (s *Scheduler) Get(sessionID string) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return e.run, nil
}

// Cancel asks the running run of a session to stop. Cancellation is
// cooperative: the pipeline notices it between stages. Cancelling a
// finished run is a no-op.
func (s *Scheduler) Cancel(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	e.cancel()
	return nil
}

// Wait blocks until the session's current run finishes or ctx is done.
func (s *Scheduler) Wait(ctx context.Context, sessionID string) (Run, error) {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}

	return s.waitEntry(ctx, e)
}

// waitEntry returns the final state of e's own run, even if the session
// has started another run since.
func (s *Scheduler) waitEntry(ctx context.Context, e *entry) (Run, error) {
	select {
	case <-e.done:
	case <-ctx.Done():
		return Run{}, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return e.run, nil
}

// Shutdown cancels every running run and waits for them to finish.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, e := range s.sessions {
		e.cancel()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) execute(ctx context.Context, e *entry, req Request) {
	defer s.wg.Done()
	defer close(e.done)
	defer e.cancel()

	res, err := s.process(ctx, req)

	var fresh, dups *int
	if err == nil && s.opts.Store != nil && ctx.Err() == nil {
		kept, n, serr := s.opts.Store.FilterNew(ctx, req.OwnerID, res.Transactions)
		if serr != nil {
			err = fmt.Errorf("failed to record fingerprints: %w", serr)
		} else {
			k := len(kept)
			fresh, dups = &k, &n
		}
	}

	s.finish(ctx, e, res, fresh, dups, err)
}

// process extracts and analyses the statement under the parse timeout. The
// pipeline runs in its own goroutine so that a stage that never checks its
// context cannot hold the run past the deadline.
func (s *Scheduler) process(ctx context.Context, req Request) (*detector.Result, error) {
	tctx, cancel := context.WithTimeout(ctx, s.opts.ParseTimeout)
	defer cancel()

	type outcome struct {
		res *detector.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.pipeline(tctx, req)
		done <- outcome{res, err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-tctx.Done():
		out.err = tctx.Err()
	}

	if out.err != nil && ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w after %s", ErrParseTimeout, s.opts.ParseTimeout)
	}
	return out.res, out.err
}

func (s *Scheduler) pipeline(ctx context.Context, req Request) (*detector.Result, error) {
	text, err := s.opts.Extract(ctx, req.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.proc.Process(ctx, detector.Input{
		Text:    []byte(text),
		OwnerID: req.OwnerID,
		Bank:    req.Bank,
		Rules:   req.Rules,
	})
}

func (s *Scheduler) finish(ctx context.Context, e *entry, res *detector.Result, fresh, dups *int, err error) {
	log := logger.FromContext(ctx)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e.run.CompletedAt = &now
	switch {
	case err == nil:
		e.run.Status = StatusCompleted
		e.run.Result = res
		e.run.NewTransactions, e.run.Duplicates = fresh, dups
		log.Info().
			Str("bank", string(res.Metadata.Bank)).
			Int("transactions", len(res.Transactions)).
			Int("patterns", len(res.Patterns)).
			Dur("elapsed", now.Sub(e.run.StartedAt)).
			Msg("run completed")
	case errors.Is(err, context.Canceled):
		e.run.Status = StatusCancelled
		e.run.Error = "cancelled"
		log.Warn().Msg("run cancelled")
	default:
		e.run.Status = StatusFailed
		e.run.Error = err.Error()
		log.Error().Err(err).Msg("run failed")
	}
}
