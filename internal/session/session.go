// Package session wires one journal session together: the tailer feeds
// lines to the decoder, decoded events update the world model and are
// published to subscribers.
//
// A session is driven by a single goroutine. The model and dispatcher it
// exposes must only be touched from handlers or after Run returns.
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/papapumpkin/cartographer/internal/events"
	"github.com/papapumpkin/cartographer/internal/galaxy"
	"github.com/papapumpkin/cartographer/internal/journal"
	"github.com/papapumpkin/cartographer/internal/telemetry"
)

// Config holds what a session needs from its host.
type Config struct {
	Dir       string          // journal directory
	Journal   journal.Options // Logger and Telemetry default to the session's
	Logger    *slog.Logger
	Telemetry *telemetry.Emitter
}

// Stats counts what a session has processed so far.
type Stats struct {
	Lines            int `json:"lines"`
	Events           int `json:"events"`
	Rejected         int `json:"rejected"`
	DispatchFailures int `json:"dispatch_failures"`
}

// Session owns the model, decoder, dispatcher and tailer of one session.
type Session struct {
	model      *galaxy.Model
	decoder    *events.Decoder
	dispatcher *events.Dispatcher
	tailer     *journal.Tailer
	logger     *slog.Logger
	telemetry  *telemetry.Emitter
	stats      Stats
}

// New builds a session and opens the journal directory. Startup failures,
// such as a missing directory, are returned here.
func New(cfg Config) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := cfg.Journal
	if opts.Logger == nil {
		opts.Logger = logger
	}
	if opts.Telemetry == nil {
		opts.Telemetry = cfg.Telemetry
	}

	tailer, err := journal.Open(cfg.Dir, opts)
	if err != nil {
		return nil, err
	}

	model := galaxy.NewModel()
	return &Session{
		model:      model,
		decoder:    events.NewDecoder(model),
		dispatcher: events.NewDispatcher(),
		tailer:     tailer,
		logger:     logger.With("component", "session"),
		telemetry:  cfg.Telemetry,
	}, nil
}

// Model returns the session's world model.
func (s *Session) Model() *galaxy.Model { return s.model }

// Dispatcher returns the dispatcher events are published on. Subscribe
// before calling Run.
func (s *Session) Dispatcher() *events.Dispatcher { return s.dispatcher }

// Stats returns the counters accumulated so far.
func (s *Session) Stats() Stats { return s.stats }

// Run follows the journal until ctx is cancelled or the tailer fails. It
// returns ctx.Err() on cancellation. A session cannot be run twice.
func (s *Session) Run(ctx context.Context) error {
	s.emit(telemetry.Event{Kind: telemetry.KindSessionStart, File: s.tailer.Current()})
	s.logger.Info("session started", "journal", s.tailer.Current())

	err := s.tailer.Run(ctx, func(l journal.Line) error {
		s.Handle(l.Text)
		return nil
	})

	s.emit(telemetry.Event{Kind: telemetry.KindSessionStop, Data: s.stats})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("session stopped", "error", err)
	} else {
		s.logger.Info("session stopped", "lines", s.stats.Lines, "events", s.stats.Events,
			"rejected", s.stats.Rejected, "dispatch_failures", s.stats.DispatchFailures)
	}
	return err
}

// Close releases the journal watcher of a session that is never run.
func (s *Session) Close() error {
	return s.tailer.Close()
}

// Handle decodes and publishes one line. A rejected line or a failing
// handler is reported and skipped; the stream carries on either way.
func (s *Session) Handle(line []byte) {
	s.stats.Lines++

	e, err := s.decoder.Decode(line)
	if err != nil {
		s.stats.Rejected++
		name := ""
		var lerr *events.LineError
		if errors.As(err, &lerr) {
			name = lerr.Event
		}
		s.logger.Warn("skipping journal line", "event", name, "error", err)
		s.emit(telemetry.Event{
			Kind:  telemetry.KindLineRejected,
			Event: name,
			Data:  map[string]string{"error": err.Error()},
		})
		return
	}
	s.stats.Events++

	if err := s.dispatcher.Publish(e); err != nil {
		s.stats.DispatchFailures++
		s.logger.Error("event handler failed", "event", e.Name(), "error", err)
		s.emit(telemetry.Event{
			Kind:  telemetry.KindDispatchFailed,
			Event: e.Name(),
			Data:  map[string]string{"error": err.Error()},
		})
	}
}

func (s *Session) emit(evt telemetry.Event) {
	if err := s.telemetry.Emit(evt); err != nil {
		s.logger.Warn("telemetry", "error", err)
	}
}
