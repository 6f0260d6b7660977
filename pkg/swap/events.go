package swap

import (
	"time"

	"github.com/rs/zerolog"

	"jup-swap/pkg/types"
)

// Event is emitted on every state transition of a run
type Event struct {
	RunID   string
	Time    time.Time
	Stage   types.Stage
	State   State
	Level   zerolog.Level
	Message string
	// Duration is how long the stage that just finished took
	Duration time.Duration
	Fields   map[string]any
	Err      error
}

// Sink consumes pipeline events
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// LogSink writes events to a zerolog logger
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink wraps logger
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{log: logger}
}

func (s *LogSink) Emit(e Event) {
	ev := s.log.WithLevel(e.Level).
		Str("run_id", e.RunID).
		Str("state", string(e.State))
	if e.Stage != "" {
		ev = ev.Str("stage", string(e.Stage))
	}
	if e.Duration > 0 {
		ev = ev.Dur("duration", e.Duration)
	}
	if len(e.Fields) > 0 {
		ev = ev.Fields(e.Fields)
	}
	if e.Err != nil {
		ev = ev.Err(e.Err)
	}
	ev.Msg(e.Message)
}
