package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-mathfilter/internal/logging"
	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

// TelemetryStatus classifies how a filter command ended.
type TelemetryStatus string

const (
	TelemetryStatusSuccess TelemetryStatus = "success"
	TelemetryStatusFailed  TelemetryStatus = "failed"
	// TelemetryStatusContextError marks cancellation or an expired deadline,
	// e.g. a directory render outliving its timeout.
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to telemetry callbacks once a command returns.
// Outcome holds whatever the command recorded, including on failure.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Outcome   Outcome
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked after every command execution.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs one entry per execution carrying the message fields
// and the document tallies.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logging.WithFields(logger, info.Fields), info.Outcome.fields())
		entry = logging.WithFields(entry, map[string]any{
			"duration_ms": info.Duration.Milliseconds(),
			"error":       info.Error,
		})
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success")
		case TelemetryStatusContextError:
			entry.Error("command.execute.context_error")
		default:
			entry.Error("command.execute.failed")
		}
	}
}
