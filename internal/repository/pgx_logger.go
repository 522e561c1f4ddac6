package repository

import (
	"context"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"

	"github.com/maxviazov/member-crm/internal/logger"
)

// pgxLogger adapts zerolog.Logger to pgx's tracelog interface and tags every line
// with the request id carried by the query context.
type pgxLogger struct {
	logger zerolog.Logger
}

func newPgxLogger(l zerolog.Logger) *pgxLogger {
	return &pgxLogger{logger: l.With().Str("component", "pgx").Logger()}
}

func (l *pgxLogger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	event := l.event(level)
	if event == nil {
		return
	}
	if id := logger.RequestID(ctx); id != "" {
		event = event.Str("request_id", id)
	}
	if level == tracelog.LogLevelTrace {
		// Statement text and args only at trace; they are noisy and may carry personal data.
		if s, ok := data["sql"].(string); ok {
			event = event.Str("sql", s)
			delete(data, "sql")
		}
		if args, ok := data["args"]; ok {
			event = event.Interface("args", args)
			delete(data, "args")
		}
	} else {
		delete(data, "args")
	}
	if len(data) > 0 {
		event = event.Fields(data)
	}
	event.Msg(msg)
}

func (l *pgxLogger) event(level tracelog.LogLevel) *zerolog.Event {
	switch level {
	case tracelog.LogLevelNone:
		return nil
	case tracelog.LogLevelTrace:
		return l.logger.Trace()
	case tracelog.LogLevelDebug:
		return l.logger.Debug()
	case tracelog.LogLevelInfo:
		return l.logger.Info()
	case tracelog.LogLevelWarn:
		return l.logger.Warn()
	case tracelog.LogLevelError:
		return l.logger.Error()
	default:
		return l.logger.Info().Str("pgx_log_level", level.String())
	}
}
