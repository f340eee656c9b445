package mcvhost

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger returns a text logger on w at the named level.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
	})), nil
}

func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q (use: debug|info|warn|error)", level)
	}
}

// newListenerLogger opens the sink named by l.Logfile. Listeners without a
// logfile log through base. The closer is nil when there is nothing to close.
func newListenerLogger(l *Listener, base *slog.Logger) (*slog.Logger, io.Closer, error) {
	var (
		w      io.Writer
		closer io.Closer
	)
	switch l.Logfile.Kind {
	case LogUnset:
		return base.With(slog.String("listener", l.String())), nil, nil
	case LogStderr:
		w = os.Stderr
	case LogStdout:
		w = os.Stdout
	case LogSyslog:
		s, err := openSyslog()
		if err != nil {
			base.Warn("syslog unavailable, logging to stderr", slog.String("listener", l.String()), slog.Any("err", err))
			w = os.Stderr
		} else {
			w, closer = s, s
		}
	case LogPath:
		f, err := os.OpenFile(l.Logfile.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file %q: %w", l.Logfile.Path, err)
		}
		w, closer = f, f
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: levelOf(base),
	})
	return slog.New(h).With(slog.String("listener", l.String())), closer, nil
}

func levelOf(l *slog.Logger) slog.Level {
	for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), lvl) {
			return lvl
		}
	}
	return slog.LevelError
}
