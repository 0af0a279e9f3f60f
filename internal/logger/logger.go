// Package logger provides the levelled console logger used during scans.
//
// Output lines carry a "[YYYY-MM-DD HH:MM:SS]" timestamp and a level tag.
// Loggers are safe for concurrent use, so batch workers and the coordinator
// can share one instance.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Level is a log severity.
type Level int

// Levels, most verbose first.
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel converts a level name to a Level. Empty or unknown names map to
// LevelInfo.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is the logging surface scan components depend on.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// ConsoleLogger writes timestamped lines to an io.Writer.
type ConsoleLogger struct {
	mu     sync.Mutex
	writer io.Writer
	level  Level
	styles map[Level]lipgloss.Style
	now    func() time.Time
}

// New returns a ConsoleLogger writing to w at the given minimum level.
// Level tags are coloured when w is a terminal.
func New(w io.Writer, level Level) *ConsoleLogger {
	l := &ConsoleLogger{writer: w, level: level, now: time.Now}
	if isTerminal(w) {
		r := lipgloss.NewRenderer(w)
		l.styles = map[Level]lipgloss.Style{
			LevelTrace: r.NewStyle().Foreground(lipgloss.Color("#888888")),
			LevelDebug: r.NewStyle().Foreground(lipgloss.Color("#4dd0e1")),
			LevelInfo:  r.NewStyle().Foreground(lipgloss.Color("#64b5f6")),
			LevelWarn:  r.NewStyle().Foreground(lipgloss.Color("#fff59d")),
			LevelError: r.NewStyle().Foreground(lipgloss.Color("#ef5350")).Bold(true),
		}
	}
	return l
}

// Discard returns a logger that drops everything.
func Discard() *ConsoleLogger {
	return New(io.Discard, LevelError+1)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Enabled reports whether messages at level would be written.
func (l *ConsoleLogger) Enabled(level Level) bool {
	return l.writer != nil && level >= l.level
}

// Tracef logs at trace level.
func (l *ConsoleLogger) Tracef(format string, args ...any) { l.logf(LevelTrace, format, args...) }

// Debugf logs at debug level.
func (l *ConsoleLogger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }

// Infof logs at info level.
func (l *ConsoleLogger) Infof(format string, args ...any) { l.logf(LevelInfo, format, args...) }

// Warnf logs at warn level.
func (l *ConsoleLogger) Warnf(format string, args ...any) { l.logf(LevelWarn, format, args...) }

// Errorf logs at error level.
func (l *ConsoleLogger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

func (l *ConsoleLogger) logf(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}

	tag := level.String()
	if style, ok := l.styles[level]; ok {
		tag = style.Render(tag)
	}
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	ts := l.now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(l.writer, "[%s] [%s] %s\n", ts, tag, msg)
}
