// Package logging provides the gateway's leveled logger. Every event is
// formatted once and fanned out to two independently gated sinks: the console
// and an optional append-only audit sink. A failing audit sink is reported on
// the console and never propagated to the caller.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tkrause/textgen-gateway/internal/config"
)

// Entry is the audit-sink record for a single log event.
type Entry struct {
	Text       string
	Level      Level
	Category   string
	Context    string
	RequestID  string
	Error      string
	URL        string
	Method     string
	DurationMS int64
	Operation  string
	CreatedAt  time.Time
}

// AuditSink is an append-only destination for log entries. Implementations
// must be safe for concurrent use.
type AuditSink interface {
	Write(ctx context.Context, e Entry) error
}

// Options carries the optional annotations for a log event. A nil *Options
// is valid everywhere one is accepted.
type Options struct {
	Context   string
	Category  string
	RequestID string
	Error     string
	URL       string
	Method    string
	Duration  time.Duration
	Operation string
	Metadata  map[string]any
}

type Logger struct {
	mu             sync.Mutex
	console        io.Writer
	consoleEnabled bool
	consoleMin     Level
	colorized      bool

	audit        AuditSink
	auditEnabled bool
	auditMin     Level
}

// New builds a logger from the logging configuration. The console writer is
// typically os.Stdout; sink may be nil when audit logging is disabled.
func New(cfg config.LoggingConfig, console io.Writer, sink AuditSink) *Logger {
	return &Logger{
		console:        console,
		consoleEnabled: cfg.Console.Enabled,
		consoleMin:     ParseLevel(cfg.Level),
		colorized:      cfg.Console.Colorized,
		audit:          sink,
		auditEnabled:   cfg.Audit.Enabled && sink != nil,
		auditMin:       ParseLevel(cfg.Audit.MinLevel),
	}
}

func (l *Logger) Debug(msg string, opts *Options)    { l.log(LevelDebug, msg, opts) }
func (l *Logger) Info(msg string, opts *Options)     { l.log(LevelInfo, msg, opts) }
func (l *Logger) Warn(msg string, opts *Options)     { l.log(LevelWarn, msg, opts) }
func (l *Logger) Error(msg string, opts *Options)    { l.log(LevelError, msg, opts) }
func (l *Logger) Critical(msg string, opts *Options) { l.log(LevelCritical, msg, opts) }
func (l *Logger) System(msg string, opts *Options)   { l.log(LevelSystem, msg, opts) }

func (l *Logger) log(level Level, msg string, opts *Options) {
	if opts == nil {
		opts = &Options{}
	}
	formatted := formatMessage(level, msg, opts)

	if l.consoleEnabled && level >= l.consoleMin {
		l.writeConsole(level, formatted)
	}

	if l.auditEnabled && level >= l.auditMin {
		entry := Entry{
			Text:       formatted,
			Level:      level,
			Category:   opts.Category,
			Context:    opts.Context,
			RequestID:  opts.RequestID,
			Error:      opts.Error,
			URL:        opts.URL,
			Method:     opts.Method,
			DurationMS: opts.Duration.Milliseconds(),
			Operation:  opts.Operation,
			CreatedAt:  time.Now().UTC(),
		}
		if err := l.audit.Write(context.Background(), entry); err != nil {
			// Audit failures must never crash the request being logged.
			l.writeConsole(LevelError, formatMessage(LevelError,
				"failed to write audit log entry", &Options{Context: "Logger", Error: err.Error()}))
		}
	}
}

func (l *Logger) writeConsole(level Level, line string) {
	if l.colorized {
		line = level.color() + line + colorReset
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, line)
}

// formatMessage renders a single line: timestamp, padded level label, the
// optional annotations in a fixed order, then the message body and any
// metadata as JSON.
func formatMessage(level Level, msg string, opts *Options) string {
	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')
	b.WriteString(fmt.Sprintf("%-8s", level.Label()))

	if opts.Context != "" {
		fmt.Fprintf(&b, " [%s]", opts.Context)
	}
	if opts.Category != "" {
		fmt.Fprintf(&b, " (%s)", opts.Category)
	}
	if opts.Operation != "" {
		fmt.Fprintf(&b, " Operation: %s", opts.Operation)
	}
	if opts.RequestID != "" {
		fmt.Fprintf(&b, " #%s", opts.RequestID)
	}
	if opts.URL != "" {
		fmt.Fprintf(&b, " URL: %s", opts.URL)
	}
	if opts.Method != "" {
		fmt.Fprintf(&b, " Method: %s", opts.Method)
	}
	if opts.Duration != 0 {
		fmt.Fprintf(&b, " Duration: %dms", opts.Duration.Milliseconds())
	}
	if opts.Error != "" {
		fmt.Fprintf(&b, " Error: %s", opts.Error)
	}

	b.WriteString(": ")
	b.WriteString(msg)

	if len(opts.Metadata) > 0 {
		if meta, err := json.Marshal(opts.Metadata); err == nil {
			b.WriteByte(' ')
			b.Write(meta)
		}
	}

	return b.String()
}
