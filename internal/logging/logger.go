// Package logging provides the run logger: plain text for CI logs, JSON lines
// for log collectors, or GCP Cloud Logging. Every message is sanitized before
// it leaves the process.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/option"
)

// Severity levels for structured logs
type Severity string

const (
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Formats accepted by Options.Format.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatCloud = "cloud"
)

// Logger is the logging interface used throughout a run.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Close() error
}

// Entry is a structured log entry.
type Entry struct {
	Severity  Severity          `json:"severity"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// Options selects and configures a Logger.
type Options struct {
	Format  string
	Verbose bool
	// Labels are attached to every structured entry.
	Labels map[string]string
	// Secrets are literal values redacted from every message.
	Secrets []string

	// GCPProject and LogName configure the cloud format.
	GCPProject string
	LogName    string
}

// New creates the Logger for opts.Format. Text and JSON output go to w; the
// cloud logger also echoes to w as text.
func New(ctx context.Context, w io.Writer, opts Options, clientOpts ...option.ClientOption) (Logger, error) {
	sanitizer := NewSanitizer(opts.Secrets...)

	switch strings.ToLower(opts.Format) {
	case "", FormatText:
		return NewTextLogger(w, opts.Verbose, sanitizer), nil
	case FormatJSON:
		return NewStructuredLogger(w, opts.Verbose, opts.Labels, sanitizer), nil
	case FormatCloud:
		if opts.GCPProject == "" {
			return nil, fmt.Errorf("cloud logging requires a GCP project")
		}
		echo := NewTextLogger(w, opts.Verbose, sanitizer)
		return NewCloudLogger(ctx, opts.GCPProject, opts.LogName, opts.Labels, echo, clientOpts...)
	default:
		return nil, fmt.Errorf("unknown log format %q (must be text, json or cloud)", opts.Format)
	}
}

// TextLogger writes human readable lines through a *log.Logger.
type TextLogger struct {
	logger    *log.Logger
	verbose   bool
	sanitizer *Sanitizer
}

// NewTextLogger creates a TextLogger writing to w.
func NewTextLogger(w io.Writer, verbose bool, sanitizer *Sanitizer) *TextLogger {
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}
	return &TextLogger{
		logger:    log.New(w, "[release-drafter] ", log.LstdFlags),
		verbose:   verbose,
		sanitizer: sanitizer,
	}
}

func (l *TextLogger) print(prefix, format string, args []interface{}) {
	l.logger.Print(prefix + l.sanitizer.Sanitize(fmt.Sprintf(format, args...)))
}

// Debugf logs only in verbose mode.
func (l *TextLogger) Debugf(format string, args ...interface{}) {
	if l.verbose {
		l.print("Debug: ", format, args)
	}
}

func (l *TextLogger) Infof(format string, args ...interface{}) {
	l.print("", format, args)
}

func (l *TextLogger) Warningf(format string, args ...interface{}) {
	l.print("Warning: ", format, args)
}

func (l *TextLogger) Errorf(format string, args ...interface{}) {
	l.print("Error: ", format, args)
}

// Close is a no-op; writes are synchronous.
func (l *TextLogger) Close() error {
	return nil
}

// StructuredLogger writes one JSON entry per line, in the structured format
// Cloud Logging agents understand.
type StructuredLogger struct {
	writer    io.Writer
	verbose   bool
	labels    map[string]string
	sanitizer *Sanitizer
	now       func() time.Time
	mu        sync.Mutex
}

// NewStructuredLogger creates a StructuredLogger writing to w.
func NewStructuredLogger(w io.Writer, verbose bool, labels map[string]string, sanitizer *Sanitizer) *StructuredLogger {
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}
	return &StructuredLogger{
		writer:    w,
		verbose:   verbose,
		labels:    labels,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// Log writes a structured log entry
func (l *StructuredLogger) Log(severity Severity, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Severity:  severity,
		Message:   l.sanitizer.Sanitize(message),
		Timestamp: l.now().UTC(),
		Labels:    l.labels,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(l.writer, `{"severity":"ERROR","message":"failed to marshal log entry: %v"}`+"\n", err)
		return
	}
	fmt.Fprintf(l.writer, "%s\n", data)
}

func (l *StructuredLogger) Debugf(format string, args ...interface{}) {
	if l.verbose {
		l.Log(SeverityDebug, fmt.Sprintf(format, args...))
	}
}

func (l *StructuredLogger) Infof(format string, args ...interface{}) {
	l.Log(SeverityInfo, fmt.Sprintf(format, args...))
}

func (l *StructuredLogger) Warningf(format string, args ...interface{}) {
	l.Log(SeverityWarning, fmt.Sprintf(format, args...))
}

func (l *StructuredLogger) Errorf(format string, args ...interface{}) {
	l.Log(SeverityError, fmt.Sprintf(format, args...))
}

// Close is a no-op for the structured logger (writes are synchronous)
func (l *StructuredLogger) Close() error {
	return nil
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return NewTextLogger(io.Discard, false, nil)
}

var (
	_ Logger = (*TextLogger)(nil)
	_ Logger = (*StructuredLogger)(nil)
	_ Logger = (*CloudLogger)(nil)
)
