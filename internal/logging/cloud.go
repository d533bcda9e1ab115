package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	cloudlogging "cloud.google.com/go/logging"
	"google.golang.org/api/option"
)

// DefaultLogName is the Cloud Logging log ID used when none is configured.
const DefaultLogName = "release-drafter"

// entryLogger is the subset of *cloudlogging.Logger used here.
type entryLogger interface {
	Log(e cloudlogging.Entry)
	Flush() error
}

// CloudLogger sends entries to GCP Cloud Logging and echoes them to a local
// logger so they also show up in the CI log.
type CloudLogger struct {
	client io.Closer
	logger entryLogger
	echo   *TextLogger
	mu     sync.Mutex
	closed bool
}

// NewCloudLogger creates a CloudLogger for project. labels become the
// common labels of every entry.
func NewCloudLogger(ctx context.Context, project, logName string, labels map[string]string, echo *TextLogger, opts ...option.ClientOption) (*CloudLogger, error) {
	client, err := cloudlogging.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud logging client: %w", err)
	}
	if logName == "" {
		logName = DefaultLogName
	}

	cl := newCloudLogger(client.Logger(logName, cloudlogging.CommonLabels(labels)), echo)
	cl.client = client
	return cl, nil
}

func newCloudLogger(logger entryLogger, echo *TextLogger) *CloudLogger {
	if echo == nil {
		echo = NewTextLogger(io.Discard, false, nil)
	}
	return &CloudLogger{logger: logger, echo: echo}
}

func (l *CloudLogger) log(severity cloudlogging.Severity, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.logger.Log(cloudlogging.Entry{
		Severity: severity,
		Payload:  l.echo.sanitizer.Sanitize(message),
	})
}

func (l *CloudLogger) Debugf(format string, args ...interface{}) {
	if !l.echo.verbose {
		return
	}
	l.log(cloudlogging.Debug, fmt.Sprintf(format, args...))
	l.echo.Debugf(format, args...)
}

func (l *CloudLogger) Infof(format string, args ...interface{}) {
	l.log(cloudlogging.Info, fmt.Sprintf(format, args...))
	l.echo.Infof(format, args...)
}

func (l *CloudLogger) Warningf(format string, args ...interface{}) {
	l.log(cloudlogging.Warning, fmt.Sprintf(format, args...))
	l.echo.Warningf(format, args...)
}

func (l *CloudLogger) Errorf(format string, args ...interface{}) {
	l.log(cloudlogging.Error, fmt.Sprintf(format, args...))
	l.echo.Errorf(format, args...)
}

// Close flushes buffered entries and closes the client even when the flush
// fails.
func (l *CloudLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	var flushErr, closeErr error
	if err := l.logger.Flush(); err != nil {
		flushErr = fmt.Errorf("failed to flush cloud logs: %w", err)
	}
	if l.client != nil {
		if err := l.client.Close(); err != nil {
			closeErr = fmt.Errorf("failed to close cloud logging client: %w", err)
		}
	}
	return errors.Join(flushErr, closeErr)
}
