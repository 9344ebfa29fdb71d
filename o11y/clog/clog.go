// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package clog provides context aware logging.
// A run stores its run id and labels (e.g. the source file being mapped)
// in the context, and every log entry emitted with that context carries them.
//
// Entries are modelled as Cloud logging.Entry, but they are written
// locally with glog.
package clog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/logging"
	"github.com/golang/glog"
)

type contextKeyType int

var contextKey contextKeyType

// DefaultFormatter prefixes the payload with the span id and sorted labels.
func DefaultFormatter(e logging.Entry) string {
	if e.SpanID == "" && len(e.Labels) == 0 {
		return fmt.Sprintf("%v", e.Payload)
	}
	var sb strings.Builder
	if e.SpanID != "" {
		fmt.Fprintf(&sb, "[%s]", e.SpanID)
	}
	keys := make([]string, 0, len(e.Labels))
	for k := range e.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%s", k, e.Labels[k])
	}
	fmt.Fprintf(&sb, " %v", e.Payload)
	return strings.TrimPrefix(sb.String(), " ")
}

var defaultLogger = &Logger{Formatter: DefaultFormatter}

// New creates a new Logger.
func New(ctx context.Context) *Logger {
	return &Logger{
		Formatter: DefaultFormatter,
	}
}

// NewContext sets the given logger to the context.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey, logger)
}

// NewSpan sets a new logger.Span with the given labels to the context.
func NewSpan(ctx context.Context, trace, spanID string, labels map[string]string) context.Context {
	return NewContext(ctx, FromContext(ctx).Span(trace, spanID, labels))
}

// FromContext returns a logger in the context, or the default logger
// if it's not set.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey).(*Logger)
	if !ok || logger == nil {
		return defaultLogger
	}
	return logger
}

// Logger holds the trace, spanID, arbitrary labels of the context.
type Logger struct {
	// Formatter is a formatter of the entry for glog.
	Formatter func(e logging.Entry) string

	trace  string
	spanID string
	labels map[string]string
}

// Span returns a sub logger for the trace span.
// labels are merged with the labels of l.
func (l *Logger) Span(trace, spanID string, labels map[string]string) *Logger {
	merged := make(map[string]string, len(l.labels)+len(labels))
	for k, v := range l.labels {
		merged[k] = v
	}
	for k, v := range labels {
		merged[k] = v
	}
	return &Logger{
		Formatter: l.Formatter,
		trace:     trace,
		spanID:    spanID,
		labels:    merged,
	}
}

// Labels returns labels of the logger.
func (l *Logger) Labels() map[string]string {
	return l.labels
}

func (l *Logger) log(e logging.Entry) {
	formatter := l.Formatter
	if formatter == nil {
		formatter = DefaultFormatter
	}
	msg := formatter(e)
	switch e.Severity {
	case logging.Info:
		glog.InfoDepth(2, msg)
	case logging.Warning:
		glog.WarningDepth(2, msg)
	case logging.Error:
		glog.ErrorDepth(2, msg)
	case logging.Emergency:
		glog.ExitDepth(2, msg)
	default:
		glog.InfoDepth(2, fmt.Sprintf("%s %s", e.Severity, msg))
	}
}

// Infof logs at info log level in the manner of fmt.Printf.
func (l *Logger) Infof(format string, args ...any) {
	l.log(l.Entry(logging.Info, fmt.Sprintf(format, args...)))
}

// Infof logs at info log level in the manner of fmt.Printf.
func Infof(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.log(logger.Entry(logging.Info, fmt.Sprintf(format, args...)))
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func (l *Logger) Warningf(format string, args ...any) {
	l.log(l.Entry(logging.Warning, fmt.Sprintf(format, args...)))
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func Warningf(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.log(logger.Entry(logging.Warning, fmt.Sprintf(format, args...)))
}

// Errorf logs at error log level in the manner of fmt.Printf.
func (l *Logger) Errorf(format string, args ...any) {
	l.log(l.Entry(logging.Error, fmt.Sprintf(format, args...)))
}

// Errorf logs at error log level in the manner of fmt.Printf.
func Errorf(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.log(logger.Entry(logging.Error, fmt.Sprintf(format, args...)))
}

// Exitf logs at fatal log level in the manner of fmt.Printf, and exit.
func Exitf(ctx context.Context, format string, args ...any) {
	logger := FromContext(ctx)
	logger.log(logger.Entry(logging.Emergency, fmt.Sprintf(format, args...)))
}

// Entry creates a new log entry for the given severity.
func (l *Logger) Entry(severity logging.Severity, payload any) logging.Entry {
	return logging.Entry{
		Timestamp: time.Now(),
		Severity:  severity,
		Payload:   payload,
		Labels:    l.labels,
		Trace:     l.trace,
		SpanID:    l.spanID,
	}
}

// V checks at verbose log level.
func (l *Logger) V(level int) bool {
	return bool(glog.V(glog.Level(level)))
}

// Close closes the logger. it will flush log entries.
func (l *Logger) Close() {
	glog.Flush()
}
