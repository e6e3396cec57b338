// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// BadgerLogger adapts a zerolog logger to badger's Logger interface
// (Errorf, Warningf, Infof, Debugf). Badger terminates its messages with
// a newline, which is trimmed.
type BadgerLogger struct {
	l zerolog.Logger
}

// NewBadgerLogger returns a badger logger writing through the global
// logger with component=ledger.
func NewBadgerLogger() *BadgerLogger {
	return &BadgerLogger{l: WithComponent("ledger")}
}

// Errorf logs at error level.
func (b *BadgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error().Msgf(trimNewline(format), args...)
}

// Warningf logs at warn level.
func (b *BadgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn().Msgf(trimNewline(format), args...)
}

// Infof logs at debug level; badger is chatty at info.
func (b *BadgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debug().Msgf(trimNewline(format), args...)
}

// Debugf logs at trace level.
func (b *BadgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Trace().Msgf(trimNewline(format), args...)
}

func trimNewline(s string) string {
	return strings.TrimRight(s, "\n")
}
