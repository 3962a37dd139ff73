/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the logging surface handed to components.
type Logger interface {
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	With() zerolog.Context
	WithComponent(component string) Logger
	WithFields(fields map[string]interface{}) Logger
	SetLevel(level zerolog.Level)
	SetDebug(debug bool)
}

// zerologLogger implements Logger without touching global state.
type zerologLogger struct {
	logger zerolog.Logger
}

// New creates a Logger from config. A nil config uses DefaultConfig.
func New(config *Config) (Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	return NewWithWriter(config.writer(), config)
}

// NewWithWriter creates a Logger writing to w instead of the configured
// output.
func NewWithWriter(w io.Writer, config *Config) (Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	level, err := config.level()
	if err != nil {
		return nil, err
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	return &zerologLogger{
		logger: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}, nil
}

func (l *zerologLogger) Debug() *zerolog.Event { return l.logger.Debug() }
func (l *zerologLogger) Info() *zerolog.Event  { return l.logger.Info() }
func (l *zerologLogger) Warn() *zerolog.Event  { return l.logger.Warn() }
func (l *zerologLogger) Error() *zerolog.Event { return l.logger.Error() }
func (l *zerologLogger) With() zerolog.Context { return l.logger.With() }

func (l *zerologLogger) WithComponent(component string) Logger {
	return &zerologLogger{logger: l.logger.With().Str("component", component).Logger()}
}

func (l *zerologLogger) WithFields(fields map[string]interface{}) Logger {
	return &zerologLogger{logger: l.logger.With().Fields(fields).Logger()}
}

func (l *zerologLogger) SetLevel(level zerolog.Level) {
	l.logger = l.logger.Level(level)
}

func (l *zerologLogger) SetDebug(debug bool) {
	if debug {
		l.SetLevel(zerolog.DebugLevel)
	} else {
		l.SetLevel(zerolog.InfoLevel)
	}
}

// NewNopLogger creates a logger that discards all output. Components fall
// back to it when no logger is supplied, and tests use it directly.
func NewNopLogger() Logger {
	return &nopLogger{nop: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}

type nopLogger struct {
	nop zerolog.Logger
}

func (n *nopLogger) Debug() *zerolog.Event { return n.nop.Debug() }
func (n *nopLogger) Info() *zerolog.Event  { return n.nop.Info() }
func (n *nopLogger) Warn() *zerolog.Event  { return n.nop.Warn() }
func (n *nopLogger) Error() *zerolog.Event { return n.nop.Error() }
func (n *nopLogger) With() zerolog.Context { return n.nop.With() }

func (n *nopLogger) WithComponent(string) Logger              { return n }
func (n *nopLogger) WithFields(map[string]interface{}) Logger { return n }
func (*nopLogger) SetLevel(zerolog.Level)                     { /* no-op */ }
func (*nopLogger) SetDebug(bool)                              { /* no-op */ }
