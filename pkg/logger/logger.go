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

// Package logger provides JSON structured logging using zerolog
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var globalLogger zerolog.Logger //nolint:gochecknoglobals // process-wide default logger

// Config selects the level, destination and time format of the logger.
type Config struct {
	Level      string `json:"level"`
	Debug      bool   `json:"debug"`
	Output     string `json:"output"`
	TimeFormat string `json:"time_format"`
}

func init() {
	globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.TimeFieldFormat = time.RFC3339
}

// Validate checks that the level and output are understood.
func (c *Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}

	switch c.Output {
	case "", OutputStdout, OutputStderr:
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownOutput, c.Output)
	}
}

func (c *Config) level() (zerolog.Level, error) {
	if c.Debug {
		return zerolog.DebugLevel, nil
	}

	if c.Level == "" {
		return zerolog.InfoLevel, nil
	}

	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	return level, nil
}

func (c *Config) writer() io.Writer {
	if c.Output == OutputStdout {
		return os.Stdout
	}

	return os.Stderr
}

// Init configures the global logger.
func Init(config *Config) error {
	if config == nil {
		config = DefaultConfig()
	}

	level, err := config.level()
	if err != nil {
		return err
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	globalLogger = zerolog.New(config.writer()).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = globalLogger

	return nil
}

func SetLevel(level zerolog.Level) {
	globalLogger = globalLogger.Level(level)
	log.Logger = globalLogger
}

func SetDebug(debug bool) {
	if debug {
		SetLevel(zerolog.DebugLevel)
	} else {
		SetLevel(zerolog.InfoLevel)
	}
}

func GetLogger() zerolog.Logger {
	return globalLogger
}

func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}
