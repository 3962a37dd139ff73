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

// Package config loads JSON configuration from a file or from environment
// variables and validates it.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/carverauto/ecgprobe/pkg/logger"
)

var (
	errInvalidConfigSource = errors.New("invalid CONFIG_SOURCE value")
	errConfigPathRequired  = errors.New("config path is required for CONFIG_SOURCE=file")
)

const (
	configSourceFile = "file"
	configSourceEnv  = "env"

	// DefaultEnvPrefix prefixes every variable read by the env loader.
	DefaultEnvPrefix = "ECGPROBE_"
)

// ConfigLoader fills dst from a configuration source.
type ConfigLoader interface {
	Load(ctx context.Context, path string, dst interface{}) error
}

// Validator is implemented by configurations that can check themselves.
type Validator interface {
	Validate() error
}

// Config holds the configuration loading dependencies.
type Config struct {
	defaultLoader ConfigLoader
	logger        logger.Logger
}

// NewConfig initializes a new Config with a file loader. A nil logger
// discards config loading logs.
func NewConfig(log logger.Logger) *Config {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Config{
		defaultLoader: &FileConfigLoader{},
		logger:        log,
	}
}

// ValidateConfig validates a configuration if it implements Validator.
func ValidateConfig(cfg interface{}) error {
	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}

	return v.Validate()
}

// LoadAndValidate loads cfg from the source selected by CONFIG_SOURCE and
// validates it.
func (c *Config) LoadAndValidate(ctx context.Context, path string, cfg interface{}) error {
	loader, err := c.loaderFor(strings.ToLower(os.Getenv("CONFIG_SOURCE")), path)
	if err != nil {
		return err
	}

	if err := loader.Load(ctx, path, cfg); err != nil {
		return err
	}

	return ValidateConfig(cfg)
}

func (c *Config) loaderFor(source, path string) (ConfigLoader, error) {
	switch source {
	case configSourceEnv:
		prefix := os.Getenv("CONFIG_ENV_PREFIX")
		if prefix == "" {
			prefix = DefaultEnvPrefix
		}

		return NewEnvConfigLoader(c.logger, prefix), nil
	case configSourceFile, "":
		if path == "" {
			return nil, errConfigPathRequired
		}

		c.logger.Debug().Str("path", path).Msg("Loading configuration from file")

		return c.defaultLoader, nil
	default:
		return nil, fmt.Errorf("%w: %s (expected '%s' or '%s')",
			errInvalidConfigSource, source, configSourceFile, configSourceEnv)
	}
}
