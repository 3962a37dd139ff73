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

package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/carverauto/ecgprobe/pkg/config"
	"github.com/carverauto/ecgprobe/pkg/ecgheader"
	"github.com/carverauto/ecgprobe/pkg/logger"
	"github.com/carverauto/ecgprobe/pkg/natsutil"
)

var errHeaderFileRequired = errors.New("header_file must not be empty")

// ProbeConfig is the configuration of the decode command.
type ProbeConfig struct {
	HeaderFile string                `json:"header_file"`
	Layout     string                `json:"layout"`
	Logging    *logger.Config        `json:"logging,omitempty"`
	Events     natsutil.EventsConfig `json:"events"`
}

// DefaultProbeConfig reads ECG.BIN in the working directory with the
// canonical layout and no event publishing.
func DefaultProbeConfig() *ProbeConfig {
	return &ProbeConfig{
		HeaderFile: ecgheader.DefaultHeaderFile,
		Layout:     ecgheader.DefaultLayout.Name,
		Events: natsutil.EventsConfig{
			Subject: natsutil.DefaultSubject,
		},
	}
}

// Validate implements config.Validator.
func (c *ProbeConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.HeaderFile) == "" {
		errs = append(errs, errHeaderFileRequired)
	}

	if _, err := ecgheader.LayoutByName(c.Layout); err != nil {
		errs = append(errs, err)
	}

	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := c.Events.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// LoadProbeConfig starts from DefaultProbeConfig and overlays the file at
// path, or the ECGPROBE_ environment when CONFIG_SOURCE=env. Without either
// the defaults are returned.
func LoadProbeConfig(ctx context.Context, path string, log logger.Logger) (*ProbeConfig, error) {
	cfg := DefaultProbeConfig()

	if path == "" && !strings.EqualFold(os.Getenv("CONFIG_SOURCE"), "env") {
		return cfg, nil
	}

	if err := config.NewConfig(log).LoadAndValidate(ctx, path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyOverrides folds command-line flags into the loaded configuration.
func (c *ProbeConfig) applyOverrides(cmd *CmdConfig) {
	if cmd.HeaderFile != "" {
		c.HeaderFile = cmd.HeaderFile
	}

	if cmd.Layout != "" {
		c.Layout = cmd.Layout
	}

	if cmd.NATSURL != "" {
		c.Events.Enabled = true
		c.Events.NATSURL = cmd.NATSURL
	}

	if cmd.Subject != "" {
		c.Events.Subject = cmd.Subject
	}
}
