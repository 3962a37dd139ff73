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
	"os"

	"github.com/carverauto/ecgprobe/pkg/ecgheader"
	"github.com/carverauto/ecgprobe/pkg/logger"
)

// withDefaults fills unset collaborators with the process defaults.
func (rt *Runtime) withDefaults() *Runtime {
	out := Runtime{}
	if rt != nil {
		out = *rt
	}

	if out.Stdout == nil {
		out.Stdout = os.Stdout
	}

	if out.LogWriter == nil {
		out.LogWriter = os.Stderr
	}

	if out.Clock == nil {
		out.Clock = ecgheader.SystemClock()
	}

	if out.Logger == nil {
		out.Logger = logger.NewNopLogger()
	}

	return &out
}

// probeLogger returns a logger built from the probe's logging section, or the
// runtime logger when there is none.
func (rt *Runtime) probeLogger(probe *ProbeConfig) (logger.Logger, error) {
	if probe.Logging == nil {
		return rt.Logger, nil
	}

	return logger.NewWithWriter(rt.LogWriter, probe.Logging)
}

// IsInputFromTerminal determines if input is coming from a terminal or being piped/redirected.
func IsInputFromTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}

	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
