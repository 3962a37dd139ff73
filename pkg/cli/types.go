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
	"io"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/ecgprobe/pkg/ecgheader"
	"github.com/carverauto/ecgprobe/pkg/logger"
	"github.com/carverauto/ecgprobe/pkg/yearcodec"
)

// CmdConfig holds parsed command-line configuration.
type CmdConfig struct {
	Help       bool
	SubCmd     string
	Args       []string
	HeaderFile string
	Layout     string
	JSON       bool
	ConfigFile string
	NATSURL    string
	Subject    string
	Year       int
	YearSet    bool
}

// Runtime carries the process collaborators a command runs against.
type Runtime struct {
	Stdout io.Writer
	// LogWriter receives logs when the probe config has a logging section.
	LogWriter io.Writer
	Clock     ecgheader.Clock
	Logger    logger.Logger
}

// reportStyles defines styles for rendered reports.
type reportStyles struct {
	title, label, value, hint, success, warning, error lipgloss.Style
}

// explorerModel is the interactive year explorer.
type explorerModel struct {
	yearInput   textinput.Model
	report      *yearcodec.Report
	err         error
	copyMessage string
	canCopy     bool
	copy        func(string) error
	styles      reportStyles
	appStyle    lipgloss.Style
}
