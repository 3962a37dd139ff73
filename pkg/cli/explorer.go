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
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/ecgprobe/pkg/yearcodec"
)

const (
	yearInputWidth = 12
	yearCharLimit  = 6
	copyKey        = "c"
)

func newExplorerModel(initial string, canCopy bool, copyFn func(string) error, r *lipgloss.Renderer) *explorerModel {
	yi := textinput.New()
	yi.Placeholder = "Enter a year, e.g. 2025"
	yi.CharLimit = yearCharLimit
	yi.Width = yearInputWidth
	yi.Focus()
	yi.PromptStyle = r.NewStyle().Foreground(lipgloss.Color(draculaCyan))
	yi.TextStyle = r.NewStyle().Foreground(lipgloss.Color(draculaForeground))
	yi.PlaceholderStyle = r.NewStyle().Foreground(lipgloss.Color(draculaComment))
	yi.SetValue(initial)

	m := &explorerModel{
		yearInput: yi,
		canCopy:   canCopy,
		copy:      copyFn,
		styles:    newReportStyles(r),
		appStyle: r.NewStyle().
			Padding(1, appPadding).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(draculaPurple)),
	}
	m.analyze()

	return m
}

func (*explorerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *explorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKeyMsg(keyMsg)
	}

	var cmd tea.Cmd

	m.yearInput, cmd = m.yearInput.Update(msg)

	return m, cmd
}

func (m *explorerModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // Default case handles all unlisted keys
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyRunes:
		if strings.EqualFold(msg.String(), copyKey) {
			m.copyProtocolHex()

			return m, nil
		}

		return m.handleDefault(msg)
	default:
		return m.handleDefault(msg)
	}
}

func (m *explorerModel) handleDefault(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	m.yearInput, cmd = m.yearInput.Update(msg)
	m.copyMessage = ""
	m.analyze()

	return m, cmd
}

func (m *explorerModel) analyze() {
	value := strings.TrimSpace(m.yearInput.Value())
	if value == "" {
		m.report, m.err = nil, nil

		return
	}

	year, err := strconv.Atoi(value)
	if err != nil {
		m.report, m.err = nil, fmt.Errorf("%w: %q", errInvalidYear, value)

		return
	}

	r := yearcodec.Analyze(year)
	m.report, m.err = &r, nil
}

func (m *explorerModel) copyProtocolHex() {
	if m.report == nil || !m.canCopy {
		return
	}

	split, ok := m.report.SplitHex()
	if !ok {
		m.copyMessage = "Failed to copy: century does not fit in one byte"

		return
	}

	if err := m.copy(split); err != nil {
		m.copyMessage = "Failed to copy to clipboard"
	} else {
		m.copyMessage = split + " copied to clipboard!"
	}
}

func (m *explorerModel) View() string {
	rep := &report{styles: m.styles}

	rep.line(m.styles.title, "ecgprobe: year encoding explorer")
	rep.b.WriteString("\n" + m.yearInput.View() + "\n")

	switch {
	case m.err != nil:
		rep.b.WriteString("\n")
		rep.line(m.styles.error, fmt.Sprintf("Error: %v", m.err))
	case m.report != nil:
		renderAnalysis(rep, *m.report)
	}

	rep.b.WriteString("\n")

	help := "Ctrl+C/Esc → quit"
	if m.canCopy {
		help = "C → copy protocol hex | " + help
	}

	rep.line(m.styles.hint, help)

	if m.copyMessage != "" {
		style := m.styles.success
		if strings.HasPrefix(m.copyMessage, "Failed") {
			style = m.styles.error
		}

		rep.line(style, m.copyMessage)
	}

	return m.appStyle.Align(lipgloss.Left).Render(rep.b.String())
}

// clipboardAvailable reports whether the clipboard can be read, leaving its
// contents untouched.
func clipboardAvailable(read func() (string, error)) bool {
	_, err := read()

	return err == nil
}

// RunInteractive runs the year explorer TUI, starting from initial.
func RunInteractive(initial string) error {
	canCopy := clipboardAvailable(clipboard.ReadAll)

	m := newExplorerModel(initial, canCopy, clipboard.WriteAll, lipgloss.DefaultRenderer())
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()

	return err
}
