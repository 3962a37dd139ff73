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
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/ecgprobe/pkg/ecgheader"
	"github.com/carverauto/ecgprobe/pkg/yearcodec"
)

// Dracula theme colors.
const (
	draculaForeground = "#F8F8F2"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaOrange     = "#FFB86C"
	draculaPink       = "#FF79C6"
	draculaPurple     = "#BD93F9"
	draculaRed        = "#FF5555"
	draculaYellow     = "#F1FA8C"
	draculaComment    = "#6272A4"
)

const (
	labelWidth     = 16
	minuteLayout   = "2006-01-02 15:04"
	secondLayout   = "2006-01-02 15:04:05"
	appPadding     = 2
	verdictOK      = "✓ Time encoding is correct!"
	verdictSuspect = "⚠ Large time difference, possible issue"
)

func newReportStyles(r *lipgloss.Renderer) reportStyles {
	return reportStyles{
		title: r.NewStyle().
			Foreground(lipgloss.Color(draculaPink)).
			Bold(true),
		label: r.NewStyle().
			Foreground(lipgloss.Color(draculaYellow)),
		value: r.NewStyle().
			Foreground(lipgloss.Color(draculaForeground)),
		hint: r.NewStyle().
			Foreground(lipgloss.Color(draculaComment)),
		success: r.NewStyle().
			Foreground(lipgloss.Color(draculaGreen)),
		warning: r.NewStyle().
			Foreground(lipgloss.Color(draculaOrange)).
			Bold(true),
		error: r.NewStyle().
			Foreground(lipgloss.Color(draculaRed)).
			Bold(true),
	}
}

// report accumulates styled lines and writes them in one go.
type report struct {
	styles reportStyles
	b      strings.Builder
}

func (r *report) title(text string) {
	if r.b.Len() > 0 {
		r.b.WriteString("\n")
	}

	r.b.WriteString(r.styles.title.Render(text) + "\n")
}

func (r *report) row(label, format string, args ...interface{}) {
	r.b.WriteString("  " + r.styles.label.Render(fmt.Sprintf("%-*s", labelWidth, label+":")) +
		r.styles.value.Render(fmt.Sprintf(format, args...)) + "\n")
}

func (r *report) line(style lipgloss.Style, text string) {
	r.b.WriteString(style.Render(text) + "\n")
}

func (r *report) writeTo(w io.Writer) error {
	_, err := io.WriteString(w, r.b.String())

	return err
}

// RenderDecode writes the human readable decode report. err is the error
// returned by the byte source or the decoder; result may be nil.
func RenderDecode(w io.Writer, raw []byte, result *ecgheader.Result, err error) error {
	rep := &report{styles: newReportStyles(lipgloss.NewRenderer(w))}
	renderDecode(rep, raw, result, err)

	return rep.writeTo(w)
}

func renderDecode(rep *report, raw []byte, result *ecgheader.Result, err error) {
	if errors.Is(err, ecgheader.ErrSourceUnavailable) {
		rep.line(rep.styles.error, "⚠ "+err.Error())

		return
	}

	rep.title("ECG header")
	rep.row("Full header", "%s", spacedHex(raw))

	if len(raw) >= ecgheader.SerialNumberLength {
		rep.row("SN (bytes 1-6)", "%s", spacedHex(raw[:ecgheader.SerialNumberLength]))
	}

	if result == nil {
		if err != nil {
			rep.line(rep.styles.error, "⚠ "+err.Error())
		}

		return
	}

	rep.row("Timestamp", "%s", spacedHex(result.Fields.Raw))

	layout, layoutErr := ecgheader.LayoutByName(result.Layout)
	if layoutErr != nil {
		layout = ecgheader.DefaultLayout
	}

	rep.title(fmt.Sprintf("Fields (layout %s)", layout.Name))

	for _, f := range layout.Fields {
		v, ok := result.Fields.Value(f.ID)
		if !ok {
			continue
		}

		fmt.Fprintf(&rep.b, "  byte %d: 0x%02X = %d (%s)\n", f.Offset+1, v, v, f.Label)
	}

	rep.row("Full year", "%d", result.FullYear)
	rep.row("Protocol hex", "%s", result.Fields.ProtocolHex())

	var calErr *ecgheader.CalendarError
	if errors.As(err, &calErr) {
		rep.line(rep.styles.error, fmt.Sprintf("⚠ Invalid time value: %s", calErr.Error()))

		return
	}

	if !result.Valid() {
		return
	}

	timeLayout := minuteLayout
	if layout.Has(ecgheader.FieldSecond) {
		timeLayout = secondLayout
	}

	rep.row("Decoded time", "%s", result.Timestamp.Format(timeLayout))

	rep.title("Plausibility")
	rep.row("Current time", "%s", result.Verdict.Reference.Format(timeLayout))
	rep.row("Difference", "%s seconds", formatSeconds(result.Verdict.Seconds))

	if result.Plausible() {
		rep.line(rep.styles.success, verdictOK)
	} else {
		rep.line(rep.styles.warning, verdictSuspect)
	}
}

// RenderAnalysis writes the byte truncation demonstration for one year.
func RenderAnalysis(w io.Writer, r yearcodec.Report) error {
	rep := &report{styles: newReportStyles(lipgloss.NewRenderer(w))}
	renderAnalysis(rep, r)

	return rep.writeTo(w)
}

func renderAnalysis(rep *report, r yearcodec.Report) {
	rep.title(fmt.Sprintf("Year %d", r.Year))
	rep.row("Year mod 100", "%d", r.YearMod100)
	rep.row("Binary", "%s", r.YearBinary())
	rep.row("Hex", "%s", r.YearHex())
	rep.row("year & 0xFF", "%d (%s)", r.TruncatedByte, r.TruncatedHex())
	rep.row("year % 100", "%d (%s)", r.ModByte, r.ModHex())

	rep.title(fmt.Sprintf("If a device reads %d as the year", r.TruncatedByte))
	rep.row("Modern century", "%d", r.Candidates[0])
	rep.row("Legacy century", "%d", r.Candidates[1])

	rep.title("Correct encoding")

	if split, ok := r.SplitHex(); ok {
		rep.row("Century byte", "%d (0x%02X)", r.SplitHigh, r.SplitHigh)
		rep.row("Year byte", "%d (0x%02X)", r.SplitLow, r.SplitLow)
		rep.row("Protocol hex", "%s", split)
	} else {
		rep.line(rep.styles.error, fmt.Sprintf("⚠ Century %d does not fit in one byte", r.SplitHigh))
	}

	if r.Corrupted() {
		rep.line(rep.styles.warning, "⚠ Single byte truncation corrupts this year")
	} else {
		rep.line(rep.styles.success, "✓ Single byte truncation keeps the year in century")
	}
}

func spacedHex(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}

	return strings.Join(parts, " ")
}

func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%.0f", math.Round(seconds))
}

func hexByte(b uint8) string {
	return fmt.Sprintf("0x%02X", b)
}
