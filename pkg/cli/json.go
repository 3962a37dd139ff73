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
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strings"
	"time"

	"github.com/carverauto/ecgprobe/pkg/ecgheader"
	"github.com/carverauto/ecgprobe/pkg/models"
	"github.com/carverauto/ecgprobe/pkg/version"
	"github.com/carverauto/ecgprobe/pkg/yearcodec"
)

const (
	errorKindSource       = "source_unavailable"
	errorKindInsufficient = "insufficient_data"
	errorKindCalendar     = "invalid_calendar_value"
	errorKindOther        = "error"
)

type fieldJSON struct {
	Byte  int    `json:"byte"`
	Name  string `json:"name"`
	Label string `json:"label"`
	Value uint8  `json:"value"`
	Hex   string `json:"hex"`
}

type errorJSON struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Value   *int   `json:"value,omitempty"`
	Min     *int   `json:"min,omitempty"`
	Max     *int   `json:"max,omitempty"`
}

type decodeJSON struct {
	Source            string      `json:"source"`
	Layout            string      `json:"layout,omitempty"`
	HeaderHex         string      `json:"header_hex"`
	SerialNumber      string      `json:"serial_number,omitempty"`
	Fields            []fieldJSON `json:"fields,omitempty"`
	TimestampHex      string      `json:"timestamp_hex,omitempty"`
	FullYear          int         `json:"full_year,omitempty"`
	Timestamp         *time.Time  `json:"timestamp,omitempty"`
	ReferenceTime     *time.Time  `json:"reference_time,omitempty"`
	DifferenceSeconds *float64    `json:"difference_seconds,omitempty"`
	Valid             bool        `json:"valid"`
	Plausible         bool        `json:"plausible"`
	Error             *errorJSON  `json:"error,omitempty"`
}

type analysisJSON struct {
	Year          int    `json:"year"`
	YearMod100    int    `json:"year_mod_100"`
	YearHex       string `json:"year_hex"`
	YearBinary    string `json:"year_binary"`
	TruncatedByte uint8  `json:"truncated_byte"`
	TruncatedHex  string `json:"truncated_hex"`
	ModByte       uint8  `json:"mod_byte"`
	ModHex        string `json:"mod_hex"`
	Candidates    [2]int `json:"candidates"`
	Corrupted     bool   `json:"corrupted"`
	SplitHigh     int    `json:"split_high"`
	SplitLow      uint8  `json:"split_low"`
	HighFitsByte  bool   `json:"high_fits_byte"`
	SplitHex      string `json:"split_hex,omitempty"`
}

func newDecodeJSON(source string, raw []byte, result *ecgheader.Result, err error) *decodeJSON {
	out := &decodeJSON{
		Source:    source,
		HeaderHex: strings.ToUpper(hex.EncodeToString(raw)),
		Error:     newErrorJSON(err),
	}

	if result == nil {
		return out
	}

	out.Layout = result.Layout
	out.SerialNumber = result.SerialNumber.String()
	out.TimestampHex = result.Fields.ProtocolHex()
	out.FullYear = result.FullYear

	if layout, layoutErr := ecgheader.LayoutByName(result.Layout); layoutErr == nil {
		for _, f := range layout.Fields {
			v, ok := result.Fields.Value(f.ID)
			if !ok {
				continue
			}

			out.Fields = append(out.Fields, fieldJSON{
				Byte:  f.Offset + 1,
				Name:  f.ID.String(),
				Label: f.Label,
				Value: v,
				Hex:   hexByte(v),
			})
		}
	}

	if result.Valid() {
		ts := result.Timestamp
		ref := result.Verdict.Reference
		seconds := roundSeconds(result.Verdict.Seconds)

		out.Timestamp = &ts
		out.ReferenceTime = &ref
		out.DifferenceSeconds = &seconds
		out.Valid = true
		out.Plausible = result.Plausible()
	}

	return out
}

func newErrorJSON(err error) *errorJSON {
	if err == nil {
		return nil
	}

	out := &errorJSON{Kind: errorKind(err), Message: err.Error()}

	var calErr *ecgheader.CalendarError
	if errors.As(err, &calErr) {
		value, lo, hi := calErr.Value, calErr.Min, calErr.Max
		out.Field = calErr.Field.String()
		out.Value = &value
		out.Min = &lo
		out.Max = &hi
	}

	return out
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ecgheader.ErrSourceUnavailable):
		return errorKindSource
	case errors.Is(err, ecgheader.ErrInsufficientData):
		return errorKindInsufficient
	case errors.Is(err, ecgheader.ErrInvalidCalendarValue):
		return errorKindCalendar
	default:
		return errorKindOther
	}
}

func newAnalysisJSON(r yearcodec.Report) *analysisJSON {
	split, _ := r.SplitHex()

	return &analysisJSON{
		Year:          r.Year,
		YearMod100:    r.YearMod100,
		YearHex:       r.YearHex(),
		YearBinary:    r.YearBinary(),
		TruncatedByte: r.TruncatedByte,
		TruncatedHex:  r.TruncatedHex(),
		ModByte:       r.ModByte,
		ModHex:        r.ModHex(),
		Candidates:    r.Candidates,
		Corrupted:     r.Corrupted(),
		SplitHigh:     r.SplitHigh,
		SplitLow:      r.SplitLow,
		HighFitsByte:  r.HighFitsByte,
		SplitHex:      split,
	}
}

// newEventData converts a decode outcome to the published event payload.
func newEventData(runID string, report *decodeJSON, reference time.Time) *models.HeaderDecodedEventData {
	data := &models.HeaderDecodedEventData{
		RunID:             runID,
		Source:            report.Source,
		Layout:            report.Layout,
		HeaderHex:         report.HeaderHex,
		SerialNumber:      report.SerialNumber,
		TimestampHex:      report.TimestampHex,
		FullYear:          report.FullYear,
		Timestamp:         report.Timestamp,
		ReferenceTime:     reference,
		DifferenceSeconds: report.DifferenceSeconds,
		Plausible:         report.Plausible,
		ProbeVersion:      version.GetVersion(),
	}

	if report.ReferenceTime != nil {
		data.ReferenceTime = *report.ReferenceTime
	}

	if report.Error != nil {
		data.Error = report.Error.Message
	}

	return data
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func roundSeconds(seconds float64) float64 {
	return math.Round(seconds*1000) / 1000
}
