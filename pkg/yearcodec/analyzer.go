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

// Package yearcodec shows what happens to a calendar year when a sender
// narrows it to one byte, and what the correct two-byte split looks like.
package yearcodec

import (
	"fmt"
	"strconv"
)

const (
	// ModernCentury and LegacyCentury are the bases a receiver commonly adds
	// to a single year byte.
	ModernCentury = 2000
	LegacyCentury = 1900

	byteMask = 0xFF
)

// Report is the analysis of one year.
type Report struct {
	Year int
	// YearMod100 is the Euclidean remainder, always in [0, 99].
	YearMod100 int
	// TruncatedByte is the low byte of the year, what a naive cast sends.
	TruncatedByte uint8
	// ModByte is the year within its century as a byte.
	ModByte uint8
	// Candidates are the years a receiver would show for TruncatedByte,
	// modern century first.
	Candidates [2]int
	// SplitHigh and SplitLow are the century and year-in-century bytes of
	// the correct encoding.
	SplitHigh int
	SplitLow  uint8
	// HighFitsByte is false when SplitHigh cannot be sent in one byte.
	HighFitsByte bool
}

// Analyze computes the report for year. It accepts any integer.
func Analyze(year int) Report {
	low := mod(year, 100)
	high := (year - low) / 100
	truncated := uint8(year & byteMask) //nolint:gosec // masked to one byte

	return Report{
		Year:          year,
		YearMod100:    low,
		TruncatedByte: truncated,
		ModByte:       uint8(low & byteMask), //nolint:gosec // in [0, 99]
		Candidates: [2]int{
			ModernCentury + int(truncated),
			LegacyCentury + int(truncated),
		},
		SplitHigh:    high,
		SplitLow:     uint8(low), //nolint:gosec // in [0, 99]
		HighFitsByte: high >= 0 && high <= byteMask,
	}
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}

	return m
}

// Corrupted reports whether truncation changes the value a receiver sees.
func (r Report) Corrupted() bool {
	return r.TruncatedByte != r.ModByte
}

// TruncatedHex renders TruncatedByte, e.g. 0xE9.
func (r Report) TruncatedHex() string {
	return hexByte(r.TruncatedByte)
}

// ModHex renders ModByte, e.g. 0x19.
func (r Report) ModHex() string {
	return hexByte(r.ModByte)
}

// SplitHex renders the correct two timestamp bytes, e.g. 0x1419. ok is false
// when the century does not fit in a byte.
func (r Report) SplitHex() (string, bool) {
	if !r.HighFitsByte {
		return "", false
	}

	return fmt.Sprintf("0x%02X%02X", r.SplitHigh, r.SplitLow), true
}

// YearHex renders the full year, e.g. 0x7E9.
func (r Report) YearHex() string {
	if r.Year < 0 {
		return fmt.Sprintf("-0x%X", -r.Year)
	}

	return fmt.Sprintf("0x%X", r.Year)
}

// YearBinary renders the full year in binary, e.g. 0b11111101001.
func (r Report) YearBinary() string {
	if r.Year < 0 {
		return "-0b" + strconv.FormatInt(-int64(r.Year), 2)
	}

	return "0b" + strconv.FormatInt(int64(r.Year), 2)
}

func hexByte(b uint8) string {
	return fmt.Sprintf("0x%02X", b)
}
