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

package ecgheader

import (
	"encoding/hex"
	"math"
	"strings"
	"time"
)

// PlausibilityWindow is the largest clock difference still treated as a
// correctly encoded timestamp. It assumes the recorder and the host clocks
// are roughly in sync.
const PlausibilityWindow = time.Hour

// SerialNumber is the opaque device identifier at the start of the header.
type SerialNumber [SerialNumberLength]byte

// String renders the serial number as upper-case hex, e.g. 123456789ABC.
func (s SerialNumber) String() string {
	return strings.ToUpper(hex.EncodeToString(s[:]))
}

// MarshalText implements encoding.TextMarshaler.
func (s SerialNumber) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TimestampFields holds the raw timestamp bytes as sliced from the header.
// Fields the layout does not carry stay zero.
type TimestampFields struct {
	YearHigh uint8
	YearLow  uint8
	Month    uint8
	Day      uint8
	Hour     uint8
	Minute   uint8
	Second   uint8
	// Raw is the contiguous timestamp region of the header.
	Raw []byte
}

// Value returns the raw byte sliced for the field id.
func (f *TimestampFields) Value(id FieldID) (uint8, bool) {
	switch id {
	case FieldYearHigh:
		return f.YearHigh, true
	case FieldYearLow:
		return f.YearLow, true
	case FieldMonth:
		return f.Month, true
	case FieldDay:
		return f.Day, true
	case FieldHour:
		return f.Hour, true
	case FieldMinute:
		return f.Minute, true
	case FieldSecond:
		return f.Second, true
	case FieldSerial, FieldYear:
		return 0, false
	default:
		return 0, false
	}
}

// ProtocolHex renders the timestamp bytes the way the protocol document
// writes them, e.g. 0x14190B1D0E1E.
func (f *TimestampFields) ProtocolHex() string {
	return "0x" + strings.ToUpper(hex.EncodeToString(f.Raw))
}

// Verdict compares a decoded timestamp with the reference time.
type Verdict struct {
	Reference time.Time
	// Difference saturates at the limits of time.Duration; use Seconds for
	// timestamps centuries away.
	Difference time.Duration
	Seconds    float64
	Plausible  bool
}

// Judge builds the verdict for ts against now.
func Judge(ts, now time.Time) Verdict {
	seconds := math.Abs(float64(now.Unix()-ts.Unix()) +
		float64(now.Nanosecond()-ts.Nanosecond())/float64(time.Second))

	diff := now.Sub(ts)
	if ts.After(now) {
		diff = ts.Sub(now)
	}

	return Verdict{
		Reference:  now,
		Difference: diff,
		Seconds:    seconds,
		Plausible:  seconds < PlausibilityWindow.Seconds(),
	}
}

// Result is everything decoded from one header.
type Result struct {
	Layout       string
	SerialNumber SerialNumber
	Fields       TimestampFields
	FullYear     int
	// Timestamp and Verdict are only set when the fields form a real date.
	Timestamp time.Time
	Verdict   *Verdict
}

// Valid reports whether the timestamp fields formed a calendar value.
func (r *Result) Valid() bool {
	return r != nil && r.Verdict != nil
}

// Plausible reports whether the decoded time is close to the reference time.
func (r *Result) Plausible() bool {
	return r.Valid() && r.Verdict.Plausible
}
