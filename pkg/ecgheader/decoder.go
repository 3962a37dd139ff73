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

// Package ecgheader decodes the serial number and creation timestamp from the
// header of an ECG recorder file and checks that the timestamp is plausible.
package ecgheader

import (
	"fmt"
	"time"

	"github.com/carverauto/ecgprobe/pkg/logger"
)

const (
	minYear   = 1
	maxYear   = 9999
	maxHour   = 23
	maxMinute = 59
	maxSecond = 59
	maxMonth  = 12
)

// Decoder decodes headers with a fixed layout against an injected clock.
type Decoder struct {
	layout *Layout
	clock  Clock
	logger logger.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLayout selects the header layout. A nil layout is ignored.
func WithLayout(layout *Layout) Option {
	return func(d *Decoder) {
		if layout != nil {
			d.layout = layout
		}
	}
}

// WithClock replaces the wall clock used for the plausibility check.
func WithClock(clock Clock) Option {
	return func(d *Decoder) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(log logger.Logger) Option {
	return func(d *Decoder) {
		if log != nil {
			d.logger = log
		}
	}
}

// NewDecoder returns a Decoder for DefaultLayout using the local wall clock.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{
		layout: DefaultLayout,
		clock:  realClock{},
		logger: logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Layout returns the layout the decoder slices headers with.
func (d *Decoder) Layout() *Layout {
	return d.layout
}

// Decode decodes raw with the decoder's layout, reading the clock once.
// See DecodeLayout for the result and error contract.
func (d *Decoder) Decode(raw []byte) (*Result, error) {
	now := d.clock.Now()

	result, err := DecodeLayout(d.layout, raw, now)
	if result == nil {
		d.logger.Debug().
			Str("layout", d.layout.Name).
			Int("bytes", len(raw)).
			Err(err).
			Msg("Header too short to decode")

		return nil, err
	}

	event := d.logger.Debug().
		Str("layout", result.Layout).
		Str("serial_number", result.SerialNumber.String()).
		Str("timestamp_hex", result.Fields.ProtocolHex()).
		Int("full_year", result.FullYear)

	if err != nil {
		event.Err(err).Msg("Header timestamp is not a calendar value")

		return result, err
	}

	event.Time("timestamp", result.Timestamp).
		Float64("difference_seconds", result.Verdict.Seconds).
		Bool("plausible", result.Verdict.Plausible).
		Msg("Decoded header timestamp")

	return result, nil
}

// Decode decodes raw with DefaultLayout. now is the reference time for the
// plausibility check and its location is the zone the device time is read in.
func Decode(raw []byte, now time.Time) (*Result, error) {
	return DecodeLayout(DefaultLayout, raw, now)
}

// DecodeLayout decodes raw with the given layout.
//
// A header shorter than the layout returns a nil result and an error wrapping
// ErrInsufficientData. Timestamp bytes that do not form a real date return
// the populated result together with a *CalendarError, so callers can still
// show what was decoded. A valid but implausible timestamp is not an error.
func DecodeLayout(layout *Layout, raw []byte, now time.Time) (*Result, error) {
	if layout == nil {
		layout = DefaultLayout
	}

	if need := layout.MinLength(); len(raw) < need {
		return nil, fmt.Errorf("%w: got %d bytes, layout %s needs %d",
			ErrInsufficientData, len(raw), layout.Name, need)
	}

	result := &Result{Layout: layout.Name}
	sliceFields(layout, raw, result)

	f := &result.Fields
	result.FullYear = layout.YearBase + int(f.YearHigh)*100 + int(f.YearLow)

	ts, err := calendarTime(result.FullYear, f, now.Location())
	if err != nil {
		return result, err
	}

	verdict := Judge(ts, now)
	result.Timestamp = ts
	result.Verdict = &verdict

	return result, nil
}

func sliceFields(layout *Layout, raw []byte, result *Result) {
	start, end := -1, 0
	f := &result.Fields

	for _, field := range layout.Fields {
		b := raw[field.Offset:field.End()]

		if field.ID != FieldSerial {
			if start < 0 || field.Offset < start {
				start = field.Offset
			}

			if field.End() > end {
				end = field.End()
			}
		}

		switch field.ID {
		case FieldSerial:
			copy(result.SerialNumber[:], b)
		case FieldYearHigh:
			f.YearHigh = b[0]
		case FieldYearLow:
			f.YearLow = b[0]
		case FieldMonth:
			f.Month = b[0]
		case FieldDay:
			f.Day = b[0]
		case FieldHour:
			f.Hour = b[0]
		case FieldMinute:
			f.Minute = b[0]
		case FieldSecond:
			f.Second = b[0]
		case FieldYear:
		}
	}

	if start >= 0 {
		f.Raw = append([]byte(nil), raw[start:end]...)
	}
}

// calendarTime validates every field before building the time, since
// time.Date would silently normalize month 13 into January of the next year.
func calendarTime(year int, f *TimestampFields, loc *time.Location) (time.Time, error) {
	if year < minYear || year > maxYear {
		return time.Time{}, &CalendarError{Field: FieldYear, Value: year, Min: minYear, Max: maxYear}
	}

	if f.Month < 1 || f.Month > maxMonth {
		return time.Time{}, &CalendarError{Field: FieldMonth, Value: int(f.Month), Min: 1, Max: maxMonth}
	}

	month := time.Month(f.Month)

	if last := daysIn(year, month); f.Day < 1 || int(f.Day) > last {
		return time.Time{}, &CalendarError{Field: FieldDay, Value: int(f.Day), Min: 1, Max: last}
	}

	if f.Hour > maxHour {
		return time.Time{}, &CalendarError{Field: FieldHour, Value: int(f.Hour), Min: 0, Max: maxHour}
	}

	if f.Minute > maxMinute {
		return time.Time{}, &CalendarError{Field: FieldMinute, Value: int(f.Minute), Min: 0, Max: maxMinute}
	}

	if f.Second > maxSecond {
		return time.Time{}, &CalendarError{Field: FieldSecond, Value: int(f.Second), Min: 0, Max: maxSecond}
	}

	if loc == nil {
		loc = time.Local
	}

	ts := time.Date(year, month, int(f.Day), int(f.Hour), int(f.Minute), int(f.Second), 0, loc)

	// time.Date moves wall times inside a zone transition gap.
	if ts.Day() != int(f.Day) || ts.Hour() != int(f.Hour) || ts.Minute() != int(f.Minute) {
		return time.Time{}, &CalendarError{
			Field:  FieldHour,
			Value:  int(f.Hour),
			Min:    0,
			Max:    maxHour,
			Reason: fmt.Sprintf("at minute %d does not exist in %s", f.Minute, loc),
		}
	}

	return ts, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
