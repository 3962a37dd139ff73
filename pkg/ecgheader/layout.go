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
	"fmt"
	"strings"
)

// FieldID identifies a field in a header layout.
type FieldID int

const (
	FieldSerial FieldID = iota
	FieldYearHigh
	FieldYearLow
	FieldMonth
	FieldDay
	FieldHour
	FieldMinute
	FieldSecond
	// FieldYear is not sliced from the header. It names the reconstructed
	// year in calendar errors.
	FieldYear
)

var fieldNames = map[FieldID]string{
	FieldSerial:   "serial_number",
	FieldYearHigh: "year_high",
	FieldYearLow:  "year_low",
	FieldMonth:    "month",
	FieldDay:      "day",
	FieldHour:     "hour",
	FieldMinute:   "minute",
	FieldSecond:   "second",
	FieldYear:     "year",
}

func (f FieldID) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}

	return fmt.Sprintf("field(%d)", int(f))
}

const (
	// SerialNumberLength is the size of the opaque serial number at offset 0.
	SerialNumberLength = 6
	// TimestampOffset is where the timestamp bytes start in every layout.
	TimestampOffset = 6
	// TimestampLength is the number of timestamp bytes in every layout.
	TimestampLength = 6
	// MinHeaderLength is the smallest header any layout can decode.
	MinHeaderLength = TimestampOffset + TimestampLength
	// HeaderSize is how many bytes the recorder reserves for its header.
	HeaderSize = 20
)

// Field describes one fixed-position field of the header.
type Field struct {
	ID     FieldID
	Label  string
	Offset int
	Length int
}

// End returns the offset one past the last byte of the field.
func (f Field) End() int {
	return f.Offset + f.Length
}

// Layout is a declared header schema. Decoding walks Fields in order, so a
// new firmware revision only needs a new table.
type Layout struct {
	Name     string
	YearBase int
	Fields   []Field
}

// MinLength returns the number of bytes needed to slice every field.
func (l *Layout) MinLength() int {
	n := 0

	for _, f := range l.Fields {
		if f.End() > n {
			n = f.End()
		}
	}

	return n
}

// Field returns the field with the given id.
func (l *Layout) Field(id FieldID) (Field, bool) {
	for _, f := range l.Fields {
		if f.ID == id {
			return f, true
		}
	}

	return Field{}, false
}

// Has reports whether the layout carries the field.
func (l *Layout) Has(id FieldID) bool {
	_, ok := l.Field(id)

	return ok
}

// CenturySplitLayout is the recorder's current header: the year is sent as a
// century byte followed by a year-in-century byte.
//
//nolint:gochecknoglobals // layouts are fixed tables
var CenturySplitLayout = Layout{
	Name: "century",
	Fields: []Field{
		{ID: FieldSerial, Label: "SN", Offset: 0, Length: SerialNumberLength},
		{ID: FieldYearHigh, Label: "year, high two digits", Offset: 6, Length: 1},
		{ID: FieldYearLow, Label: "year, low two digits", Offset: 7, Length: 1},
		{ID: FieldMonth, Label: "month", Offset: 8, Length: 1},
		{ID: FieldDay, Label: "day", Offset: 9, Length: 1},
		{ID: FieldHour, Label: "hour", Offset: 10, Length: 1},
		{ID: FieldMinute, Label: "minute", Offset: 11, Length: 1},
	},
}

// OffsetYearLayout is the older header read by the companion app: a single
// year byte counted from 2000, then month, day, hour, minute and second.
//
//nolint:gochecknoglobals // layouts are fixed tables
var OffsetYearLayout = Layout{
	Name:     "offset2000",
	YearBase: 2000,
	Fields: []Field{
		{ID: FieldSerial, Label: "SN", Offset: 0, Length: SerialNumberLength},
		{ID: FieldYearLow, Label: "year since 2000", Offset: 6, Length: 1},
		{ID: FieldMonth, Label: "month", Offset: 7, Length: 1},
		{ID: FieldDay, Label: "day", Offset: 8, Length: 1},
		{ID: FieldHour, Label: "hour", Offset: 9, Length: 1},
		{ID: FieldMinute, Label: "minute", Offset: 10, Length: 1},
		{ID: FieldSecond, Label: "second", Offset: 11, Length: 1},
	},
}

// DefaultLayout is used when no layout is selected.
//
//nolint:gochecknoglobals // alias for the canonical table
var DefaultLayout = &CenturySplitLayout

// LayoutNames lists the layouts LayoutByName understands.
func LayoutNames() []string {
	return []string{CenturySplitLayout.Name, OffsetYearLayout.Name}
}

// LayoutByName resolves a layout name. An empty name selects DefaultLayout.
func LayoutByName(name string) (*Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DefaultLayout, nil
	case CenturySplitLayout.Name:
		return &CenturySplitLayout, nil
	case OffsetYearLayout.Name:
		return &OffsetYearLayout, nil
	default:
		return nil, fmt.Errorf("%w: %q (expected one of %s)",
			ErrUnknownLayout, name, strings.Join(LayoutNames(), ", "))
	}
}
