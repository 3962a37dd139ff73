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
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData means the header is too short for the layout.
	ErrInsufficientData = errors.New("insufficient header data")
	// ErrInvalidCalendarValue means the timestamp bytes do not form a real date and time.
	ErrInvalidCalendarValue = errors.New("invalid calendar value")
	// ErrSourceUnavailable means the header file is missing or unreadable.
	ErrSourceUnavailable = errors.New("header source unavailable")
	// ErrUnknownLayout means a layout name did not match any known table.
	ErrUnknownLayout = errors.New("unknown header layout")
)

// CalendarError names the first timestamp field that fell outside its range.
// Reason replaces the range in the message when the value is in range but
// still not a wall time, e.g. an hour skipped by a daylight saving change.
type CalendarError struct {
	Field  FieldID
	Value  int
	Min    int
	Max    int
	Reason string
}

func (e *CalendarError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s %d %s", ErrInvalidCalendarValue, e.Field, e.Value, e.Reason)
	}

	return fmt.Sprintf("%s: %s %d out of range [%d, %d]",
		ErrInvalidCalendarValue, e.Field, e.Value, e.Min, e.Max)
}

func (*CalendarError) Unwrap() error {
	return ErrInvalidCalendarValue
}
