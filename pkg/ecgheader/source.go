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
	"io"
	"os"
)

// DefaultHeaderFile is the name the recorder gives its export.
const DefaultHeaderFile = "ECG.BIN"

// ReadHeader reads up to HeaderSize bytes from r. A stream shorter than
// MinHeaderLength returns what was read and an error wrapping
// ErrInsufficientData.
func ReadHeader(r io.Reader) ([]byte, error) {
	buf := make([]byte, HeaderSize)

	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	buf = buf[:n]

	if n < MinHeaderLength {
		return buf, fmt.Errorf("%w: file too short, expected at least %d bytes, got %d",
			ErrInsufficientData, MinHeaderLength, n)
	}

	return buf, nil
}

// ReadHeaderFile reads the header of the file at path. A missing or
// unreadable file returns an error wrapping ErrSourceUnavailable.
func ReadHeaderFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	data, err := ReadHeader(f)
	if err != nil && !errors.Is(err, ErrInsufficientData) {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, path, err)
	}

	return data, err
}
