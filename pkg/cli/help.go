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
	"io"
)

const usageText = `ecgprobe: ECG recorder header timestamp probe

Usage:
  ecgprobe decode  [options]
  ecgprobe analyze [-year 2025] [-json]
  ecgprobe version
  ecgprobe help [command]

Commands:
  decode     Decode the header of a recorder export and check its timestamp
  analyze    Show what byte truncation does to a year
  version    Print the version
`

const decodeHelp = `Options for decode:
  -file string      path to the recorder export (default "ECG.BIN")
  -layout string    header layout: century or offset2000 (default "century")
  -json             emit the report as JSON
  -config string    path to ecgprobe.json config file
  -nats-url string  publish the result to this NATS server
  -subject string   NATS subject for the result (default "ecgprobe.header.decoded")
`

const analyzeHelp = `Options for analyze:
  -year int         year to analyze (may also be given as the only argument)
  -json             emit the analysis as JSON

Without a year on a terminal, an interactive explorer is launched.
`

const examplesHelp = `Examples:
  # Decode ECG.BIN in the working directory
  ecgprobe decode

  # Try the older single year byte layout on the same file
  ecgprobe decode -file /media/recorder/ECG.BIN -layout offset2000

  # Decode and publish the result
  ecgprobe decode -json -nats-url nats://127.0.0.1:4222

  # Show why sending 2025 as one byte arrives as 233
  ecgprobe analyze -year 2025

Environment:
  CONFIG_SOURCE=env reads the decode configuration from ECGPROBE_* variables,
  e.g. ECGPROBE_HEADER_FILE, ECGPROBE_LAYOUT, ECGPROBE_EVENTS_NATS_URL.
  LOG_LEVEL, DEBUG and LOG_OUTPUT control logging.
`

// ShowHelp writes the help message, narrowed to one subcommand when known.
func ShowHelp(w io.Writer, subCmd string) error {
	var err error

	switch subCmd {
	case subCmdDecode:
		_, err = fmt.Fprint(w, decodeHelp)
	case subCmdAnalyze:
		_, err = fmt.Fprint(w, analyzeHelp)
	default:
		_, err = fmt.Fprint(w, usageText+"\n"+decodeHelp+"\n"+analyzeHelp+"\n"+examplesHelp)
	}

	return err
}
