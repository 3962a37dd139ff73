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

// Package cli implements the ecgprobe subcommands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/ecgprobe/pkg/ecgheader"
	"github.com/carverauto/ecgprobe/pkg/logger"
	"github.com/carverauto/ecgprobe/pkg/natsutil"
	"github.com/carverauto/ecgprobe/pkg/version"
	"github.com/carverauto/ecgprobe/pkg/yearcodec"
)

const (
	subCmdDecode  = "decode"
	subCmdAnalyze = "analyze"
	subCmdVersion = "version"
	subCmdHelp    = "help"

	publishTimeout = 10 * time.Second
)

// SubcommandHandler defines the interface for parsing subcommand flags.
type SubcommandHandler interface {
	Parse(args []string, cfg *CmdConfig) error
}

// DecodeHandler handles flags for the decode subcommand.
type DecodeHandler struct{}

// Parse processes the command-line arguments for the decode subcommand.
func (DecodeHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet(subCmdDecode)
	headerFile := fs.String("file", "", "path to the recorder export (default \""+ecgheader.DefaultHeaderFile+"\")")
	layout := fs.String("layout", "", "header layout: century or offset2000 (default \"century\")")
	jsonOut := fs.Bool("json", false, "emit the report as JSON")
	configFile := fs.String("config", "", "path to ecgprobe.json config file")
	natsURL := fs.String("nats-url", "", "publish the result to this NATS server")
	subject := fs.String("subject", "", "NATS subject for the result (default \""+natsutil.DefaultSubject+"\")")

	if err := parseFlagSet(fs, args, cfg); err != nil {
		return err
	}

	if fs.NArg() > 0 {
		return fmt.Errorf("%w: %w: %v", ErrUsage, errTooManyArgs, fs.Args())
	}

	if *layout != "" {
		if _, err := ecgheader.LayoutByName(*layout); err != nil {
			return fmt.Errorf("%w: %w", ErrUsage, err)
		}
	}

	cfg.HeaderFile = *headerFile
	cfg.Layout = *layout
	cfg.JSON = *jsonOut
	cfg.ConfigFile = *configFile
	cfg.NATSURL = *natsURL
	cfg.Subject = *subject

	return nil
}

// AnalyzeHandler handles flags for the analyze subcommand.
type AnalyzeHandler struct{}

// Parse processes the command-line arguments for the analyze subcommand. The
// year may also be given as the only positional argument.
func (AnalyzeHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet(subCmdAnalyze)
	year := fs.Int("year", 0, "year to analyze, e.g. 2025")
	jsonOut := fs.Bool("json", false, "emit the analysis as JSON")

	if err := parseFlagSet(fs, args, cfg); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "year" {
			cfg.YearSet = true
		}
	})

	cfg.Year = *year
	cfg.JSON = *jsonOut

	switch fs.NArg() {
	case 0:
	case 1:
		if cfg.YearSet {
			return fmt.Errorf("%w: %w: %v", ErrUsage, errTooManyArgs, fs.Args())
		}

		y, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("%w: %w: %q", ErrUsage, errInvalidYear, fs.Arg(0))
		}

		cfg.Year = y
		cfg.YearSet = true
	default:
		return fmt.Errorf("%w: %w: %v", ErrUsage, errTooManyArgs, fs.Args())
	}

	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	return fs
}

func parseFlagSet(fs *flag.FlagSet, args []string, cfg *CmdConfig) error {
	err := fs.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		cfg.Help = true

		return nil
	}

	if err != nil {
		return fmt.Errorf("%w: parsing %s flags: %w", ErrUsage, fs.Name(), err)
	}

	return nil
}

// ParseFlags parses the subcommand and its flags from args, which excludes
// the program name.
func ParseFlags(args []string) (*CmdConfig, error) {
	cfg := &CmdConfig{Args: args}

	if len(args) == 0 {
		cfg.Help = true

		return cfg, nil
	}

	cfg.SubCmd = args[0]

	switch cfg.SubCmd {
	case "-h", "-help", "--help", subCmdHelp:
		cfg.SubCmd = subCmdHelp
		cfg.Help = true

		if len(args) > 1 {
			cfg.SubCmd = args[1]
		}

		return cfg, nil
	case subCmdVersion:
		return cfg, nil
	}

	subcommands := map[string]SubcommandHandler{
		subCmdDecode:  DecodeHandler{},
		subCmdAnalyze: AnalyzeHandler{},
	}

	handler, exists := subcommands[cfg.SubCmd]
	if !exists {
		return cfg, fmt.Errorf("%w: %w: %q", ErrUsage, errUnknownSubcommand, cfg.SubCmd)
	}

	if err := handler.Parse(args[1:], cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Run dispatches the parsed subcommand.
func Run(ctx context.Context, cfg *CmdConfig, rt *Runtime) error {
	rt = rt.withDefaults()

	if cfg.Help {
		return ShowHelp(rt.Stdout, cfg.SubCmd)
	}

	switch cfg.SubCmd {
	case subCmdDecode:
		return RunDecode(ctx, cfg, rt)
	case subCmdAnalyze:
		return RunAnalyze(cfg, rt)
	case subCmdVersion:
		_, err := fmt.Fprintln(rt.Stdout, "ecgprobe "+version.GetFullVersion())

		return err
	default:
		return fmt.Errorf("%w: %w: %q", ErrUsage, errUnknownSubcommand, cfg.SubCmd)
	}
}

// RunDecode reads the header file, decodes it, prints the report and
// publishes the outcome when events are enabled. The returned error is the
// source or decode error; an implausible timestamp is not an error.
func RunDecode(ctx context.Context, cfg *CmdConfig, rt *Runtime) error {
	rt = rt.withDefaults()

	probe, err := LoadProbeConfig(ctx, cfg.ConfigFile, rt.Logger)
	if err != nil {
		return err
	}

	probe.applyOverrides(cfg)

	if err := probe.Validate(); err != nil {
		return err
	}

	log, err := rt.probeLogger(probe)
	if err != nil {
		return err
	}

	layout, err := ecgheader.LayoutByName(probe.Layout)
	if err != nil {
		return err
	}

	decoder := ecgheader.NewDecoder(
		ecgheader.WithLayout(layout),
		ecgheader.WithClock(rt.Clock),
		ecgheader.WithLogger(log.WithComponent("decoder")),
	)

	var result *ecgheader.Result

	raw, decodeErr := ecgheader.ReadHeaderFile(probe.HeaderFile)
	if !errors.Is(decodeErr, ecgheader.ErrSourceUnavailable) {
		result, decodeErr = decoder.Decode(raw)
	}

	report := newDecodeJSON(probe.HeaderFile, raw, result, decodeErr)

	if cfg.JSON {
		err = writeJSON(rt.Stdout, report)
	} else {
		err = RenderDecode(rt.Stdout, raw, result, decodeErr)
	}

	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if probe.Events.Enabled {
		if pubErr := publishDecode(ctx, &probe.Events, report, rt.Clock.Now(), log); pubErr != nil {
			log.Error().Err(pubErr).Msg("Failed to publish header decoded event")
		}
	}

	return decodeErr
}

// publishDecode publishes one decode report as a CloudEvent. reference is
// used when the report carries no reference time of its own.
func publishDecode(ctx context.Context, events *natsutil.EventsConfig, report *decodeJSON,
	reference time.Time, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	publisher, err := natsutil.Connect(ctx, events, log.WithComponent("events"))
	if err != nil {
		return err
	}
	defer publisher.Close()

	runID := uuid.New().String()

	eventID, err := publisher.PublishHeaderDecoded(ctx, newEventData(runID, report, reference))
	if err != nil {
		return err
	}

	log.Info().
		Str("event_id", eventID).
		Str("run_id", runID).
		Str("subject", publisher.Subject()).
		Msg("Published header decoded event")

	return nil
}

// RunAnalyze prints the truncation analysis for cfg.Year, or starts the
// explorer when no year was given on a terminal.
func RunAnalyze(cfg *CmdConfig, rt *Runtime) error {
	rt = rt.withDefaults()

	if !cfg.YearSet {
		if cfg.JSON || !IsInputFromTerminal() {
			return fmt.Errorf("%w: %w", ErrUsage, errYearRequired)
		}

		return RunInteractive("")
	}

	r := yearcodec.Analyze(cfg.Year)

	if cfg.JSON {
		return writeJSON(rt.Stdout, newAnalysisJSON(r))
	}

	return RenderAnalysis(rt.Stdout, r)
}
