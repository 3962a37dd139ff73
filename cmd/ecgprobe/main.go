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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carverauto/ecgprobe/pkg/cli"
	"github.com/carverauto/ecgprobe/pkg/logger"
)

const (
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := cli.ParseFlags(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "ecgprobe: %v\n\nRun 'ecgprobe help' for usage.\n", err)

		return exitUsage
	}

	if err := logger.InitWithDefaults(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "ecgprobe: failed to initialize logger: %v\n", err)

		return exitError
	}

	log, err := logger.New(logger.DefaultConfig())
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "ecgprobe: failed to initialize logger: %v\n", err)

		return exitError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = cli.Run(ctx, cfg, &cli.Runtime{
		Stdout:    os.Stdout,
		LogWriter: os.Stderr,
		Logger:    log,
	})

	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrUsage):
		_, _ = fmt.Fprintf(os.Stderr, "ecgprobe: %v\n", err)

		return exitUsage
	default:
		log.Debug().Err(err).Str("command", cfg.SubCmd).Msg("Command failed")
		_, _ = fmt.Fprintf(os.Stderr, "ecgprobe: %v\n", err)

		return exitError
	}
}
