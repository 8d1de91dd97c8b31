// Copyright 2025 Redpanda Data, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli implements the offset-restore command line interface.
package cli

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rs/xid"
	"github.com/urfave/cli/v2"

	"github.com/redpanda-data/offset-restore/internal/config"
	"github.com/redpanda-data/offset-restore/internal/impl/aws"
	"github.com/redpanda-data/offset-restore/internal/impl/kafka"
	"github.com/redpanda-data/offset-restore/internal/restore"
)

//go:embed banner.txt
var banner string

var red = color.New(color.FgRed).SprintFunc()

const (
	flagConfig  = "config"
	flagPreview = "preview"
)

var errMissingConfig = errors.New("missing --config argument")

// Options customises the CLI.
type Options struct {
	Version    string
	DateBuilt  string
	BinaryName string

	Stdout io.Writer
	Stderr io.Writer
}

func (o *Options) defaults() {
	if o.BinaryName == "" {
		o.BinaryName = "offset-restore"
	}
	if o.Version == "" {
		o.Version = "unknown"
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// App returns the CLI application.
func App(opts Options) *cli.App {
	opts.defaults()

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "Path to the YAML config file.",
		},
		&cli.BoolFlag{
			Name:  flagPreview,
			Value: false,
			Usage: "Print the offsets that would be restored without committing them.",
		},
	}
	flags = append(flags, loggerFlags()...)

	return &cli.App{
		Name:      opts.BinaryName,
		Usage:     "Restore Kafka consumer group offsets stored in S3",
		Version:   fmt.Sprintf("%v (built %v)", opts.Version, opts.DateBuilt),
		Writer:    opts.Stdout,
		ErrWriter: opts.Stderr,
		Flags:     flags,
		Description: fmt.Sprintf(`
Reads the committed offsets of consumer groups from objects keyed as
<prefix>/<group>/<topic>/<partition> and commits them to a Kafka cluster:

  %[1]v --config ./restore.yaml

Use --preview to print the offsets without committing them.`[1:], opts.BinaryName),
		Action: func(c *cli.Context) error {
			return runRestore(c, opts)
		},
	}
}

// Run executes the CLI with args and returns the process exit code.
func Run(ctx context.Context, args []string, opts Options) int {
	opts.defaults()
	if err := App(opts).RunContext(ctx, args); err != nil {
		fmt.Fprintf(opts.Stderr, "%v\n", red(fmt.Sprintf("Error: %v", err)))
		return 1
	}
	return 0
}

func runRestore(c *cli.Context, opts Options) error {
	fmt.Fprint(opts.Stdout, banner)

	path := c.String(flagConfig)
	if path == "" {
		return errMissingConfig
	}

	logger, closeLog, err := createLogger(c, opts.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeLog()
	}()
	logger = logger.With("run_id", xid.New().String())

	conf, err := config.Load(path, logger)
	if err != nil {
		return err
	}

	store, err := aws.NewStoreClient(c.Context, conf.AWS)
	if err != nil {
		return err
	}
	defer store.Close()

	var applier restore.Applier
	if c.Bool(flagPreview) {
		logger.Info("Running in preview mode, no offsets will be committed")
		applier = kafka.NewPreviewApplier(logger)
	} else {
		client, err := kafka.NewFranzClient(conf.Kafka)
		if err != nil {
			return fmt.Errorf("create kafka client: %w", err)
		}
		applier = kafka.NewOffsetApplier(client, logger)
	}
	defer applier.Close()

	return restore.Run(c.Context, restore.Options{
		Location:       conf.Location,
		Filter:         conf.Filter,
		Reader:         aws.NewOffsetReader(store, logger),
		Applier:        applier,
		ConnectTimeout: conf.ConnectTimeout,
		RestoreTimeout: conf.RestoreTimeout,
		Preview:        c.Bool(flagPreview),
		Out:            opts.Stdout,
		Logger:         logger,
	})
}
