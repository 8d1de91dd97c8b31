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

// Package restore runs a single offset recovery: it reads consumer group
// offsets from an object store and applies them to a Kafka cluster.
package restore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/redpanda-data/benthos/v4/public/service"

	"github.com/redpanda-data/offset-restore/internal/offsets"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// ErrConnectionFailed is returned when the cluster could not be reached
// before reading any offsets.
var ErrConnectionFailed = errors.New("unable to connect to the Kafka cluster")

// Reader produces the offsets of every consumer group stored at a location.
type Reader interface {
	Read(ctx context.Context, loc offsets.Location, filter offsets.GroupFilter) ([]offsets.GroupOffsets, error)
}

// Applier commits consumer group offsets, or pretends to.
type Applier interface {
	CheckConnection(ctx context.Context, timeout time.Duration) bool
	Restore(ctx context.Context, sets []offsets.GroupOffsets, timeout time.Duration) ([]offsets.Outcome, error)
	Close()
}

// Options configures a run.
type Options struct {
	Location offsets.Location
	Filter   offsets.GroupFilter

	Reader  Reader
	Applier Applier

	ConnectTimeout time.Duration
	RestoreTimeout time.Duration

	// Preview reports outcomes as planned rather than committed. It must be
	// set when Applier does not commit anything.
	Preview bool

	// Out receives the human readable progress of the run.
	Out    io.Writer
	Logger *service.Logger
}

// Run checks the cluster connection, reads the stored offsets and applies
// them. The first failing step ends the run and its error is returned.
func Run(ctx context.Context, opts Options) error {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	log := opts.Logger

	if !opts.Applier.CheckConnection(ctx, opts.ConnectTimeout) {
		fmt.Fprintf(out, "%v\n", red("Unable to connect to the Kafka cluster"))
		return ErrConnectionFailed
	}
	log.Debug("Kafka cluster connection established")

	sets, err := opts.Reader.Read(ctx, opts.Location, opts.Filter)
	if err != nil {
		fmt.Fprintf(out, "%v\n", red("Failed to read consumer group offsets"))
		return fmt.Errorf("reading offsets from %s: %w", opts.Location, err)
	}

	if len(sets) == 0 {
		fmt.Fprintf(out, "%v\n", yellow(fmt.Sprintf("No consumer group offsets found in %s", opts.Location)))
		return nil
	}
	printRecovered(out, opts.Location, sets)

	outcomes, err := opts.Applier.Restore(ctx, sets, opts.RestoreTimeout)
	applied := printOutcomes(out, outcomes, opts.Preview)

	verb, suffix := "Restored", ""
	if opts.Preview {
		verb, suffix = "Would restore", " (preview)"
	}
	if err != nil {
		fmt.Fprintf(out, "%v\n", red(fmt.Sprintf("%s %s of %s consumer groups%s",
			verb, humanize.Comma(int64(applied)), humanize.Comma(int64(len(sets))), suffix)))
		return err
	}

	fmt.Fprintf(out, "%v\n", green(fmt.Sprintf("%s %s consumer groups%s", verb, humanize.Comma(int64(applied)), suffix)))
	return nil
}

func printRecovered(out io.Writer, loc offsets.Location, sets []offsets.GroupOffsets) {
	var partitions int
	for i := range sets {
		partitions += sets[i].Len()
	}
	fmt.Fprintf(out, "Recovered %s offsets for %s consumer groups from %s\n",
		humanize.Comma(int64(partitions)), humanize.Comma(int64(len(sets))), loc)

	for i := range sets {
		fmt.Fprintf(out, "Group: %s\n", sets[i].Group)
		for _, po := range sets[i].Sorted() {
			fmt.Fprintf(out, "\tTopic: %s Partition: %d Offset: %d\n", po.Topic, po.Partition, po.At)
		}
	}
}

func printOutcomes(out io.Writer, outcomes []offsets.Outcome, preview bool) (applied int) {
	ok := green("OK")
	if preview {
		ok = yellow("PREVIEW")
	}
	for _, o := range outcomes {
		if o.Applied() {
			applied++
			fmt.Fprintf(out, "%v %s\n", ok, o.Group)
			continue
		}
		fmt.Fprintf(out, "%v %s: %v\n", red("FAILED"), o.Group, o.Err)
	}
	return
}
