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

package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/iter"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/multierr"

	"github.com/redpanda-data/benthos/v4/public/service"

	"github.com/redpanda-data/offset-restore/internal/offsets"
)

// RestoreError is returned for every consumer group whose offsets could not
// be committed.
type RestoreError struct {
	Group string
	Err   error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("restore consumer group '%s': %v", e.Group, e.Err)
}

func (e *RestoreError) Unwrap() error {
	return e.Err
}

// OffsetApplier commits recovered offsets to a Kafka cluster.
type OffsetApplier struct {
	client *kgo.Client
	adm    *kadm.Client
	log    *service.Logger
}

// NewOffsetApplier returns an applier that takes ownership of client.
func NewOffsetApplier(client *kgo.Client, log *service.Logger) *OffsetApplier {
	return &OffsetApplier{
		client: client,
		adm:    kadm.NewClient(client),
		log:    log,
	}
}

// CheckConnection reports whether the cluster answered a metadata request
// with at least one broker within timeout.
func (a *OffsetApplier) CheckConnection(ctx context.Context, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	meta, err := a.adm.BrokerMetadata(ctx)
	if err != nil {
		a.log.Errorf("Unable to connect to the Kafka cluster: %v", err)
		return false
	}
	if len(meta.Brokers) == 0 {
		a.log.Error("Unable to connect to the Kafka cluster: no brokers reported")
		return false
	}
	a.log.Debugf("Connected to Kafka cluster %s with %d brokers", meta.Cluster, len(meta.Brokers))
	return true
}

// Restore commits the offsets of every group concurrently, each bounded by
// timeout. All groups are attempted regardless of earlier failures. Outcomes
// are returned in the order of sets, and the returned error combines a
// *RestoreError for each group that failed.
func (a *OffsetApplier) Restore(ctx context.Context, sets []offsets.GroupOffsets, timeout time.Duration) ([]offsets.Outcome, error) {
	for i := range sets {
		logGroup(a.log, "", &sets[i])
	}

	outcomes := commitAll(sets, func(g *offsets.GroupOffsets) error {
		return a.commitGroup(ctx, g, timeout)
	})

	var errs error
	for _, o := range outcomes {
		if o.Err != nil {
			a.log.Errorf("Failed to restore offsets for consumer group '%s': %v", o.Group, o.Err)
			errs = multierr.Append(errs, &RestoreError{Group: o.Group, Err: o.Err})
			continue
		}
		a.log.Infof("Restored offsets for consumer group '%s'", o.Group)
	}
	return outcomes, errs
}

func (a *OffsetApplier) commitGroup(ctx context.Context, g *offsets.GroupOffsets, timeout time.Duration) error {
	if err := g.Validate(); err != nil {
		return err
	}

	toCommit := make(kadm.Offsets)
	for _, po := range g.Sorted() {
		toCommit.Add(kadm.Offset{
			Topic:       po.Topic,
			Partition:   po.Partition,
			At:          po.At,
			LeaderEpoch: -1,
			Metadata:    po.Metadata,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := a.adm.CommitOffsets(ctx, g.Group, toCommit)
	if err != nil {
		return err
	}
	if err := resp.Error(); err != nil {
		return partitionErrors(resp, err)
	}
	return nil
}

// commitAll runs commit for every group at once, without a bound on the
// number of groups in flight.
func commitAll(sets []offsets.GroupOffsets, commit func(*offsets.GroupOffsets) error) []offsets.Outcome {
	mapper := iter.Mapper[offsets.GroupOffsets, offsets.Outcome]{MaxGoroutines: len(sets)}
	return mapper.Map(sets, func(g *offsets.GroupOffsets) offsets.Outcome {
		return offsets.Outcome{Group: g.Group, Err: commit(g)}
	})
}

// partitionErrors expands a commit response into one error per rejected
// partition.
func partitionErrors(resp kadm.OffsetResponses, first error) error {
	var errs error
	for _, r := range resp.Sorted() {
		if r.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("topic '%s' partition %d: %w", r.Topic, r.Partition, r.Err))
		}
	}
	if errs == nil {
		return first
	}
	return errs
}

// Close releases the underlying client.
func (a *OffsetApplier) Close() {
	a.client.Close()
}

func logGroup(log *service.Logger, marker string, g *offsets.GroupOffsets) {
	log.Infof("%sRestoring consumer group '%s'", marker, g.Group)
	for _, po := range g.Sorted() {
		log.Infof("%s\ttopic: %s partition: %d offset: %d", marker, po.Topic, po.Partition, po.At)
	}
}
