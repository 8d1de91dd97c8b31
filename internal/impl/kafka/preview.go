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
	"time"

	"github.com/redpanda-data/benthos/v4/public/service"

	"github.com/redpanda-data/offset-restore/internal/offsets"
)

const previewMarker = "[preview] "

// PreviewApplier logs the offsets that would be committed without touching
// the cluster.
type PreviewApplier struct {
	log *service.Logger
}

// NewPreviewApplier returns an applier that never contacts a cluster.
func NewPreviewApplier(log *service.Logger) *PreviewApplier {
	return &PreviewApplier{log: log}
}

// CheckConnection always succeeds.
func (p *PreviewApplier) CheckConnection(context.Context, time.Duration) bool {
	return true
}

// Restore logs every group and reports it as applied.
func (p *PreviewApplier) Restore(_ context.Context, sets []offsets.GroupOffsets, _ time.Duration) ([]offsets.Outcome, error) {
	outcomes := make([]offsets.Outcome, 0, len(sets))
	for i := range sets {
		logGroup(p.log, previewMarker, &sets[i])
		outcomes = append(outcomes, offsets.Outcome{Group: sets[i].Group})
	}
	p.log.Infof("%sNo offsets were committed", previewMarker)
	return outcomes, nil
}

// Close is a no-op.
func (*PreviewApplier) Close() {}
