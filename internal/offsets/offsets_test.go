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

package offsets

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocation(t *testing.T) {
	loc, err := NewLocation("bucket", "prefix")
	require.NoError(t, err)
	assert.Equal(t, Location{Bucket: "bucket", Prefix: "prefix"}, loc)
	assert.Equal(t, "s3://bucket/prefix", loc.String())

	loc, err = NewLocation("bucket", "")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket", loc.String())

	_, err = NewLocation("  ", "prefix")
	require.Error(t, err)
}

func TestGroupOffsetsSorted(t *testing.T) {
	g := NewGroupOffsets("g1")
	g.Set(TopicPartition{Topic: "b", Partition: 0}, Offset{At: 4})
	g.Set(TopicPartition{Topic: "a", Partition: 10}, Offset{At: 3})
	g.Set(TopicPartition{Topic: "a", Partition: 2}, Offset{At: 2})
	g.Set(TopicPartition{Topic: "a", Partition: 2}, Offset{At: 1})

	want := []PartitionOffset{
		{TopicPartition: TopicPartition{Topic: "a", Partition: 2}, Offset: Offset{At: 1}},
		{TopicPartition: TopicPartition{Topic: "a", Partition: 10}, Offset: Offset{At: 3}},
		{TopicPartition: TopicPartition{Topic: "b", Partition: 0}, Offset: Offset{At: 4}},
	}
	if diff := cmp.Diff(want, g.Sorted()); diff != "" {
		t.Errorf("Sorted() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, g.Len())
}

func TestGroupOffsetsValidate(t *testing.T) {
	require.Error(t, (&GroupOffsets{}).Validate())
	require.Error(t, NewGroupOffsets("g1").Validate())

	g := NewGroupOffsets("g1")
	g.Set(TopicPartition{Topic: "t", Partition: 0}, Offset{At: 1})
	require.NoError(t, g.Validate())

	var zero GroupOffsets
	zero.Group = "g2"
	zero.Set(TopicPartition{Topic: "t", Partition: 0}, Offset{At: 1})
	require.NoError(t, zero.Validate())
}

func TestSortByGroup(t *testing.T) {
	sets := []GroupOffsets{{Group: "c"}, {Group: "a"}, {Group: "b"}}
	SortByGroup(sets)
	assert.Equal(t, []GroupOffsets{{Group: "a"}, {Group: "b"}, {Group: "c"}}, sets)
}
