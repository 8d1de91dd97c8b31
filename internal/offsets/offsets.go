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

// Package offsets holds the consumer group offset model shared by the object
// store reader and the cluster appliers, together with the codec for the
// object keys and bodies offsets are stored under.
package offsets

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Location identifies the bucket and optional key prefix under which offset
// objects are stored.
type Location struct {
	Bucket string
	Prefix string
}

// NewLocation returns a Location, rejecting a blank bucket.
func NewLocation(bucket, prefix string) (Location, error) {
	if strings.TrimSpace(bucket) == "" {
		return Location{}, errors.New("bucket cannot be empty")
	}
	return Location{Bucket: bucket, Prefix: prefix}, nil
}

func (l Location) String() string {
	if l.Prefix == "" {
		return "s3://" + l.Bucket
	}
	return "s3://" + l.Bucket + "/" + l.Prefix
}

// TopicPartition is a topic and partition pair.
type TopicPartition struct {
	Topic     string
	Partition int32
}

// Compare orders topic partitions by topic and then by partition.
func (tp TopicPartition) Compare(o TopicPartition) int {
	if c := strings.Compare(tp.Topic, o.Topic); c != 0 {
		return c
	}
	return cmp.Compare(tp.Partition, o.Partition)
}

// Offset is a recovered committed offset.
type Offset struct {
	At       int64
	Metadata string
}

// PartitionOffset pairs a topic partition with its offset.
type PartitionOffset struct {
	TopicPartition
	Offset
}

// GroupOffsets is the set of committed offsets recovered for a single consumer
// group.
type GroupOffsets struct {
	Group   string
	Offsets map[TopicPartition]Offset
}

// NewGroupOffsets returns an empty offset set for group.
func NewGroupOffsets(group string) *GroupOffsets {
	return &GroupOffsets{
		Group:   group,
		Offsets: make(map[TopicPartition]Offset),
	}
}

// Set inserts or overwrites the offset for tp.
func (g *GroupOffsets) Set(tp TopicPartition, o Offset) {
	if g.Offsets == nil {
		g.Offsets = make(map[TopicPartition]Offset)
	}
	g.Offsets[tp] = o
}

// Len returns the number of topic partitions in the set.
func (g *GroupOffsets) Len() int {
	return len(g.Offsets)
}

// Sorted returns the offsets ordered by topic and partition.
func (g *GroupOffsets) Sorted() []PartitionOffset {
	pos := make([]PartitionOffset, 0, len(g.Offsets))
	for tp, o := range g.Offsets {
		pos = append(pos, PartitionOffset{TopicPartition: tp, Offset: o})
	}
	slices.SortFunc(pos, func(a, b PartitionOffset) int {
		return a.TopicPartition.Compare(b.TopicPartition)
	})
	return pos
}

// Validate checks that the set names a group and holds at least one offset.
func (g *GroupOffsets) Validate() error {
	if g.Group == "" {
		return errors.New("group name cannot be empty")
	}
	if len(g.Offsets) == 0 {
		return fmt.Errorf("group '%s' has no offsets", g.Group)
	}
	return nil
}

// SortByGroup sorts offset sets by group name.
func SortByGroup(sets []GroupOffsets) {
	slices.SortFunc(sets, func(a, b GroupOffsets) int {
		return strings.Compare(a.Group, b.Group)
	})
}

// Outcome is the result of applying a single group's offsets.
type Outcome struct {
	Group string
	Err   error
}

// Applied reports whether the group's offsets were applied.
func (o Outcome) Applied() bool {
	return o.Err == nil
}
