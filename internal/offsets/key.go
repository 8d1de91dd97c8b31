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
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const keySeparator = "/"

// offsetBodySize is the number of leading bytes of an object body that hold
// the committed offset.
const offsetBodySize = 8

// ErrShortBody is returned when an object body is too short to contain an
// offset.
var ErrShortBody = errors.New("object body shorter than 8 bytes")

// InvalidKeyError is returned when an object key does not follow the
// [prefix/]<group>/<topic>/<partition> layout.
type InvalidKeyError struct {
	Key string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid offset key: %q", e.Key)
}

// splitKey returns the trailing group, topic and partition segments of key.
func splitKey(key string) (group, topic string, partition int32, ok bool) {
	parts := strings.Split(key, keySeparator)
	if len(parts) < 3 {
		return "", "", 0, false
	}
	group, topic = parts[len(parts)-3], parts[len(parts)-2]
	if group == "" || topic == "" {
		return "", "", 0, false
	}
	p, err := strconv.ParseInt(parts[len(parts)-1], 10, 32)
	if err != nil || p < 0 {
		return "", "", 0, false
	}
	return group, topic, int32(p), true
}

// IsCandidateKey reports whether key looks like an offset record. It accepts
// exactly the keys DecodeKey accepts.
func IsCandidateKey(key string) bool {
	_, _, _, ok := splitKey(key)
	return ok
}

// DecodeKey extracts the group and topic partition from an object key. Any
// segments before the last three are treated as a storage prefix and ignored.
func DecodeKey(key string) (string, TopicPartition, error) {
	group, topic, partition, ok := splitKey(key)
	if !ok {
		return "", TopicPartition{}, &InvalidKeyError{Key: key}
	}
	return group, TopicPartition{Topic: topic, Partition: partition}, nil
}

// EncodeKey builds the object key for a group and topic partition under the
// given prefix.
func EncodeKey(prefix, group string, tp TopicPartition) string {
	key := group + keySeparator + tp.Topic + keySeparator + strconv.FormatInt(int64(tp.Partition), 10)
	if prefix == "" {
		return key
	}
	return strings.TrimSuffix(prefix, keySeparator) + keySeparator + key
}

// DecodeOffset reads a big-endian signed 64-bit offset from the first eight
// bytes of body.
func DecodeOffset(body []byte) (int64, error) {
	if len(body) < offsetBodySize {
		return 0, fmt.Errorf("%w: got %d", ErrShortBody, len(body))
	}
	return int64(binary.BigEndian.Uint64(body[:offsetBodySize])), nil
}

// EncodeOffset is the inverse of DecodeOffset.
func EncodeOffset(at int64) []byte {
	b := make([]byte, offsetBodySize)
	binary.BigEndian.PutUint64(b, uint64(at))
	return b
}
