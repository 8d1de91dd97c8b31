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

package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/redpanda-data/benthos/v4/public/service"

	"github.com/redpanda-data/offset-restore/internal/offsets"
)

// offsetRange requests only the bytes holding the offset.
const offsetRange = "bytes=0-7"

// ObjectAPI is the subset of the S3 API needed to read offsets.
type ObjectAPI interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ReadError is returned when offsets cannot be read from the store. Key is
// empty when the listing itself failed.
type ReadError struct {
	Bucket string
	Key    string
	// Code is the S3 error code, when the store returned one.
	Code string
	Err  error
}

func (e *ReadError) Error() string {
	var sb strings.Builder
	if e.Key == "" {
		fmt.Fprintf(&sb, "list objects in bucket '%s'", e.Bucket)
	} else {
		fmt.Fprintf(&sb, "read object '%s' in bucket '%s'", e.Key, e.Bucket)
	}
	if e.Code != "" {
		fmt.Fprintf(&sb, " (%s)", e.Code)
	}
	fmt.Fprintf(&sb, ": %v", e.Err)
	return sb.String()
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

func newReadError(bucket, key string, err error) *ReadError {
	re := &ReadError{Bucket: bucket, Key: key, Err: err}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		re.Code = ae.ErrorCode()
	}
	return re
}

// OffsetReader reads consumer group offsets stored as one object per group,
// topic and partition.
type OffsetReader struct {
	api      ObjectAPI
	log      *service.Logger
	pageSize int32
}

// NewOffsetReader returns a reader over the given S3 API.
func NewOffsetReader(api ObjectAPI, log *service.Logger) *OffsetReader {
	return &OffsetReader{api: api, log: log}
}

// WithPageSize sets the maximum number of keys requested per listing call.
// Zero leaves the store default in place.
func (r *OffsetReader) WithPageSize(n int32) *OffsetReader {
	r.pageSize = n
	return r
}

// Read lists every object under loc and aggregates the offsets of the groups
// allowed by filter. The result is sorted by group name. Any listing or fetch
// failure aborts the read and no partial result is returned.
func (r *OffsetReader) Read(ctx context.Context, loc offsets.Location, filter offsets.GroupFilter) ([]offsets.GroupOffsets, error) {
	r.log.Infof("Reading consumer group offsets from %s", loc)

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(loc.Bucket),
	}
	if loc.Prefix != "" {
		input.Prefix = aws.String(loc.Prefix)
	}
	paginator := s3.NewListObjectsV2Paginator(r.api, input, func(o *s3.ListObjectsV2PaginatorOptions) {
		if r.pageSize > 0 {
			o.Limit = r.pageSize
		}
	})

	groups := make(map[string]*offsets.GroupOffsets)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, newReadError(loc.Bucket, "", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !offsets.IsCandidateKey(key) {
				r.log.Debugf("Skipping object '%s': not an offset key", key)
				continue
			}

			group, tp, err := offsets.DecodeKey(key)
			if err != nil {
				r.log.Warnf("Skipping object: %v", err)
				continue
			}
			if !filter.Allows(group) {
				continue
			}

			at, err := r.fetchOffset(ctx, loc.Bucket, key)
			if err != nil {
				return nil, err
			}
			r.log.Debugf("Read offset %d from '%s'", at, key)

			g, ok := groups[group]
			if !ok {
				g = offsets.NewGroupOffsets(group)
				groups[group] = g
			}
			g.Set(tp, offsets.Offset{At: at})
		}
	}

	sets := make([]offsets.GroupOffsets, 0, len(groups))
	seen := make(map[string]struct{}, len(groups))
	for name, g := range groups {
		sets = append(sets, *g)
		seen[name] = struct{}{}
	}
	offsets.SortByGroup(sets)

	for _, g := range filter.Missing(seen) {
		r.log.Warnf("Requested consumer group '%s' was not found in %s", g, loc)
	}
	r.log.Infof("Finished reading consumer group offsets, found %d groups", len(sets))
	return sets, nil
}

func (r *OffsetReader) fetchOffset(ctx context.Context, bucket, key string) (int64, error) {
	out, err := r.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(offsetRange),
	})
	if err != nil {
		// S3 rejects the range on a zero-byte object instead of returning an
		// empty body.
		if isInvalidRange(err) {
			err = fmt.Errorf("%w: %w", offsets.ErrShortBody, err)
		}
		return 0, newReadError(bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(io.LimitReader(out.Body, 8))
	if err != nil {
		return 0, newReadError(bucket, key, err)
	}
	at, err := offsets.DecodeOffset(body)
	if err != nil {
		return 0, newReadError(bucket, key, err)
	}
	return at, nil
}

func isInvalidRange(err error) bool {
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "InvalidRange"
}
