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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redpanda-data/offset-restore/internal/offsets"
)

func TestParseDefaults(t *testing.T) {
	conf, err := Parse(`
kafka:
  seed_brokers: [ localhost:9092 ]
aws:
  bucket: backups
`, nil)
	require.NoError(t, err)

	assert.Equal(t, offsets.Location{Bucket: "backups"}, conf.Location)
	assert.Nil(t, conf.Filter)
	assert.Equal(t, []string{"localhost:9092"}, conf.Kafka.SeedBrokers)
	assert.Equal(t, "offset-restore", conf.Kafka.ClientID)
	assert.Equal(t, 5*time.Minute, conf.Kafka.MetaMaxAge)
	assert.Equal(t, 10*time.Second, conf.ConnectTimeout)
	assert.Equal(t, time.Minute, conf.RestoreTimeout)

	retries, err := conf.AWS.FieldInt("http", "retries")
	require.NoError(t, err)
	assert.Equal(t, 5, retries)

	interval, err := conf.AWS.FieldDuration("http", "retry_interval")
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, interval)

	mode, err := conf.AWS.FieldString("credentials", "mode")
	require.NoError(t, err)
	assert.Equal(t, "default", mode)
}

func TestParseFull(t *testing.T) {
	conf, err := Parse(`
kafka:
  seed_brokers: [ "a:9092,b:9092" ]
  client_id: restorer
  connect_timeout: 3s
  restore_timeout: 20s
  sasl:
    - mechanism: SCRAM-SHA-256
      username: foo
      password: bar
aws:
  bucket: backups
  prefix: prod/offsets
  region: eu-west-1
  endpoint: http://localhost:9000
  force_path_style: true
  credentials:
    mode: credentials
    id: key
    secret: secret
groups: [ "billing, shipping", audit ]
`, nil)
	require.NoError(t, err)

	assert.Equal(t, offsets.Location{Bucket: "backups", Prefix: "prod/offsets"}, conf.Location)
	assert.Equal(t, []string{"audit", "billing", "shipping"}, conf.Filter.Names())
	assert.Equal(t, []string{"a:9092", "b:9092"}, conf.Kafka.SeedBrokers)
	assert.Equal(t, "restorer", conf.Kafka.ClientID)
	assert.Len(t, conf.Kafka.SASL, 1)
	assert.Equal(t, 3*time.Second, conf.ConnectTimeout)
	assert.Equal(t, 20*time.Second, conf.RestoreTimeout)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		conf    string
		wantErr string
	}{
		{
			name: "blank bucket",
			conf: `
kafka:
  seed_brokers: [ localhost:9092 ]
aws:
  bucket: "  "
`,
			wantErr: "aws.bucket",
		},
		{
			name: "no brokers",
			conf: `
kafka:
  seed_brokers: [ "" ]
aws:
  bucket: backups
`,
			wantErr: "seed broker",
		},
		{
			name: "credentials mode without secret",
			conf: `
kafka:
  seed_brokers: [ localhost:9092 ]
aws:
  bucket: backups
  credentials:
    mode: credentials
    id: key
`,
			wantErr: "requires both an id and a secret",
		},
		{
			name: "negative retries",
			conf: `
kafka:
  seed_brokers: [ localhost:9092 ]
aws:
  bucket: backups
  http:
    retries: -2
`,
			wantErr: "non-negative",
		},
		{
			name: "zero restore timeout",
			conf: `
kafka:
  seed_brokers: [ localhost:9092 ]
  restore_timeout: 0s
aws:
  bucket: backups
`,
			wantErr: "must be positive",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse(test.conf, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
kafka:
  seed_brokers: [ localhost:9092 ]
aws:
  bucket: backups
groups: [ g2 ]
`), 0o644))

	conf, err := Load(path, nil)
	require.NoError(t, err)
	assert.True(t, conf.Filter.Allows("g2"))
	assert.False(t, conf.Filter.Allows("g1"))

	_, err = Load(filepath.Join(dir, "missing.yaml"), nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInterpolateEnv(t *testing.T) {
	env := map[string]string{
		"BUCKET": "backups",
		"EMPTY":  "",
		"MULTI":  "a\nb",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	tests := []struct {
		name    string
		in      string
		want    string
		missing []string
	}{
		{name: "plain", in: "bucket: ${BUCKET}", want: "bucket: backups"},
		{name: "default unused", in: "bucket: ${BUCKET:other}", want: "bucket: backups"},
		{name: "default for unset", in: "prefix: ${PREFIX:offsets}", want: "prefix: offsets"},
		{name: "default for empty", in: "prefix: ${EMPTY:offsets}", want: "prefix: offsets"},
		{name: "empty without default", in: "prefix: ${EMPTY}", want: "prefix: "},
		{name: "newlines escaped", in: "v: ${MULTI}", want: `v: a\nb`},
		{name: "escaped reference", in: "v: ${{BUCKET}}", want: "v: ${BUCKET}"},
		{name: "missing deduplicated", in: "${A} ${B} ${A}", missing: []string{"A", "B"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := interpolateEnv([]byte(test.in), lookup)
			if test.missing != nil {
				var mErr *MissingEnvError
				require.ErrorAs(t, err, &mErr)
				assert.Equal(t, test.missing, mErr.Names)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, string(got))
		})
	}
}

func TestLoadInterpolatesEnv(t *testing.T) {
	t.Setenv("OFFSET_RESTORE_TEST_BUCKET", "from-env")

	path := filepath.Join(t.TempDir(), "restore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
kafka:
  seed_brokers: [ localhost:9092 ]
aws:
  bucket: ${OFFSET_RESTORE_TEST_BUCKET}
  prefix: ${OFFSET_RESTORE_TEST_PREFIX:offsets}
`), 0o644))

	conf, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, offsets.Location{Bucket: "from-env", Prefix: "offsets"}, conf.Location)
}
