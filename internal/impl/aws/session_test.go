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
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redpanda-data/benthos/v4/public/service"

	awsconf "github.com/redpanda-data/offset-restore/internal/impl/aws/config"
)

func parseSessionConf(t *testing.T, yamlStr string) *service.ParsedConfig {
	t.Helper()
	pConf, err := service.NewConfigSpec().Fields(awsconf.SessionFields()...).ParseYAML(yamlStr, nil)
	require.NoError(t, err)
	return pConf
}

func TestGetSessionStaticCredentials(t *testing.T) {
	pConf := parseSessionConf(t, `
region: eu-west-1
endpoint: http://localhost:9000
credentials:
  mode: credentials
  id: foo
  secret: bar
http:
  retries: 2
  retry_interval: 10ms
`)

	conf, err := GetSession(t.Context(), pConf)
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", conf.Region)
	require.NotNil(t, conf.BaseEndpoint)
	assert.Equal(t, "http://localhost:9000", *conf.BaseEndpoint)

	creds, err := conf.Credentials.Retrieve(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "foo", creds.AccessKeyID)
	assert.Equal(t, "bar", creds.SecretAccessKey)

	retryer := conf.Retryer()
	assert.Equal(t, 3, retryer.MaxAttempts())
	delay, err := retryer.RetryDelay(1, nil)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, delay)
}

func TestGetSessionCredentialsModeRequiresKeys(t *testing.T) {
	pConf := parseSessionConf(t, `
region: eu-west-1
credentials:
  mode: credentials
  id: foo
`)

	_, err := GetSession(t.Context(), pConf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires both an id and a secret")
}

func TestGetSessionNegativeRetries(t *testing.T) {
	pConf := parseSessionConf(t, `
http:
  retries: -1
`)

	_, err := GetSession(t.Context(), pConf)
	require.Error(t, err)
}

func TestNewStoreClient(t *testing.T) {
	pConf := parseSessionConf(t, `
region: us-east-1
force_path_style: true
credentials:
  mode: credentials
  id: foo
  secret: bar
`)

	c, err := NewStoreClient(t.Context(), pConf)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	assert.True(t, c.Options().UsePathStyle)
	assert.Equal(t, "us-east-1", c.Options().Region)
}

func TestNewStoreClientCustomCABundle(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	bundle := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(bundle, pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: srv.Certificate().Raw,
	}), 0o600))
	t.Setenv("AWS_CA_BUNDLE", bundle)

	c, err := NewStoreClient(t.Context(), parseSessionConf(t, fmt.Sprintf(`
region: us-east-1
endpoint: %s
force_path_style: true
credentials:
  mode: credentials
  id: foo
  secret: bar
`, srv.URL)))
	require.NoError(t, err)
	t.Cleanup(c.Close)

	// The server certificate is only trusted through the bundle.
	_, err = c.HeadBucket(t.Context(), &s3.HeadBucketInput{Bucket: aws.String("offsets")})
	require.NoError(t, err)
}
