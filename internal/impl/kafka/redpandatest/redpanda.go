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

// Package redpandatest starts Redpanda containers for integration tests.
package redpandatest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redpanda-data/benthos/v4/public/service/integration"
)

const adminPort = "9644/tcp"

// StartRedpanda runs a single node Redpanda container and returns the address
// of its Kafka API once the cluster reports healthy. The container is purged
// when the test ends.
func StartRedpanda(t *testing.T, pool *dockertest.Pool) (brokerAddr string) {
	t.Helper()

	// The advertised address must be reachable from the host, so the broker
	// listens on the same free port inside and outside the container.
	freePort, err := integration.GetFreePort()
	require.NoError(t, err)
	kafkaPort := fmt.Sprintf("%d/tcp", freePort)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "docker.redpanda.com/redpandadata/redpanda",
		Tag:        "latest",
		Hostname:   "redpanda",
		Cmd: []string{
			"redpanda",
			"start",
			"--node-id 0",
			"--mode dev-container",
			"--set rpk.additional_start_flags=[--reactor-backend=epoll]",
			fmt.Sprintf("--kafka-addr 0.0.0.0:%d", freePort),
			fmt.Sprintf("--advertise-kafka-addr localhost:%d", freePort),
		},
		PortBindings: map[docker.Port][]docker.PortBinding{
			docker.Port(kafkaPort): {{HostPort: strconv.Itoa(freePort)}},
			docker.Port(adminPort): {{HostPort: "0"}},
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, pool.Purge(resource))
	})
	_ = resource.Expire(900)

	healthURL := fmt.Sprintf("http://localhost:%s/v1/cluster/health_overview", resource.GetPort(adminPort))
	require.NoError(t, pool.Retry(func() error {
		return checkHealth(t.Context(), healthURL)
	}))

	return "localhost:" + resource.GetPort(kafkaPort)
}

func checkHealth(ctx context.Context, url string) error {
	ctx, done := context.WithTimeout(ctx, 3*time.Second)
	defer done()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	var res struct {
		IsHealthy bool `json:"is_healthy"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return fmt.Errorf("decode health overview: %w", err)
	}
	if !res.IsHealthy {
		return errors.New("cluster is not healthy yet")
	}
	return nil
}
