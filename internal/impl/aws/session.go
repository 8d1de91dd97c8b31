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
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/ec2rolecreds"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/redpanda-data/benthos/v4/public/service"

	awsconf "github.com/redpanda-data/offset-restore/internal/impl/aws/config"
)

// fixedDelay is a retry backoff that always waits the same duration.
type fixedDelay time.Duration

func (d fixedDelay) BackoffDelay(int, error) (time.Duration, error) {
	return time.Duration(d), nil
}

func retryerFromParsed(parsedConf *service.ParsedConfig) (func() aws.Retryer, error) {
	retries, err := parsedConf.FieldInt("http", "retries")
	if err != nil {
		return nil, err
	}
	interval, err := parsedConf.FieldDuration("http", "retry_interval")
	if err != nil {
		return nil, err
	}
	return func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = retries + 1
			o.Backoff = fixedDelay(interval)
		})
	}, nil
}

// GetSession builds an AWS config from a parsed session config, see
// config.SessionFields.
func GetSession(ctx context.Context, parsedConf *service.ParsedConfig, opts ...func(*config.LoadOptions) error) (aws.Config, error) {
	if err := awsconf.ValidateSession(parsedConf); err != nil {
		return aws.Config{}, err
	}
	if region, _ := parsedConf.FieldString("region"); region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	retryer, err := retryerFromParsed(parsedConf)
	if err != nil {
		return aws.Config{}, err
	}
	opts = append(opts, config.WithRetryer(retryer))

	credsConf := parsedConf.Namespace("credentials")
	if mode, _ := credsConf.FieldString("mode"); mode == awsconf.CredentialsModeStatic {
		id, _ := credsConf.FieldString("id")
		secret, _ := credsConf.FieldString("secret")
		token, _ := credsConf.FieldString("token")
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			id, secret, token,
		)))
	} else if profile, _ := credsConf.FieldString("profile"); profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	conf, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return conf, err
	}

	if endpoint, _ := parsedConf.FieldString("endpoint"); endpoint != "" {
		conf.BaseEndpoint = &endpoint
	}

	if role, _ := credsConf.FieldString("role"); role != "" {
		stsSvc := sts.NewFromConfig(conf)

		var stsOpts []func(*stscreds.AssumeRoleOptions)
		if externalID, _ := credsConf.FieldString("role_external_id"); externalID != "" {
			stsOpts = append(stsOpts, func(aro *stscreds.AssumeRoleOptions) {
				aro.ExternalID = &externalID
			})
		}

		creds := stscreds.NewAssumeRoleProvider(stsSvc, role, stsOpts...)
		conf.Credentials = aws.NewCredentialsCache(creds)
	}

	if useEC2, _ := credsConf.FieldBool("from_ec2_role"); useEC2 {
		conf.Credentials = aws.NewCredentialsCache(ec2rolecreds.New())
	}
	return conf, nil
}

// transports records every transport built for a client so that idle
// connections can be released when the client is closed.
type transports struct {
	mu  sync.Mutex
	all []*http.Transport
}

func (t *transports) track(tr *http.Transport) {
	t.mu.Lock()
	t.all = append(t.all, tr)
	t.mu.Unlock()
}

func (t *transports) closeIdle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, tr := range t.all {
		tr.CloseIdleConnections()
	}
}

// StoreClient is an S3 client that owns its HTTP connections. It is meant to
// live for a single run and must be closed afterwards.
type StoreClient struct {
	*s3.Client

	transports *transports
}

// NewStoreClient creates an S3 client from a parsed session config.
func NewStoreClient(ctx context.Context, parsedConf *service.ParsedConfig) (*StoreClient, error) {
	// A buildable client lets the SDK layer its own transport options, such
	// as a custom CA bundle, on top of ours.
	trs := &transports{}
	httpClient := awshttp.NewBuildableClient().WithTransportOptions(trs.track)

	conf, err := GetSession(ctx, parsedConf, config.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("load aws session: %w", err)
	}

	pathStyle, err := parsedConf.FieldBool("force_path_style")
	if err != nil {
		return nil, err
	}

	return &StoreClient{
		Client: s3.NewFromConfig(conf, func(o *s3.Options) {
			o.UsePathStyle = pathStyle
		}),
		transports: trs,
	}, nil
}

// Close releases idle connections held by the client.
func (c *StoreClient) Close() {
	c.transports.closeIdle()
}
