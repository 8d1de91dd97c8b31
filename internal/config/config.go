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

// Package config loads the YAML configuration of an offset restore run.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/redpanda-data/benthos/v4/public/service"

	awsconf "github.com/redpanda-data/offset-restore/internal/impl/aws/config"
	"github.com/redpanda-data/offset-restore/internal/impl/kafka"
	"github.com/redpanda-data/offset-restore/internal/offsets"
)

const (
	fieldKafka          = "kafka"
	fieldConnectTimeout = "connect_timeout"
	fieldRestoreTimeout = "restore_timeout"
	fieldAWS            = "aws"
	fieldBucket         = "bucket"
	fieldPrefix         = "prefix"
	fieldGroups         = "groups"
)

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file does not exist")

// Spec returns the config spec of a run.
func Spec() *service.ConfigSpec {
	kafkaFields := append(kafka.FranzConnectionFields(),
		service.NewDurationField(fieldConnectTimeout).
			Description("The maximum time to wait for the cluster to answer the initial connection check.").
			Default("10s"),
		service.NewDurationField(fieldRestoreTimeout).
			Description("The maximum time to wait for the offsets of a single consumer group to be committed.").
			Default("1m"),
	)
	awsFields := append(awsconf.LocationFields(), awsconf.SessionFields()...)

	return service.NewConfigSpec().
		Summary("Restores consumer group offsets stored in S3 to a Kafka cluster.").
		Fields(
			service.NewObjectField(fieldKafka, kafkaFields...).
				Description("The Kafka cluster to restore offsets to."),
			service.NewObjectField(fieldAWS, awsFields...).
				Description("The S3 bucket offsets are read from."),
			service.NewStringListField(fieldGroups).
				Description("Restore only the listed consumer groups. Items containing commas are expanded into multiple groups. When empty every group found is restored.").
				Default([]string{}).
				Example([]string{"billing", "shipping"}).
				Example([]string{"billing,shipping"}),
		)
}

// Config is a parsed run configuration.
type Config struct {
	Location offsets.Location
	Filter   offsets.GroupFilter

	Kafka          *kafka.FranzConnectionDetails
	ConnectTimeout time.Duration
	RestoreTimeout time.Duration

	// AWS holds the session fields, see aws.NewStoreClient.
	AWS *service.ParsedConfig
}

// Load reads and parses the config file at path. Environment variable
// references in the file are resolved first.
func Load(path string, log *service.Logger) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading config file '%s': %w", path, err)
	}
	if b, err = interpolateEnv(b, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return Parse(string(b), log)
}

// Parse parses a YAML config document.
func Parse(yamlStr string, log *service.Logger) (*Config, error) {
	pConf, err := Spec().ParseYAML(yamlStr, nil)
	if err != nil {
		return nil, err
	}

	var conf Config

	kConf := pConf.Namespace(fieldKafka)
	if conf.Kafka, err = kafka.FranzConnectionDetailsFromConfig(kConf, log); err != nil {
		return nil, fmt.Errorf("%s: %w", fieldKafka, err)
	}
	if conf.ConnectTimeout, err = kConf.FieldDuration(fieldConnectTimeout); err != nil {
		return nil, err
	}
	if conf.RestoreTimeout, err = kConf.FieldDuration(fieldRestoreTimeout); err != nil {
		return nil, err
	}
	if conf.ConnectTimeout <= 0 || conf.RestoreTimeout <= 0 {
		return nil, fmt.Errorf("%s: %s and %s must be positive", fieldKafka, fieldConnectTimeout, fieldRestoreTimeout)
	}

	conf.AWS = pConf.Namespace(fieldAWS)
	if err := awsconf.ValidateSession(conf.AWS); err != nil {
		return nil, fmt.Errorf("%s: %w", fieldAWS, err)
	}
	bucket, err := conf.AWS.FieldString(fieldBucket)
	if err != nil {
		return nil, err
	}
	prefix, err := conf.AWS.FieldString(fieldPrefix)
	if err != nil {
		return nil, err
	}
	if conf.Location, err = offsets.NewLocation(bucket, prefix); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", fieldAWS, fieldBucket, err)
	}

	groups, err := pConf.FieldStringList(fieldGroups)
	if err != nil {
		return nil, err
	}
	conf.Filter = offsets.NewGroupFilter(groups...)

	return &conf, nil
}
