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
	"crypto/tls"
	"errors"
	"strings"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl"

	"github.com/redpanda-data/benthos/v4/public/service"
)

const (
	fieldSeedBrokers    = "seed_brokers"
	fieldClientID       = "client_id"
	fieldTLS            = "tls"
	fieldSASL           = "sasl"
	fieldMetadataMaxAge = "metadata_max_age"
)

// FranzConnectionFields returns the fields used to connect to a Kafka
// cluster.
func FranzConnectionFields() []*service.ConfigField {
	return []*service.ConfigField{
		service.NewStringListField(fieldSeedBrokers).
			Description("A list of broker addresses to connect to in order to establish connections. If an item of the list contains commas it will be expanded into multiple addresses.").
			Example([]string{"localhost:9092"}).
			Example([]string{"foo:9092", "bar:9092"}).
			Example([]string{"foo:9092,bar:9092"}),
		service.NewStringField(fieldClientID).
			Description("An identifier for the client connection.").
			Default("offset-restore").
			Advanced(),
		service.NewTLSToggledField(fieldTLS),
		saslField(),
		service.NewDurationField(fieldMetadataMaxAge).
			Description("The maximum age of metadata before it is refreshed.").
			Default("5m").
			Advanced(),
	}
}

// FranzConnectionDetails describes how to reach and authenticate with a
// Kafka cluster.
type FranzConnectionDetails struct {
	SeedBrokers []string
	ClientID    string
	TLSEnabled  bool
	TLSConf     *tls.Config
	SASL        []sasl.Mechanism
	MetaMaxAge  time.Duration

	Logger *service.Logger
}

// FranzConnectionDetailsFromConfig reads connection details from fields
// defined by FranzConnectionFields.
func FranzConnectionDetailsFromConfig(conf *service.ParsedConfig, log *service.Logger) (*FranzConnectionDetails, error) {
	d := FranzConnectionDetails{
		Logger: log,
	}

	brokerList, err := conf.FieldStringList(fieldSeedBrokers)
	if err != nil {
		return nil, err
	}
	d.SeedBrokers = expandBrokers(brokerList)
	if len(d.SeedBrokers) == 0 {
		return nil, errors.New("at least one seed broker must be specified")
	}

	if d.ClientID, err = conf.FieldString(fieldClientID); err != nil {
		return nil, err
	}

	if d.TLSConf, d.TLSEnabled, err = conf.FieldTLSToggled(fieldTLS); err != nil {
		return nil, err
	}

	if d.SASL, err = saslMechanismsFromConfig(conf); err != nil {
		return nil, err
	}

	if d.MetaMaxAge, err = conf.FieldDuration(fieldMetadataMaxAge); err != nil {
		return nil, err
	}

	return &d, nil
}

func expandBrokers(list []string) []string {
	var brokers []string
	for _, b := range list {
		for _, addr := range strings.Split(b, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				brokers = append(brokers, addr)
			}
		}
	}
	return brokers
}

// FranzOpts returns a slice of franz-go client options from the connection
// details.
func (d *FranzConnectionDetails) FranzOpts() []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(d.SeedBrokers...),
		kgo.SASL(d.SASL...),
		kgo.ClientID(d.ClientID),
		kgo.MetadataMaxAge(d.MetaMaxAge),
		kgo.WithLogger(&KGoLogger{L: d.Logger, DebugToTrace: true}),
	}
	if d.TLSEnabled {
		opts = append(opts, kgo.DialTLSConfig(d.TLSConf))
	}
	return opts
}

// NewFranzClient creates a franz-go client from the connection details and
// any extra options. Creating the client does not contact the cluster.
func NewFranzClient(d *FranzConnectionDetails, extra ...kgo.Opt) (*kgo.Client, error) {
	return kgo.NewClient(append(d.FranzOpts(), extra...)...)
}
