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
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/oauth"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/pkg/sasl/scram"

	"github.com/redpanda-data/benthos/v4/public/service"
)

const (
	saslFieldMechanism  = "mechanism"
	saslFieldUsername   = "username"
	saslFieldPassword   = "password"
	saslFieldToken      = "token"
	saslFieldExtensions = "extensions"
)

func saslField() *service.ConfigField {
	return service.NewObjectListField(fieldSASL,
		service.NewStringAnnotatedEnumField(saslFieldMechanism, map[string]string{
			"PLAIN":         "Plain text authentication.",
			"OAUTHBEARER":   "OAuth Bearer based authentication.",
			"SCRAM-SHA-256": "SCRAM based authentication as specified in RFC5802.",
			"SCRAM-SHA-512": "SCRAM based authentication as specified in RFC5802.",
		}).
			Description("The SASL mechanism to use."),
		service.NewStringField(saslFieldUsername).
			Description("A username to provide for PLAIN or SCRAM-* authentication.").
			Default(""),
		service.NewStringField(saslFieldPassword).
			Description("A password to provide for PLAIN or SCRAM-* authentication.").
			Default("").Secret(),
		service.NewStringField(saslFieldToken).
			Description("The token to use for a single session's OAUTHBEARER authentication.").
			Default(""),
		service.NewStringMapField(saslFieldExtensions).
			Description("Key/value pairs to add to OAUTHBEARER authentication requests.").
			Optional(),
	).
		Description("Specify one or more methods of SASL authentication. SASL is tried in order; if the broker supports the first mechanism, all connections will use that mechanism.").
		Advanced().Optional()
}

func saslMechanismsFromConfig(c *service.ParsedConfig) ([]sasl.Mechanism, error) {
	if !c.Contains(fieldSASL) {
		return nil, nil
	}

	sList, err := c.FieldObjectList(fieldSASL)
	if err != nil {
		return nil, err
	}

	mechanisms := make([]sasl.Mechanism, len(sList))
	for i, mConf := range sList {
		mechStr, err := mConf.FieldString(saslFieldMechanism)
		if err == nil {
			mechanisms[i], err = saslMechanism(mechStr, mConf)
		}
		if err != nil {
			if len(sList) == 1 {
				return nil, err
			}
			return nil, fmt.Errorf("mechanism %v: %w", i, err)
		}
	}

	return mechanisms, nil
}

func saslMechanism(mechanism string, c *service.ParsedConfig) (sasl.Mechanism, error) {
	if mechanism == "OAUTHBEARER" {
		return oauthSaslFromConfig(c)
	}

	username, err := c.FieldString(saslFieldUsername)
	if err != nil {
		return nil, err
	}
	password, err := c.FieldString(saslFieldPassword)
	if err != nil {
		return nil, err
	}

	switch mechanism {
	case "PLAIN":
		return plain.Auth{User: username, Pass: password}.AsMechanism(), nil
	case "SCRAM-SHA-256":
		return scram.Auth{User: username, Pass: password}.AsSha256Mechanism(), nil
	case "SCRAM-SHA-512":
		return scram.Auth{User: username, Pass: password}.AsSha512Mechanism(), nil
	}
	return nil, fmt.Errorf("unknown mechanism: %v", mechanism)
}

func oauthSaslFromConfig(c *service.ParsedConfig) (sasl.Mechanism, error) {
	token, err := c.FieldString(saslFieldToken)
	if err != nil {
		return nil, err
	}
	var extensions map[string]string
	if c.Contains(saslFieldExtensions) {
		if extensions, err = c.FieldStringMap(saslFieldExtensions); err != nil {
			return nil, err
		}
	}
	return oauth.Oauth(func(context.Context) (oauth.Auth, error) {
		return oauth.Auth{
			Token:      token,
			Extensions: extensions,
		}, nil
	}), nil
}
