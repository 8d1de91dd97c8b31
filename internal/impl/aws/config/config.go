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
	"errors"
	"fmt"

	"github.com/redpanda-data/benthos/v4/public/service"
)

const (
	// CredentialsModeDefault resolves credentials through the default AWS
	// provider chain.
	CredentialsModeDefault = "default"
	// CredentialsModeStatic uses the configured access key id and secret.
	CredentialsModeStatic = "credentials"
)

// LocationFields defines the bucket and prefix offsets are read from.
func LocationFields() []*service.ConfigField {
	return []*service.ConfigField{
		service.NewStringField("bucket").
			Description("The bucket holding the consumer group offset objects."),
		service.NewStringField("prefix").
			Description("An optional key prefix under which offset objects are stored. Objects are keyed as `<prefix>/<group>/<topic>/<partition>`.").
			Default(""),
	}
}

// SessionFields defines a re-usable set of config fields for an AWS session.
func SessionFields() []*service.ConfigField {
	return []*service.ConfigField{
		service.NewStringField("region").
			Description("The AWS region to target.").
			Default("").
			Advanced(),
		service.NewStringField("endpoint").
			Description("Allows you to specify a custom endpoint for the AWS API, for example when using an S3 compatible store.").
			Default("").
			Advanced(),
		service.NewBoolField("force_path_style").
			Description("Forces the client API to use path style URLs for accessing objects, instead of virtual host style.").
			Default(false).
			Advanced(),
		service.NewObjectField("credentials",
			service.NewStringEnumField("mode", CredentialsModeDefault, CredentialsModeStatic).
				Description("How credentials are resolved. `default` uses the AWS default provider chain, `credentials` requires an explicit `id` and `secret`.").
				Default(CredentialsModeDefault),
			service.NewStringField("profile").
				Description("A profile from `~/.aws/credentials` to use.").
				Default(""),
			service.NewStringField("id").
				Description("The ID of credentials to use.").
				Default("").Advanced(),
			service.NewStringField("secret").
				Description("The secret for the credentials being used.").
				Default("").Advanced().Secret(),
			service.NewStringField("token").
				Description("The token for the credentials being used, required when using short term credentials.").
				Default("").Advanced(),
			service.NewBoolField("from_ec2_role").
				Description("Use the credentials of a host EC2 machine configured to assume an IAM role associated with the instance.").
				Default(false),
			service.NewStringField("role").
				Description("A role ARN to assume.").
				Default("").Advanced(),
			service.NewStringField("role_external_id").
				Description("An external ID to provide when assuming a role.").
				Default("").Advanced()).
			Advanced().
			Description("Optional manual configuration of AWS credentials to use."),
		service.NewObjectField("http",
			service.NewIntField("retries").
				Description("The maximum number of times a failed request is retried.").
				Default(5),
			service.NewDurationField("retry_interval").
				Description("The fixed delay between retries of a failed request.").
				Default("50ms")).
			Advanced().
			Description("Retry behaviour of the underlying HTTP client."),
	}
}

// ValidateSession checks a parsed session config for combinations of fields
// that cannot produce a working session.
func ValidateSession(pConf *service.ParsedConfig) error {
	retries, err := pConf.FieldInt("http", "retries")
	if err != nil {
		return err
	}
	if retries < 0 {
		return fmt.Errorf("http retries must be non-negative, got %d", retries)
	}

	credsConf := pConf.Namespace("credentials")
	mode, err := credsConf.FieldString("mode")
	if err != nil {
		return err
	}
	switch mode {
	case CredentialsModeStatic:
		id, _ := credsConf.FieldString("id")
		secret, _ := credsConf.FieldString("secret")
		if id == "" || secret == "" {
			return errors.New("credentials mode requires both an id and a secret")
		}
	case CredentialsModeDefault:
	default:
		return fmt.Errorf("unsupported credentials mode: %v", mode)
	}
	return nil
}
