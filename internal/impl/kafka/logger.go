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
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/redpanda-data/benthos/v4/public/service"
)

// KGoLogger bridges franz-go client logs into a service logger. Client debug
// logs are demoted to trace when DebugToTrace is set.
type KGoLogger struct {
	L            *service.Logger
	DebugToTrace bool
}

// Level implements kgo.Logger.
func (k *KGoLogger) Level() kgo.LogLevel {
	return kgo.LogLevelDebug
}

// Log implements kgo.Logger.
func (k *KGoLogger) Log(level kgo.LogLevel, msg string, keyvals ...any) {
	if k.L == nil {
		return
	}
	tmpL := k.L
	if len(keyvals) > 0 {
		tmpL = k.L.With(keyvals...)
	}

	switch level {
	case kgo.LogLevelError:
		tmpL.Error(msg)
	case kgo.LogLevelWarn:
		tmpL.Warn(msg)
	case kgo.LogLevelInfo:
		tmpL.Info(msg)
	case kgo.LogLevelDebug:
		if k.DebugToTrace {
			tmpL.Trace(msg)
		} else {
			tmpL.Debug(msg)
		}
	}
}
