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

package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/redpanda-data/benthos/v4/public/service"
)

const (
	flagLogLevel = "log.level"
	flagLogFile  = "log.file"
)

func loggerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  flagLogLevel,
			Value: "info",
			Usage: "Log level, one of debug, info, warn or error.",
		},
		&cli.StringFlag{
			Name:  flagLogFile,
			Value: "",
			Usage: "Write logs to a rotated file at this path instead of stderr.",
		},
	}
}

// createLogger returns a logger configured from the CLI flags and a function
// that releases the log file, if any.
func createLogger(c *cli.Context, stderr io.Writer) (*service.Logger, func() error, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String(flagLogLevel))); err != nil {
		return nil, nil, fmt.Errorf("invalid log level '%s': %w", c.String(flagLogLevel), err)
	}

	writer := stderr
	closeFn := func() error { return nil }
	if path := c.String(flagLogFile); path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10,
			MaxBackups: 1,
			Compress:   true,
		}
		writer, closeFn = lj, lj.Close
	}

	return service.NewLoggerFromSlog(slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))), closeFn, nil
}
