// Package logging configures the logrus logger shared by the CLI and server.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Field names used across log statements.
const (
	FieldFile      = "file"
	FieldDigest    = "digest"
	FieldPages     = "pages"
	FieldPage      = "page"
	FieldCount     = "count"
	FieldLine      = "line"
	FieldVariant   = "variant"
	FieldDuration  = "duration_ms"
	FieldRequestID = "request_id"
	FieldOutput    = "output_file"
)

// New returns a logger writing to stderr at the given level and format
// ("text" or "json").
func New(level, format string) (*logrus.Logger, error) {
	return NewWithOutput(os.Stderr, level, format)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(out io.Writer, level, format string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q (must be 'text' or 'json')", format)
	}
	return logger, nil
}
