// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/allisson/envelope/internal/app"
	"github.com/allisson/envelope/internal/message/domain"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// parseEncryptionContext parses comma-separated key=value pairs. Values may contain
// '=' but neither keys nor values may contain ','.
func parseEncryptionContext(value string) (domain.EncryptionContext, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	encryptionContext := domain.EncryptionContext{}
	for pair := range strings.SplitSeq(value, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid encryption context pair %q, expected key=value", pair)
		}
		if _, exists := encryptionContext[key]; exists {
			return nil, fmt.Errorf("duplicate encryption context key %q", key)
		}
		encryptionContext[key] = val
	}
	return encryptionContext, nil
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
