package commands

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/allisson/envelope/internal/message/domain"
	"github.com/allisson/envelope/internal/message/usecase"
)

// defaultChunkSize is how many input bytes are fed to the decrypter at a time.
const defaultChunkSize = 32 * 1024

// DecryptOptions holds the flags of the decrypt command.
type DecryptOptions struct {
	// Base64 reads a base64 encoded message instead of raw bytes. Line breaks are ignored.
	Base64 bool
	// ChunkSize overrides defaultChunkSize when positive.
	ChunkSize int
	// RequireContext lists key=value pairs the message's encryption context must hold.
	RequireContext string
}

// RunDecrypt feeds the message from streams.Reader to a streaming decrypter in chunks and
// writes the plaintext to streams.Writer. Nothing is written unless the whole message,
// including its signature, verifies.
func RunDecrypt(
	ctx context.Context,
	messageUseCase usecase.MessageUseCase,
	logger *slog.Logger,
	streams IOTuple,
	opts DecryptOptions,
) error {
	required, err := parseEncryptionContext(opts.RequireContext)
	if err != nil {
		return err
	}

	reader := streams.Reader
	if reader == nil {
		return fmt.Errorf("%w: no input", domain.ErrTruncated)
	}
	if opts.Base64 {
		reader = base64.NewDecoder(base64.StdEncoding, reader)
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	decrypter := messageUseCase.NewDecrypter()
	defer decrypter.Close()

	buf := make([]byte, chunkSize)
	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			if err := decrypter.Update(ctx, buf[:n]); err != nil {
				return fmt.Errorf("failed to decrypt: %w", err)
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return fmt.Errorf("failed to read message: %w", readErr)
		}
	}

	if !decrypter.Done() {
		return fmt.Errorf("failed to decrypt: %w", domain.ErrTruncated)
	}

	header := decrypter.Header()
	for key, want := range required {
		if got, ok := header.EncryptionContext[key]; !ok || got != want {
			return fmt.Errorf("encryption context does not contain %s=%s", key, want)
		}
	}

	plaintext, err := decrypter.Plaintext()
	if err != nil {
		return fmt.Errorf("failed to decrypt: %w", err)
	}
	defer domain.Zero(plaintext)

	if _, err := streams.Writer.Write(plaintext); err != nil {
		return fmt.Errorf("failed to write plaintext: %w", err)
	}

	keys := make([]string, 0, len(header.EncryptionContext))
	for key := range header.EncryptionContext {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	logger.Info("message decrypted",
		slog.String("message_id", hex.EncodeToString(header.MessageID)),
		slog.String("algorithm_suite", header.SuiteID.String()),
		slog.Any("encryption_context_keys", keys),
		slog.Int("plaintext_bytes", len(plaintext)))
	return nil
}
