package commands

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/envelope/internal/message/domain"
	"github.com/allisson/envelope/internal/message/usecase"
)

// EncryptOptions holds the flags of the encrypt command.
type EncryptOptions struct {
	// EncryptionContext is a comma-separated list of key=value pairs.
	EncryptionContext string
	// AlgorithmSuite overrides the configured suite, e.g. "0x0478".
	AlgorithmSuite string
	// FrameLength overrides the configured frame length when non-zero.
	FrameLength int
	NonFramed   bool
	// Base64 writes the message base64 encoded instead of raw bytes.
	Base64 bool
}

// RunEncrypt reads the whole plaintext from streams.Reader and writes one message to
// streams.Writer.
func RunEncrypt(
	ctx context.Context,
	messageUseCase usecase.MessageUseCase,
	logger *slog.Logger,
	streams IOTuple,
	opts EncryptOptions,
) error {
	encryptionContext, err := parseEncryptionContext(opts.EncryptionContext)
	if err != nil {
		return err
	}

	input := usecase.EncryptInput{
		EncryptionContext: encryptionContext,
		FrameLength:       opts.FrameLength,
	}
	if opts.AlgorithmSuite != "" {
		suiteID, err := domain.ParseSuiteID(opts.AlgorithmSuite)
		if err != nil {
			return err
		}
		input.Suite = &suiteID
	}
	if opts.NonFramed {
		input.ContentType = domain.ContentTypeNonFramed
	}

	input.Plaintext, err = readAll(streams.Reader)
	if err != nil {
		return fmt.Errorf("failed to read plaintext: %w", err)
	}
	defer domain.Zero(input.Plaintext)

	output, err := messageUseCase.Encrypt(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to encrypt: %w", err)
	}

	if err := writeMessage(streams.Writer, output.Ciphertext, opts.Base64); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	logger.Info("message encrypted",
		slog.String("message_id", hex.EncodeToString(output.Header.MessageID)),
		slog.String("algorithm_suite", output.Header.SuiteID.String()),
		slog.String("content_type", output.Header.ContentType.String()),
		slog.Int("plaintext_bytes", len(input.Plaintext)),
		slog.Int("message_bytes", len(output.Ciphertext)))
	return nil
}

func readAll(r io.Reader) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	return io.ReadAll(r)
}

func writeMessage(w io.Writer, message []byte, encode bool) error {
	if !encode {
		_, err := w.Write(message)
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(message)
	_, err := fmt.Fprintln(w, encoded)
	return err
}
