package commands

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/envelope/internal/message/domain"
	materialsService "github.com/allisson/envelope/internal/materials/service"
)

// RunCreateWrappingKey generates a local base64key:// wrapping key, proves it can
// wrap and unwrap through kmsService, and prints the environment variables that
// configure it. keyName defaults to "default".
//
// Local wrapping keys are meant for development. Production deployments point
// KMS_KEY_URI at a cloud KMS key (awskms://, gcpkms://, azurekeyvault://, hashivault://).
func RunCreateWrappingKey(
	ctx context.Context,
	kmsService materialsService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	keyName string,
) error {
	if keyName == "" {
		keyName = "default"
	}

	keyURI, err := materialsService.NewLocalKeyURI()
	if err != nil {
		return err
	}

	if err := verifyKeeper(ctx, kmsService, keyURI); err != nil {
		return err
	}

	logger.Info("wrapping key created", slog.String("key_name", keyName))

	_, err = fmt.Fprintf(writer,
		"# Local wrapping key. Do not use in production.\nKMS_KEY_NAME=%q\nKMS_KEY_URI=%q\n",
		keyName, keyURI)
	return err
}

// RunVerifyWrappingKey opens keyURI and checks it can wrap and unwrap a canary key.
func RunVerifyWrappingKey(
	ctx context.Context,
	kmsService materialsService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	keyURI string,
) error {
	if keyURI == "" {
		return errors.New("--kms-key-uri is required")
	}

	if err := verifyKeeper(ctx, kmsService, keyURI); err != nil {
		return err
	}

	logger.Info("wrapping key verified")
	_, err := fmt.Fprintln(writer, "wrapping key OK")
	return err
}

func verifyKeeper(ctx context.Context, kmsService materialsService.KMSService, keyURI string) (err error) {
	keeper, err := kmsService.OpenKeeper(ctx, keyURI)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close KMS keeper: %w", closeErr)
		}
	}()

	canary := make([]byte, 32)
	if _, err := rand.Read(canary); err != nil {
		return fmt.Errorf("failed to generate canary key: %w", err)
	}
	defer domain.Zero(canary)

	wrapped, err := keeper.Encrypt(ctx, canary)
	if err != nil {
		return fmt.Errorf("failed to wrap canary key: %w", err)
	}

	unwrapped, err := keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return fmt.Errorf("failed to unwrap canary key: %w", err)
	}
	defer domain.Zero(unwrapped)

	if !bytes.Equal(canary, unwrapped) {
		return errors.New("wrapping key round trip mismatch")
	}
	return nil
}
