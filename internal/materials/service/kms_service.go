package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSService opens keepers by URI.
type KMSService interface {
	// OpenKeeper supports gcpkms://, awskms://, azurekeyvault://, hashivault:// and
	// base64key:// URIs.
	OpenKeeper(ctx context.Context, keyURI string) (Keeper, error)
}

type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// NewLocalKeyURI returns a base64key:// URI holding a fresh random 32-byte key.
func NewLocalKeyURI() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("failed to generate wrapping key: %w", err)
	}
	return "base64key://" + base64.URLEncoding.EncodeToString(key), nil
}
