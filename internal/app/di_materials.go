package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/allisson/envelope/internal/message/domain"
	messageUseCase "github.com/allisson/envelope/internal/message/usecase"
	materialsService "github.com/allisson/envelope/internal/materials/service"
)

// ErrKMSKeyURIRequired is returned when no wrapping key is configured.
var ErrKMSKeyURIRequired = errors.New("KMS_KEY_URI is required")

// KMSService returns the KMS service.
func (c *Container) KMSService() materialsService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = materialsService.NewKMSService()
	})
	return c.kmsService
}

// Keyring returns the keyring built from KMSKeyURI and KMSAdditionalKeys. With
// additional keys the primary key generates and every key wraps.
func (c *Container) Keyring() (materialsService.Keyring, error) {
	var err error
	c.keyringInit.Do(func() {
		c.keyring, err = c.initKeyring()
		if err != nil {
			c.setInitError("keyring", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("keyring"); storedErr != nil {
		return nil, storedErr
	}
	return c.keyring, nil
}

// MaterialsManager returns the default materials manager over Keyring.
func (c *Container) MaterialsManager() (messageUseCase.MaterialsManager, error) {
	var err error
	c.materialsManagerInit.Do(func() {
		c.materialsManager, err = c.initMaterialsManager()
		if err != nil {
			c.setInitError("materialsManager", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("materialsManager"); storedErr != nil {
		return nil, storedErr
	}
	return c.materialsManager, nil
}

func (c *Container) openKeeperKeyring(
	ctx context.Context,
	name, uri string,
) (*materialsService.KeeperKeyring, error) {
	keeper, err := c.KMSService().OpenKeeper(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to open key %q: %w", name, err)
	}

	keyring, err := materialsService.NewKeeperKeyring(keeper, c.config.KMSProviderID, name)
	if err != nil {
		_ = keeper.Close()
		return nil, fmt.Errorf("failed to create keyring for key %q: %w", name, err)
	}

	c.mu.Lock()
	c.keeperKeyrings = append(c.keeperKeyrings, keyring)
	c.mu.Unlock()

	return keyring, nil
}

func (c *Container) initKeyring() (materialsService.Keyring, error) {
	if c.config.KMSKeyURI == "" {
		return nil, ErrKMSKeyURIRequired
	}

	ctx := context.Background()
	logger := c.Logger()

	primary, err := c.openKeeperKeyring(ctx, c.config.KMSKeyName, c.config.KMSKeyURI)
	if err != nil {
		return nil, err
	}

	additional := c.config.AdditionalKeys()
	if len(additional) == 0 {
		logger.Info("keyring configured", slog.String("key_name", c.config.KMSKeyName))
		return primary, nil
	}

	children := make([]materialsService.Keyring, 0, len(additional))
	for _, key := range additional {
		child, err := c.openKeeperKeyring(ctx, key.Name, key.URI)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	keyring, err := materialsService.NewMultiKeyring(primary, children...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi keyring: %w", err)
	}

	logger.Info("keyring configured",
		slog.String("key_name", c.config.KMSKeyName),
		slog.Int("additional_keys", len(children)))
	return keyring, nil
}

func (c *Container) initMaterialsManager() (messageUseCase.MaterialsManager, error) {
	keyring, err := c.Keyring()
	if err != nil {
		return nil, fmt.Errorf("failed to get keyring for materials manager: %w", err)
	}

	manager, err := materialsService.NewDefaultManager(keyring)
	if err != nil {
		return nil, fmt.Errorf("failed to create materials manager: %w", err)
	}
	return manager, nil
}

// kmsReadinessCheck wraps a throwaway data key to prove the wrapping keys are reachable.
func kmsReadinessCheck(keyring materialsService.Keyring) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		suite, err := domain.LookupSuite(domain.AES256GCMHKDFSHA512Commit)
		if err != nil {
			return err
		}
		canary := make([]byte, suite.EncryptionKeyLength)
		_, err = keyring.WrapDataKey(ctx, suite, canary, domain.EncryptionContext{"purpose": "readiness"})
		return err
	}
}
