package app

import (
	"fmt"

	"github.com/allisson/envelope/internal/http"
	"github.com/allisson/envelope/internal/message/domain"
	messageHTTP "github.com/allisson/envelope/internal/message/http"
	messageService "github.com/allisson/envelope/internal/message/service"
	messageUseCase "github.com/allisson/envelope/internal/message/usecase"
)

// UseCaseConfig returns the message engine settings parsed from the configuration.
// An invalid policy, an unknown default suite or a default suite the policy forbids
// for encryption fail here rather than on the first request.
func (c *Container) UseCaseConfig() (messageUseCase.Config, error) {
	var err error
	c.useCaseConfigInit.Do(func() {
		c.useCaseConfig, err = c.initUseCaseConfig()
		if err != nil {
			c.setInitError("useCaseConfig", err)
		}
	})
	if err != nil {
		return messageUseCase.Config{}, err
	}
	if storedErr := c.initError("useCaseConfig"); storedErr != nil {
		return messageUseCase.Config{}, storedErr
	}
	return c.useCaseConfig, nil
}

// MessageUseCase returns the message use case wrapped with business metrics.
func (c *Container) MessageUseCase() (messageUseCase.MessageUseCase, error) {
	var err error
	c.messageUseCaseInit.Do(func() {
		c.messageUseCase, err = c.initMessageUseCase()
		if err != nil {
			c.setInitError("messageUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("messageUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.messageUseCase, nil
}

// MessageHandler returns the HTTP handler for the message endpoints.
func (c *Container) MessageHandler() (*messageHTTP.MessageHandler, error) {
	var err error
	c.messageHandlerInit.Do(func() {
		c.messageHandler, err = c.initMessageHandler()
		if err != nil {
			c.setInitError("messageHandler", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("messageHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.messageHandler, nil
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.setInitError("httpServer", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("httpServer"); storedErr != nil {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.setInitError("metricsServer", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("metricsServer"); storedErr != nil {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// defaultSuite is the suite used when a request names none.
func defaultSuite(cfg messageUseCase.Config) domain.SuiteID {
	if cfg.DefaultSuite != nil {
		return *cfg.DefaultSuite
	}
	return cfg.CommitmentPolicy.DefaultSuite()
}

func (c *Container) initUseCaseConfig() (messageUseCase.Config, error) {
	policy, err := domain.ParseCommitmentPolicy(c.config.CommitmentPolicy)
	if err != nil {
		return messageUseCase.Config{}, fmt.Errorf("invalid COMMITMENT_POLICY: %w", err)
	}

	if c.config.FrameLength < 0 || int64(c.config.FrameLength) > domain.MaxFrameLength {
		return messageUseCase.Config{}, fmt.Errorf("invalid FRAME_LENGTH: %d", c.config.FrameLength)
	}

	useCaseConfig := messageUseCase.Config{
		CommitmentPolicy:     policy,
		MaxEncryptedDataKeys: c.config.MaxEncryptedDataKeys,
		FrameLength:          c.config.FrameLength,
		KeyDeriver:           messageService.NewKeyDeriver(),
	}

	if c.config.DefaultAlgorithmSuite != "" {
		suiteID, err := domain.ParseSuiteID(c.config.DefaultAlgorithmSuite)
		if err != nil {
			return messageUseCase.Config{}, fmt.Errorf("invalid DEFAULT_ALGORITHM_SUITE: %w", err)
		}
		suite, err := domain.LookupSuite(suiteID)
		if err != nil {
			return messageUseCase.Config{}, fmt.Errorf("invalid DEFAULT_ALGORITHM_SUITE: %w", err)
		}
		if err := policy.CheckEncrypt(suite); err != nil {
			return messageUseCase.Config{}, fmt.Errorf("invalid DEFAULT_ALGORITHM_SUITE: %w", err)
		}
		useCaseConfig.DefaultSuite = &suiteID
	}

	return useCaseConfig, nil
}

func (c *Container) initMessageUseCase() (messageUseCase.MessageUseCase, error) {
	useCaseConfig, err := c.UseCaseConfig()
	if err != nil {
		return nil, err
	}

	manager, err := c.MaterialsManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get materials manager for message use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for message use case: %w", err)
	}

	useCase := messageUseCase.NewMessageUseCase(manager, useCaseConfig, c.Logger())
	return messageUseCase.NewMessageUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) initMessageHandler() (*messageHTTP.MessageHandler, error) {
	useCaseConfig, err := c.UseCaseConfig()
	if err != nil {
		return nil, err
	}

	useCase, err := c.MessageUseCase()
	if err != nil {
		return nil, err
	}

	return messageHTTP.NewMessageHandler(
		useCase,
		useCaseConfig.CommitmentPolicy,
		defaultSuite(useCaseConfig),
		c.Logger(),
	), nil
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	handler, err := c.MessageHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get message handler for http server: %w", err)
	}

	keyring, err := c.Keyring()
	if err != nil {
		return nil, fmt.Errorf("failed to get keyring for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	server := http.NewServer(
		map[string]http.ReadinessCheck{"kms": kmsReadinessCheck(keyring)},
		c.config.ServerHost,
		c.config.ServerPort,
		c.Logger(),
	)
	server.SetupRouter(http.RouterConfig{
		GinMode:                 c.config.GetGinMode(),
		MaxRequestBodyBytes:     c.config.MaxRequestBodyBytes,
		RateLimitEnabled:        c.config.RateLimitEnabled,
		RateLimitRequestsPerSec: c.config.RateLimitRequestsPerSec,
		RateLimitBurst:          c.config.RateLimitBurst,
		CORSEnabled:             c.config.CORSEnabled,
		CORSAllowOrigins:        c.config.CORSAllowOrigins,
		MetricsNamespace:        c.config.MetricsNamespace,
	}, handler, metricsProvider)

	return server, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
