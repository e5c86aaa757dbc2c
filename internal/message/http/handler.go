// Package http exposes the message engine over a JSON HTTP API.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/envelope/internal/httputil"
	"github.com/allisson/envelope/internal/message/domain"
	"github.com/allisson/envelope/internal/message/http/dto"
	"github.com/allisson/envelope/internal/message/usecase"
	customValidation "github.com/allisson/envelope/internal/validation"
)

// MessageHandler handles encrypt, decrypt and suite listing requests.
type MessageHandler struct {
	messageUseCase usecase.MessageUseCase
	policy         domain.CommitmentPolicy
	defaultSuite   domain.SuiteID
	logger         *slog.Logger
}

// NewMessageHandler creates a handler. policy and defaultSuite only drive the suite
// listing; enforcement happens in the use case.
func NewMessageHandler(
	messageUseCase usecase.MessageUseCase,
	policy domain.CommitmentPolicy,
	defaultSuite domain.SuiteID,
	logger *slog.Logger,
) *MessageHandler {
	return &MessageHandler{
		messageUseCase: messageUseCase,
		policy:         policy,
		defaultSuite:   defaultSuite,
		logger:         logger,
	}
}

// EncryptHandler encrypts a base64 plaintext into a message.
// POST /v1/messages/encrypt
// Returns 201 Created with the base64 message and its header.
func (h *MessageHandler) EncryptHandler(c *gin.Context) {
	var req dto.EncryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	defer domain.Zero(input.Plaintext)

	output, err := h.messageUseCase.Encrypt(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapEncryptOutputToResponse(output))
}

// DecryptHandler decrypts a base64 message.
// POST /v1/messages/decrypt
// Returns 200 OK with the base64 plaintext. SECURITY: Plaintext is zeroed after response.
func (h *MessageHandler) DecryptHandler(c *gin.Context) {
	var req dto.DecryptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ciphertext, err := req.Decode()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	output, err := h.messageUseCase.Decrypt(c.Request.Context(), ciphertext)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer domain.Zero(output.Plaintext)

	c.JSON(http.StatusOK, dto.MapDecryptOutputToResponse(output))
}

// ListSuitesHandler lists the registered algorithm suites.
// GET /v1/suites
func (h *MessageHandler) ListSuitesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MapSuitesToListResponse(domain.Suites(), h.policy, h.defaultSuite))
}
