// Package dto provides data transfer objects for the message HTTP API.
package dto

import (
	"encoding/base64"
	"fmt"

	validation "github.com/jellydator/validation"

	"github.com/allisson/envelope/internal/message/domain"
	"github.com/allisson/envelope/internal/message/usecase"
	customValidation "github.com/allisson/envelope/internal/validation"
)

// Content type names accepted in requests.
const (
	ContentTypeFramed    = "framed"
	ContentTypeNonFramed = "non-framed"
)

// EncryptRequest contains the parameters for encrypting a plaintext.
type EncryptRequest struct {
	// Plaintext is base64 encoded. It may be empty.
	Plaintext         string            `json:"plaintext"`
	EncryptionContext map[string]string `json:"encryption_context,omitempty"`
	// AlgorithmSuite is a suite id such as 0x0578 or a suite name.
	AlgorithmSuite string `json:"algorithm_suite,omitempty"`
	FrameLength    int    `json:"frame_length,omitempty"`
	ContentType    string `json:"content_type,omitempty"`
}

// Validate checks if the encrypt request is valid.
func (r *EncryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Plaintext, customValidation.Base64),
		validation.Field(&r.EncryptionContext, customValidation.EncryptionContext),
		validation.Field(&r.AlgorithmSuite, customValidation.SuiteIdentifier),
		validation.Field(&r.FrameLength, validation.Min(0), validation.Max(int(domain.MaxFrameLength))),
		validation.Field(&r.ContentType, validation.In(ContentTypeFramed, ContentTypeNonFramed)),
	)
}

// ToInput converts the request into use case input. Call Validate first.
func (r *EncryptRequest) ToInput() (usecase.EncryptInput, error) {
	plaintext, err := base64.StdEncoding.DecodeString(r.Plaintext)
	if err != nil {
		return usecase.EncryptInput{}, fmt.Errorf("invalid base64 plaintext: %w", err)
	}

	input := usecase.EncryptInput{
		Plaintext:         plaintext,
		EncryptionContext: domain.EncryptionContext(r.EncryptionContext),
		FrameLength:       r.FrameLength,
	}

	if r.AlgorithmSuite != "" {
		suiteID, err := domain.ParseSuiteID(r.AlgorithmSuite)
		if err != nil {
			return usecase.EncryptInput{}, err
		}
		input.Suite = &suiteID
	}

	if r.ContentType == ContentTypeNonFramed {
		input.ContentType = domain.ContentTypeNonFramed
	}

	return input, nil
}

// DecryptRequest contains a base64 encoded message.
type DecryptRequest struct {
	Ciphertext string `json:"ciphertext"`
}

// Validate checks if the decrypt request is valid.
func (r *DecryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Ciphertext,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Base64,
		),
	)
}

// Decode returns the raw message bytes. Call Validate first.
func (r *DecryptRequest) Decode() ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(r.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 ciphertext: %w", err)
	}
	return ciphertext, nil
}
