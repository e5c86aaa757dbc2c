package dto

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/allisson/envelope/internal/message/domain"
	"github.com/allisson/envelope/internal/message/usecase"
)

// EncryptedDataKeyResponse describes one encrypted data key without its ciphertext.
type EncryptedDataKeyResponse struct {
	ProviderID   string `json:"provider_id"`
	ProviderInfo string `json:"provider_info"`
}

// HeaderResponse is the public view of a message header.
type HeaderResponse struct {
	MessageID          string                     `json:"message_id"`
	MessageFormat      int                        `json:"message_format"`
	AlgorithmSuite     string                     `json:"algorithm_suite"`
	AlgorithmSuiteName string                     `json:"algorithm_suite_name"`
	ContentType        string                     `json:"content_type"`
	FrameLength        uint32                     `json:"frame_length"`
	EncryptionContext  map[string]string          `json:"encryption_context"`
	EncryptedDataKeys  []EncryptedDataKeyResponse `json:"encrypted_data_keys"`
}

// EncryptResponse carries the base64 encoded message.
type EncryptResponse struct {
	Ciphertext string         `json:"ciphertext"`
	Header     HeaderResponse `json:"header"`
}

// DecryptResponse carries the base64 encoded plaintext.
type DecryptResponse struct {
	Plaintext string         `json:"plaintext"`
	Header    HeaderResponse `json:"header"`
}

// MapHeaderToResponse converts a message header to its API representation.
func MapHeaderToResponse(header *domain.MessageHeader) HeaderResponse {
	if header == nil {
		return HeaderResponse{}
	}

	edks := make([]EncryptedDataKeyResponse, 0, len(header.EncryptedDataKeys))
	for _, edk := range header.EncryptedDataKeys {
		edks = append(edks, EncryptedDataKeyResponse{
			ProviderID:   edk.ProviderID,
			ProviderInfo: edk.ProviderInfo,
		})
	}

	response := HeaderResponse{
		MessageID:         hex.EncodeToString(header.MessageID),
		MessageFormat:     int(header.Version),
		AlgorithmSuite:    header.SuiteID.String(),
		ContentType:       header.ContentType.String(),
		FrameLength:       header.FrameLength,
		EncryptionContext: header.EncryptionContext.Clone(),
		EncryptedDataKeys: edks,
	}
	if suite, err := domain.LookupSuite(header.SuiteID); err == nil {
		response.AlgorithmSuiteName = suite.Name
	}
	return response
}

// MapEncryptOutputToResponse converts an encrypt result to its API representation.
func MapEncryptOutputToResponse(output *usecase.EncryptOutput) EncryptResponse {
	return EncryptResponse{
		Ciphertext: base64.StdEncoding.EncodeToString(output.Ciphertext),
		Header:     MapHeaderToResponse(output.Header),
	}
}

// MapDecryptOutputToResponse converts a decrypt result to its API representation.
func MapDecryptOutputToResponse(output *usecase.DecryptOutput) DecryptResponse {
	return DecryptResponse{
		Plaintext: base64.StdEncoding.EncodeToString(output.Plaintext),
		Header:    MapHeaderToResponse(output.Header),
	}
}
