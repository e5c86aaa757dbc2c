// Package usecase implements the message engine pipelines.
//
// Encrypt turns a plaintext and the materials returned by a MaterialsManager into one
// self-describing message: header, header authentication tag, a framed or single-block
// body and, for signing suites, a signature footer. Decrypt runs the same steps in
// reverse through the Decrypter state machine, which accepts input incrementally and
// releases plaintext only once the whole message, including its signature, has been
// verified.
//
// # Usage Example
//
//	uc := usecase.NewMessageUseCase(materialsManager, usecase.Config{
//	    CommitmentPolicy: domain.RequireEncryptRequireDecrypt,
//	    FrameLength:      4096,
//	}, logger)
//
//	out, err := uc.Encrypt(ctx, usecase.EncryptInput{
//	    Plaintext:         []byte("sensitive data"),
//	    EncryptionContext: domain.EncryptionContext{"tenant": "acme"},
//	})
//
//	msg, err := uc.Decrypt(ctx, out.Ciphertext)
//	defer domain.Zero(msg.Plaintext)
package usecase

import (
	"context"

	"github.com/allisson/envelope/internal/message/domain"
)

// MaterialsManager supplies the data key and encrypted data keys for a message.
type MaterialsManager interface {
	GetEncryptionMaterials(
		ctx context.Context,
		req domain.EncryptionMaterialsRequest,
	) (*domain.EncryptionMaterials, error)
	DecryptMaterials(
		ctx context.Context,
		req domain.DecryptionMaterialsRequest,
	) (*domain.DecryptionMaterials, error)
}

// MessageUseCase defines the message encryption operations.
type MessageUseCase interface {
	Encrypt(ctx context.Context, input EncryptInput) (*EncryptOutput, error)
	// Decrypt decrypts a complete message held in memory.
	//
	// Security Note: callers MUST zero the returned plaintext after use by calling
	// domain.Zero(output.Plaintext).
	Decrypt(ctx context.Context, ciphertext []byte) (*DecryptOutput, error)
	// NewDecrypter returns a state machine for decrypting a message fed in chunks.
	NewDecrypter() *Decrypter
}

// EncryptInput holds the parameters of one encryption.
type EncryptInput struct {
	Plaintext         []byte
	EncryptionContext domain.EncryptionContext
	// Suite overrides the configured default suite when set.
	Suite *domain.SuiteID
	// FrameLength overrides the configured frame length when non-zero.
	FrameLength int
	// ContentType defaults to framed.
	ContentType domain.ContentType
}

// EncryptOutput is the serialized message and the header it starts with.
type EncryptOutput struct {
	Ciphertext []byte
	Header     *domain.MessageHeader
}

// DecryptOutput is the verified plaintext and the header of the message it came from.
type DecryptOutput struct {
	Plaintext []byte
	Header    *domain.MessageHeader
}
