package usecase

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"log/slog"

	"github.com/allisson/envelope/internal/message/codec"
	"github.com/allisson/envelope/internal/message/domain"
	"github.com/allisson/envelope/internal/message/service"
)

// messageUseCase implements MessageUseCase.
type messageUseCase struct {
	cmm    MaterialsManager
	config Config
	logger *slog.Logger
}

// NewMessageUseCase creates the message use case. A zero commitment policy selects
// domain.DefaultCommitmentPolicy and a zero frame length selects
// domain.DefaultFrameLength.
func NewMessageUseCase(cmm MaterialsManager, config Config, logger *slog.Logger) MessageUseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &messageUseCase{
		cmm:    cmm,
		config: config.withDefaults(),
		logger: logger,
	}
}

// Encrypt produces a complete message. Every policy and limit check runs before the
// first byte of output is produced, and the data key and derived key are wiped before
// returning on every path.
func (m *messageUseCase) Encrypt(ctx context.Context, input EncryptInput) (*EncryptOutput, error) {
	contentType := input.ContentType
	if contentType == 0 {
		contentType = domain.ContentTypeFramed
	}
	plaintextLength := int64(len(input.Plaintext))

	var frameLength uint32
	switch contentType {
	case domain.ContentTypeFramed:
		requested := int64(input.FrameLength)
		if requested == 0 {
			requested = int64(m.config.FrameLength)
		}
		if requested <= 0 || requested > domain.MaxFrameLength {
			return nil, fmt.Errorf("%w: %d", domain.ErrInvalidFrameLength, requested)
		}
		if domain.FrameCount(plaintextLength, requested) > domain.MaxFrameCount {
			return nil, fmt.Errorf("%w: more than %d frames", domain.ErrPlaintextTooLarge, domain.MaxFrameCount)
		}
		frameLength = uint32(requested)
	case domain.ContentTypeNonFramed:
		if plaintextLength > domain.MaxNonFramedLength {
			return nil, fmt.Errorf("%w: non-framed limit is %d bytes", domain.ErrPlaintextTooLarge, domain.MaxNonFramedLength)
		}
	default:
		return nil, fmt.Errorf("%w: content type %d", domain.ErrInvalidHeader, contentType)
	}

	if input.EncryptionContext.HasReservedKey() {
		return nil, fmt.Errorf("%w: %s", domain.ErrReservedContextKey, domain.PublicKeyContextKey)
	}
	if err := input.EncryptionContext.Validate(); err != nil {
		return nil, err
	}

	policy := m.config.CommitmentPolicy
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	requested := input.Suite
	if requested == nil {
		requested = m.config.DefaultSuite
	}
	req := domain.EncryptionMaterialsRequest{
		EncryptionContext: input.EncryptionContext.Clone(),
		PlaintextLength:   plaintextLength,
		CommitmentPolicy:  policy,
	}
	if requested != nil {
		suite, err := domain.LookupSuite(*requested)
		if err != nil {
			return nil, err
		}
		if err := policy.CheckEncrypt(suite); err != nil {
			return nil, err
		}
		req.RequestedSuite = suite.ID
	}

	materials, err := m.cmm.GetEncryptionMaterials(ctx, req)
	if err != nil {
		return nil, err
	}
	defer materials.Zero()

	if err := m.checkEncryptionMaterials(req, materials); err != nil {
		return nil, err
	}
	suite := materials.Suite

	messageID := make([]byte, suite.MessageIDLength())
	if _, err := rand.Read(messageID); err != nil {
		return nil, fmt.Errorf("failed to generate message id: %w", err)
	}

	key, err := m.config.KeyDeriver.DeriveKey(materials.DataKey, suite, messageID)
	if err != nil {
		return nil, err
	}
	defer key.Zero()

	header, err := domain.NewMessageHeader(suite, domain.HeaderParams{
		MessageID:         messageID,
		EncryptionContext: materials.EncryptionContext,
		EncryptedDataKeys: materials.EncryptedDataKeys,
		ContentType:       contentType,
		FrameLength:       frameLength,
		SuiteData:         key.Commitment,
	})
	if err != nil {
		return nil, err
	}

	w, err := newMessageWriter(suite, key.Key, materials.SigningKey)
	if err != nil {
		return nil, err
	}
	if err := w.writeHeader(header); err != nil {
		return nil, err
	}

	if contentType == domain.ContentTypeNonFramed {
		err = w.writeNonFramedBody(messageID, input.Plaintext)
	} else {
		err = w.writeFrames(ctx, messageID, input.Plaintext, int64(frameLength))
	}
	if err != nil {
		return nil, err
	}

	ciphertext, err := w.finish()
	if err != nil {
		return nil, err
	}

	m.logger.Debug("message encrypted",
		slog.String("suite", suite.ID.String()),
		slog.String("content_type", contentType.String()),
		slog.Int("encrypted_data_keys", len(header.EncryptedDataKeys)),
		slog.Int("size", len(ciphertext)),
	)

	return &EncryptOutput{Ciphertext: ciphertext, Header: header}, nil
}

func (m *messageUseCase) checkEncryptionMaterials(
	req domain.EncryptionMaterialsRequest,
	materials *domain.EncryptionMaterials,
) error {
	if err := req.CommitmentPolicy.CheckEncrypt(materials.Suite); err != nil {
		return err
	}
	if req.RequestedSuite != 0 && materials.Suite.ID != req.RequestedSuite {
		return fmt.Errorf(
			"%w: requested %s, materials use %s", domain.ErrSuiteMismatch, req.RequestedSuite, materials.Suite.ID,
		)
	}
	if err := m.config.checkEncryptedDataKeys(len(materials.EncryptedDataKeys)); err != nil {
		return err
	}
	return materials.Validate()
}

// Decrypt drives a Decrypter over a whole buffer.
func (m *messageUseCase) Decrypt(ctx context.Context, ciphertext []byte) (*DecryptOutput, error) {
	d := m.NewDecrypter()
	defer d.Close()

	if err := d.Update(ctx, ciphertext); err != nil {
		return nil, err
	}
	if !d.Done() {
		return nil, fmt.Errorf("%w: message ended while %s", domain.ErrTruncated, d.state)
	}

	plaintext, err := d.Plaintext()
	if err != nil {
		return nil, err
	}
	return &DecryptOutput{Plaintext: plaintext, Header: d.Header()}, nil
}

// NewDecrypter returns a Decrypter bound to this use case's materials manager and
// configuration.
func (m *messageUseCase) NewDecrypter() *Decrypter {
	return NewDecrypter(m.cmm, m.config, m.logger)
}

// messageWriter serializes one message and feeds every byte to the signer.
type messageWriter struct {
	suite  domain.AlgorithmSuite
	cipher service.FrameCipher
	signer *service.Signer
	out    []byte
}

func newMessageWriter(suite domain.AlgorithmSuite, key []byte, signingKey *ecdsa.PrivateKey) (*messageWriter, error) {
	c, err := service.NewFrameCipher(suite, key)
	if err != nil {
		return nil, err
	}
	w := &messageWriter{suite: suite, cipher: c}
	if suite.Signed() {
		w.signer, err = service.NewSigner(suite, signingKey)
		if err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *messageWriter) write(p []byte) {
	w.out = append(w.out, p...)
	if w.signer != nil {
		_, _ = w.signer.Write(p)
	}
}

func (w *messageWriter) writeHeader(header *domain.MessageHeader) error {
	raw, err := codec.SerializeHeader(header)
	if err != nil {
		return err
	}
	iv := codec.HeaderIV(w.suite.IVLength)
	_, tag, err := w.cipher.Seal(iv, nil, raw)
	if err != nil {
		return err
	}
	w.write(raw)
	w.write(codec.SerializeHeaderAuth(header, domain.HeaderAuth{IV: iv, Tag: tag}))
	return nil
}

func (w *messageWriter) writeFrames(ctx context.Context, messageID, plaintext []byte, frameLength int64) error {
	total := int64(len(plaintext))
	count := domain.FrameCount(total, frameLength)

	for i := int64(0); i < count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		seq := uint32(i + 1)
		start := i * frameLength
		end := min(start+frameLength, total)
		final := i == count-1

		kind := codec.BodyAADFrame
		if final {
			kind = codec.BodyAADFinalFrame
		}
		chunk := plaintext[start:end]
		iv := codec.FrameIV(seq, w.suite.IVLength)
		aad := codec.BodyAAD(messageID, kind, seq, uint64(len(chunk)))

		ciphertext, tag, err := w.cipher.Seal(iv, chunk, aad)
		if err != nil {
			return err
		}
		w.write(codec.SerializeFrame(domain.Frame{
			SequenceNumber: seq,
			IV:             iv,
			Ciphertext:     ciphertext,
			Tag:            tag,
			Final:          final,
		}))
	}
	return nil
}

func (w *messageWriter) writeNonFramedBody(messageID, plaintext []byte) error {
	iv := codec.FrameIV(1, w.suite.IVLength)
	aad := codec.BodyAAD(messageID, codec.BodyAADSingleBlock, 1, uint64(len(plaintext)))
	ciphertext, tag, err := w.cipher.Seal(iv, plaintext, aad)
	if err != nil {
		return err
	}
	w.write(codec.SerializeNonFramedBody(iv, ciphertext, tag))
	return nil
}

func (w *messageWriter) finish() ([]byte, error) {
	if w.signer == nil {
		return w.out, nil
	}
	der, err := w.signer.Sign()
	if err != nil {
		return nil, err
	}
	footer, err := codec.SerializeFooter(der)
	if err != nil {
		return nil, err
	}
	w.out = append(w.out, footer...)
	return w.out, nil
}
