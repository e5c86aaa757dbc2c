package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/allisson/envelope/internal/message/codec"
	"github.com/allisson/envelope/internal/message/domain"
	"github.com/allisson/envelope/internal/message/service"
)

type decryptState uint8

const (
	stateParseHeader decryptState = iota
	stateHeaderAuth
	stateBody
	stateFooter
	stateDone
	stateFailed
)

func (s decryptState) String() string {
	switch s {
	case stateParseHeader:
		return "parsing header"
	case stateHeaderAuth:
		return "verifying header"
	case stateBody:
		return "reading body"
	case stateFooter:
		return "verifying signature"
	case stateDone:
		return "done"
	default:
		return "failed"
	}
}

// Decrypter decrypts one message fed to it in arbitrary chunks.
//
// The header is parsed and checked against the commitment policy before the materials
// manager is asked for the data key, and checked again against the suite the materials
// name. Frames must arrive in order starting at 1. Plaintext is accumulated internally
// and only released by Plaintext after the final frame and, for signing suites, the
// signature have verified. Any failure is sticky: the accumulated plaintext and keys are
// wiped and every later call returns the same error.
//
// A Decrypter is not safe for concurrent use.
type Decrypter struct {
	cmm    MaterialsManager
	config Config
	logger *slog.Logger

	state decryptState
	err   error

	buf []byte
	off int

	header    *domain.MessageHeader
	rawHeader []byte
	suite     domain.AlgorithmSuite
	key       *domain.DerivedKeyMaterial
	cipher    service.FrameCipher
	verifier  *service.Verifier
	nextSeq   uint32

	plaintext []byte
	released  bool
	closed    bool
}

// NewDecrypter creates a Decrypter. A nil logger discards log output.
func NewDecrypter(cmm MaterialsManager, config Config, logger *slog.Logger) *Decrypter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Decrypter{
		cmm:     cmm,
		config:  config.withDefaults(),
		logger:  logger,
		state:   stateParseHeader,
		nextSeq: 1,
	}
}

// Update appends chunk to the buffered input and advances as far as the buffered bytes
// allow. Running out of input is not an error; the caller feeds more bytes or, at end
// of input, checks Done.
func (d *Decrypter) Update(ctx context.Context, chunk []byte) error {
	if d.err != nil {
		return d.err
	}
	if d.state == stateDone {
		if len(chunk) > 0 {
			return d.fail(domain.ErrTrailingData)
		}
		return nil
	}

	d.buf = append(d.buf, chunk...)
	for d.state != stateDone {
		if err := ctx.Err(); err != nil {
			return d.fail(err)
		}
		if err := d.step(ctx); err != nil {
			if errors.Is(err, domain.ErrInsufficientData) {
				break
			}
			return d.fail(err)
		}
	}

	if d.state == stateDone && d.off < len(d.buf) {
		return d.fail(fmt.Errorf("%w: %d bytes", domain.ErrTrailingData, len(d.buf)-d.off))
	}
	d.compact()
	return nil
}

// Done reports whether the whole message has been consumed and verified.
func (d *Decrypter) Done() bool {
	return d.state == stateDone
}

// Plaintext returns the verified plaintext. It fails with domain.ErrIncomplete until
// Done, and with the failure error once the Decrypter has failed. The caller owns the
// returned slice and should wipe it with domain.Zero after use; a later failure, such
// as trailing data, does not touch a slice that was already returned.
func (d *Decrypter) Plaintext() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.state != stateDone {
		return nil, fmt.Errorf("%w: %s", domain.ErrIncomplete, d.state)
	}
	if d.closed {
		return nil, fmt.Errorf("%w: decrypter closed", domain.ErrIncomplete)
	}
	d.released = true
	if d.plaintext == nil {
		d.plaintext = []byte{}
	}
	return d.plaintext, nil
}

// Header returns the parsed message header, or nil before it has been read.
func (d *Decrypter) Header() *domain.MessageHeader {
	return d.header
}

// Close wipes key material and any plaintext not yet released.
func (d *Decrypter) Close() {
	d.key.Zero()
	d.key = nil
	d.cipher = nil
	if !d.released {
		domain.Zero(d.plaintext)
	}
	d.plaintext = nil
	d.buf = nil
	d.off = 0
	d.closed = true
}

func (d *Decrypter) fail(err error) error {
	d.state = stateFailed
	d.err = err
	d.Close()
	d.logger.Debug("message decryption failed", slog.Any("error", err))
	return err
}

func (d *Decrypter) compact() {
	if d.off == 0 {
		return
	}
	remaining := copy(d.buf, d.buf[d.off:])
	d.buf = d.buf[:remaining]
	d.off = 0
}

// consume advances past n bytes and feeds them to the signature verifier.
func (d *Decrypter) consume(n int) {
	if d.verifier != nil {
		_, _ = d.verifier.Write(d.buf[d.off : d.off+n])
	}
	d.off += n
}

func (d *Decrypter) step(ctx context.Context) error {
	switch d.state {
	case stateParseHeader:
		return d.readHeader(ctx)
	case stateHeaderAuth:
		return d.verifyHeaderAuth()
	case stateBody:
		if d.header.ContentType == domain.ContentTypeNonFramed {
			return d.readNonFramedBody()
		}
		return d.readFrame()
	case stateFooter:
		return d.verifySignature()
	default:
		return d.err
	}
}

func (d *Decrypter) readHeader(ctx context.Context) error {
	parsed, err := codec.ParseHeader(d.buf, d.off)
	if err != nil {
		return err
	}
	header := parsed.Header
	suite, err := domain.LookupSuite(header.SuiteID)
	if err != nil {
		return err
	}

	policy := d.config.CommitmentPolicy
	if err := policy.CheckDecrypt(suite); err != nil {
		return err
	}
	if err := d.config.checkEncryptedDataKeys(len(header.EncryptedDataKeys)); err != nil {
		return err
	}

	d.logger.Debug("message header parsed",
		slog.String("suite", suite.ID.String()),
		slog.String("message_id", hex.EncodeToString(header.MessageID)),
		slog.String("content_type", header.ContentType.String()),
	)

	materials, err := d.cmm.DecryptMaterials(ctx, domain.DecryptionMaterialsRequest{
		Suite:             suite,
		EncryptionContext: header.EncryptionContext.Clone(),
		EncryptedDataKeys: header.EncryptedDataKeys,
		CommitmentPolicy:  policy,
	})
	if err != nil {
		return err
	}
	defer materials.Zero()

	if err := policy.CheckDecrypt(materials.Suite); err != nil {
		return err
	}
	if materials.Suite.ID != suite.ID {
		return fmt.Errorf("%w: header uses %s, materials use %s", domain.ErrSuiteMismatch, suite.ID, materials.Suite.ID)
	}
	if !materials.EncryptionContext.Equal(header.EncryptionContext) {
		return domain.ErrContextMismatch
	}
	if err := materials.Validate(); err != nil {
		return err
	}

	key, err := d.config.KeyDeriver.DeriveKey(materials.DataKey, suite, header.MessageID)
	if err != nil {
		return err
	}
	d.key = key
	if suite.Committing() {
		if err := service.VerifyCommitment(key, header.SuiteData); err != nil {
			return err
		}
	}
	if d.cipher, err = service.NewFrameCipher(suite, key.Key); err != nil {
		return err
	}
	if suite.Signed() {
		if d.verifier, err = service.NewVerifier(suite, materials.VerificationKey); err != nil {
			return err
		}
	}

	d.header = header
	d.rawHeader = parsed.Raw
	d.suite = suite
	d.consume(parsed.Consumed)
	d.state = stateHeaderAuth
	return nil
}

func (d *Decrypter) verifyHeaderAuth() error {
	auth, n, err := codec.ParseHeaderAuth(d.buf, d.off, d.header)
	if err != nil {
		return err
	}
	if _, err := d.cipher.Open(auth.IV, nil, auth.Tag, d.rawHeader); err != nil {
		return domain.ErrHeaderAuthentication
	}
	d.consume(n)
	d.state = stateBody
	d.logger.Debug("message header verified")
	return nil
}

func (d *Decrypter) readFrame() error {
	frame, n, err := codec.ParseFrame(d.buf, d.off, d.suite, d.header.FrameLength)
	if err != nil {
		return err
	}
	if frame.SequenceNumber != d.nextSeq {
		return fmt.Errorf("%w: expected frame %d, got %d", domain.ErrOutOfOrder, d.nextSeq, frame.SequenceNumber)
	}

	kind := codec.BodyAADFrame
	if frame.Final {
		kind = codec.BodyAADFinalFrame
	}
	aad := codec.BodyAAD(d.header.MessageID, kind, frame.SequenceNumber, uint64(frame.ContentLength()))
	if err := d.openFrame(frame, aad); err != nil {
		return err
	}
	d.consume(n)

	if frame.Final {
		d.finishBody()
		return nil
	}
	if d.nextSeq == domain.FinalFrameMarker {
		return fmt.Errorf("%w: too many frames", domain.ErrInvalidFrame)
	}
	d.nextSeq++
	return nil
}

func (d *Decrypter) readNonFramedBody() error {
	frame, n, err := codec.ParseNonFramedBody(d.buf, d.off, d.suite)
	if err != nil {
		return err
	}
	aad := codec.BodyAAD(d.header.MessageID, codec.BodyAADSingleBlock, 1, uint64(frame.ContentLength()))
	if err := d.openFrame(frame, aad); err != nil {
		return err
	}
	d.consume(n)
	d.finishBody()
	return nil
}

func (d *Decrypter) openFrame(frame domain.Frame, aad []byte) error {
	plaintext, err := d.cipher.Open(frame.IV, frame.Ciphertext, frame.Tag, aad)
	if err != nil {
		return fmt.Errorf("%w: frame %d", domain.ErrFrameAuthentication, frame.SequenceNumber)
	}
	d.plaintext = appendWiped(d.plaintext, plaintext)
	domain.Zero(plaintext)
	return nil
}

// appendWiped appends src to dst, wiping dst's old backing array when it has to grow.
func appendWiped(dst, src []byte) []byte {
	if len(dst)+len(src) <= cap(dst) {
		return append(dst, src...)
	}
	grown := make([]byte, len(dst), max(2*cap(dst), len(dst)+len(src)))
	copy(grown, dst)
	domain.Zero(dst)
	return append(grown, src...)
}

func (d *Decrypter) finishBody() {
	if d.suite.Signed() {
		d.state = stateFooter
		return
	}
	d.complete()
}

func (d *Decrypter) verifySignature() error {
	der, n, err := codec.ParseFooter(d.buf, d.off)
	if err != nil {
		return err
	}
	if err := d.verifier.Verify(der); err != nil {
		return err
	}
	d.off += n
	d.complete()
	return nil
}

func (d *Decrypter) complete() {
	d.key.Zero()
	d.key = nil
	d.cipher = nil
	d.verifier = nil
	d.state = stateDone
	d.logger.Debug("message decrypted", slog.Int("plaintext_size", len(d.plaintext)))
}
