package domain

// Frame is one authenticated chunk of a framed body. Final frames carry their content
// length explicitly; regular frames are always exactly the header frame length.
type Frame struct {
	SequenceNumber uint32
	IV             []byte
	Ciphertext     []byte
	Tag            []byte
	Final          bool
}

// ContentLength is the number of plaintext bytes the frame carries.
func (f Frame) ContentLength() int {
	return len(f.Ciphertext)
}

// FrameCount returns how many frames a framed body of plaintextLength bytes needs.
// Every body has at least one frame: an empty plaintext becomes a single empty final
// frame.
func FrameCount(plaintextLength, frameLength int64) int64 {
	if plaintextLength <= 0 {
		return 1
	}
	return (plaintextLength + frameLength - 1) / frameLength
}
