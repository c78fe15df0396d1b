package driven

import "io"

// EncodingResolver guesses the text encoding of a byte stream.
// It never fails on content: the last candidate accepts every byte sequence.
type EncodingResolver interface {
	// Resolve returns the encoding name for a bounded prefix of the content.
	Resolve(head []byte) string

	// NewReader wraps r so it yields UTF-8 decoded from the named encoding.
	NewReader(r io.Reader, name string) io.Reader

	// Open peeks at the start of r, resolves its encoding and returns a
	// decoding reader. It fails only if reading r itself fails.
	Open(r io.Reader) (io.Reader, string, error)
}
