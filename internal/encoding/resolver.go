// Package encoding guesses the text encoding of a byte stream and decodes
// it to UTF-8. Detection walks a fixed candidate list and always ends on
// ISO-8859-1, which accepts every byte sequence, so it never fails.
package encoding

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
)

// Encoding names returned by Resolve.
const (
	UTF8        = "utf-8"
	UTF8BOM     = "utf-8-sig"
	UTF16LE     = "utf-16le"
	UTF16BE     = "utf-16be"
	Windows1252 = "windows-1252"
	Latin1      = "iso-8859-1"
)

// HeadSize is how many leading bytes are inspected.
const HeadSize = 64 * 1024

// Ensure Resolver implements the interface.
var _ driven.EncodingResolver = (*Resolver)(nil)

// Resolver implements driven.EncodingResolver.
type Resolver struct{}

// NewResolver creates a new encoding resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the first encoding in the candidate list that decodes head cleanly:
// a byte order mark, then UTF-8, then Windows-1252, then ISO-8859-1.
func (r *Resolver) Resolve(head []byte) string {
	switch {
	case bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}):
		return UTF8BOM
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE}):
		return UTF16LE
	case bytes.HasPrefix(head, []byte{0xFE, 0xFF}):
		return UTF16BE
	}

	if utf8.Valid(trimPartialRune(head)) {
		return UTF8
	}
	if decodesCleanly(charmap.Windows1252, head) {
		return Windows1252
	}
	return Latin1
}

// NewReader wraps src so that it yields UTF-8.
// Invalid sequences become U+FFFD rather than errors.
func (r *Resolver) NewReader(src io.Reader, name string) io.Reader {
	return transform.NewReader(src, decoderFor(name).NewDecoder())
}

// Open peeks at the start of src, resolves its encoding and returns a decoding reader.
// The only error it returns is a read failure from src itself.
func (r *Resolver) Open(src io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(src, HeadSize)
	head, err := br.Peek(HeadSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, "", err
	}
	name := r.Resolve(head)
	return r.NewReader(br, name), name, nil
}

func decoderFor(name string) encoding.Encoding {
	switch name {
	case UTF8BOM, UTF8:
		// UTF8BOM strips a leading mark when present and passes plain UTF-8 through.
		return unicode.UTF8BOM
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case Windows1252:
		return charmap.Windows1252
	default:
		return charmap.ISO8859_1
	}
}

// decodesCleanly reports whether every byte maps to a printable character.
// Bytes the code page leaves undefined decode to C1 control characters.
func decodesCleanly(enc *charmap.Charmap, head []byte) bool {
	out, err := enc.NewDecoder().Bytes(head)
	if err != nil {
		return false
	}
	for _, r := range string(out) {
		if r == utf8.RuneError || (r >= 0x80 && r <= 0x9F) {
			return false
		}
	}
	return true
}

// trimPartialRune drops an incomplete multi-byte sequence cut off at the end of the prefix.
func trimPartialRune(head []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(head); i++ {
		b := head[len(head)-i]
		if b < 0x80 {
			return head
		}
		if utf8.RuneStart(b) {
			if !utf8.FullRune(head[len(head)-i:]) {
				return head[:len(head)-i]
			}
			return head
		}
	}
	return head
}
