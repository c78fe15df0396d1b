// Package markup extracts URL-bearing attribute values from HTML and XML.
//
// The golang.org/x/net/html tokenizer is used directly rather than the tree
// builder: it never fails on structural errors and needs no document tree.
package markup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
	"github.com/custodia-labs/linkcheck/internal/extractors/textio"
	"github.com/custodia-labs/linkcheck/internal/logger"
)

// maxTokenBytes bounds the size of a single token.
const maxTokenBytes = 4 << 20

// TextAttribute is reported as the attribute of candidates taken from element text.
const TextAttribute = "#text"

// urlAttributes lists the recognised elements and their URL-bearing attributes.
var urlAttributes = map[string][]string{
	"a":      {"href"},
	"area":   {"href"},
	"link":   {"href"},
	"img":    {"src"},
	"script": {"src"},
	"iframe": {"src"},
	"frame":  {"src"},
	"embed":  {"src"},
	"source": {"src"},
	"audio":  {"src"},
	"video":  {"src"},
	"track":  {"src"},
}

// textElements are elements whose text content is a URL (sitemaps).
var textElements = map[string]bool{
	"loc": true,
}

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads HTML, XHTML and XML documents.
type Extractor struct {
	resolver driven.EncodingResolver
}

// New creates a markup extractor.
func New(resolver driven.EncodingResolver) *Extractor {
	return &Extractor{resolver: resolver}
}

// Format returns the format this extractor handles.
func (e *Extractor) Format() domain.Format {
	return domain.FormatMarkup
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Open starts tokenizing src.
func (e *Extractor) Open(_ context.Context, src domain.SourceDescriptor, _ domain.Limits) (driven.CandidateStream, error) {
	in, err := textio.Open(src, e.resolver)
	if err != nil {
		return nil, err
	}
	logger.Debug("markup: %s decoded as %s", src.Name(), in.Encoding)

	z := html.NewTokenizer(in.Reader)
	z.SetMaxBuf(maxTokenBytes)
	// Sitemaps often wrap <loc> values in CDATA sections.
	z.AllowCDATA(true)

	return &stream{in: in, z: z}, nil
}

type stream struct {
	in *textio.Input
	z  *html.Tokenizer

	pending  []domain.Candidate
	index    int
	produced int

	// text element being collected, if any
	textTag string
	text    strings.Builder
}

func (s *stream) Next(ctx context.Context) (domain.Candidate, error) {
	for {
		if len(s.pending) > 0 {
			c := s.pending[0]
			s.pending = s.pending[1:]
			s.produced++
			return c, nil
		}

		if err := ctx.Err(); err != nil {
			return domain.Candidate{}, err
		}

		switch s.z.Next() {
		case html.ErrorToken:
			err := s.z.Err()
			if errors.Is(err, io.EOF) {
				s.flushText()
				if len(s.pending) > 0 {
					continue
				}
				return domain.Candidate{}, io.EOF
			}
			if errors.Is(err, html.ErrBufferExceeded) {
				return domain.Candidate{}, fmt.Errorf("%w: token larger than %d bytes", domain.ErrFormat, maxTokenBytes)
			}
			return domain.Candidate{}, fmt.Errorf("read markup: %w", err)

		case html.StartTagToken, html.SelfClosingTagToken:
			s.startTag()

		case html.TextToken:
			if s.textTag != "" {
				s.text.Write(s.z.Text())
			}

		case html.EndTagToken:
			name, _ := s.z.TagName()
			if s.textTag != "" && string(name) == s.textTag {
				s.flushText()
			}
		}
	}
}

func (s *stream) startTag() {
	name, hasAttr := s.z.TagName()
	tag := string(name)

	if textElements[tag] {
		s.flushText()
		s.textTag = tag
		return
	}

	wanted, ok := urlAttributes[tag]
	if !ok || !hasAttr {
		return
	}

	attrs := make(map[string]string)
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = s.z.TagAttr()
		k := string(key)
		if _, seen := attrs[k]; !seen {
			attrs[k] = string(val)
		}
	}

	if tag == "link" && !isStylesheet(attrs["rel"]) {
		return
	}

	found := false
	for _, attr := range wanted {
		value, ok := attrs[attr]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		s.pending = append(s.pending, domain.Candidate{
			Raw:      value,
			Location: domain.MarkupAt(tag, attr, s.index),
		})
		found = true
	}
	if found {
		s.index++
	}
}

// flushText emits the collected element text, if any, and stops collecting.
func (s *stream) flushText() {
	if s.textTag == "" {
		return
	}
	value := strings.TrimSpace(s.text.String())
	if value != "" {
		s.pending = append(s.pending, domain.Candidate{
			Raw:      value,
			Location: domain.MarkupAt(s.textTag, TextAttribute, s.index),
		})
		s.index++
	}
	s.textTag = ""
	s.text.Reset()
}

func isStylesheet(rel string) bool {
	for _, token := range strings.Fields(strings.ToLower(rel)) {
		if token == "stylesheet" {
			return true
		}
	}
	return false
}

func (s *stream) Stats() driven.ExtractStats {
	return driven.ExtractStats{
		TotalEstimate: s.in.Estimate(s.produced),
		Encoding:      s.in.Encoding,
	}
}

func (s *stream) Close() error {
	return s.in.Close()
}
