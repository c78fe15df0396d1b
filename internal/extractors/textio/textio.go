// Package textio opens text sources for the text-based extractors:
// it rejects empty input, counts raw bytes read and resolves the encoding.
package textio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/custodia-labs/linkcheck/internal/core/domain"
	"github.com/custodia-labs/linkcheck/internal/core/ports/driven"
)

// Input is an opened, decoded text source.
type Input struct {
	// Reader yields UTF-8 text.
	Reader io.Reader

	// Encoding is the resolved source encoding.
	Encoding string

	closer  io.Closer
	counter *countingReader
	size    int64
}

// Open opens src and decodes it with resolver.
func Open(src domain.SourceDescriptor, resolver driven.EncodingResolver) (*Input, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src.Name(), err)
	}

	size, err := src.Size()
	if err != nil {
		size = -1
	}

	counter := &countingReader{r: rc}
	br := bufio.NewReader(counter)
	if _, err := br.Peek(1); err != nil {
		rc.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceEmpty, src.Name())
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnreadable, err)
	}

	decoded, name, err := resolver.Open(br)
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnreadable, err)
	}

	return &Input{
		Reader:   decoded,
		Encoding: name,
		closer:   rc,
		counter:  counter,
		size:     size,
	}, nil
}

// Estimate extrapolates the total number of items from the items produced
// so far and the share of the source consumed. Returns 0 when unknown.
func (in *Input) Estimate(produced int) int {
	read := in.counter.n.Load()
	if in.size <= 0 || read <= 0 || produced <= 0 {
		return 0
	}
	if read >= in.size {
		return produced
	}
	return int(float64(produced) * float64(in.size) / float64(read))
}

// Close closes the underlying source.
func (in *Input) Close() error {
	if in.closer == nil {
		return nil
	}
	err := in.closer.Close()
	in.closer = nil
	return err
}

// countingReader counts bytes read from the raw source.
type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}
