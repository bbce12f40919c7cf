package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/tremor/internal/domain"
)

// errBadPacket marks a single undecodable packet; the stream itself is fine.
var errBadPacket = errors.New("bad packet")

// JSONLines reads one packet, or one array of packets, per line.
type JSONLines struct {
	scanner *bufio.Scanner
	closer  io.Closer
	pending []decoded
	line    int
}

// NewJSONLines reads packets from r. If r is an io.Closer, Close closes it.
func NewJSONLines(r io.Reader) *JSONLines {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	j := &JSONLines{scanner: sc}
	if c, ok := r.(io.Closer); ok {
		j.closer = c
	}
	return j
}

func (j *JSONLines) Next(ctx context.Context) (domain.Sample, error) {
	for len(j.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return domain.Sample{}, err
		}
		if !j.scanner.Scan() {
			if err := j.scanner.Err(); err != nil {
				return domain.Sample{}, fmt.Errorf("reading line %d: %w", j.line+1, err)
			}
			return domain.Sample{}, io.EOF
		}
		j.line++

		packets, err := decodePackets(j.scanner.Bytes())
		if err != nil {
			return domain.Sample{}, fmt.Errorf("line %d: %w: %w", j.line, errBadPacket, err)
		}
		j.pending = packets
	}

	d := j.pending[0]
	j.pending = j.pending[1:]
	if d.err != nil {
		return domain.Sample{}, fmt.Errorf("line %d: %w", j.line, d.err)
	}
	return d.sample, nil
}

func (j *JSONLines) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}
