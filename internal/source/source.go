// Package source adapts external sensor transports into a stream of
// domain.Sample values.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/tremor/internal/domain"
)

// ErrUnknownKind is returned for a packet naming a sensor other than the
// accelerometer or gyroscope.
var ErrUnknownKind = errors.New("unknown sensor kind")

// Producer yields samples until the stream ends with io.EOF.
type Producer interface {
	Next(ctx context.Context) (domain.Sample, error)
	Close() error
}

// packet is the wire shape of one sensor packet. Watches send the sensor in
// "type"; "kind" is accepted too. A packet naming neither is an
// accelerometer packet.
type packet struct {
	Type      string  `json:"type"`
	Kind      string  `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Timestamp float64 `json:"timestamp"`
}

func (p packet) sample() (domain.Sample, error) {
	kind := p.Type
	if kind == "" {
		kind = p.Kind
	}
	if kind == "" {
		kind = string(domain.SensorAccelerometer)
	}

	switch domain.SensorKind(kind) {
	case domain.SensorAccelerometer, domain.SensorGyroscope:
	default:
		return domain.Sample{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return domain.Sample{
		Kind:      domain.SensorKind(kind),
		X:         p.X,
		Y:         p.Y,
		Z:         p.Z,
		Timestamp: int64(p.Timestamp),
	}, nil
}

// decoded is one packet of a frame: a sample, or the reason it was skipped.
type decoded struct {
	sample domain.Sample
	err    error
}

// decodePackets accepts a single JSON object or an array of objects. A packet
// with an unknown sensor kind is kept in place as an ErrUnknownKind entry so
// the rest of its batch still gets through. The error return is reserved for
// frames that are not valid JSON.
func decodePackets(data []byte) ([]decoded, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var packets []packet
	if data[0] == '[' {
		if err := json.Unmarshal(data, &packets); err != nil {
			return nil, fmt.Errorf("decoding packet batch: %w", err)
		}
	} else {
		var p packet
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decoding packet: %w", err)
		}
		packets = []packet{p}
	}

	out := make([]decoded, 0, len(packets))
	for _, p := range packets {
		s, err := p.sample()
		out = append(out, decoded{sample: s, err: err})
	}
	return out, nil
}

// Sink receives samples from Pump. Returning false does not stop the pump.
type Sink func(domain.Sample) bool

// PumpStats counts what a Pump run delivered.
type PumpStats struct {
	Delivered int
	Rejected  int
	Skipped   int
}

// Pump drains p into sink until the stream ends or ctx is cancelled.
// Undecodable packets and unknown sensor kinds are skipped and counted;
// any other producer error ends the run. io.EOF and cancellation return nil.
func Pump(ctx context.Context, p Producer, sink Sink) (PumpStats, error) {
	var stats PumpStats
	for {
		s, err := p.Next(ctx)
		if err != nil {
			switch {
			case isEndOfStream(ctx, err):
				return stats, nil
			case errors.Is(err, ErrUnknownKind), errors.Is(err, errBadPacket):
				stats.Skipped++
				continue
			default:
				return stats, err
			}
		}
		if sink(s) {
			stats.Delivered++
		} else {
			stats.Rejected++
		}
	}
}

func isEndOfStream(ctx context.Context, err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}
