package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/alexanderramin/tremor/internal/domain"
	"github.com/gorilla/websocket"
)

// WebsocketOptions tunes the bridge client.
type WebsocketOptions struct {
	HandshakeTimeout time.Duration
	// ReadTimeout bounds the silence between two frames. Zero disables it.
	ReadTimeout time.Duration
	Header      http.Header
}

func (o WebsocketOptions) withDefaults() WebsocketOptions {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	if o.Header == nil {
		o.Header = http.Header{}
	}
	return o
}

// Websocket reads sensor packets from a bridge that relays the watch stream
// as websocket text frames. Each frame holds one packet or an array of them.
type Websocket struct {
	conn    *websocket.Conn
	opts    WebsocketOptions
	pending []decoded

	closeOnce sync.Once
	stop      chan struct{}
}

// DialWebsocket connects to the bridge at url. Cancelling ctx after the dial
// closes the connection and unblocks Next.
func DialWebsocket(ctx context.Context, url string, opts WebsocketOptions) (*Websocket, error) {
	opts = opts.withDefaults()
	dialer := websocket.Dialer{HandshakeTimeout: opts.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, opts.Header)
	if err != nil {
		return nil, fmt.Errorf("dialing sensor bridge %s: %w", url, err)
	}

	w := &Websocket{conn: conn, opts: opts, stop: make(chan struct{})}
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"),
				time.Now().Add(2*time.Second))
			_ = conn.Close()
		case <-w.stop:
		}
	}()
	return w, nil
}

func (w *Websocket) Next(ctx context.Context) (domain.Sample, error) {
	for len(w.pending) == 0 {
		if err := ctx.Err(); err != nil {
			return domain.Sample{}, err
		}
		if w.opts.ReadTimeout > 0 {
			_ = w.conn.SetReadDeadline(time.Now().Add(w.opts.ReadTimeout))
		}

		kind, msg, err := w.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return domain.Sample{}, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return domain.Sample{}, io.EOF
			}
			return domain.Sample{}, fmt.Errorf("reading sensor bridge: %w", err)
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}

		packets, err := decodePackets(msg)
		if err != nil {
			return domain.Sample{}, fmt.Errorf("%w: %w", errBadPacket, err)
		}
		w.pending = packets
	}

	d := w.pending[0]
	w.pending = w.pending[1:]
	if d.err != nil {
		return domain.Sample{}, d.err
	}
	return d.sample, nil
}

// Close sends a normal closure and releases the connection. It is safe to
// call more than once.
func (w *Websocket) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stop)
		_ = w.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = w.conn.Close()
	})
	return err
}
