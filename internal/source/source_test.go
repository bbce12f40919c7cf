package source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/tremor/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, p Producer) ([]domain.Sample, []error) {
	t.Helper()
	var samples []domain.Sample
	var errs []error
	ctx := context.Background()
	for {
		s, err := p.Next(ctx)
		if errors.Is(err, io.EOF) {
			return samples, errs
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		samples = append(samples, s)
	}
}

func TestJSONLines(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"accelerometer","x":0.1,"y":0.2,"z":0.98,"timestamp":1000}`,
		``,
		`[{"kind":"gyroscope","x":1,"y":2,"z":3,"timestamp":1010},{"x":0,"y":0,"z":1,"timestamp":1020}]`,
		`{"type":"barometer","x":1}`,
		`not json`,
		`{"type":"accelerometer","x":0,"y":0,"z":1,"timestamp":1030.9}`,
	}, "\n")

	samples, errs := drain(t, NewJSONLines(strings.NewReader(input)))

	require.Len(t, samples, 4)
	assert.Equal(t, domain.Sample{Kind: domain.SensorAccelerometer, X: 0.1, Y: 0.2, Z: 0.98, Timestamp: 1000}, samples[0])
	assert.Equal(t, domain.SensorGyroscope, samples[1].Kind)
	assert.Equal(t, domain.SensorAccelerometer, samples[2].Kind, "packets without a sensor name are accelerometer")
	assert.Equal(t, int64(1030), samples[3].Timestamp)

	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], ErrUnknownKind)
	assert.Contains(t, errs[0].Error(), "line 4")
	assert.ErrorIs(t, errs[1], errBadPacket)
	assert.Contains(t, errs[1].Error(), "line 5")
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestJSONLines_CloseClosesReader(t *testing.T) {
	rc := &closeRecorder{Reader: strings.NewReader("")}
	p := NewJSONLines(rc)
	require.NoError(t, p.Close())
	assert.True(t, rc.closed)

	assert.NoError(t, NewJSONLines(strings.NewReader("")).Close())
}

func TestPump(t *testing.T) {
	input := strings.Join([]string{
		`{"x":1,"y":0,"z":0,"timestamp":1}`,
		`{"type":"gyroscope","x":1,"y":0,"z":0,"timestamp":2}`,
		`{"type":"magnetometer"}`,
		`{broken`,
		`{"x":2,"y":0,"z":0,"timestamp":3}`,
	}, "\n")

	var got []domain.Sample
	stats, err := Pump(context.Background(), NewJSONLines(strings.NewReader(input)), func(s domain.Sample) bool {
		got = append(got, s)
		return s.Kind == domain.SensorAccelerometer
	})

	require.NoError(t, err)
	assert.Equal(t, PumpStats{Delivered: 2, Rejected: 1, Skipped: 2}, stats)
	assert.Len(t, got, 3)
}

func TestPump_MixedBatchKeepsKnownKinds(t *testing.T) {
	input := `[{"x":1,"timestamp":1},{"type":"magnetometer","x":9},{"x":2,"timestamp":2}]`

	var got []domain.Sample
	stats, err := Pump(context.Background(), NewJSONLines(strings.NewReader(input)), func(s domain.Sample) bool {
		got = append(got, s)
		return true
	})

	require.NoError(t, err)
	assert.Equal(t, PumpStats{Delivered: 2, Skipped: 1}, stats)
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].X)
	assert.Equal(t, 2.0, got[1].X)
}

func TestPump_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := Pump(ctx, NewJSONLines(strings.NewReader(`{"x":1}`)), func(domain.Sample) bool { return true })
	assert.NoError(t, err)
	assert.Zero(t, stats.Delivered)
}

type failingProducer struct{ err error }

func (f failingProducer) Next(context.Context) (domain.Sample, error) { return domain.Sample{}, f.err }
func (f failingProducer) Close() error                                 { return nil }

func TestPump_ReturnsTransportErrors(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := Pump(context.Background(), failingProducer{err: boom}, func(domain.Sample) bool { return true })
	assert.ErrorIs(t, err, boom)
}

// bridgeServer replays frames to each client, then closes normally.
func bridgeServer(t *testing.T, frames ...string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
			time.Now().Add(time.Second))
		// Wait for the client's close reply.
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebsocket_ReadsFramesUntilClose(t *testing.T) {
	srv := bridgeServer(t,
		`{"type":"accelerometer","x":0.5,"y":0,"z":1,"timestamp":100}`,
		`[{"type":"accelerometer","x":0.6,"timestamp":110},{"type":"gyroscope","x":3,"timestamp":110}]`,
		`[{"type":"thermometer"},{"type":"accelerometer","x":0.65,"timestamp":115}]`,
		`{"type":"accelerometer","x":0.7,"timestamp":120}`,
	)

	ctx := context.Background()
	p, err := DialWebsocket(ctx, wsURL(srv), WebsocketOptions{ReadTimeout: 5 * time.Second})
	require.NoError(t, err)
	defer p.Close()

	var accel []float64
	stats, err := Pump(ctx, p, func(s domain.Sample) bool {
		if s.Kind != domain.SensorAccelerometer {
			return false
		}
		accel = append(accel, s.X)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.6, 0.65, 0.7}, accel)
	assert.Equal(t, PumpStats{Delivered: 4, Rejected: 1, Skipped: 1}, stats)
}

func TestWebsocket_CancelUnblocksNext(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// Silent bridge: never sends a packet.
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	p, err := DialWebsocket(ctx, wsURL(srv), WebsocketOptions{})
	require.NoError(t, err)
	defer p.Close()

	done := make(chan error, 1)
	go func() {
		_, err := Pump(ctx, p, func(domain.Sample) bool { return true })
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("pump did not stop after cancel")
	}
}

func TestDialWebsocket_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv)
	srv.Close()

	_, err := DialWebsocket(context.Background(), url, WebsocketOptions{HandshakeTimeout: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dialing sensor bridge")
}
