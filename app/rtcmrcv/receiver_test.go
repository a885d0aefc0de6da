package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtcmgo"
)

/* message 1005 example of the rtcm 10403 standard */
const frame1005 = "D300133ED7D30202980EDEEF34B4BD62AC0941986F33360B98"

type memSink struct {
	msgs   []rtcmgo.Message
	err    error
	closed bool
}

func (s *memSink) Name() string { return "mem" }

func (s *memSink) Write(msg rtcmgo.Message, t time.Time) error {
	s.msgs = append(s.msgs, msg)
	return s.err
}

func (s *memSink) Close() error {
	s.closed = true
	return nil
}

/* stream: 1005, corrupted frame, 1001, 1005 frame with truncated payload */
func testStream(t *testing.T) []byte {
	t.Helper()
	var stream []byte

	f, err := hex.DecodeString(frame1005)
	require.NoError(t, err)
	stream = append(stream, f...)

	f, err = rtcmgo.GenFrame([]byte{1, 2, 3, 4})
	require.NoError(t, err)
	f[6] ^= 0x06
	stream = append(stream, f...)

	f, err = rtcmgo.EncodeFrame(&rtcmgo.Rtcm1001{
		Header:     rtcmgo.ObsHeader{MessageNumber: 1001, StationID: 7, NumSatellites: 1},
		Satellites: []rtcmgo.Rtcm1001Satellite{{SatID: 5, L1Pseudorange: 1000}},
	})
	require.NoError(t, err)
	stream = append(stream, f...)

	f, err = rtcmgo.GenFrame([]byte{0x3E, 0xD0})
	require.NoError(t, err)
	return append(stream, f...)
}

func testReceiver(sinks ...Sink) (*Receiver, *Metrics) {
	cfg := DefaultConfig()
	cfg.ReadSize = 7
	metrics := NewMetrics(prometheus.NewRegistry())
	return NewReceiver(cfg, "test", metrics, sinks...), metrics
}

func Test_receiver_run(t *testing.T) {
	sink := &memSink{}
	rcv, metrics := testReceiver(sink)
	stream := testStream(t)

	require.NoError(t, rcv.Run(context.Background(), bytes.NewReader(stream)))

	require.Len(t, sink.msgs, 2)
	assert.Equal(t, 1005, sink.msgs[0].MessageType())
	assert.Equal(t, 1001, sink.msgs[1].MessageType())
	assert.Equal(t, uint16(2003), sink.msgs[0].(*rtcmgo.Rtcm1005).StationID)

	st := rcv.Status()
	assert.Equal(t, "test", st.Session)
	assert.Equal(t, uint64(len(stream)), st.Parser.Bytes)
	assert.Equal(t, uint64(3), st.Parser.Frames)
	assert.Equal(t, uint64(1), st.Parser.ParityErrors)
	assert.Equal(t, uint64(1), st.DecodeErrors)
	assert.Equal(t, map[int]uint64{1005: 1, 1001: 1}, st.Messages)
	assert.Equal(t, 0, st.Buffered)

	assert.Equal(t, float64(len(stream)), testutil.ToFloat64(metrics.Bytes))
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.Frames))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ParityErrors))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.Buffered))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Messages.WithLabelValues("1005")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.DecodeErrors.WithLabelValues("1005")))

	require.NoError(t, rcv.Close())
	assert.True(t, sink.closed)
}

func Test_receiver_sink_error(t *testing.T) {
	sink := &memSink{err: errors.New("down")}
	rcv, metrics := testReceiver(sink)

	rcv.Input(testStream(t))
	assert.Len(t, sink.msgs, 2)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.SinkErrors.WithLabelValues("mem")))
}

func Test_receiver_status_copy(t *testing.T) {
	rcv, _ := testReceiver()
	rcv.Input(testStream(t))

	st := rcv.Status()
	st.Messages[1005] = 100
	assert.Equal(t, uint64(1), rcv.Status().Messages[1005])
}

func Test_receiver_cancel(t *testing.T) {
	rcv, _ := testReceiver()
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rcv.Run(ctx, pr) }()

	_, err := pw.Write(testStream(t)[:10])
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("receiver did not stop")
	}
}

func Test_receiver_read_error(t *testing.T) {
	rcv, _ := testReceiver()
	pr, pw := io.Pipe()
	want := errors.New("link lost")
	go func() {
		pw.Write([]byte{0xD3, 0x00})
		pw.CloseWithError(want)
	}()
	assert.ErrorIs(t, rcv.Run(context.Background(), pr), want)
}
