/*------------------------------------------------------------------------------
* rtcmgo unit test driver : frame extraction
*-----------------------------------------------------------------------------*/
package rtcmgo_test

import (
	"bytes"
	"math/rand"
	"testing"

	"rtcmgo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genframe(t *testing.T, payload ...byte) []byte {
	t.Helper()
	frame, err := rtcmgo.GenFrame(payload)
	require.NoError(t, err)
	return frame
}

/* test stream: frames separated by noise that contains preambles */
func teststream(t *testing.T) ([]byte, [][]byte) {
	frames := [][]byte{
		mustHex(t, frame1005),
		genframe(t, 0x10, 0x00, 0x00, 0x05, 0x06, 0x07, 0x08, 0x09),
		genframe(t, 0xD3, 0xD3, 0x03, 0xFF), /* preambles inside payload */
		genframe(t),
		genframe(t, bytes.Repeat([]byte{0xA5}, 300)...),
		genframe(t, 0x3F, 0x20),
	}
	var stream []byte
	noise := [][]byte{
		{0x00, 0x01},
		{0xD3, 0x00, 0x01, 0x7F, 0x00, 0x00, 0x00}, /* false sync, bad crc */
		{},
		{0xD3, 0x00}, /* false sync, complete once the next frame is in */
		{0x55, 0xD3, 0x00, 0x00, 0x12, 0x34, 0x56},
		{0xFF, 0xFF, 0xFF},
	}
	for i, f := range frames {
		stream = append(stream, noise[i]...)
		stream = append(stream, f...)
	}
	return stream, frames
}

func parseChunks(p *rtcmgo.Parser, stream []byte, sizes func() int) [][]byte {
	var frames [][]byte
	for len(stream) > 0 {
		n := sizes()
		if n > len(stream) {
			n = len(stream)
		}
		frames = append(frames, p.Parse(stream[:n])...)
		stream = stream[n:]
	}
	return frames
}

func Test_parse_single_frame(t *testing.T) {
	p := rtcmgo.NewParser()
	frame := genframe(t, 1, 2, 3, 4)

	frames := p.Parse(frame)
	require.Len(t, frames, 1)
	assert.Len(t, frames[0], 10)
	assert.Equal(t, frame, frames[0])
	assert.Equal(t, 0, p.Buffered())
	assert.Equal(t, uint64(1), p.Stats().Frames)
}

func Test_parse_bad_crc(t *testing.T) {
	p := rtcmgo.NewParser()
	frame := genframe(t, 1, 2, 3, 4)
	frame[8] ^= 0xFF

	assert.Empty(t, p.Parse(frame))
	assert.Equal(t, 10, p.Buffered())
	assert.Equal(t, uint64(1), p.Stats().ParityErrors)

	/* the failed preamble is not examined again */
	assert.Empty(t, p.Parse(nil))
	assert.Equal(t, uint64(1), p.Stats().ParityErrors)

	/* a following good frame is found and everything before it dropped */
	good := genframe(t, 5, 6)
	frames := p.Parse(good)
	require.Len(t, frames, 1)
	assert.Equal(t, good, frames[0])
	assert.Equal(t, 0, p.Buffered())
}

func Test_parse_frame_at_buffer_end(t *testing.T) {
	p := rtcmgo.NewParser()
	frame := genframe(t, 9)

	assert.Empty(t, p.Parse(frame[:len(frame)-1]))
	assert.Equal(t, len(frame)-1, p.Buffered())

	frames := p.Parse(frame[len(frame)-1:])
	require.Len(t, frames, 1)
	assert.Equal(t, frame, frames[0])
}

func Test_parse_back_to_back(t *testing.T) {
	p := rtcmgo.NewParser()
	var stream []byte
	var want [][]byte
	for i := 0; i < 20; i++ {
		f := genframe(t, byte(i), 0xD3, byte(i))
		want = append(want, f)
		stream = append(stream, f...)
	}
	assert.Equal(t, want, p.Parse(stream))
	assert.Equal(t, 0, p.Buffered())
}

func Test_parse_chunking_independent(t *testing.T) {
	stream, want := teststream(t)

	all := rtcmgo.NewParser().Parse(stream)
	assert.Equal(t, want, all)

	bytewise := parseChunks(rtcmgo.NewParser(), stream, func() int { return 1 })
	assert.Equal(t, want, bytewise)

	rnd := rand.New(rand.NewSource(7))
	for k := 0; k < 20; k++ {
		chunked := parseChunks(rtcmgo.NewParser(), stream, func() int { return 1 + rnd.Intn(64) })
		assert.Equal(t, want, chunked)
	}
}

func Test_parse_resync(t *testing.T) {
	f1 := genframe(t, 0x10, 0x00, 0x00, 0x05, 0x06, 0x07, 0x08, 0x09)
	f2 := genframe(t, 0x3E, 0xD0, 0x01)

	/* corrupt a payload byte of f1 into a preamble */
	bad := append([]byte(nil), f1...)
	bad[3] = rtcmgo.RTCM3PREAMB

	p := rtcmgo.NewParser()
	frames := p.Parse(append(bad, f2...))
	require.Len(t, frames, 1)
	assert.Equal(t, f2, frames[0])
	assert.Equal(t, uint64(2), p.Stats().ParityErrors)
}

func Test_parse_incomplete_false_sync(t *testing.T) {
	/* false preamble announcing a long frame ahead of a real one */
	noise := []byte{0xD3, 0x03, 0xFF}
	f := genframe(t, 1, 2, 3)

	p := rtcmgo.NewParser()
	assert.Empty(t, p.Parse(append(noise, f...)))

	/* once the long candidate is complete it fails and the frame is found */
	frames := p.Parse(make([]byte, rtcmgo.RTCM3MAXFRAME))
	require.Len(t, frames, 1)
	assert.Equal(t, f, frames[0])
}

func Test_parse_max_size(t *testing.T) {
	for _, max := range []int{0, 2000, rtcmgo.DefaultMaxSize} {
		var p *rtcmgo.Parser
		if max == 0 {
			p = rtcmgo.NewParser()
			max = rtcmgo.DefaultMaxSize
		} else {
			p = rtcmgo.NewParser(rtcmgo.WithMaxSize(max))
		}
		rnd := rand.New(rand.NewSource(1))
		noise := make([]byte, 5000)
		for k := 0; k < 20; k++ {
			rnd.Read(noise)
			p.Parse(noise)
			assert.LessOrEqual(t, p.Buffered(), max)
		}
		assert.Equal(t, p.Stats().Bytes-uint64(p.Buffered()), p.Stats().Evicted)
	}
}

func Test_parse_max_size_raised(t *testing.T) {
	p := rtcmgo.NewParser(rtcmgo.WithMaxSize(10))
	assert.Equal(t, rtcmgo.RTCM3MAXFRAME, p.MaxSize())

	/* the largest frame still completes when fed in small pieces */
	f := genframe(t, bytes.Repeat([]byte{0x42}, rtcmgo.RTCM3MAXPAYLOAD)...)
	frames := parseChunks(p, append([]byte{0x00, 0x00}, f...), func() int { return 100 })
	require.Len(t, frames, 1)
	assert.Equal(t, f, frames[0])
}

func Test_parse_frames_are_copies(t *testing.T) {
	p := rtcmgo.NewParser()
	f := genframe(t, 1, 2, 3)
	frames := p.Parse(append(append([]byte(nil), f...), 0xD3))
	require.Len(t, frames, 1)

	p.Parse(bytes.Repeat([]byte{0xEE}, 64))
	assert.Equal(t, f, frames[0])
}

func Test_parse_reset(t *testing.T) {
	p := rtcmgo.NewParser()
	f := genframe(t, 1, 2, 3)
	p.Parse(f[:5])
	p.Reset()
	assert.Equal(t, 0, p.Buffered())
	assert.Empty(t, p.Parse(f[5:]))
}

func Test_payload(t *testing.T) {
	assert.Equal(t, []byte{1, 2, 3, 4}, rtcmgo.Payload(genframe(t, 1, 2, 3, 4)))
	assert.Nil(t, rtcmgo.Payload([]byte{0xD3}))
}
