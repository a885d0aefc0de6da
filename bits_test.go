/*------------------------------------------------------------------------------
* rtcmgo unit test driver : bit field functions
*-----------------------------------------------------------------------------*/
package rtcmgo_test

import (
	"testing"

	"rtcmgo"

	"github.com/stretchr/testify/assert"
)

func Test_getbitu(t *testing.T) {
	buff := []byte{0xD3, 0x00, 0x13, 0x3E, 0xD7}

	assert.Equal(t, uint64(0xD3), rtcmgo.GetBitU(buff, 0, 8))
	assert.Equal(t, uint64(19), rtcmgo.GetBitU(buff, 14, 10))
	assert.Equal(t, uint64(1005), rtcmgo.GetBitU(buff, 24, 12))
	assert.Equal(t, uint64(1), rtcmgo.GetBitU(buff, 0, 1))
	assert.Equal(t, uint64(0), rtcmgo.GetBitU(buff, 2, 1))
	assert.Equal(t, uint64(0xD300133ED7), rtcmgo.GetBitU(buff, 0, 40))
}

func Test_getbits(t *testing.T) {
	buff := []byte{0xFF, 0xF0, 0x80}

	assert.Equal(t, int64(-1), rtcmgo.GetBits(buff, 0, 12))
	assert.Equal(t, int64(-1), rtcmgo.GetBits(buff, 4, 4))
	assert.Equal(t, int64(0), rtcmgo.GetBits(buff, 12, 4))
	assert.Equal(t, int64(-128), rtcmgo.GetBits(buff, 16, 8))
	assert.Equal(t, int64(-248), rtcmgo.GetBits(buff, 4, 16))
	assert.Equal(t, int64(-16), rtcmgo.GetBits(buff, 0, 16))
	assert.Equal(t, int64(-496), rtcmgo.GetBits(buff, 5, 16))
}

func Test_setbits_odd_widths(t *testing.T) {
	for _, w := range []int{2, 5, 14, 20, 22, 24, 38, 63} {
		lim := int64(1) << (w - 1)
		for _, v := range []int64{-lim, -1, 0, 1, lim - 1} {
			buff := make([]byte, 12)
			rtcmgo.SetBits(buff, 3, w, v)
			assert.Equal(t, v, rtcmgo.GetBits(buff, 3, w), "w=%d v=%d", w, v)
		}
	}
	buff := make([]byte, 10)
	rtcmgo.SetBitU(buff, 5, 64, 0x8000000000000001)
	assert.Equal(t, uint64(0x8000000000000001), rtcmgo.GetBitU(buff, 5, 64))
	assert.Equal(t, int64(-0x7FFFFFFFFFFFFFFF), rtcmgo.GetBits(buff, 5, 64))
}

func Test_setbitu_keeps_neighbours(t *testing.T) {
	buff := []byte{0xFF, 0xFF, 0xFF}
	rtcmgo.SetBitU(buff, 6, 10, 0)
	assert.Equal(t, []byte{0xFC, 0x00, 0xFF}, buff)

	rtcmgo.SetBitU(buff, 6, 10, 0x3FF)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, buff)
}

func Test_bits_out_of_range(t *testing.T) {
	buff := []byte{0xFF, 0xFF}

	assert.Equal(t, uint64(0), rtcmgo.GetBitU(buff, 10, 8))
	assert.Equal(t, uint64(0), rtcmgo.GetBitU(buff, 0, 0))
	assert.Equal(t, uint64(0), rtcmgo.GetBitU(buff, 0, 65))
	assert.Equal(t, uint64(0), rtcmgo.GetBitU(buff, -1, 4))
	assert.Equal(t, uint64(0), rtcmgo.GetBitU(nil, 0, 1))

	assert.NotPanics(t, func() { rtcmgo.SetBitU(buff, 12, 8, 0) })
	assert.Equal(t, []byte{0xFF, 0xFF}, buff)
}

func Test_padbits(t *testing.T) {
	for nbit, pad := range map[int]int{0: 0, 1: 7, 7: 1, 8: 0, 9: 7, 122: 6, 152: 0} {
		assert.Equal(t, pad, rtcmgo.PadBits(nbit), "nbit=%d", nbit)
	}
}
