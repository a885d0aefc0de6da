/*------------------------------------------------------------------------------
* bits.go : bit field extraction and packing
*
* notes  : bits are numbered msb first within each byte, bit position 0 is the
*          msb of buff[0]. fields may start and end at any bit position.
*-----------------------------------------------------------------------------*/

package rtcmgo

/* extract unsigned/signed bits ------------------------------------------------
* extract unsigned/signed bits from byte data
* args   : []byte buff      I   byte data
*          int    pos       I   bit position from start of data (bits)
*          int    nbit      I   bit length (bits) (1<=nbit<=64)
* return : extracted unsigned/signed bits
* notes  : a field that does not lie completely inside buff returns 0
*-----------------------------------------------------------------------------*/
func GetBitU(buff []byte, pos, nbit int) uint64 {
	var bits uint64

	if nbit <= 0 || 64 < nbit || pos < 0 || pos+nbit > len(buff)*8 {
		return 0
	}
	for i := pos; i < pos+nbit; i++ {
		bits = (bits << 1) | uint64((buff[i/8]>>(7-i%8))&1)
	}
	return bits
}

func GetBits(buff []byte, pos, nbit int) int64 {
	bits := GetBitU(buff, pos, nbit)
	if nbit <= 0 || 64 <= nbit || bits&(1<<(nbit-1)) == 0 {
		return int64(bits)
	}
	return int64(bits | (^uint64(0) << nbit)) /* extend sign */
}

/* set unsigned/signed bits ----------------------------------------------------
* set unsigned/signed bits to byte data
* args   : []byte buff      IO  byte data
*          int    pos       I   bit position from start of data (bits)
*          int    nbit      I   bit length (bits) (1<=nbit<=64)
*          [u]int64 data    I   unsigned/signed data, low nbit bits are used
* return : none
*-----------------------------------------------------------------------------*/
func SetBitU(buff []byte, pos, nbit int, data uint64) {
	if nbit <= 0 || 64 < nbit || pos < 0 || pos+nbit > len(buff)*8 {
		return
	}
	mask := uint64(1) << (nbit - 1)
	for i := pos; i < pos+nbit; i, mask = i+1, mask>>1 {
		if data&mask != 0 {
			buff[i/8] |= 1 << (7 - i%8)
		} else {
			buff[i/8] &^= 1 << (7 - i%8)
		}
	}
}

func SetBits(buff []byte, pos, nbit int, data int64) {
	SetBitU(buff, pos, nbit, uint64(data))
}

// PadBits returns the number of zero bits needed after nbit bits to reach a
// byte boundary.
func PadBits(nbit int) int {
	return (8 - nbit%8) % 8
}

/* bit field codec -------------------------------------------------------------
* bitCodec walks a message layout with a bit cursor. the same layout function
* decodes (enc=false) or encodes (enc=true) a message, so both directions
* share one field table. the first error is sticky: once set, every further
* field is a no-op and the cursor stays where the failure happened.
*-----------------------------------------------------------------------------*/
type bitCodec struct {
	buff  []byte
	pos   int  /* cursor (bits) */
	nbit  int  /* decode: available bits */
	enc   bool /* encode mode */
	ctype int  /* message type for error reports */
	err   error
}

func newDecoder(ctype int, payload []byte) *bitCodec {
	return &bitCodec{buff: payload, nbit: len(payload) * 8, ctype: ctype}
}

func newEncoder(ctype int) *bitCodec {
	return &bitCodec{buff: make([]byte, 0, 64), enc: true, ctype: ctype}
}

func (c *bitCodec) fail(err error, need int) {
	if c.err != nil {
		return
	}
	if c.enc {
		c.err = &EncodeError{Type: c.ctype, Pos: c.pos, Err: err}
		return
	}
	c.err = &DecodeError{Type: c.ctype, Pos: c.pos, Need: need, Have: c.nbit - c.pos, Err: err}
}

/* reserve w bits at the cursor, return start position or -1 on error */
func (c *bitCodec) take(w int) int {
	if c.err != nil {
		return -1
	}
	p := c.pos
	if c.enc {
		if n := (p + w + 7) / 8; n > len(c.buff) {
			c.buff = append(c.buff, make([]byte, n-len(c.buff))...)
		}
	} else if p+w > c.nbit {
		c.fail(ErrTruncated, w)
		return -1
	}
	c.pos += w
	return p
}

func (c *bitCodec) unsigned(v *uint64, w int) {
	if c.enc && w < 64 && *v>>w != 0 {
		c.fail(ErrFieldRange, w)
		return
	}
	p := c.take(w)
	if p < 0 {
		return
	}
	if c.enc {
		SetBitU(c.buff, p, w, *v)
	} else {
		*v = GetBitU(c.buff, p, w)
	}
}

func (c *bitCodec) signed(v *int64, w int) {
	if c.enc && w < 64 {
		lim := int64(1) << (w - 1)
		if *v < -lim || *v >= lim {
			c.fail(ErrFieldRange, w)
			return
		}
	}
	p := c.take(w)
	if p < 0 {
		return
	}
	if c.enc {
		SetBits(c.buff, p, w, *v)
	} else {
		*v = GetBits(c.buff, p, w)
	}
}

func (c *bitCodec) u8(v *uint8, w int) {
	x := uint64(*v)
	c.unsigned(&x, w)
	*v = uint8(x)
}

func (c *bitCodec) u16(v *uint16, w int) {
	x := uint64(*v)
	c.unsigned(&x, w)
	*v = uint16(x)
}

func (c *bitCodec) u32(v *uint32, w int) {
	x := uint64(*v)
	c.unsigned(&x, w)
	*v = uint32(x)
}

func (c *bitCodec) u64(v *uint64, w int) {
	c.unsigned(v, w)
}

func (c *bitCodec) i8(v *int8, w int) {
	x := int64(*v)
	c.signed(&x, w)
	*v = int8(x)
}

func (c *bitCodec) i16(v *int16, w int) {
	x := int64(*v)
	c.signed(&x, w)
	*v = int16(x)
}

func (c *bitCodec) i32(v *int32, w int) {
	x := int64(*v)
	c.signed(&x, w)
	*v = int32(x)
}

func (c *bitCodec) i64(v *int64, w int) {
	c.signed(v, w)
}

func (c *bitCodec) flag(v *bool) {
	var x uint64
	if *v {
		x = 1
	}
	c.unsigned(&x, 1)
	*v = x != 0
}

/* span checks a repeated group of n records of w bits each before any of them
* is touched. decode: the payload must hold all n records. encode: the caller's
* slice must have exactly n records (have). returns false on error. */
func (c *bitCodec) span(n, have, w int) bool {
	if c.err != nil {
		return false
	}
	if c.enc {
		if have != n {
			c.fail(ErrCount, n*w)
			return false
		}
		return true
	}
	if c.pos+n*w > c.nbit {
		c.fail(ErrTruncated, n*w)
		return false
	}
	return true
}

/* flags reads/writes a bit mask of n single-bit flags */
func (c *bitCodec) flags(v *[]bool, n int) {
	if !c.span(n, len(*v), 1) {
		return
	}
	if !c.enc && n > 0 {
		*v = make([]bool, n)
	}
	for i := range *v {
		c.flag(&(*v)[i])
	}
}

/* pad consumes (decode) or emits (encode) the byte alignment padding. decode
* requires the cursor to end exactly at the payload boundary afterwards. */
func (c *bitCodec) pad() {
	if c.err != nil {
		return
	}
	if c.enc {
		c.take(PadBits(c.pos))
		return
	}
	c.pos += (c.nbit - c.pos) % 8
	if c.pos != c.nbit {
		c.fail(ErrTrailingData, 0)
	}
}

func (c *bitCodec) bytes() []byte {
	return c.buff[:(c.pos+7)/8]
}
