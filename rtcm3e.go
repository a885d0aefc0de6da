/*------------------------------------------------------------------------------
* rtcm3e.go : rtcm ver.3 message encoder functions
*
* notes  : the encoder walks the same field layouts as the decoder, so for
*          every message accepted by Encode, Decode(Encode(m)) equals m.
*          derived counts are not recomputed: the satellite count field, the
*          msm masks and the cell mask must agree with the record slices.
*-----------------------------------------------------------------------------*/

package rtcmgo

import (
	"fmt"
	"reflect"
)

/* encode rtcm ver.3 message ---------------------------------------------------
* encode a message into a payload
* args   : Message msg      I   message to encode
* return : payload (padded to byte boundary), error
*-----------------------------------------------------------------------------*/
func Encode(msg Message) ([]byte, error) {
	if msg == nil || reflect.ValueOf(msg).IsNil() {
		return nil, fmt.Errorf("rtcm3 encode: nil message: %w", ErrUnsupported)
	}
	ctype := msg.MessageType()

	m, ok := msg.(layout)
	if !ok {
		return nil, &EncodeError{Type: ctype, Err: ErrUnsupported}
	}
	/* message number must select this record type on decode */
	newmsg, ok := decoders[ctype]
	if !ok || reflect.TypeOf(newmsg()) != reflect.TypeOf(m) {
		Trace(2, "rtcm3 encode type error: type=%d record=%T\n", ctype, msg)
		return nil, &EncodeError{Type: ctype, Err: ErrUnsupported}
	}
	c := newEncoder(ctype)
	m.bitfields(c)
	if c.err != nil {
		Trace(2, "rtcm3 %d encode error: %v\n", ctype, c.err)
		return nil, c.err
	}
	payload := c.bytes()
	if len(payload) > RTCM3MAXPAYLOAD {
		return nil, &EncodeError{Type: ctype, Pos: c.pos, Err: ErrFrameLength}
	}
	Trace(4, "encode_rtcm3: type=%d len=%d\n", ctype, len(payload))
	return payload, nil
}

/* generate rtcm 3 message -----------------------------------------------------
* encode a message and wrap it into a frame ready for transmission
*-----------------------------------------------------------------------------*/
func EncodeFrame(msg Message) ([]byte, error) {
	payload, err := Encode(msg)
	if err != nil {
		return nil, err
	}
	return GenFrame(payload)
}

// NewMsmHeader fills the satellite mask, signal mask and cell mask of an msm
// header from satellite numbers (1-64), signal ids (1-32) and the cells
// present, cells[i][j] for sats[i] and sigs[j]. sats and sigs must be in
// ascending order.
func NewMsmHeader(h MsmHeader, sats, sigs []int, cells [][]bool) (MsmHeader, error) {
	h.SatelliteMask, h.SignalMask, h.CellMask = 0, 0, nil

	for i, s := range sats {
		if s < 1 || 64 < s || (i > 0 && s <= sats[i-1]) {
			return h, fmt.Errorf("msm satellite %d: %w", s, ErrFieldRange)
		}
		h.SatelliteMask |= 1 << (64 - s)
	}
	for i, s := range sigs {
		if s < 1 || 32 < s || (i > 0 && s <= sigs[i-1]) {
			return h, fmt.Errorf("msm signal %d: %w", s, ErrFieldRange)
		}
		h.SignalMask |= 1 << (32 - s)
	}
	if len(cells) != len(sats) {
		return h, fmt.Errorf("msm cell rows %d for %d satellites: %w", len(cells), len(sats), ErrCount)
	}
	for i := range cells {
		if len(cells[i]) != len(sigs) {
			return h, fmt.Errorf("msm cell row %d has %d signals: %w", i, len(cells[i]), ErrCount)
		}
		h.CellMask = append(h.CellMask, cells[i]...)
	}
	return h, nil
}
