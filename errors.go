package rtcmgo

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned when a payload ends before the fields its
	// layout requires.
	ErrTruncated = errors.New("payload too short")
	// ErrTrailingData is returned when whole bytes remain after the padding.
	ErrTrailingData = errors.New("payload longer than message layout")

	ErrFieldRange  = errors.New("value does not fit field width")
	ErrCount       = errors.New("record count does not match header")
	ErrUnsupported = errors.New("unsupported message type")
	ErrFrameLength = errors.New("message too long for rtcm 3 frame")
)

// DecodeError reports a message that could not be decoded from its payload.
type DecodeError struct {
	Type int // message type
	Pos  int // bit position where decoding stopped
	Need int // bits the failing field or group required
	Have int // bits left in the payload
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("rtcm3 %d decode error at bit %d: %v (need=%d have=%d)",
		e.Type, e.Pos, e.Err, e.Need, e.Have)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type EncodeError struct {
	Type int
	Pos  int
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("rtcm3 %d encode error at bit %d: %v", e.Type, e.Pos, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}
