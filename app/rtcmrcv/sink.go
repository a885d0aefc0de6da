/*------------------------------------------------------------------------------
* sink.go : message output
*-----------------------------------------------------------------------------*/
package main

import (
	"fmt"
	"io"
	"time"

	"rtcmgo"
)

// Sink consumes decoded messages.
type Sink interface {
	Name() string
	Write(msg rtcmgo.Message, t time.Time) error
	Close() error
}

/* station id of a message, false for messages without one */
func stationID(msg rtcmgo.Message) (int, bool) {
	switch m := msg.(type) {
	case *rtcmgo.Rtcm1001:
		return int(m.Header.StationID), true
	case *rtcmgo.Rtcm1002:
		return int(m.Header.StationID), true
	case *rtcmgo.Rtcm1003:
		return int(m.Header.StationID), true
	case *rtcmgo.Rtcm1004:
		return int(m.Header.StationID), true
	case *rtcmgo.Rtcm1005:
		return int(m.StationID), true
	case *rtcmgo.Rtcm1006:
		return int(m.StationID), true
	case *rtcmgo.RtcmMsm7:
		return int(m.Header.StationID), true
	}
	return 0, false
}

/* console sink: one line per message ----------------------------------------*/
type consoleSink struct {
	out io.Writer
}

func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{out: out}
}

func (s *consoleSink) Name() string { return "console" }

func (s *consoleSink) Write(msg rtcmgo.Message, t time.Time) error {
	_, err := fmt.Fprintf(s.out, "%s %v\n", t.UTC().Format("2006/01/02 15:04:05.000"), msg)
	return err
}

func (s *consoleSink) Close() error { return nil }
