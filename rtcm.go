/*------------------------------------------------------------------------------
* rtcm.go : rtcm 3 frame extraction
*
* references :
*     [1] RTCM Standard 10403.3, Differential GNSS (Global Navigation Satellite
*         Systems) Services - Version 3, October 7, 2016
*
*          RTCM 3 message format:
*            +----------+--------+-----------+--------------------+----------+
*            | preamble | 000000 |  length   |    data message    |  parity  |
*            +----------+--------+-----------+--------------------+----------+
*            |<-- 8 --->|<- 6 -->|<-- 10 --->|<--- length x 8 --->|<-- 24 -->|
*
*-----------------------------------------------------------------------------*/

package rtcmgo

const (
	RTCM3PREAMB     = 0xD3 /* rtcm ver.3 frame preamble */
	RTCM3HEADLEN    = 3    /* preamble+reserved+length (bytes) */
	RTCM3CRCLEN     = 3    /* crc-24q parity (bytes) */
	RTCM3MAXPAYLOAD = 1023 /* max payload length (bytes) */
	RTCM3MAXFRAME   = RTCM3HEADLEN + RTCM3MAXPAYLOAD + RTCM3CRCLEN

	DefaultMaxSize = 10000 /* default max retained buffer (bytes) */
)

// ParserStats holds cumulative counters of a Parser.
type ParserStats struct {
	Bytes        uint64 `json:"bytes"`         // bytes pushed
	Frames       uint64 `json:"frames"`        // frames extracted
	ParityErrors uint64 `json:"parity_errors"` // preamble candidates with bad crc
	Evicted      uint64 `json:"evicted"`       // bytes dropped to respect the size bound
}

// Parser extracts checksum-valid rtcm 3 frames from a byte stream delivered
// in arbitrary chunks. It is not safe for concurrent use; run one Parser per
// stream.
type Parser struct {
	buff    []byte
	maxSize int
	scan    int /* first buffer position not yet examined */
	stats   ParserStats
}

type ParserOption func(*Parser)

// WithMaxSize bounds the number of bytes retained between calls. Values
// smaller than the largest frame are raised to RTCM3MAXFRAME so any frame
// can complete.
func WithMaxSize(n int) ParserOption {
	return func(p *Parser) {
		if n < RTCM3MAXFRAME {
			Trace(3, "rtcm parser max size raised: %d->%d\n", n, RTCM3MAXFRAME)
			n = RTCM3MAXFRAME
		}
		p.maxSize = n
	}
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

/* input rtcm 3 stream data ----------------------------------------------------
* append data to the retained buffer and extract every complete frame
* args   : []byte input     I   stream data (any length, any alignment)
* return : validated frames in stream order (copies, owned by the caller)
* notes  : a preamble whose frame fails the parity check is treated as a
*          false sync: scanning continues at the next byte. a preamble whose
*          frame is not yet complete stops the scan until more data arrive.
*          bytes up to the end of the last frame are dropped, and the oldest
*          bytes beyond the max size bound.
*-----------------------------------------------------------------------------*/
func (p *Parser) Parse(input []byte) [][]byte {
	var frames [][]byte

	if TraceEnabled(5) {
		Trace(5, "input_rtcm3: len=%d data=%X\n", len(input), input)
	}
	p.buff = append(p.buff, input...)
	p.stats.Bytes += uint64(len(input))

	drain := 0
	i := p.scan
	for ; i+RTCM3HEADLEN+RTCM3CRCLEN <= len(p.buff); i++ {
		if p.buff[i] != RTCM3PREAMB {
			continue
		}
		n := RTCM3HEADLEN + int(GetBitU(p.buff, i*8+14, 10)) + RTCM3CRCLEN
		if i+n > len(p.buff) {
			break /* incomplete, wait for more data */
		}
		frame := p.buff[i : i+n]
		if !CheckFrame(frame) {
			Trace(2, "rtcm3 parity error: len=%d\n", n-RTCM3HEADLEN-RTCM3CRCLEN)
			p.stats.ParityErrors++
			continue
		}
		Trace(4, "rtcm3 frame: pos=%d len=%d\n", i, n)
		frames = append(frames, append([]byte(nil), frame...))
		p.stats.Frames++
		drain = i + n
		i = drain - 1
	}

	/* respect max size of retained data */
	if len(p.buff)-drain > p.maxSize {
		evict := len(p.buff) - p.maxSize - drain
		Trace(3, "rtcm3 buffer overflow: evict=%d\n", evict)
		p.stats.Evicted += uint64(evict)
		drain = len(p.buff) - p.maxSize
	}
	p.drain(drain)

	if p.scan = i - drain; p.scan < 0 {
		p.scan = 0
	}
	return frames
}

func (p *Parser) drain(n int) {
	if n <= 0 {
		return
	}
	rest := len(p.buff) - n
	if cap(p.buff) > 4*p.maxSize {
		/* release storage left over from a large input chunk */
		buff := make([]byte, rest, p.maxSize)
		copy(buff, p.buff[n:])
		p.buff = buff
		return
	}
	copy(p.buff, p.buff[n:])
	p.buff = p.buff[:rest]
}

// Buffered returns the number of bytes retained for the next call.
func (p *Parser) Buffered() int {
	return len(p.buff)
}

func (p *Parser) MaxSize() int {
	return p.maxSize
}

func (p *Parser) Stats() ParserStats {
	return p.stats
}

// Reset drops retained data. Counters are kept.
func (p *Parser) Reset() {
	p.buff = p.buff[:0]
	p.scan = 0
}

// Payload returns the message payload of a frame returned by Parse.
func Payload(frame []byte) []byte {
	if len(frame) < RTCM3HEADLEN+RTCM3CRCLEN {
		return nil
	}
	return frame[RTCM3HEADLEN : len(frame)-RTCM3CRCLEN]
}
