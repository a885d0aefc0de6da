/*------------------------------------------------------------------------------
* rtcm3.go : rtcm ver.3 message decoder functions
*
* notes  : every message type is described by one ordered field layout
*          (bitfields) that is walked by the bit codec in decode or encode
*          mode. repeated groups get their counts from fields decoded before
*          them: the satellite count of the 1001-1004 header, the population
*          count of the msm satellite mask and signal mask (cell mask length)
*          and the population count of the cell mask (signal records).
*-----------------------------------------------------------------------------*/

package rtcmgo

/* message layout, implemented by every decodable message */
type layout interface {
	Message
	bitfields(c *bitCodec)
}

/* decoder table -------------------------------------------------------------*/
var decoders = map[int]func() layout{
	1001: func() layout { return new(Rtcm1001) },
	1002: func() layout { return new(Rtcm1002) },
	1003: func() layout { return new(Rtcm1003) },
	1004: func() layout { return new(Rtcm1004) },
	1005: func() layout { return new(Rtcm1005) },
	1006: func() layout { return new(Rtcm1006) },
	1019: func() layout { return new(Rtcm1019) },
	1077: func() layout { return new(RtcmMsm7) }, /* gps */
	1087: func() layout { return new(RtcmMsm7) }, /* glonass */
	1097: func() layout { return new(RtcmMsm7) }, /* galileo */
	1107: func() layout { return new(RtcmMsm7) }, /* sbas */
	1117: func() layout { return new(RtcmMsm7) }, /* qzss */
	1127: func() layout { return new(RtcmMsm7) }, /* beidou */
	1137: func() layout { return new(RtcmMsm7) }, /* navic */
}

// Supported reports whether Decode has a decoder for the message type.
func Supported(ctype int) bool {
	_, ok := decoders[ctype]
	return ok
}

// MessageNumber returns the 12 bit message type at the start of a payload.
func MessageNumber(payload []byte) (int, error) {
	if len(payload)*8 < 12 {
		return 0, &DecodeError{Need: 12, Have: len(payload) * 8, Err: ErrTruncated}
	}
	return int(GetBitU(payload, 0, 12)), nil
}

/* decode rtcm ver.3 message ---------------------------------------------------
* decode the payload of a validated frame
* args   : []byte payload   I   message payload (frame without header/parity)
* return : message, *Unsupported for types without decoder
*          error (*DecodeError) if the payload does not match the layout
*-----------------------------------------------------------------------------*/
func Decode(payload []byte) (Message, error) {
	ctype, err := MessageNumber(payload)
	if err != nil {
		Trace(2, "rtcm3 length error: len=%d\n", len(payload))
		return nil, err
	}
	Trace(3, "decode_rtcm3: len=%3d type=%d\n", len(payload), ctype)

	newmsg, ok := decoders[ctype]
	if !ok {
		return &Unsupported{Type: uint16(ctype)}, nil
	}
	m := newmsg()
	c := newDecoder(ctype, payload)
	m.bitfields(c)
	if c.err != nil {
		Trace(2, "rtcm3 %d length error: len=%d err=%v\n", ctype, len(payload), c.err)
		return nil, c.err
	}
	if TraceEnabled(4) {
		Trace(4, "decode_rtcm3: %v\n", m)
	}
	return m, nil
}

// DecodeFrame decodes the payload of a frame returned by Parser.Parse.
func DecodeFrame(frame []byte) (Message, error) {
	return Decode(Payload(frame))
}

/* type 1001-1004 message header ---------------------------------------------*/
func (h *ObsHeader) bitfields(c *bitCodec) {
	c.u16(&h.MessageNumber, 12)
	c.u16(&h.StationID, 12)
	c.u32(&h.EpochTime, 30)
	c.flag(&h.Sync)
	c.u8(&h.NumSatellites, 5)
	c.flag(&h.SmoothingIndicator)
	c.u8(&h.SmoothingInterval, 3)
}

/* L1 observables common to 1001-1004 (58 bits) */
func l1fields(c *bitCodec, sat *uint8, code *bool, pr *uint32, ppr *int32, lock *uint8) {
	c.u8(sat, 6)
	c.flag(code)
	c.u32(pr, 24)
	c.i32(ppr, 20)
	c.u8(lock, 7)
}

/* L2 observables common to 1003/1004 (43 bits) */
func l2fields(c *bitCodec, code *uint8, pr *int16, ppr *int32, lock *uint8) {
	c.u8(code, 2)
	c.i16(pr, 14)
	c.i32(ppr, 20)
	c.u8(lock, 7)
}

/* type 1001: L1-only gps rtk observation ------------------------------------*/
func (m *Rtcm1001) bitfields(c *bitCodec) {
	m.Header.bitfields(c)
	n := int(m.Header.NumSatellites)
	if c.span(n, len(m.Satellites), 58) && !c.enc && n > 0 {
		m.Satellites = make([]Rtcm1001Satellite, n)
	}
	for i := range m.Satellites {
		s := &m.Satellites[i]
		l1fields(c, &s.SatID, &s.L1CodeIndicator, &s.L1Pseudorange, &s.L1PhaseMinusPseudorange, &s.L1LockTime)
	}
	c.pad()
}

/* type 1002: extended L1-only gps rtk observables ---------------------------*/
func (m *Rtcm1002) bitfields(c *bitCodec) {
	m.Header.bitfields(c)
	n := int(m.Header.NumSatellites)
	if c.span(n, len(m.Satellites), 74) && !c.enc && n > 0 {
		m.Satellites = make([]Rtcm1002Satellite, n)
	}
	for i := range m.Satellites {
		s := &m.Satellites[i]
		l1fields(c, &s.SatID, &s.L1CodeIndicator, &s.L1Pseudorange, &s.L1PhaseMinusPseudorange, &s.L1LockTime)
		c.u8(&s.L1Ambiguity, 8)
		c.u8(&s.L1CNR, 8)
	}
	c.pad()
}

/* type 1003: L1&L2 gps rtk observables --------------------------------------*/
func (m *Rtcm1003) bitfields(c *bitCodec) {
	m.Header.bitfields(c)
	n := int(m.Header.NumSatellites)
	if c.span(n, len(m.Satellites), 101) && !c.enc && n > 0 {
		m.Satellites = make([]Rtcm1003Satellite, n)
	}
	for i := range m.Satellites {
		s := &m.Satellites[i]
		l1fields(c, &s.SatID, &s.L1CodeIndicator, &s.L1Pseudorange, &s.L1PhaseMinusPseudorange, &s.L1LockTime)
		l2fields(c, &s.L2CodeIndicator, &s.L2MinusL1Pseudorange, &s.L2PhaseMinusL1Pseudorange, &s.L2LockTime)
	}
	c.pad()
}

/* type 1004: extended L1&L2 gps rtk observables -----------------------------*/
func (m *Rtcm1004) bitfields(c *bitCodec) {
	m.Header.bitfields(c)
	n := int(m.Header.NumSatellites)
	if c.span(n, len(m.Satellites), 125) && !c.enc && n > 0 {
		m.Satellites = make([]Rtcm1004Satellite, n)
	}
	for i := range m.Satellites {
		s := &m.Satellites[i]
		l1fields(c, &s.SatID, &s.L1CodeIndicator, &s.L1Pseudorange, &s.L1PhaseMinusPseudorange, &s.L1LockTime)
		c.u8(&s.L1Ambiguity, 8)
		c.u8(&s.L1CNR, 8)
		l2fields(c, &s.L2CodeIndicator, &s.L2MinusL1Pseudorange, &s.L2PhaseMinusL1Pseudorange, &s.L2LockTime)
		c.u8(&s.L2CNR, 8)
	}
	c.pad()
}

/* stationary rtk reference station arp (152 bits) --------------------------*/
func (a *StationARP) bitfields(c *bitCodec) {
	c.u16(&a.MessageNumber, 12)
	c.u16(&a.StationID, 12)
	c.u8(&a.ITRFYear, 6)
	c.flag(&a.GPS)
	c.flag(&a.GLONASS)
	c.flag(&a.Galileo)
	c.flag(&a.ReferenceStation)
	c.i64(&a.X, 38)
	c.flag(&a.SingleOscillator)
	c.flag(&a.Reserved)
	c.i64(&a.Y, 38)
	c.u8(&a.QuarterCycle, 2)
	c.i64(&a.Z, 38)
}

/* type 1005: stationary rtk reference station arp ---------------------------*/
func (m *Rtcm1005) bitfields(c *bitCodec) {
	m.StationARP.bitfields(c)
	c.pad()
}

/* type 1006: stationary rtk reference station arp with height ---------------*/
func (m *Rtcm1006) bitfields(c *bitCodec) {
	m.StationARP.bitfields(c)
	c.u16(&m.AntennaHeight, 16)
	c.pad()
}

/* type 1019: gps ephemerides (488 bits) -------------------------------------*/
func (m *Rtcm1019) bitfields(c *bitCodec) {
	c.u16(&m.MessageNumber, 12)
	c.u8(&m.SatID, 6)
	c.u16(&m.Week, 10)
	c.u8(&m.URA, 4)
	c.u8(&m.CodeOnL2, 2)
	c.i16(&m.IDOT, 14)
	c.u8(&m.IODE, 8)
	c.u16(&m.Toc, 16)
	c.i8(&m.Af2, 8)
	c.i16(&m.Af1, 16)
	c.i32(&m.Af0, 22)
	c.u16(&m.IODC, 10)
	c.i16(&m.Crs, 16)
	c.i16(&m.DeltaN, 16)
	c.i32(&m.M0, 32)
	c.i16(&m.Cuc, 16)
	c.u32(&m.Eccentricity, 32)
	c.i16(&m.Cus, 16)
	c.u32(&m.SqrtA, 32)
	c.u16(&m.Toe, 16)
	c.i16(&m.Cic, 16)
	c.i32(&m.Omega0, 32)
	c.i16(&m.Cis, 16)
	c.i32(&m.I0, 32)
	c.i16(&m.Crc, 16)
	c.i32(&m.Omega, 32)
	c.i32(&m.OmegaDot, 24)
	c.i8(&m.Tgd, 8)
	c.u8(&m.Health, 6)
	c.flag(&m.L2PDataFlag)
	c.flag(&m.FitInterval)
	c.pad()
}

/* msm message header (169 bits + cell mask) ---------------------------------*/
func (h *MsmHeader) bitfields(c *bitCodec) {
	c.u16(&h.MessageNumber, 12)
	c.u16(&h.StationID, 12)
	c.u32(&h.EpochTime, 30)
	c.flag(&h.MultipleMessage)
	c.u8(&h.IODS, 3)
	c.u8(&h.SessionTime, 7)
	c.u8(&h.ClockSteering, 2)
	c.u8(&h.ExternalClock, 2)
	c.flag(&h.Smoothing)
	c.u8(&h.SmoothingInterval, 3)
	c.u64(&h.SatelliteMask, 64)
	c.u32(&h.SignalMask, 32)
	if c.err != nil {
		return
	}
	c.flags(&h.CellMask, h.NumSatellites()*h.NumSignals())
}

/* type msm7: full msm observables (high resolution) ---------------------------
* satellite data (36 bits per satellite) and signal data (80 bits per cell)
* are sent field by field: all rough ranges, then all extended infos ...
*-----------------------------------------------------------------------------*/
func (m *RtcmMsm7) bitfields(c *bitCodec) {
	m.Header.bitfields(c)

	nsat := m.Header.NumSatellites()
	if c.span(nsat, len(m.Satellites), 36) && !c.enc && nsat > 0 {
		m.Satellites = make([]Msm7Satellite, nsat)
	}
	for i := range m.Satellites {
		c.u8(&m.Satellites[i].RoughRange, 8)
	}
	for i := range m.Satellites {
		c.u8(&m.Satellites[i].ExtendedInfo, 4)
	}
	for i := range m.Satellites {
		c.u16(&m.Satellites[i].RoughRangeModulo, 10)
	}
	for i := range m.Satellites {
		c.i16(&m.Satellites[i].RoughPhaseRangeRate, 14)
	}

	ncell := m.Header.NumCells()
	if c.span(ncell, len(m.Signals), 80) && !c.enc && ncell > 0 {
		m.Signals = make([]Msm7Signal, ncell)
	}
	for i := range m.Signals {
		c.i32(&m.Signals[i].FinePseudorange, 20)
	}
	for i := range m.Signals {
		c.i32(&m.Signals[i].FinePhaseRange, 24)
	}
	for i := range m.Signals {
		c.u16(&m.Signals[i].LockTime, 10)
	}
	for i := range m.Signals {
		c.flag(&m.Signals[i].HalfCycle)
	}
	for i := range m.Signals {
		c.u16(&m.Signals[i].CNR, 10)
	}
	for i := range m.Signals {
		c.i16(&m.Signals[i].FinePhaseRangeRate, 15)
	}
	c.pad()
}
