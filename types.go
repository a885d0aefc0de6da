/*------------------------------------------------------------------------------
* types.go : rtcm 3 message records
*
* notes  : fields keep the raw integer values of the data fields (DFnnn of
*          ref [1]); scaling to physical units is left to the caller.
*          1 bit fields are bool.
*-----------------------------------------------------------------------------*/

package rtcmgo

import (
	"fmt"
	"math/bits"
)

// Message is one decoded rtcm 3 message. The concrete type is one of
// *Rtcm1001 .. *Rtcm1006, *Rtcm1019, *RtcmMsm7 or *Unsupported.
type Message interface {
	MessageType() int
	isMessage()
}

// Unsupported is a valid frame whose message type has no decoder.
type Unsupported struct {
	Type uint16
}

func (m *Unsupported) MessageType() int { return int(m.Type) }
func (*Unsupported) isMessage()         {}
func (m *Unsupported) String() string   { return fmt.Sprintf("%4d unsupported", m.Type) }

/* gps rtk observation header (1001-1004) ------------------------------------*/
type ObsHeader struct {
	MessageNumber      uint16 /* DF002 12 */
	StationID          uint16 /* DF003 12 */
	EpochTime          uint32 /* DF004 30 gps tow (ms) */
	Sync               bool   /* DF005 another message of the epoch follows */
	NumSatellites      uint8  /* DF006 5 */
	SmoothingIndicator bool   /* DF007 divergence free smoothing */
	SmoothingInterval  uint8  /* DF008 3 */
}

/* 1001: L1-only gps rtk observables */
type Rtcm1001Satellite struct {
	SatID                   uint8  /* DF009 6 */
	L1CodeIndicator         bool   /* DF010 */
	L1Pseudorange           uint32 /* DF011 24 */
	L1PhaseMinusPseudorange int32  /* DF012 s20 */
	L1LockTime              uint8  /* DF013 7 */
}

type Rtcm1001 struct {
	Header     ObsHeader
	Satellites []Rtcm1001Satellite
}

/* 1002: extended L1-only gps rtk observables */
type Rtcm1002Satellite struct {
	SatID                   uint8
	L1CodeIndicator         bool
	L1Pseudorange           uint32
	L1PhaseMinusPseudorange int32
	L1LockTime              uint8
	L1Ambiguity             uint8 /* DF014 integer pseudorange modulus ambiguity */
	L1CNR                   uint8 /* DF015 0.25 dB-Hz */
}

type Rtcm1002 struct {
	Header     ObsHeader
	Satellites []Rtcm1002Satellite
}

/* 1003: L1&L2 gps rtk observables */
type Rtcm1003Satellite struct {
	SatID                     uint8
	L1CodeIndicator           bool
	L1Pseudorange             uint32
	L1PhaseMinusPseudorange   int32
	L1LockTime                uint8
	L2CodeIndicator           uint8 /* DF016 2 */
	L2MinusL1Pseudorange      int16 /* DF017 s14 */
	L2PhaseMinusL1Pseudorange int32 /* DF018 s20 */
	L2LockTime                uint8 /* DF019 7 */
}

type Rtcm1003 struct {
	Header     ObsHeader
	Satellites []Rtcm1003Satellite
}

/* 1004: extended L1&L2 gps rtk observables */
type Rtcm1004Satellite struct {
	SatID                     uint8
	L1CodeIndicator           bool
	L1Pseudorange             uint32
	L1PhaseMinusPseudorange   int32
	L1LockTime                uint8
	L1Ambiguity               uint8
	L1CNR                     uint8
	L2CodeIndicator           uint8
	L2MinusL1Pseudorange      int16
	L2PhaseMinusL1Pseudorange int32
	L2LockTime                uint8
	L2CNR                     uint8 /* DF020 */
}

type Rtcm1004 struct {
	Header     ObsHeader
	Satellites []Rtcm1004Satellite
}

/* stationary rtk reference station arp (1005/1006) --------------------------*/
type StationARP struct {
	MessageNumber    uint16
	StationID        uint16
	ITRFYear         uint8 /* DF021 6 */
	GPS              bool  /* DF022 */
	GLONASS          bool  /* DF023 */
	Galileo          bool  /* DF024 */
	ReferenceStation bool  /* DF141 0:real,1:non-physical */
	X                int64 /* DF025 s38 0.1 mm */
	SingleOscillator bool  /* DF142 */
	Reserved         bool  /* DF001 */
	Y                int64 /* DF026 s38 0.1 mm */
	QuarterCycle     uint8 /* DF364 2 */
	Z                int64 /* DF027 s38 0.1 mm */
}

type Rtcm1005 struct {
	StationARP
}

type Rtcm1006 struct {
	StationARP
	AntennaHeight uint16 /* DF028 0.1 mm */
}

/* 1019: gps ephemeris ---------------------------------------------------------
* raw values of DF009,DF076-DF103,DF137
*-----------------------------------------------------------------------------*/
type Rtcm1019 struct {
	MessageNumber uint16
	SatID         uint8  /* 6 */
	Week          uint16 /* 10, mod 1024 */
	URA           uint8  /* 4 sv accuracy */
	CodeOnL2      uint8  /* 2 */
	IDOT          int16  /* s14 2^-43 sc/s */
	IODE          uint8
	Toc           uint16 /* 2^4 s */
	Af2           int8   /* 2^-55 s/s^2 */
	Af1           int16  /* 2^-43 s/s */
	Af0           int32  /* s22 2^-31 s */
	IODC          uint16 /* 10 */
	Crs           int16  /* 2^-5 m */
	DeltaN        int16  /* 2^-43 sc/s */
	M0            int32  /* 2^-31 sc */
	Cuc           int16  /* 2^-29 rad */
	Eccentricity  uint32 /* 2^-33 */
	Cus           int16
	SqrtA         uint32 /* 2^-19 m^1/2 */
	Toe           uint16 /* 2^4 s */
	Cic           int16
	Omega0        int32
	Cis           int16
	I0            int32
	Crc           int16
	Omega         int32
	OmegaDot      int32 /* s24 */
	Tgd           int8  /* 2^-31 s */
	Health        uint8 /* 6 */
	L2PDataFlag   bool
	FitInterval   bool /* 0:4hr,1:>4hr */
}

/* multi-signal-message header -------------------------------------------------
* the cell mask has NumSatellites()*NumSignals() bits, one per satellite and
* signal, satellite major.
*-----------------------------------------------------------------------------*/
type MsmHeader struct {
	MessageNumber     uint16
	StationID         uint16
	EpochTime         uint32 /* DF004/DF034/DF248/DF427 30 */
	MultipleMessage   bool   /* DF393 */
	IODS              uint8  /* DF409 3 issue of data station */
	SessionTime       uint8  /* DF001 7 reserved */
	ClockSteering     uint8  /* DF411 2 */
	ExternalClock     uint8  /* DF412 2 */
	Smoothing         bool   /* DF417 */
	SmoothingInterval uint8  /* DF418 3 */
	SatelliteMask     uint64 /* DF394 bit 63 = satellite 1 */
	SignalMask        uint32 /* DF395 bit 31 = signal 1 */
	CellMask          []bool /* DF396 */
}

func (h *MsmHeader) NumSatellites() int {
	return bits.OnesCount64(h.SatelliteMask)
}

func (h *MsmHeader) NumSignals() int {
	return bits.OnesCount32(h.SignalMask)
}

// NumCells returns the number of set cells, i.e. the number of signal
// records that follow the satellite data.
func (h *MsmHeader) NumCells() int {
	n := 0
	for _, c := range h.CellMask {
		if c {
			n++
		}
	}
	return n
}

// Satellites returns the satellite numbers (1-64) set in the satellite mask.
func (h *MsmHeader) Satellites() []int {
	var sats []int
	for j := 1; j <= 64; j++ {
		if h.SatelliteMask&(1<<(64-j)) != 0 {
			sats = append(sats, j)
		}
	}
	return sats
}

// Signals returns the signal ids (1-32) set in the signal mask.
func (h *MsmHeader) Signals() []int {
	var sigs []int
	for j := 1; j <= 32; j++ {
		if h.SignalMask&(1<<(32-j)) != 0 {
			sigs = append(sigs, j)
		}
	}
	return sigs
}

type Msm7Satellite struct {
	RoughRange          uint8  /* DF397 8 ms */
	ExtendedInfo        uint8  /* DF419 4 */
	RoughRangeModulo    uint16 /* DF398 10 2^-10 ms */
	RoughPhaseRangeRate int16  /* DF399 s14 m/s */
}

type Msm7Signal struct {
	FinePseudorange    int32  /* DF405 s20 2^-29 ms */
	FinePhaseRange     int32  /* DF406 s24 2^-31 ms */
	LockTime           uint16 /* DF407 10 */
	HalfCycle          bool   /* DF420 */
	CNR                uint16 /* DF408 10 2^-4 dB-Hz */
	FinePhaseRangeRate int16  /* DF404 s15 0.0001 m/s */
}

/* msm7: full pseudorange, phaserange, phaserange rate and cnr (high res) */
type RtcmMsm7 struct {
	Header     MsmHeader
	Satellites []Msm7Satellite
	Signals    []Msm7Signal
}

func (m *Rtcm1001) MessageType() int { return int(m.Header.MessageNumber) }
func (m *Rtcm1002) MessageType() int { return int(m.Header.MessageNumber) }
func (m *Rtcm1003) MessageType() int { return int(m.Header.MessageNumber) }
func (m *Rtcm1004) MessageType() int { return int(m.Header.MessageNumber) }
func (m *Rtcm1005) MessageType() int { return int(m.MessageNumber) }
func (m *Rtcm1006) MessageType() int { return int(m.MessageNumber) }
func (m *Rtcm1019) MessageType() int { return int(m.MessageNumber) }
func (m *RtcmMsm7) MessageType() int { return int(m.Header.MessageNumber) }

func (*Rtcm1001) isMessage() {}
func (*Rtcm1002) isMessage() {}
func (*Rtcm1003) isMessage() {}
func (*Rtcm1004) isMessage() {}
func (*Rtcm1005) isMessage() {}
func (*Rtcm1006) isMessage() {}
func (*Rtcm1019) isMessage() {}
func (*RtcmMsm7) isMessage() {}

/* message summaries for trace and console output ----------------------------*/
func (h *ObsHeader) String() string {
	return fmt.Sprintf("%4d staid=%4d tow=%9.3f nsat=%2d sync=%d", h.MessageNumber,
		h.StationID, float64(h.EpochTime)*0.001, h.NumSatellites, b2i(h.Sync))
}

func (m *Rtcm1001) String() string { return m.Header.String() }
func (m *Rtcm1002) String() string { return m.Header.String() }
func (m *Rtcm1003) String() string { return m.Header.String() }
func (m *Rtcm1004) String() string { return m.Header.String() }

func (a *StationARP) String() string {
	return fmt.Sprintf("%4d staid=%4d itrf=%2d xyz=%.4f %.4f %.4f", a.MessageNumber,
		a.StationID, a.ITRFYear, float64(a.X)*0.0001, float64(a.Y)*0.0001, float64(a.Z)*0.0001)
}

func (m *Rtcm1006) String() string {
	return fmt.Sprintf("%s hgt=%.4f", m.StationARP.String(), float64(m.AntennaHeight)*0.0001)
}

func (m *Rtcm1019) String() string {
	return fmt.Sprintf("%4d prn=%2d iode=%3d iodc=%3d week=%d toe=%6d toc=%6d svh=%02X",
		m.MessageNumber, m.SatID, m.IODE, m.IODC, m.Week, int(m.Toe)*16, int(m.Toc)*16, m.Health)
}

func (m *RtcmMsm7) String() string {
	h := &m.Header
	return fmt.Sprintf("%4d staid=%4d epoch=%10d nsat=%2d nsig=%2d iod=%2d ncell=%2d sync=%d",
		h.MessageNumber, h.StationID, h.EpochTime, h.NumSatellites(), h.NumSignals(),
		h.IODS, h.NumCells(), b2i(h.MultipleMessage))
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
