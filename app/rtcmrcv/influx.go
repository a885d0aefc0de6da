/*------------------------------------------------------------------------------
* influx.go : write message summaries to influxdb
*-----------------------------------------------------------------------------*/
package main

import (
	"strconv"
	"time"

	influxdb "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"rtcmgo"
)

const influxMeasurement = "rtcm"

type influxSink struct {
	client   influxdb.Client
	writeAPI api.WriteAPI
	session  string
}

func newInfluxSink(cfg InfluxConfig, session string) *influxSink {
	client := influxdb.NewClient(cfg.URL, cfg.Token)

	/* non-blocking write client, errors are reported asynchronously */
	s := &influxSink{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		session:  session,
	}
	errc := s.writeAPI.Errors()
	go func() {
		for err := range errc {
			rtcmgo.Tracet(2, "influx write error: %v\n", err)
		}
	}()
	return s
}

func (s *influxSink) Name() string { return "influx" }

func (s *influxSink) Write(msg rtcmgo.Message, t time.Time) error {
	s.writeAPI.WritePoint(messagePoint(msg, s.session, t))
	return nil
}

func (s *influxSink) Close() error {
	s.writeAPI.Flush()
	s.client.Close()
	return nil
}

/* message point ---------------------------------------------------------------
* convert a message to an influxdb point: measurement rtcm, tags type, station
* (if any) and session, fields are the message summary values in physical
* units where the scale is fixed.
*-----------------------------------------------------------------------------*/
func messagePoint(msg rtcmgo.Message, session string, t time.Time) *write.Point {
	p := influxdb.NewPointWithMeasurement(influxMeasurement).
		AddTag("type", strconv.Itoa(msg.MessageType())).
		AddTag("session", session).
		SetTime(t)
	if sta, ok := stationID(msg); ok {
		p.AddTag("station", strconv.Itoa(sta))
	}

	switch m := msg.(type) {
	case *rtcmgo.Rtcm1001:
		obsFields(p, &m.Header)
	case *rtcmgo.Rtcm1002:
		obsFields(p, &m.Header)
	case *rtcmgo.Rtcm1003:
		obsFields(p, &m.Header)
	case *rtcmgo.Rtcm1004:
		obsFields(p, &m.Header)
	case *rtcmgo.Rtcm1005:
		arpFields(p, &m.StationARP)
	case *rtcmgo.Rtcm1006:
		arpFields(p, &m.StationARP)
		p.AddField("height", float64(m.AntennaHeight)*0.0001)
	case *rtcmgo.Rtcm1019:
		p.AddField("prn", int64(m.SatID)).
			AddField("week", int64(m.Week)).
			AddField("iode", int64(m.IODE)).
			AddField("iodc", int64(m.IODC)).
			AddField("toe", int64(m.Toe)*16).
			AddField("health", int64(m.Health))
	case *rtcmgo.RtcmMsm7:
		h := &m.Header
		p.AddField("epoch", int64(h.EpochTime)).
			AddField("nsat", int64(h.NumSatellites())).
			AddField("nsig", int64(h.NumSignals())).
			AddField("ncell", int64(h.NumCells())).
			AddField("sync", h.MultipleMessage)
	default:
		p.AddField("count", int64(1))
	}
	return p
}

func obsFields(p *write.Point, h *rtcmgo.ObsHeader) {
	p.AddField("tow", float64(h.EpochTime)*0.001).
		AddField("nsat", int64(h.NumSatellites)).
		AddField("sync", h.Sync)
}

func arpFields(p *write.Point, a *rtcmgo.StationARP) {
	p.AddField("itrf", int64(a.ITRFYear)).
		AddField("x", float64(a.X)*0.0001).
		AddField("y", float64(a.Y)*0.0001).
		AddField("z", float64(a.Z)*0.0001)
}
