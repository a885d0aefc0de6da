/*------------------------------------------------------------------------------
* clickhouse.go : write reference station positions (1005/1006) to clickhouse
*-----------------------------------------------------------------------------*/
package main

import (
	"fmt"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"

	"rtcmgo"
)

func init() {
	sqlx.BindDriver("clickhouse", sqlx.QUESTION)
}

type stationRow struct {
	Session   string    `db:"session"`
	Time      time.Time `db:"time"`
	Type      uint16    `db:"type"`
	StationID uint16    `db:"station_id"`
	ITRF      uint8     `db:"itrf"`
	GPS       bool      `db:"gps"`
	GLONASS   bool      `db:"glonass"`
	Galileo   bool      `db:"galileo"`
	X         float64   `db:"x"` /* ecef (m) */
	Y         float64   `db:"y"`
	Z         float64   `db:"z"`
	Height    float64   `db:"height"` /* antenna height (m) */
}

const stationSchema = `CREATE TABLE IF NOT EXISTS %s (
	session    String,
	time       DateTime64(3),
	type       UInt16,
	station_id UInt16,
	itrf       UInt8,
	gps        Bool,
	glonass    Bool,
	galileo    Bool,
	x          Float64,
	y          Float64,
	z          Float64,
	height     Float64
) ENGINE = MergeTree ORDER BY (station_id, time)`

const stationInsert = `INSERT INTO %s (session, time, type, station_id, itrf, gps, glonass, galileo, x, y, z, height)
	VALUES (:session, :time, :type, :station_id, :itrf, :gps, :glonass, :galileo, :x, :y, :z, :height)`

/* station row of a 1005/1006 message, false for other messages */
func stationRowOf(msg rtcmgo.Message, session string, t time.Time) (stationRow, bool) {
	var (
		arp    *rtcmgo.StationARP
		height float64
	)
	switch m := msg.(type) {
	case *rtcmgo.Rtcm1005:
		arp = &m.StationARP
	case *rtcmgo.Rtcm1006:
		arp = &m.StationARP
		height = float64(m.AntennaHeight) * 0.0001
	default:
		return stationRow{}, false
	}
	return stationRow{
		Session:   session,
		Time:      t,
		Type:      arp.MessageNumber,
		StationID: arp.StationID,
		ITRF:      arp.ITRFYear,
		GPS:       arp.GPS,
		GLONASS:   arp.GLONASS,
		Galileo:   arp.Galileo,
		X:         float64(arp.X) * 0.0001,
		Y:         float64(arp.Y) * 0.0001,
		Z:         float64(arp.Z) * 0.0001,
		Height:    height,
	}, true
}

type clickhouseSink struct {
	db      *sqlx.DB
	insert  string
	session string
}

func newClickHouseSink(cfg ClickHouseConfig, session string) (*clickhouseSink, error) {
	db, err := sqlx.Open("clickhouse", cfg.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	if _, err := db.Exec(fmt.Sprintf(stationSchema, cfg.Table)); err != nil {
		db.Close()
		return nil, fmt.Errorf("clickhouse create table %s: %w", cfg.Table, err)
	}
	return &clickhouseSink{
		db:      db,
		insert:  fmt.Sprintf(stationInsert, cfg.Table),
		session: session,
	}, nil
}

func (s *clickhouseSink) Name() string { return "clickhouse" }

func (s *clickhouseSink) Write(msg rtcmgo.Message, t time.Time) error {
	row, ok := stationRowOf(msg, s.session, t)
	if !ok {
		return nil
	}
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	if _, err := tx.NamedExec(s.insert, row); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *clickhouseSink) Close() error {
	return s.db.Close()
}
