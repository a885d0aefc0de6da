/*------------------------------------------------------------------------------
* config.go : rtcmrcv configuration file
*
* notes  : the configuration file is yaml. missing values get defaults,
*          command line options override the file.
*-----------------------------------------------------------------------------*/
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"rtcmgo"
)

type Config struct {
	Input      string           `yaml:"input"`     /* input stream path */
	ReadSize   int              `yaml:"read_size"` /* read buffer size (bytes) */
	MaxBuffer  int              `yaml:"max_buffer"`
	Console    bool             `yaml:"console"` /* print message summaries */
	Trace      TraceConfig      `yaml:"trace"`
	HTTP       HTTPConfig       `yaml:"http"`
	Push       PushConfig       `yaml:"push"`
	Influx     InfluxConfig     `yaml:"influx"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

type TraceConfig struct {
	File       string `yaml:"file"`
	Level      int    `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"` /* status server, empty: disabled */
}

/* prometheus pushgateway */
type PushConfig struct {
	URL      string        `yaml:"url"`
	Job      string        `yaml:"job"`
	Interval time.Duration `yaml:"interval"`
}

type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

type ClickHouseConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

func DefaultConfig() Config {
	return Config{
		Input:     "-",
		ReadSize:  4096,
		MaxBuffer: rtcmgo.DefaultMaxSize,
		Trace: TraceConfig{
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
		Push: PushConfig{
			Job:      "rtcmrcv",
			Interval: 10 * time.Second,
		},
		ClickHouse: ClickHouseConfig{
			Table: "stations",
		},
	}
}

/* load configuration ----------------------------------------------------------
* read a configuration file over the defaults. path "" returns the defaults.
*-----------------------------------------------------------------------------*/
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks option values and fills those left at zero.
func (c *Config) Validate() error {
	if c.Input == "" {
		c.Input = "-"
	}
	if c.ReadSize <= 0 {
		c.ReadSize = 4096
	}
	if c.MaxBuffer <= 0 {
		c.MaxBuffer = rtcmgo.DefaultMaxSize
	}
	if c.MaxBuffer < rtcmgo.RTCM3MAXFRAME {
		return fmt.Errorf("max_buffer must be at least %d", rtcmgo.RTCM3MAXFRAME)
	}
	if c.Trace.Level < 0 || 5 < c.Trace.Level {
		return fmt.Errorf("trace.level must be 0-5")
	}
	if c.Influx.URL != "" && (c.Influx.Org == "" || c.Influx.Bucket == "") {
		return fmt.Errorf("influx.org and influx.bucket are required when influx.url is set")
	}
	if c.ClickHouse.DSN != "" && c.ClickHouse.Table == "" {
		return fmt.Errorf("clickhouse.table is required when clickhouse.dsn is set")
	}
	if c.Push.URL != "" {
		if c.Push.Job == "" {
			return fmt.Errorf("push.job is required when push.url is set")
		}
		if c.Push.Interval <= 0 {
			c.Push.Interval = 10 * time.Second
		}
	}
	return nil
}
