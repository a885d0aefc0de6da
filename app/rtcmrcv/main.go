/*------------------------------------------------------------------------------
* rtcmrcv : rtcm 3 receiver console
*
*          read an rtcm 3 stream, extract checksum-valid frames, decode the
*          messages and write them to the console, influxdb and clickhouse.
*          parser and decoder counters are exported to prometheus.
*-----------------------------------------------------------------------------*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"rtcmgo"
)

const PRGNAME = "rtcmrcv"

/* help text -----------------------------------------------------------------*/
var help = []string{
	"",
	" usage: rtcmrcv [-c file] [-i stream] [options]",
	"",
	" Read an rtcm 3 stream and decode its messages. Frames with crc errors are",
	" skipped, messages that fail to decode are counted and traced. rtcmrcv runs",
	" until the input ends; to stop it type ctr-c or send SIGINT or SIGTERM.",
	"",
	"  stream path",
	"    serial       : serial://port[:brate]",
	"    tcp client   : tcpcli://addr:port",
	"    file         : [file://]path",
	"    stdin        : -",
}

const (
	ConfigOptionName    = "config"
	InputOptionName     = "in"
	TraceOptionName     = "trace"
	TraceFileOptionName = "trace-file"
	HTTPOptionName      = "http"
	ConsoleOptionName   = "console"
	MaxBufferOptionName = "max-buffer"
)

func NewRootCommand(out io.Writer) *cobra.Command {
	var (
		cfgFile string
		opt     = DefaultConfig()
	)
	cmd := &cobra.Command{
		Use:           PRGNAME,
		Short:         "RTCM 3 stream receiver",
		Long:          strings.Join(help, "\n"),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed(InputOptionName) {
				cfg.Input = opt.Input
			}
			if flags.Changed(TraceOptionName) {
				cfg.Trace.Level = opt.Trace.Level
			}
			if flags.Changed(TraceFileOptionName) {
				cfg.Trace.File = opt.Trace.File
			}
			if flags.Changed(HTTPOptionName) {
				cfg.HTTP.Addr = opt.HTTP.Addr
			}
			if flags.Changed(ConsoleOptionName) {
				cfg.Console = opt.Console
			}
			if flags.Changed(MaxBufferOptionName) {
				cfg.MaxBuffer = opt.MaxBuffer
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, cmd.OutOrStdout())
		},
	}
	cmd.SetOut(out)
	f := cmd.Flags()
	f.StringVarP(&cfgFile, ConfigOptionName, "c", "", "configuration file (yaml)")
	f.StringVarP(&opt.Input, InputOptionName, "i", opt.Input, "input stream path")
	f.IntVarP(&opt.Trace.Level, TraceOptionName, "t", 0, "trace level (0:off,1-5)")
	f.StringVar(&opt.Trace.File, TraceFileOptionName, PRGNAME+".trace", "trace file, empty: stdout")
	f.StringVar(&opt.HTTP.Addr, HTTPOptionName, "", "status server address (e.g. :8080)")
	f.BoolVar(&opt.Console, ConsoleOptionName, false, "print message summaries")
	f.IntVar(&opt.MaxBuffer, MaxBufferOptionName, opt.MaxBuffer, "max bytes retained by the frame parser")
	return cmd
}

/* run receiver with the configured input and sinks --------------------------*/
func run(ctx context.Context, cfg Config, out io.Writer) error {
	if cfg.Trace.Level > 0 {
		rtcmgo.TraceOpenWith(cfg.Trace.File, rtcmgo.TraceOptions{
			MaxSizeMB:  cfg.Trace.MaxSizeMB,
			MaxBackups: cfg.Trace.MaxBackups,
			MaxAgeDays: cfg.Trace.MaxAgeDays,
			Compress:   cfg.Trace.Compress,
		})
		rtcmgo.TraceLevel(cfg.Trace.Level)
		defer rtcmgo.TraceClose()
	}
	session := uuid.NewString()
	rtcmgo.Tracet(3, "%s start: session=%s input=%s\n", PRGNAME, session, cfg.Input)

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	var sinks []Sink
	if cfg.Console {
		sinks = append(sinks, newConsoleSink(out))
	}
	if cfg.Influx.URL != "" {
		sinks = append(sinks, newInfluxSink(cfg.Influx, session))
	}
	if cfg.ClickHouse.DSN != "" {
		s, err := newClickHouseSink(cfg.ClickHouse, session)
		if err != nil {
			return err
		}
		sinks = append(sinks, s)
	}
	rcv := NewReceiver(cfg, session, metrics, sinks...)
	defer rcv.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.HTTP.Addr != "" {
		go func() {
			if err := serveStatus(ctx, cfg.HTTP.Addr, newRouter(rcv, reg)); err != nil {
				rtcmgo.Tracet(1, "status server error: %v\n", err)
			}
		}()
	}
	if cfg.Push.URL != "" {
		go pushMetrics(ctx, cfg.Push, reg, session)
	}

	in, err := openStream(cfg.Input)
	if err != nil {
		return err
	}
	defer in.Close()
	go func() {
		/* unblock a pending read of a connection or serial port */
		<-ctx.Done()
		in.Close()
	}()

	err = rcv.Run(ctx, in)
	st := rcv.Status()
	rtcmgo.Tracet(3, "%s stop: bytes=%d frames=%d parity=%d decode=%d\n", PRGNAME,
		st.Parser.Bytes, st.Parser.Frames, st.Parser.ParityErrors, st.DecodeErrors)
	if err == context.Canceled {
		return nil
	}
	return err
}

func main() {
	if err := NewRootCommand(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", PRGNAME, err)
		os.Exit(1)
	}
}
