/*------------------------------------------------------------------------------
* stream.go : input stream
*
* notes  : stream path
*            serial       : serial://port[:brate]
*            tcp client   : tcpcli://addr:port
*            file         : file://path or path
*            stdin        : - or empty
*-----------------------------------------------------------------------------*/
package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	serial "github.com/tarm/goserial"

	"rtcmgo"
)

const (
	STR_SERIAL = iota + 1
	STR_TCPCLI
	STR_FILE
	STR_STDIN
)

var bitrates = []int{
	300, 600, 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600}

type streamPath struct {
	Type  int
	Path  string /* device, address or file */
	Brate int
}

/* decode stream path ----------------------------------------------------------
* args   : string path      I   stream path
* return : decoded path, error
*-----------------------------------------------------------------------------*/
func decodeStreamPath(path string) (streamPath, error) {
	switch {
	case path == "" || path == "-":
		return streamPath{Type: STR_STDIN}, nil

	case strings.HasPrefix(path, "serial://"):
		sp := streamPath{Type: STR_SERIAL, Brate: 9600}
		port := strings.TrimPrefix(path, "serial://")
		if i := strings.Index(port, ":"); i >= 0 {
			b, err := strconv.Atoi(port[i+1:])
			if err != nil {
				return sp, fmt.Errorf("bitrate error (%s)", port[i+1:])
			}
			sp.Brate, port = b, port[:i]
		}
		if i := sort.SearchInts(bitrates, sp.Brate); i >= len(bitrates) || bitrates[i] != sp.Brate {
			return sp, fmt.Errorf("bitrate error (%d)", sp.Brate)
		}
		if port == "" {
			return sp, fmt.Errorf("serial port missing: %s", path)
		}
		if !strings.Contains(port, "/") {
			port = "/dev/" + port
		}
		sp.Path = port
		return sp, nil

	case strings.HasPrefix(path, "tcpcli://"):
		addr := strings.TrimPrefix(path, "tcpcli://")
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return streamPath{}, fmt.Errorf("tcp address error: %w", err)
		}
		return streamPath{Type: STR_TCPCLI, Path: addr}, nil

	case strings.HasPrefix(path, "file://"):
		return streamPath{Type: STR_FILE, Path: strings.TrimPrefix(path, "file://")}, nil

	case strings.Contains(path, "://"):
		return streamPath{}, fmt.Errorf("stream type not supported: %s", path)
	}
	return streamPath{Type: STR_FILE, Path: path}, nil
}

/* open input stream -----------------------------------------------------------
* args   : string path      I   stream path
* return : stream, error
*-----------------------------------------------------------------------------*/
func openStream(path string) (io.ReadCloser, error) {
	sp, err := decodeStreamPath(path)
	if err != nil {
		rtcmgo.Tracet(1, "openstream: %v\n", err)
		return nil, err
	}
	rtcmgo.Tracet(3, "openstream: type=%d path=%s\n", sp.Type, sp.Path)

	switch sp.Type {
	case STR_SERIAL:
		s, err := serial.OpenPort(&serial.Config{Name: sp.Path, Baud: sp.Brate})
		if err != nil {
			return nil, fmt.Errorf("serial open %s: %w", sp.Path, err)
		}
		return s, nil
	case STR_TCPCLI:
		conn, err := net.DialTimeout("tcp", sp.Path, 10*time.Second)
		if err != nil {
			return nil, err
		}
		return conn, nil
	case STR_FILE:
		return os.Open(sp.Path)
	}
	return os.Stdin, nil
}
