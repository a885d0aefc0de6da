/*------------------------------------------------------------------------------
* trace.go : debug trace functions
*
* notes  : level 1 messages are also printed to stdout. other levels go to the
*          trace sink only if level <= the current trace level.
*          trace files are rotated by size instead of by time.
*-----------------------------------------------------------------------------*/

package rtcmgo

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// TraceOptions controls rotation of the trace file. Zero values select the
// lumberjack defaults (100 MB, keep all backups, no age limit).
type TraceOptions struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

var (
	traceMu    sync.Mutex
	traceOut   io.Writer
	traceFile  *lumberjack.Logger
	traceLevel int
	traceTick  time.Time
)

/* open trace ------------------------------------------------------------------
* open trace file, empty path traces to stdout
*-----------------------------------------------------------------------------*/
func TraceOpen(file string) {
	TraceOpenWith(file, TraceOptions{})
}

func TraceOpenWith(file string, opt TraceOptions) {
	TraceClose()

	traceMu.Lock()
	defer traceMu.Unlock()

	if len(file) == 0 {
		traceOut = os.Stdout
	} else {
		traceFile = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    opt.MaxSizeMB,
			MaxBackups: opt.MaxBackups,
			MaxAge:     opt.MaxAgeDays,
			Compress:   opt.Compress,
		}
		traceOut = traceFile
	}
	traceTick = time.Now()
}

// TraceWriter sends trace output to w. A nil w disables tracing.
func TraceWriter(w io.Writer) {
	TraceClose()

	traceMu.Lock()
	defer traceMu.Unlock()
	traceOut = w
	traceTick = time.Now()
}

func TraceClose() {
	traceMu.Lock()
	defer traceMu.Unlock()

	if traceFile != nil {
		traceFile.Close()
	}
	traceFile = nil
	traceOut = nil
}

func TraceLevel(level int) {
	traceMu.Lock()
	traceLevel = level
	traceMu.Unlock()
}

func Trace(level int, format string, v ...interface{}) {
	/* print error message to stdout */
	if level <= 1 {
		fmt.Printf(format, v...)
	}
	traceMu.Lock()
	defer traceMu.Unlock()

	if traceOut == nil || level > traceLevel {
		return
	}
	fmt.Fprintf(traceOut, "%d ", level)
	fmt.Fprintf(traceOut, format, v...)
}

/* trace with tick time (s since trace open) */
func Tracet(level int, format string, v ...interface{}) {
	traceMu.Lock()
	defer traceMu.Unlock()

	if traceOut == nil || level > traceLevel {
		return
	}
	fmt.Fprintf(traceOut, "%d %9.3f: ", level, time.Since(traceTick).Seconds())
	fmt.Fprintf(traceOut, format, v...)
}

// TraceEnabled reports whether messages of the given level are written.
// Callers use it to skip building expensive trace arguments.
func TraceEnabled(level int) bool {
	traceMu.Lock()
	defer traceMu.Unlock()
	return traceOut != nil && level <= traceLevel
}
