package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func Test_rtcmrcv_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "base.rtcm3")
	require.NoError(t, os.WriteFile(path, testStream(t), 0o644))

	out, err := runCommand(t, "-i", path, "--console")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "1005 staid=2003")
	assert.Contains(t, lines[1], "1001 staid=   7")
}

func Test_rtcmrcv_config(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "base.rtcm3")
	require.NoError(t, os.WriteFile(path, testStream(t), 0o644))
	cfg := writeTempConfig(t, "input: file://"+path+"\nconsole: true\n")

	out, err := runCommand(t, "-c", cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\n"))

	/* options override the configuration file */
	out, err = runCommand(t, "-c", cfg, "--console=false")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func Test_rtcmrcv_errors(t *testing.T) {
	_, err := runCommand(t, "-t", "9")
	assert.EqualError(t, err, "trace.level must be 0-5")

	_, err = runCommand(t, "-i", "ntrip://caster:2101/MNT")
	assert.Error(t, err)

	_, err = runCommand(t, "-i", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = runCommand(t, "--max-buffer", "100")
	assert.EqualError(t, err, "max_buffer must be at least 1029")

	_, err = runCommand(t, "extra")
	assert.Error(t, err)
}

func Test_rtcmrcv_cancel_tcpcli(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	closed := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			closed <- err
			return
		}
		defer conn.Close()
		_, err = conn.Read(make([]byte, 1))
		closed <- err
	}()

	cfg := DefaultConfig()
	cfg.Input = "tcpcli://" + ln.Addr().String()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, io.Discard) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
	select {
	case err := <-closed:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(5 * time.Second):
		t.Fatal("input connection not closed")
	}
}
