package main

import (
	"bytes"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes wsc with args and returns stdout
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), err
}

func echoServer(t *testing.T) (string, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.WriteMessage(mt, msg)
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	return host, port
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "wsc dev (commit none, built unknown)\n", out)
}

func TestConnectEchoesInput(t *testing.T) {
	host, port := echoServer(t)

	out, err := run(t, "hello\n", "connect", "--host", host, "--port", port, "--receive-timeout", "5s")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected.")
	assert.Contains(t, out, "< hello\n")
	assert.Contains(t, out, "Connection closed by server")
}

func TestConnectJSONOutput(t *testing.T) {
	host, port := echoServer(t)

	out, err := run(t, "hello\n", "connect", "--host", host, "--port", port, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"data":"hello"`)
	assert.Contains(t, out, `"type":"text"`)
}

func TestProbe(t *testing.T) {
	host, port := echoServer(t)

	out, err := run(t, "", "probe", "--host", host, "--port", port, "--verify-accept")
	require.NoError(t, err)
	assert.Equal(t, "init: PASS\nhandshake: PASS\n", out)
}

func TestProbeClosedPort(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	out, err := run(t, "", "probe", "--port", strconv.Itoa(port), "--connect-timeout", "1s")
	assert.Error(t, err)
	assert.Equal(t, "init: FAIL\n", out)
}

func TestInvalidFlags(t *testing.T) {
	_, err := run(t, "", "probe", "--host", "example.com")
	assert.ErrorContains(t, err, "invalid configuration")

	_, err = run(t, "", "probe", "--port", "70000")
	assert.ErrorContains(t, err, "invalid configuration")

	_, err = run(t, "", "probe", "--send-timeout", "-1s")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestConfigFile(t *testing.T) {
	host, port := echoServer(t)
	path := filepath.Join(t.TempDir(), "wsc.yaml")
	data := "host: " + host + "\nport: " + port + "\noptions:\n  receive_timeout: 5s\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	out, err := run(t, "", "probe", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "init: PASS\nhandshake: PASS\n", out)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	host, port := echoServer(t)
	path := filepath.Join(t.TempDir(), "wsc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("host: "+host+"\nport: 1\n"), 0o600))

	out, err := run(t, "", "probe", "--config", path, "--port", port)
	require.NoError(t, err)
	assert.Equal(t, "init: PASS\nhandshake: PASS\n", out)

	_, err = run(t, "", "probe", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}
