package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/aristath/trafficpanel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func newController(t *testing.T, rec *recorder, running int) string {
	t.Helper()
	return newControllerWithConfig(t, rec, running, http.StatusOK)
}

// newControllerWithConfig answers GET /config with configStatus, sending the
// stored configuration only on 200.
func newControllerWithConfig(t *testing.T, rec *recorder, running, configStatus int) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.Method + " " + r.URL.Path)
		switch {
		case r.URL.Path == "/config" && r.Method == http.MethodGet && configStatus != http.StatusOK:
			w.WriteHeader(configStatus)
		case r.URL.Path == "/config" && r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"greenLightDuration":10,"yellowLightDuration":3,"yellowRedLightDuration":2,"lowerIntervalBorder":5,"upperIntervalBorder":20}`))
		case r.URL.Path == "/running":
			w.WriteHeader(running)
		case r.URL.Path == "/start" || r.URL.Path == "/stop":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func unreachableURL() string {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := NewRootCmd(&PanelCtlApp{})
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	code := ExitCode(cmd, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestHeartbeat(t *testing.T) {
	url := newController(t, &recorder{}, http.StatusOK)

	code, out, _ := run(t, "--url", url, "heartbeat")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "online")

	code, out, _ = run(t, "--url", unreachableURL(), "heartbeat")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, string(domain.MsgNoConnection))
}

func TestSync(t *testing.T) {
	rec := &recorder{}
	url := newController(t, rec, http.StatusOK)

	code, out, _ := run(t, "--url", url, "sync")
	require.Equal(t, 0, code)

	assert.Equal(t, []string{"GET /heartbeat", "GET /config", "GET /running"}, rec.all())
	assert.Contains(t, out, string(domain.MsgConfigLoaded))
	assert.Contains(t, out, "Green light duration:")
	assert.Contains(t, out, "traffic lights: running")
}

func TestSync_NoStoredConfiguration(t *testing.T) {
	rec := &recorder{}
	url := newControllerWithConfig(t, rec, http.StatusOK, http.StatusNotFound)

	code, out, stderr := run(t, "--url", url, "sync")
	require.Equal(t, 0, code)

	assert.Equal(t, []string{"GET /heartbeat", "GET /config"}, rec.all())
	assert.Contains(t, out, string(domain.MsgNoCurrentConfig))
	assert.NotContains(t, out, "traffic lights:")
	assert.NotContains(t, out, "Green light duration:")
	assert.NotContains(t, stderr, "Error:")
}

func TestSync_Unreachable(t *testing.T) {
	code, out, stderr := run(t, "--url", unreachableURL(), "--timeout", "500ms", "sync")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "[error] "+string(domain.MsgNoConnection))
	assert.NotContains(t, stderr, "Error:")
}

func TestRunning(t *testing.T) {
	url := newController(t, &recorder{}, http.StatusNoContent)

	code, out, _ := run(t, "--url", url, "running")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "traffic lights: stopped")
}

func TestStartStop(t *testing.T) {
	rec := &recorder{}
	url := newController(t, rec, http.StatusOK)

	code, out, _ := run(t, "--url", url, "start")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, string(domain.MsgStarted))

	code, out, _ = run(t, "--url", url, "stop")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, string(domain.MsgStopped))

	assert.Equal(t, []string{"GET /start", "GET /stop"}, rec.all())
}

func TestConfigGet(t *testing.T) {
	url := newController(t, &recorder{}, http.StatusOK)

	code, out, _ := run(t, "--url", url, "config", "get")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Red light interval (upper border):")
	assert.Contains(t, out, "20")
}

func TestConfigGet_NoStoredConfiguration(t *testing.T) {
	url := newControllerWithConfig(t, &recorder{}, http.StatusOK, http.StatusNotFound)

	code, out, _ := run(t, "--url", url, "config", "get")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, string(domain.MsgNoCurrentConfig))
	assert.NotContains(t, out, "Red light interval (upper border):")
}

func TestConfigSet(t *testing.T) {
	rec := &recorder{}
	url := newController(t, rec, http.StatusOK)

	code, out, _ := run(t, "--url", url, "config", "set",
		"--green", "10", "--yellow", "3", "--yellow-red", "2", "--lower", "5", "--upper", "20", "--on")
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"POST /config", "GET /start"}, rec.all())
	assert.Contains(t, out, string(domain.MsgConfigUpdated))
}

func TestConfigSet_Invalid(t *testing.T) {
	rec := &recorder{}
	url := newController(t, rec, http.StatusOK)

	code, out, stderr := run(t, "--url", url, "config", "set",
		"--green", "10", "--yellow", "3", "--yellow-red", "2", "--lower", "30", "--upper", "20")
	assert.Equal(t, 1, code)
	assert.Empty(t, rec.all())
	assert.Contains(t, out, "[validation] The following fields are invalid")
	assert.NotContains(t, stderr, "Error:")
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := run(t, "explode")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")
}
