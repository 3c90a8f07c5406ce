package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/trafficpanel/internal/domain"
	"github.com/aristath/trafficpanel/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *metrics.Metrics) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := metrics.NewMetrics(prometheus.NewRegistry())
	return NewClient(server.URL+"/", 2*time.Second, m, zerolog.Nop()), m
}

func statusHandler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://localhost:8080/", time.Second, nil, zerolog.Nop())
	assert.Equal(t, "http://localhost:8080", client.BaseURL())
}

func TestHeartbeat(t *testing.T) {
	client, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/heartbeat", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.Heartbeat(context.Background()))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ControllerRequestsTotal.WithLabelValues("heartbeat", "ok")))
}

func TestHeartbeat_ServerError(t *testing.T) {
	client, _ := newTestClient(t, statusHandler(http.StatusServiceUnavailable))

	err := client.Heartbeat(context.Background())
	require.Error(t, err)
	assert.False(t, IsUnreachable(err))
	assert.Equal(t, http.StatusServiceUnavailable, StatusCode(err))
}

func TestHeartbeat_Unreachable(t *testing.T) {
	server := httptest.NewServer(statusHandler(http.StatusOK))
	url := server.URL
	server.Close()

	client := NewClient(url, time.Second, nil, zerolog.Nop())
	err := client.Heartbeat(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnreachable))

	var unreachable *UnreachableError
	require.True(t, errors.As(err, &unreachable))
	assert.Equal(t, "heartbeat", unreachable.Endpoint)
}

func TestGetConfig(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/config", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"greenLightDuration":10,"yellowLightDuration":3,"yellowRedLightDuration":2,"lowerIntervalBorder":5,"upperIntervalBorder":20}`))
	})

	cfg, err := client.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &domain.TimingConfig{
		GreenLightDuration:     10,
		YellowLightDuration:    3,
		YellowRedLightDuration: 2,
		LowerIntervalBorder:    5,
		UpperIntervalBorder:    20,
	}, cfg)
}

func TestGetConfig_NotFound(t *testing.T) {
	client, _ := newTestClient(t, statusHandler(http.StatusNotFound))

	cfg, err := client.GetConfig(context.Background())
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrNoConfiguration)
}

func TestGetConfig_BadBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := client.GetConfig(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestSaveConfig(t *testing.T) {
	want := domain.TimingConfig{
		GreenLightDuration:     8,
		YellowLightDuration:    2,
		YellowRedLightDuration: 1,
		LowerIntervalBorder:    3,
		UpperIntervalBorder:    9,
	}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/config", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got domain.TimingConfig
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, want, got)
		w.WriteHeader(http.StatusCreated)
	})

	require.NoError(t, client.SaveConfig(context.Background(), want))
}

func TestSaveConfig_Rejected(t *testing.T) {
	client, _ := newTestClient(t, statusHandler(http.StatusBadRequest))

	err := client.SaveConfig(context.Background(), domain.TimingConfig{})
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestRunning(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantRunning bool
		wantErr     bool
	}{
		{"running", http.StatusOK, true, false},
		{"stopped", http.StatusNoContent, false, false},
		{"accepted is unexpected", http.StatusAccepted, false, true},
		{"server error", http.StatusInternalServerError, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/running", r.URL.Path)
				w.WriteHeader(tt.status)
			})

			running, err := client.Running(context.Background())
			assert.Equal(t, tt.wantRunning, running)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.status, StatusCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStartStop(t *testing.T) {
	var paths []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/start" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	ack, err := client.Start(context.Background())
	require.NoError(t, err)
	assert.True(t, ack.Silent)

	ack, err = client.Stop(context.Background())
	require.NoError(t, err)
	assert.False(t, ack.Silent)

	assert.Equal(t, []string{"/start", "/stop"}, paths)
}

func TestStart_Failure(t *testing.T) {
	client, _ := newTestClient(t, statusHandler(http.StatusInternalServerError))

	_, err := client.Start(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "start", statusErr.Endpoint)
	assert.False(t, statusErr.Successful())
}
