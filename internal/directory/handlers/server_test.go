package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gartstein/companydir/internal/directory/controller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func checkHealth(t *testing.T, s *Server, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestServer_ObserveStatus(t *testing.T) {
	s := NewServer(50061, 8091, zaptest.NewLogger(t))

	// A fresh server starts as not serving.
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkHealth(t, s, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkHealth(t, s, HealthService))

	s.ObserveStatus(controller.StatusReady)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkHealth(t, s, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkHealth(t, s, HealthService))

	s.ObserveStatus(controller.StatusFailed)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkHealth(t, s, HealthService))

	s.ObserveStatus(controller.StatusLoading)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkHealth(t, s, HealthService))
}

func TestServer_GRPCDisabled(t *testing.T) {
	s := NewServer(0, 8092, zaptest.NewLogger(t))
	assert.Nil(t, s.grpcServer)

	// The health state is still tracked for the HTTP side.
	s.ObserveStatus(controller.StatusReady)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkHealth(t, s, ""))
}

func TestServer_StartStop(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(50062, 8093, logger, grpc.Creds(insecure.NewCredentials()))
	s.RegisterHTTPHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	s.ObserveStatus(controller.StatusReady)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	conn, err := grpc.NewClient("localhost:50062", grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	// Retry until the listener is up.
	var resp *healthpb.HealthCheckResponse
	require.Eventually(t, func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: HealthService})
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	require.Eventually(t, func() bool {
		r, err := http.Get("http://localhost:8093/")
		if err != nil {
			return false
		}
		_ = r.Body.Close()
		return r.StatusCode == http.StatusTeapot
	}, 5*time.Second, 50*time.Millisecond)

	s.Stop()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop in time")
	}
}
