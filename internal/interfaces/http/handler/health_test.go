package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping() error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		db         HealthChecker
		busy       bool
		busyErr    error
		wantStatus int
		wantDB     string
	}{
		{name: "healthy and idle", db: stubPinger{}, wantStatus: http.StatusOK, wantDB: "ok"},
		{name: "healthy and busy", db: stubPinger{}, busy: true, wantStatus: http.StatusOK, wantDB: "ok"},
		{name: "no database", db: nil, wantStatus: http.StatusOK, wantDB: "disabled"},
		{name: "database down", db: stubPinger{err: errors.New("connection refused")}, wantStatus: http.StatusServiceUnavailable, wantDB: "connection refused"},
		{name: "guard error is not fatal", db: stubPinger{}, busyErr: errors.New("redis down"), wantStatus: http.StatusOK, wantDB: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockPrintJobService)
			svc.On("IsBusy", mock.Anything).Return(tt.busy, tt.busyErr)

			engine := gin.New()
			RegisterHealth(engine, NewHealthHandler(tt.db, svc, "1.2.3"))

			w := serve(engine, http.MethodGet, "/health", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			data := decodeResponse(t, w).Data.(map[string]any)
			assert.Equal(t, tt.wantDB, data["database"])
			assert.Equal(t, tt.busy, data["busy"])
			assert.Equal(t, "1.2.3", data["version"])
		})
	}
}
