package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	printingapp "github.com/missionpuck/logprinter/internal/application/printing"
	"github.com/missionpuck/logprinter/internal/domain/shared"
	"github.com/missionpuck/logprinter/internal/interfaces/http/dto"
	"github.com/missionpuck/logprinter/internal/interfaces/http/router"
)

// MockPrintJobService is a mock implementation of PrintJobService
type MockPrintJobService struct {
	mock.Mock
}

func (m *MockPrintJobService) Submit(ctx context.Context, req printingapp.SubmitPrintJobRequest) (*printingapp.PrintJobResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printingapp.PrintJobResponse), args.Error(1)
}

func (m *MockPrintJobService) Current() (*printingapp.PrintJobResponse, bool) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*printingapp.PrintJobResponse), args.Bool(1)
}

func (m *MockPrintJobService) IsBusy(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockPrintJobService) GetJob(ctx context.Context, jobID uuid.UUID) (*printingapp.PrintJobResponse, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printingapp.PrintJobResponse), args.Error(1)
}

func (m *MockPrintJobService) ListJobs(ctx context.Context, req printingapp.ListPrintJobsRequest) (*printingapp.ListPrintJobsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printingapp.ListPrintJobsResponse), args.Error(1)
}

var _ PrintJobService = (*MockPrintJobService)(nil)

func setupPrintJobRouter(svc *MockPrintJobService) *gin.Engine {
	engine := gin.New()
	router.NewRouter(engine).Register(PrintJobRoutes(NewPrintJobHandler(svc))).Setup()
	return engine
}

func serve(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

const submitBody = `{
	"mission": {"id": "6f1c2b1e-4f1d-4a8e-9d0b-6b6a8c1f2e3d", "title": "Ridge Search", "number": "24-017"},
	"records": [
		{"id": "0c8b3a5e-1d2f-4e6a-8b9c-1a2b3c4d5e6f", "mission_id": "6f1c2b1e-4f1d-4a8e-9d0b-6b6a8c1f2e3d",
		 "when": "2024-05-01T08:00:00Z", "message": "Team 1 deployed"}
	],
	"printer": "directory"
}`

func TestPrintJobHandler_Submit(t *testing.T) {
	jobID := uuid.New().String()

	t.Run("accepted", func(t *testing.T) {
		svc := new(MockPrintJobService)
		svc.On("Submit", mock.Anything, mock.MatchedBy(func(req printingapp.SubmitPrintJobRequest) bool {
			return req.Mission.Number == "24-017" && len(req.Records) == 1 && req.Printer == "directory"
		})).Return(&printingapp.PrintJobResponse{ID: jobID, Status: "PENDING"}, nil)

		w := serve(setupPrintJobRouter(svc), http.MethodPost, "/api/v1/print-jobs", submitBody)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "/api/v1/print-jobs/"+jobID, w.Header().Get("Location"))
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, jobID, resp.Data.(map[string]any)["id"])
		svc.AssertExpectations(t)
	})

	t.Run("conflict while a job runs", func(t *testing.T) {
		svc := new(MockPrintJobService)
		svc.On("Submit", mock.Anything, mock.Anything).Return(nil, shared.ErrJobInProgress)

		w := serve(setupPrintJobRouter(svc), http.MethodPost, "/api/v1/print-jobs", submitBody)

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeJobInProgress, resp.Error.Code)
	})

	t.Run("malformed body never reaches the service", func(t *testing.T) {
		svc := new(MockPrintJobService)

		w := serve(setupPrintJobRouter(svc), http.MethodPost, "/api/v1/print-jobs", `{"mission":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("invalid log record", func(t *testing.T) {
		svc := new(MockPrintJobService)
		svc.On("Submit", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_LOG_RECORD", "record belongs to another mission"))

		w := serve(setupPrintJobRouter(svc), http.MethodPost, "/api/v1/print-jobs", submitBody)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidLogRecord, decodeResponse(t, w).Error.Code)
	})
}

func TestPrintJobHandler_Current(t *testing.T) {
	t.Run("job running here", func(t *testing.T) {
		svc := new(MockPrintJobService)
		svc.On("Current").Return(&printingapp.PrintJobResponse{ID: "abc", Status: "RENDERING", Progress: 25}, true)

		w := serve(setupPrintJobRouter(svc), http.MethodGet, "/api/v1/print-jobs/current", "")

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, true, data["busy"])
		assert.Equal(t, "RENDERING", data["job"].(map[string]any)["status"])
		svc.AssertNotCalled(t, "IsBusy", mock.Anything)
	})

	t.Run("job running in another process", func(t *testing.T) {
		svc := new(MockPrintJobService)
		svc.On("Current").Return(nil, false)
		svc.On("IsBusy", mock.Anything).Return(true, nil)

		w := serve(setupPrintJobRouter(svc), http.MethodGet, "/api/v1/print-jobs/current", "")

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, true, data["busy"])
		assert.NotContains(t, data, "job")
	})

	t.Run("guard unreachable", func(t *testing.T) {
		svc := new(MockPrintJobService)
		svc.On("Current").Return(nil, false)
		svc.On("IsBusy", mock.Anything).Return(false, errors.New("redis: connection refused"))

		w := serve(setupPrintJobRouter(svc), http.MethodGet, "/api/v1/print-jobs/current", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestPrintJobHandler_List(t *testing.T) {
	missionID := uuid.New().String()

	tests := []struct {
		name       string
		query      string
		expectReq  *printingapp.ListPrintJobsRequest
		wantStatus int
	}{
		{
			name:       "defaults",
			query:      "",
			expectReq:  &printingapp.ListPrintJobsRequest{},
			wantStatus: http.StatusOK,
		},
		{
			name:       "filtered by mission",
			query:      "?mission_id=" + missionID + "&limit=5",
			expectReq:  &printingapp.ListPrintJobsRequest{MissionID: missionID, Limit: 5},
			wantStatus: http.StatusOK,
		},
		{
			name:       "limit too large",
			query:      "?limit=1000",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "mission id not a uuid",
			query:      "?mission_id=24-017",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockPrintJobService)
			if tt.expectReq != nil {
				svc.On("ListJobs", mock.Anything, *tt.expectReq).
					Return(&printingapp.ListPrintJobsResponse{Jobs: []printingapp.PrintJobResponse{}, Total: 0}, nil)
			}

			w := serve(setupPrintJobRouter(svc), http.MethodGet, "/api/v1/print-jobs"+tt.query, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusBadRequest {
				assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestPrintJobHandler_Get(t *testing.T) {
	jobID := uuid.New()

	t.Run("found", func(t *testing.T) {
		svc := new(MockPrintJobService)
		svc.On("GetJob", mock.Anything, jobID).
			Return(&printingapp.PrintJobResponse{ID: jobID.String(), Status: "COMPLETED", PageCount: 3}, nil)

		w := serve(setupPrintJobRouter(svc), http.MethodGet, "/api/v1/print-jobs/"+jobID.String(), "")

		assert.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, float64(3), data["page_count"])
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockPrintJobService)
		svc.On("GetJob", mock.Anything, jobID).
			Return(nil, shared.NewDomainError("NOT_FOUND", "Print job not found"))

		w := serve(setupPrintJobRouter(svc), http.MethodGet, "/api/v1/print-jobs/"+jobID.String(), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("id is not a uuid", func(t *testing.T) {
		svc := new(MockPrintJobService)

		w := serve(setupPrintJobRouter(svc), http.MethodGet, "/api/v1/print-jobs/not-a-uuid", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "GetJob", mock.Anything, mock.Anything)
	})
}
