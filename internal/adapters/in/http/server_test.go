package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	api "dispatch/internal/adapters/in/http"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/broadcast"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTaskEnqueuer struct{ mock.Mock }

func (m *MockTaskEnqueuer) Enqueue(ctx context.Context, input task.Input) (kernel.UUID, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

type MockTaskStatusReader struct{ mock.Mock }

func (m *MockTaskStatusReader) Handle(ctx context.Context, query queries.GetTaskStatusQuery) (queries.GetTaskStatusQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.GetTaskStatusQueryResponse), args.Error(1)
}

type MockCourierRoutesReader struct{ mock.Mock }

func (m *MockCourierRoutesReader) Handle(ctx context.Context, query queries.GetCourierRoutesQuery) ([]queries.GetCourierRoutesQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.GetCourierRoutesQueryResponse), args.Error(1)
}

type MockCouriersReader struct{ mock.Mock }

func (m *MockCouriersReader) Handle(ctx context.Context, query queries.GetCouriersQuery) ([]queries.GetCouriersQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.GetCouriersQueryResponse), args.Error(1)
}

type MockReadyOrdersReader struct{ mock.Mock }

func (m *MockReadyOrdersReader) Handle(ctx context.Context, query queries.GetReadyOrdersQuery) ([]queries.GetReadyOrdersQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]queries.GetReadyOrdersQueryResponse), args.Error(1)
}

type apiFixture struct {
	queue       *MockTaskEnqueuer
	taskStatus  *MockTaskStatusReader
	routes      *MockCourierRoutesReader
	couriers    *MockCouriersReader
	readyOrders *MockReadyOrdersReader
	hub         *broadcast.Hub
	router      *echo.Echo
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	f := &apiFixture{
		queue:       &MockTaskEnqueuer{},
		taskStatus:  &MockTaskStatusReader{},
		routes:      &MockCourierRoutesReader{},
		couriers:    &MockCouriersReader{},
		readyOrders: &MockReadyOrdersReader{},
		hub:         broadcast.NewHub(8),
	}
	server := api.NewServer(f.queue, f.taskStatus, f.routes, f.couriers, f.readyOrders, f.hub)
	router, err := api.NewRouter(server, metrics.New().Handler(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	f.router = router
	return f
}

func (f *apiFixture) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.Error {
	t.Helper()
	var body api.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestServer_Health(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestServer_Dispatch(t *testing.T) {
	t.Run("queues a task", func(t *testing.T) {
		f := newAPIFixture(t)
		id := kernel.NewUUID()
		f.queue.On("Enqueue", mock.Anything, task.Input{
			APIKey:             "key",
			PizzeriaAddress:    "Rua Sete de Setembro, 100, Centro",
			CapacityPerCourier: 3,
			TriggeredBy:        "http",
		}).Return(id, nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/dispatch",
			`{"api_key":"key","pizzeria_address":"Rua Sete de Setembro, 100, Centro","capacity_per_courier":3}`)

		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `{"task_id":"`+id.String()+`"}`, rec.Body.String())
		f.queue.AssertExpectations(t)
	})

	t.Run("validation errors name the json fields", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.do(http.MethodPost, "/api/v1/dispatch", `{"api_key":"","capacity_per_courier":0}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "api_key is required", body.Fields["api_key"])
		assert.Equal(t, "pizzeria_address is required", body.Fields["pizzeria_address"])
		assert.Contains(t, body.Fields, "capacity_per_courier")
		f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	})

	t.Run("negative capacity", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.do(http.MethodPost, "/api/v1/dispatch",
			`{"api_key":"key","pizzeria_address":"Rua A, 1","capacity_per_courier":-2}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "capacity_per_courier must be greater than 0", decodeError(t, rec).Fields["capacity_per_courier"])
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.do(http.MethodPost, "/api/v1/dispatch", `{"api_key":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("full queue", func(t *testing.T) {
		f := newAPIFixture(t)
		f.queue.On("Enqueue", mock.Anything, mock.Anything).Return(kernel.NewUUID(), jobs.ErrQueueFull).Once()

		rec := f.do(http.MethodPost, "/api/v1/dispatch",
			`{"api_key":"key","pizzeria_address":"Rua A, 1","capacity_per_courier":2}`)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newAPIFixture(t)
		f.queue.On("Enqueue", mock.Anything, mock.Anything).Return(kernel.UUID{}, errors.New("db down")).Once()

		rec := f.do(http.MethodPost, "/api/v1/dispatch",
			`{"api_key":"key","pizzeria_address":"Rua A, 1","capacity_per_courier":2}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestServer_GetTask(t *testing.T) {
	t.Run("known task", func(t *testing.T) {
		f := newAPIFixture(t)
		id := kernel.NewUUID()
		f.taskStatus.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetTaskStatusQuery) bool {
			return q.TaskID().IsEqual(id)
		})).Return(queries.GetTaskStatusQueryResponse{
			TaskID: id,
			Status: string(task.Success),
			Result: json.RawMessage(`{"status":"dispatched"}`),
		}, nil).Once()

		rec := f.do(http.MethodGet, "/api/v1/tasks/"+id.String(), "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, id.String(), body["task_id"])
		assert.Equal(t, "SUCCESS", body["status"])
		assert.Equal(t, map[string]any{"status": "dispatched"}, body["result"])
		assert.NotContains(t, body, "error")
	})

	t.Run("unknown task", func(t *testing.T) {
		f := newAPIFixture(t)
		id := kernel.NewUUID()
		f.taskStatus.On("Handle", mock.Anything, mock.Anything).
			Return(queries.GetTaskStatusQueryResponse{}, errs.NewObjectNotFoundError("task", id.String())).Once()

		rec := f.do(http.MethodGet, "/api/v1/tasks/"+id.String(), "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.do(http.MethodGet, "/api/v1/tasks/42", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.taskStatus.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("nil id", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.do(http.MethodGet, "/api/v1/tasks/00000000-0000-0000-0000-000000000000", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid task id", decodeError(t, rec).Message)
		f.taskStatus.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})
}

func TestServer_RejectsRequestsOutsideContract(t *testing.T) {
	t.Run("wrongly typed body field", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.do(http.MethodPost, "/api/v1/dispatch",
			`{"api_key":"key","pizzeria_address":"Rua A, 1","capacity_per_courier":"three"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "Request does not match the API contract", body.Message)
		assert.Contains(t, body.Fields, "capacity_per_courier")
		f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	})

	t.Run("missing body", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.do(http.MethodPost, "/api/v1/dispatch", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	})

	t.Run("non boolean query flag", func(t *testing.T) {
		f := newAPIFixture(t)

		rec := f.do(http.MethodGet, "/api/v1/couriers?active=maybe", "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "active is invalid", decodeError(t, rec).Fields["active"])
		f.couriers.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("routes outside the document pass through", func(t *testing.T) {
		f := newAPIFixture(t)

		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/metrics", "").Code)
		assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/v1/unknown", "").Code)
	})
}

func TestLoadOpenAPI(t *testing.T) {
	doc, err := api.LoadOpenAPI(t.Context())

	require.NoError(t, err)
	for _, path := range []string{
		"/health",
		"/api/v1/dispatch",
		"/api/v1/tasks/{id}",
		"/api/v1/couriers",
		"/api/v1/couriers/{id}/routes",
		"/api/v1/orders/ready",
		"/api/v1/events",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}

func TestServer_GetCourierRoutes(t *testing.T) {
	f := newAPIFixture(t)
	courierID := kernel.NewUUID()
	start := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	f.routes.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetCourierRoutesQuery) bool {
		return q.CourierID().IsEqual(courierID)
	})).Return([]queries.GetCourierRoutesQueryResponse{
		{StopID: kernel.NewUUID(), OrderID: 7, Sequence: 1, ETAMinutes: 4, StartTime: start, ArrivesAt: start.Add(4 * time.Minute)},
		{StopID: kernel.NewUUID(), OrderID: 9, Sequence: 2, ETAMinutes: 11, StartTime: start, ArrivesAt: start.Add(11 * time.Minute)},
	}, nil).Once()

	rec := f.do(http.MethodGet, "/api/v1/couriers/"+courierID.String()+"/routes", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var stops []queries.GetCourierRoutesQueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stops))
	require.Len(t, stops, 2)
	assert.Equal(t, int64(7), stops[0].OrderID)
	assert.Equal(t, 11, stops[1].ETAMinutes)

	rec = f.do(http.MethodGet, "/api/v1/couriers/nope/routes", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_GetCouriers(t *testing.T) {
	f := newAPIFixture(t)
	f.couriers.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetCouriersQuery) bool {
		return q.ActiveOnly()
	})).Return([]queries.GetCouriersQueryResponse{{ID: kernel.NewUUID(), Name: "Bruno", Active: true, Idle: true}}, nil).Once()
	f.couriers.On("Handle", mock.Anything, mock.Anything).
		Return([]queries.GetCouriersQueryResponse(nil), errors.New("db down")).Once()

	rec := f.do(http.MethodGet, "/api/v1/couriers?active=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Bruno"`)

	rec = f.do(http.MethodGet, "/api/v1/couriers", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_GetReadyOrders(t *testing.T) {
	f := newAPIFixture(t)
	f.readyOrders.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetReadyOrdersQuery) bool {
		return len(q.Statuses()) == 1 && q.Statuses()[0] == order.AlmostReady
	})).Return([]queries.GetReadyOrdersQueryResponse{{OrderID: 3, Status: string(order.AlmostReady)}}, nil).Once()

	rec := f.do(http.MethodGet, "/api/v1/orders/ready?status=almost+ready", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"order_id":3`)

	rec = f.do(http.MethodGet, "/api/v1/orders/ready?status=lost", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_StreamEvents(t *testing.T) {
	f := newAPIFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get(echo.HeaderContentType))

	require.Eventually(t, func() bool { return f.hub.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)
	f.hub.Publish("Order #42 status changed to ready for delivery")

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data: Order #42 status changed to ready for delivery\n", line)

	cancel()
	assert.Eventually(t, func() bool { return f.hub.Subscribers() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestServer_StreamEvents_HubCloseLetsShutdownFinish(t *testing.T) {
	f := newAPIFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/api/v1/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Eventually(t, func() bool { return f.hub.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	f.hub.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Config.Shutdown(ctx))

	_, err = io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Equal(t, 0, f.hub.Subscribers())
}
