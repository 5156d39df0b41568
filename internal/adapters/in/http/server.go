// Package http is the dispatcher's echo API: dispatch requests, task status,
// read models and the live status stream.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type (
	TaskEnqueuer interface {
		Enqueue(ctx context.Context, input task.Input) (kernel.UUID, error)
	}

	TaskStatusReader interface {
		Handle(ctx context.Context, query queries.GetTaskStatusQuery) (queries.GetTaskStatusQueryResponse, error)
	}

	CourierRoutesReader interface {
		Handle(ctx context.Context, query queries.GetCourierRoutesQuery) ([]queries.GetCourierRoutesQueryResponse, error)
	}

	CouriersReader interface {
		Handle(ctx context.Context, query queries.GetCouriersQuery) ([]queries.GetCouriersQueryResponse, error)
	}

	ReadyOrdersReader interface {
		Handle(ctx context.Context, query queries.GetReadyOrdersQuery) ([]queries.GetReadyOrdersQueryResponse, error)
	}

	// EventSource is the live status line hub; see broadcast.Hub.
	EventSource interface {
		Subscribe() (<-chan string, func())
	}
)

// Error is the body of every non-2xx JSON response.
type Error struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// DispatchRequest is the body of POST /api/v1/dispatch.
type DispatchRequest struct {
	APIKey             string `json:"api_key" validate:"required,max=256"`
	PizzeriaAddress    string `json:"pizzeria_address" validate:"required,max=512"`
	CapacityPerCourier int    `json:"capacity_per_courier" validate:"required,gt=0"`
}

type DispatchAccepted struct {
	TaskID kernel.UUID `json:"task_id"`
}

// Server handles the API requests by delegating to the task queue and query handlers.
type Server struct {
	queue       TaskEnqueuer
	taskStatus  TaskStatusReader
	routes      CourierRoutesReader
	couriers    CouriersReader
	readyOrders ReadyOrdersReader
	events      EventSource
}

func NewServer(
	queue TaskEnqueuer,
	taskStatus TaskStatusReader,
	routes CourierRoutesReader,
	couriers CouriersReader,
	readyOrders ReadyOrdersReader,
	events EventSource,
) *Server {
	return &Server{
		queue:       queue,
		taskStatus:  taskStatus,
		routes:      routes,
		couriers:    couriers,
		readyOrders: readyOrders,
		events:      events,
	}
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

// Dispatch handles POST /api/v1/dispatch - queues a dispatch cycle.
func (s *Server) Dispatch(ctx echo.Context) error {
	var request DispatchRequest
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := ctx.Validate(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Validation failed",
			Fields:  validationFields(err),
		})
	}

	id, err := s.queue.Enqueue(ctx.Request().Context(), task.Input{
		APIKey:             request.APIKey,
		PizzeriaAddress:    request.PizzeriaAddress,
		CapacityPerCourier: request.CapacityPerCourier,
		TriggeredBy:        "http",
	})
	switch {
	case errors.Is(err, jobs.ErrQueueFull):
		return ctx.JSON(http.StatusServiceUnavailable, Error{
			Code:    http.StatusServiceUnavailable,
			Message: fmt.Sprintf("Dispatch queue is full, task %s failed", id),
		})
	case err != nil:
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to queue dispatch",
		})
	}

	return ctx.JSON(http.StatusAccepted, DispatchAccepted{TaskID: id})
}

// GetTask handles GET /api/v1/tasks/:id - reports a dispatch task.
func (s *Server) GetTask(ctx echo.Context) error {
	id, err := pathID(ctx)
	var query queries.GetTaskStatusQuery
	if err == nil {
		query, err = queries.NewGetTaskStatusQuery(id.String())
	}
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid task id",
		})
	}

	response, err := s.taskStatus.Handle(ctx.Request().Context(), query)
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: "Task not found",
		})
	case err != nil:
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve task",
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetCourierRoutes handles GET /api/v1/couriers/:id/routes - pending and in-progress stops.
func (s *Server) GetCourierRoutes(ctx echo.Context) error {
	id, err := pathID(ctx)
	var query queries.GetCourierRoutesQuery
	if err == nil {
		query, err = queries.NewGetCourierRoutesQuery(id.String())
	}
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid courier id",
		})
	}

	stops, err := s.routes.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve routes",
		})
	}

	return ctx.JSON(http.StatusOK, stops)
}

// pathID binds the :id path parameter.
func pathID(ctx echo.Context) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	return id, err
}

// GetCouriers handles GET /api/v1/couriers - the fleet with idleness; ?active=true
// keeps active couriers only.
func (s *Server) GetCouriers(ctx echo.Context) error {
	activeOnly := ctx.QueryParam("active") == "true"

	couriers, err := s.couriers.Handle(ctx.Request().Context(), queries.NewGetCouriersQuery(activeOnly))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve couriers",
		})
	}

	return ctx.JSON(http.StatusOK, couriers)
}

// GetReadyOrders handles GET /api/v1/orders/ready - the orders the next cycle would
// consider; repeat ?status= to override the statuses.
func (s *Server) GetReadyOrders(ctx echo.Context) error {
	var statuses []order.Status
	for _, raw := range ctx.QueryParams()["status"] {
		statuses = append(statuses, order.Status(raw))
	}

	query, err := queries.NewGetReadyOrdersQuery(statuses)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid status: " + err.Error(),
		})
	}

	orders, err := s.readyOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve orders",
		})
	}

	return ctx.JSON(http.StatusOK, orders)
}

// StreamEvents handles GET /api/v1/events - status lines as Server-Sent Events
// until the client goes away or the hub closes.
func (s *Server) StreamEvents(ctx echo.Context) error {
	lines, cancel := s.events.Subscribe()
	defer cancel()

	w := ctx.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	done := ctx.Request().Context().Done()
	for {
		select {
		case <-done:
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", line); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
