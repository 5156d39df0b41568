package ors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dispatch/internal/core/domain/model/vrp"
)

// maxLoggedPayload bounds the raw answer written to the log of a malformed response.
const maxLoggedPayload = 1024

type optimizationRequest struct {
	Jobs     []jobDTO     `json:"jobs"`
	Vehicles []vehicleDTO `json:"vehicles"`
}

type jobDTO struct {
	ID       int        `json:"id"`
	Location [2]float64 `json:"location"`
	Amount   []int      `json:"amount,omitempty"`
	Service  int        `json:"service"`
	Priority int        `json:"priority"`
}

type vehicleDTO struct {
	ID       int        `json:"id"`
	Profile  string     `json:"profile"`
	Start    [2]float64 `json:"start"`
	End      [2]float64 `json:"end"`
	Capacity []int      `json:"capacity,omitempty"`
}

// Pointers tell a missing array apart from an empty one.
type optimizationResponse struct {
	Code       int             `json:"code"`
	Routes     *[]routeDTO     `json:"routes"`
	Unassigned []unassignedDTO `json:"unassigned"`
}

type routeDTO struct {
	Vehicle  int        `json:"vehicle"`
	Steps    *[]stepDTO `json:"steps"`
	Duration int        `json:"duration"`
	Distance *int       `json:"distance"`
}

type stepDTO struct {
	Type     string `json:"type"`
	Job      *int   `json:"job"`
	Duration int    `json:"duration"`
}

type unassignedDTO struct {
	ID int `json:"id"`
}

// Optimize posts request to /optimization. Transient failures are retried under the
// client's policy and the whole call goes through the circuit breaker.
func (c *Client) Optimize(ctx context.Context, request vrp.Request, apiKey string) (vrp.Solution, error) {
	if request.IsEmpty() {
		return vrp.Solution{}, fmt.Errorf("%w: request has no jobs or no vehicles", ErrOptimizerFailed)
	}
	if err := request.Validate(); err != nil {
		return vrp.Solution{}, fmt.Errorf("%w: %w", ErrOptimizerFailed, err)
	}

	body, err := json.Marshal(toRequestDTO(request))
	if err != nil {
		return vrp.Solution{}, fmt.Errorf("%w: encode request: %w", ErrOptimizerFailed, err)
	}

	policy := c.policy
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.logger.WarnContext(ctx, "Optimizer attempt failed, retrying",
			"attempt", attempt, "retry_in", delay.String(), "error", err)
	}

	started := time.Now()
	var payload []byte
	_, err = c.breaker.Execute(func() (any, error) {
		return nil, policy.Do(ctx, func(ctx context.Context, attempt int) error {
			answer, err := c.send(ctx, http.MethodPost, c.baseURL+"/optimization", apiKey, nil, body)
			if err != nil {
				c.metrics.RecordOptimizerAttempt("error")
				return err
			}
			payload = answer
			c.metrics.RecordOptimizerAttempt("ok")
			return nil
		})
	})
	if err != nil {
		return vrp.Solution{}, fmt.Errorf("%w: %w", ErrOptimizerFailed, err)
	}

	solution, err := decodeSolution(payload)
	if err != nil {
		c.logger.ErrorContext(ctx, "Optimizer returned a malformed response",
			"error", err, "payload", truncate(payload, maxLoggedPayload))
		return vrp.Solution{}, err
	}

	c.logger.InfoContext(ctx, "Routes optimized",
		"jobs", len(request.Jobs),
		"vehicles", len(request.Vehicles),
		"routes", len(solution.Routes),
		"unassigned", len(solution.Unassigned),
		"took", time.Since(started).String(),
	)
	return solution, nil
}

func toRequestDTO(r vrp.Request) optimizationRequest {
	out := optimizationRequest{
		Jobs:     make([]jobDTO, 0, len(r.Jobs)),
		Vehicles: make([]vehicleDTO, 0, len(r.Vehicles)),
	}
	for _, j := range r.Jobs {
		out.Jobs = append(out.Jobs, jobDTO{
			ID:       j.ID,
			Location: j.Location.Pair(),
			Amount:   j.Amount,
			Service:  j.Service,
			Priority: j.Priority,
		})
	}
	for _, v := range r.Vehicles {
		out.Vehicles = append(out.Vehicles, vehicleDTO{
			ID:       v.ID,
			Profile:  v.Profile,
			Start:    v.Start.Pair(),
			End:      v.End.Pair(),
			Capacity: v.Capacity,
		})
	}
	return out
}

func decodeSolution(payload []byte) (vrp.Solution, error) {
	var resp optimizationResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return vrp.Solution{}, fmt.Errorf("%w: %w", ErrOptimizerMalformedResponse, err)
	}
	if resp.Routes == nil {
		return vrp.Solution{}, fmt.Errorf("%w: routes array is missing", ErrOptimizerMalformedResponse)
	}

	solution := vrp.Solution{Routes: make([]vrp.Route, 0, len(*resp.Routes))}
	for i, r := range *resp.Routes {
		if r.Steps == nil {
			return vrp.Solution{}, fmt.Errorf("%w: route %d has no steps array", ErrOptimizerMalformedResponse, i)
		}
		route := vrp.Route{
			Vehicle:  r.Vehicle,
			Steps:    make([]vrp.Step, 0, len(*r.Steps)),
			Duration: r.Duration,
			Distance: r.Distance,
		}
		for _, s := range *r.Steps {
			route.Steps = append(route.Steps, vrp.Step{
				Type:     vrp.StepType(s.Type),
				Job:      s.Job,
				Duration: s.Duration,
			})
		}
		solution.Routes = append(solution.Routes, route)
	}
	for _, u := range resp.Unassigned {
		solution.Unassigned = append(solution.Unassigned, u.ID)
	}

	if err := solution.Validate(); err != nil {
		return vrp.Solution{}, fmt.Errorf("%w: %w", ErrOptimizerMalformedResponse, err)
	}
	return solution, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
