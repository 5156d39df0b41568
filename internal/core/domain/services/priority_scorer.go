package services

import (
	"fmt"
	"math"
	"slices"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vrp"
	"dispatch/internal/pkg/errs"
)

const (
	// ExplicitPriorityRank is the rank of orders flagged as priority by the kitchen.
	ExplicitPriorityRank = 0
	MinWaitRank          = 1
	MaxWaitRank          = 9
)

// Score converts an order's explicit priority flag and wait time into a rank.
//
// Explicit priority always yields ExplicitPriorityRank. Otherwise the wait ratio
// min(wait/limit, 1) is mapped linearly onto [1, 9] and rounded down, so orders
// waiting at least waitLimitSeconds get MaxWaitRank. Negative waits count as zero
// and a non-positive limit means every order is already at the limit.
func Score(explicitPriority bool, waitSeconds, waitLimitSeconds int) int {
	if explicitPriority {
		return ExplicitPriorityRank
	}
	if waitLimitSeconds <= 0 {
		return MaxWaitRank
	}
	if waitSeconds < 0 {
		waitSeconds = 0
	}
	ratio := math.Min(float64(waitSeconds)/float64(waitLimitSeconds), 1.0)
	return int(math.Floor(ratio*float64(MaxWaitRank-MinWaitRank))) + MinWaitRank
}

// JobPriority maps a rank onto the optimizer's 0..10 priority scale where a higher
// value is served first. Explicit priority becomes vrp.MaxPriority.
func JobPriority(rank int) int {
	if rank == ExplicitPriorityRank {
		return vrp.MaxPriority
	}
	return rank
}

// RankedCandidate is a candidate together with the rank computed for this cycle.
type RankedCandidate struct {
	Candidate   *order.Candidate
	Rank        int
	WaitSeconds int
}

// PriorityScorer ranks and orders the candidates of one dispatch cycle.
type PriorityScorer struct {
	waitLimitSeconds int
}

func NewPriorityScorer(waitLimitSeconds int) (PriorityScorer, error) {
	if waitLimitSeconds <= 0 {
		return PriorityScorer{}, errs.NewValueIsInvalidErrorWithCause("wait limit seconds",
			fmt.Errorf("%d is not greater than 0", waitLimitSeconds))
	}
	return PriorityScorer{waitLimitSeconds: waitLimitSeconds}, nil
}

func (s PriorityScorer) WaitLimitSeconds() int {
	return s.waitLimitSeconds
}

// Rank scores a single candidate at now.
func (s PriorityScorer) Rank(c *order.Candidate, now time.Time) RankedCandidate {
	wait := c.WaitSeconds(now)
	return RankedCandidate{
		Candidate:   c,
		Rank:        Score(c.IsPriority(), wait, s.waitLimitSeconds),
		WaitSeconds: wait,
	}
}

// Order ranks candidates and sorts them by urgency: explicit priority first, then
// the longest waiting ranks. Candidates of equal urgency keep their input order,
// which the collector already sorts by explicit flag and creation time.
func (s PriorityScorer) Order(candidates []*order.Candidate, now time.Time) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, s.Rank(c, now))
	}

	slices.SortStableFunc(ranked, func(a, b RankedCandidate) int {
		return JobPriority(b.Rank) - JobPriority(a.Rank)
	})

	return ranked
}
