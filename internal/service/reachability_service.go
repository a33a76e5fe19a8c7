// Package service contains the application service that orchestrates
// the reachability decision.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Sentinel-Gate/arbac-reach/internal/domain/model"
	"github.com/Sentinel-Gate/arbac-reach/internal/domain/pruner"
	"github.com/Sentinel-Gate/arbac-reach/internal/domain/searcher"
	"github.com/Sentinel-Gate/arbac-reach/internal/metrics"
	"github.com/Sentinel-Gate/arbac-reach/internal/telemetry"
)

// ProblemStats summarizes the size of an ARBAC problem at some point
// in the pipeline, for before/after pruning comparison.
type ProblemStats struct {
	Roles     int
	Users     int
	CanAssign int
	CanRevoke int
}

func statsOf(r model.Reachability) ProblemStats {
	return ProblemStats{
		Roles:     r.Arbac.Roles.Popcount(),
		Users:     r.Arbac.UserCount(),
		CanAssign: len(r.Arbac.Policy.CanAssign),
		CanRevoke: len(r.Arbac.Policy.CanRevoke),
	}
}

// RunResult is the outcome of a single Decide call, enough to print a
// verdict and, with --verbose, explain the work behind it.
type RunResult struct {
	RequestID      string
	Verdict        bool
	OriginalStats  ProblemStats
	SlicedStats    ProblemStats
	StatesExplored int
	Duration       time.Duration
}

// ReachabilityService is the Driver described by the pipeline:
// Pruner then Searcher, with no reachability logic of its own.
type ReachabilityService struct {
	logger  *slog.Logger
	tracer  *telemetry.Provider
	metrics *metrics.Metrics
}

// NewReachabilityService wires a Driver from its collaborators. tracer
// and m may be nil; nil tracer falls back to telemetry.NewNoop, and a
// nil m skips metric recording entirely.
func NewReachabilityService(logger *slog.Logger, tracer *telemetry.Provider, m *metrics.Metrics) *ReachabilityService {
	if tracer == nil {
		tracer = telemetry.NewNoop()
	}
	return &ReachabilityService{logger: logger, tracer: tracer, metrics: m}
}

// Decide runs the full Parser-downstream pipeline on an already-parsed
// problem: slice to a fixed point, then search. It performs no domain
// reasoning itself — Slice and Search own the invariants.
func (s *ReachabilityService) Decide(ctx context.Context, r model.Reachability) (RunResult, error) {
	requestID := uuid.New().String()
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "arbac_reach.decide")
	defer span.End()

	if err := r.Validate(); err != nil {
		return RunResult{}, fmt.Errorf("invalid reachability problem: %w", err)
	}

	original := statsOf(r)

	_, sliceSpan := s.tracer.Start(ctx, "arbac_reach.slice")
	sliced, sliceRounds := pruner.SliceWithRounds(r)
	sliceSpan.End()

	slicedStats := statsOf(sliced)

	_, searchSpan := s.tracer.Start(ctx, "arbac_reach.search")
	result := searcher.Search(sliced)
	searchSpan.End()

	duration := time.Since(start)

	if s.metrics != nil {
		verdict := "not_reachable"
		if result.Reachable {
			verdict = "reachable"
		}
		s.metrics.DecisionsTotal.WithLabelValues(verdict).Inc()
		s.metrics.DecisionDuration.Observe(duration.Seconds())
		s.metrics.StatesExplored.Observe(float64(result.StatesExplored))
		s.metrics.SliceRounds.Observe(float64(sliceRounds))
		s.metrics.RulesBeforePruning.Set(float64(original.CanAssign + original.CanRevoke))
		s.metrics.RulesAfterPruning.Set(float64(slicedStats.CanAssign + slicedStats.CanRevoke))
		if original.Roles > 0 {
			pruned := original.Roles - slicedStats.Roles
			s.metrics.RolesPrunedRatio.Observe(float64(pruned) / float64(original.Roles))
		}
	}

	if s.logger != nil {
		s.logger.Debug("reachability decision completed",
			"request_id", requestID,
			"reachable", result.Reachable,
			"states_explored", result.StatesExplored,
			"roles_before", original.Roles,
			"roles_after", slicedStats.Roles,
			"duration_ms", duration.Milliseconds(),
		)
	}

	return RunResult{
		RequestID:      requestID,
		Verdict:        result.Reachable,
		OriginalStats:  original,
		SlicedStats:    slicedStats,
		StatesExplored: result.StatesExplored,
		Duration:       duration,
	}, nil
}
