// Package feasibility orchestrates one analysis run: fetch rules once,
// generate candidates, fan validation and pricing out across workers, then
// rank the compliant subset.
package feasibility

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/compliance"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/generator"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/optimizer"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/proforma"
)

// DefaultCandidateCount is used when a request does not ask for a specific
// batch size.
const DefaultCandidateCount = 1000

// RuleSource provides zoning rules. Satisfied by the rule store.
type RuleSource interface {
	GetRule(ctx context.Context, jurisdiction, district string) (*domain.ZoningRule, error)
}

// AnalysisRequest describes one feasibility run.
type AnalysisRequest struct {
	Site       domain.Site        `json:"site"`
	Typology   string             `json:"typology"`
	Count      int                `json:"count,omitempty"`
	Seed       int64              `json:"seed,omitempty"`
	Objectives []domain.Objective `json:"objectives,omitempty"`
	Primary    domain.Objective   `json:"primary_objective,omitempty"`
}

// Service wires the pipeline stages together.
type Service struct {
	rules     RuleSource
	generator *generator.Generator
	validator *compliance.Validator
	model     *proforma.Model
	optimizer *optimizer.Optimizer
	pool      *workerPool
	log       zerolog.Logger
}

// NewService creates the analysis service. workers <= 0 sizes the pool from
// the CPU count.
func NewService(rules RuleSource, model *proforma.Model, workers int, log zerolog.Logger) *Service {
	return &Service{
		rules:     rules,
		generator: generator.New(),
		validator: compliance.NewValidator(),
		model:     model,
		optimizer: optimizer.New(),
		pool:      newWorkerPool(workers),
		log:       log.With().Str("component", "feasibility").Logger(),
	}
}

// Analyze runs the full pipeline for one request. Input validation happens
// before any work starts; a run with zero compliant candidates is a normal
// result. The progress callback may be nil.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest, progress ProgressFunc) (*domain.OptimizationResult, error) {
	started := time.Now()

	if err := req.Site.Validate(); err != nil {
		return nil, err
	}
	typology, err := domain.ParseTypology(req.Typology)
	if err != nil {
		return nil, err
	}
	count := req.Count
	if count <= 0 {
		count = DefaultCandidateCount
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// The rule fetch is the only suspend point in the pipeline, awaited
	// once per batch.
	rule, err := s.rules.GetRule(ctx, req.Site.Jurisdiction, req.Site.ZoningDistrict)
	if err != nil {
		return nil, err
	}

	candidates, err := s.generator.Generate(req.Site, typology, rule, count, seed)
	if err != nil {
		return nil, err
	}

	scored, err := s.pool.scoreBatch(ctx, candidates, func(c *domain.DesignCandidate) domain.ScoredCandidate {
		sc := domain.ScoredCandidate{
			Candidate:  *c,
			Compliance: s.validator.Validate(c, rule, req.Site),
		}
		if sc.Compliance.Compliant {
			pf, priceErr := s.model.Price(c, typology, req.Site)
			if priceErr == nil {
				sc.ProForma = pf
			}
		}
		return sc
	}, progress)
	if err != nil {
		return nil, err
	}

	recommended, alternatives, summary := s.optimizer.Rank(scored, req.Objectives, req.Primary)

	compliantCount := 0
	for i := range scored {
		if scored[i].Compliance.Compliant {
			compliantCount++
		}
	}

	result := &domain.OptimizationResult{
		RunID:          uuid.NewString(),
		Site:           req.Site,
		Typology:       typology,
		Seed:           seed,
		GeneratedCount: len(candidates),
		CompliantCount: compliantCount,
		RulesStale:     rule.Stale,
		CreatedAt:      started.UTC(),
		ElapsedMs:      time.Since(started).Milliseconds(),
		Recommended:    recommended,
		Alternatives:   alternatives,
		Summary:        summary,
	}

	s.log.Info().
		Str("run_id", result.RunID).
		Str("typology", string(typology)).
		Int("generated", result.GeneratedCount).
		Int("compliant", result.CompliantCount).
		Bool("rules_stale", result.RulesStale).
		Int64("elapsed_ms", result.ElapsedMs).
		Msg("Feasibility run complete")

	return result, nil
}
