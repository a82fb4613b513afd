package usecase

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lostfound/backend/internal/domain"
	"github.com/lostfound/backend/internal/infrastructure/metrics"
)

const defaultWorkers = 4

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	Threshold          float64
	Workers            int
	EnableDebugLogging bool
}

// MatchingService ranks candidate reports against a query report
type MatchingService struct {
	threshold          float64
	workers            int
	enableDebugLogging bool
	logger             *zap.Logger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig, logger *zap.Logger) *MatchingService {
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	workers := config.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &MatchingService{
		threshold:          threshold,
		workers:            workers,
		enableDebugLogging: config.EnableDebugLogging,
		logger:             logger,
	}
}

// Threshold returns the default cutoff used when Rank is given none
func (s *MatchingService) Threshold() float64 {
	return s.threshold
}

// EffectiveThreshold returns *threshold, or the configured default when nil
func (s *MatchingService) EffectiveThreshold(threshold *float64) float64 {
	if threshold == nil {
		return s.threshold
	}
	return *threshold
}

// Rank scores candidates concurrently and returns the same result as
// RankCandidates. A nil threshold uses the configured one; any explicit
// value, 0 included, is applied as given.
func (s *MatchingService) Rank(
	ctx context.Context,
	query domain.Item,
	candidates []domain.Item,
	thresholdOverride *float64,
) ([]domain.MatchCandidate, error) {
	threshold := s.EffectiveThreshold(thresholdOverride)

	scores := make([]float64, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range candidates {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scores[i] = combinedScore(query, candidates[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.RankingsTotal.Inc()
	metrics.CandidatesScoredTotal.Add(float64(len(candidates)))
	for i, score := range scores {
		metrics.MatchScores.Observe(score)
		if s.enableDebugLogging {
			s.logger.Debug("scored candidate",
				zap.String("query_id", query.ID),
				zap.String("candidate_id", candidates[i].ID),
				zap.Float64("score", score))
		}
	}

	matches := selectMatches(query, candidates, scores, threshold)

	if s.enableDebugLogging {
		s.logger.Debug("ranked candidates",
			zap.String("query_id", query.ID),
			zap.Int("candidates", len(candidates)),
			zap.Int("matches", len(matches)),
			zap.Float64("threshold", threshold))
	}

	return matches, nil
}
