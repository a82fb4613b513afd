package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lostfound/backend/internal/domain"
	"github.com/lostfound/backend/internal/infrastructure/metrics"
)

const defaultSubcategory = "Others"

// ReportService files reports, proposes matches and records match decisions
type ReportService struct {
	reports  domain.ReportRepository
	matches  domain.MatchRepository
	matching *MatchingService
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService creates a new report service with dependencies
func NewReportService(
	reports domain.ReportRepository,
	matches domain.MatchRepository,
	matching *MatchingService,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		reports:  reports,
		matches:  matches,
		matching: matching,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateReport validates and stores a new lost or found report
func (s *ReportService) CreateReport(ctx context.Context, req *domain.CreateReportRequest) (*domain.Report, error) {
	if req == nil {
		return nil, domain.ErrInvalidRequest
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := validateReportRequest(req); err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = domain.CategoryItem
	}
	subcategory := strings.TrimSpace(req.Subcategory)
	if subcategory == "" {
		subcategory = defaultSubcategory
	}

	now := s.now()
	report := &domain.Report{
		ID:                  uuid.New().String(),
		Kind:                req.Kind,
		UserID:              req.UserID,
		Title:               strings.TrimSpace(req.Title),
		Description:         strings.TrimSpace(req.Description),
		DistinctiveFeatures: strings.TrimSpace(req.DistinctiveFeatures),
		Category:            category,
		Subcategory:         subcategory,
		Color:               strings.TrimSpace(req.Color),
		Size:                strings.TrimSpace(req.Size),
		Brand:               strings.TrimSpace(req.Brand),
		Location:            strings.TrimSpace(req.Location),
		DateReported:        strings.TrimSpace(req.DateReported),
		ContactInfo:         strings.TrimSpace(req.ContactInfo),
		Status:              req.Kind.OpenStatus(),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if req.Kind == domain.KindLost {
		report.Reward = req.Reward
	}

	if err := s.reports.CreateReport(ctx, report); err != nil {
		s.logger.Error("failed to create report", zap.String("kind", string(req.Kind)), zap.Error(err))
		return nil, err
	}

	metrics.ReportsCreatedTotal.WithLabelValues(string(report.Kind)).Inc()
	s.logger.Info("report created",
		zap.String("report_id", report.ID),
		zap.String("kind", string(report.Kind)),
		zap.String("category", string(report.Category)))

	return report, nil
}

// validateReportRequest checks the fields every report must carry
func validateReportRequest(req *domain.CreateReportRequest) error {
	if !req.Kind.Valid() {
		return fmt.Errorf("%w: kind must be lost or found", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return fmt.Errorf("%w: title and description are required", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Location) == "" {
		return fmt.Errorf("%w: location is required", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.DateReported) == "" {
		return fmt.Errorf("%w: date is required", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.ContactInfo) == "" {
		return fmt.Errorf("%w: contact information is required", domain.ErrInvalidRequest)
	}
	if req.Category != "" && !req.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidRequest, req.Category)
	}
	if req.Reward < 0 {
		return fmt.Errorf("%w: reward cannot be negative", domain.ErrInvalidRequest)
	}
	return nil
}

// GetReport fetches a report by id
func (s *ReportService) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.reports.GetReport(ctx, id)
}

// GetReportOfKind fetches a report and checks it is of the expected kind
func (s *ReportService) GetReportOfKind(ctx context.Context, id string, kind domain.ReportKind) (*domain.Report, error) {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Kind != kind {
		return nil, fmt.Errorf("%w: report %s is %s, not %s", domain.ErrKindMismatch, id, report.Kind, kind)
	}
	return report, nil
}

// ListReports returns reports matching the filter, newest first
func (s *ReportService) ListReports(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidRequest, filter.Kind)
	}
	return s.reports.ListReports(ctx, filter)
}

// UpdateReportStatus moves a report to a status valid for its kind
func (s *ReportService) UpdateReportStatus(ctx context.Context, id string, status domain.ReportStatus) (*domain.Report, error) {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if !status.ValidFor(report.Kind) {
		return nil, fmt.Errorf("%w: %q is not a %s report status", domain.ErrInvalidStatus, status, report.Kind)
	}
	if err := s.reports.UpdateReportStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.reports.GetReport(ctx, id)
}

// FindMatches ranks the open reports of the opposite kind in the same
// category against the given report. A nil threshold uses the default.
func (s *ReportService) FindMatches(ctx context.Context, id string, threshold *float64) ([]domain.MatchCandidate, error) {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	opposite := report.Kind.Opposite()
	candidates, err := s.reports.ListReports(ctx, domain.ReportFilter{
		Kind:     opposite,
		Category: report.Category,
		Status:   opposite.OpenStatus(),
	})
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, len(candidates))
	for i := range candidates {
		items[i] = candidates[i].Item()
	}

	return s.matching.Rank(ctx, report.Item(), items, threshold)
}

// CreateMatch records a pending match between a lost and a found report
func (s *ReportService) CreateMatch(ctx context.Context, req *domain.CreateMatchRequest) (*domain.Match, error) {
	if req == nil || req.LostReportID == "" || req.FoundReportID == "" {
		return nil, fmt.Errorf("%w: missing required item ids", domain.ErrInvalidRequest)
	}

	lost, err := s.GetReportOfKind(ctx, req.LostReportID, domain.KindLost)
	if err != nil {
		return nil, err
	}
	found, err := s.GetReportOfKind(ctx, req.FoundReportID, domain.KindFound)
	if err != nil {
		return nil, err
	}

	matchType := req.Type
	if matchType == "" {
		matchType = domain.MatchTypeUserReported
	}

	match := &domain.Match{
		ID:              uuid.New().String(),
		LostReportID:    lost.ID,
		FoundReportID:   found.ID,
		SimilarityScore: Similarity(searchText(lost.Item()), searchText(found.Item())),
		MatchType:       matchType,
		Status:          domain.MatchPending,
		CreatedAt:       s.now(),
	}

	if err := s.matches.CreateMatch(ctx, match); err != nil {
		s.logger.Error("failed to create match", zap.Error(err))
		return nil, err
	}

	metrics.MatchesCreatedTotal.WithLabelValues(string(match.MatchType)).Inc()
	s.logger.Info("match created",
		zap.String("match_id", match.ID),
		zap.String("lost_report_id", lost.ID),
		zap.String("found_report_id", found.ID),
		zap.Float64("similarity", match.SimilarityScore))

	return match, nil
}

// ListMatches returns every match, or only those touching the user's reports
func (s *ReportService) ListMatches(ctx context.Context, userID string) ([]domain.Match, error) {
	return s.matches.ListMatches(ctx, domain.MatchFilter{UserID: userID})
}

// UpdateMatchStatus records a review decision on a pending match. Confirming
// a match marks the lost report as found and the found report as claimed in
// the same store write. Decisions are final.
func (s *ReportService) UpdateMatchStatus(ctx context.Context, id string, status domain.MatchStatus) (*domain.Match, error) {
	if !status.Resolves() {
		return nil, fmt.Errorf("%w: a match can only be %s or %s, not %q",
			domain.ErrInvalidStatus, domain.MatchConfirmed, domain.MatchRejected, status)
	}

	match, err := s.matches.ResolveMatch(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("match status updated", zap.String("match_id", id), zap.String("status", string(status)))
	return match, nil
}

// Stats aggregates report and match counts for the dashboard
func (s *ReportService) Stats(ctx context.Context) (*domain.Stats, error) {
	reports, err := s.reports.ListReports(ctx, domain.ReportFilter{})
	if err != nil {
		return nil, err
	}
	matches, err := s.matches.ListMatches(ctx, domain.MatchFilter{})
	if err != nil {
		return nil, err
	}

	stats := &domain.Stats{
		LostByStatus:      make(map[domain.ReportStatus]int),
		FoundByStatus:     make(map[domain.ReportStatus]int),
		ReportsByCategory: make(map[domain.Category]int),
		MatchesByStatus:   make(map[domain.MatchStatus]int),
		TotalMatches:      len(matches),
	}
	for _, r := range reports {
		stats.ReportsByCategory[r.Category]++
		if r.Kind == domain.KindLost {
			stats.TotalLost++
			stats.LostByStatus[r.Status]++
		} else {
			stats.TotalFound++
			stats.FoundByStatus[r.Status]++
		}
	}
	for _, m := range matches {
		stats.MatchesByStatus[m.Status]++
	}

	return stats, nil
}
