package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/lostfound/backend/internal/domain"
)

// Fixed-width UTC layout so stored timestamps sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var reportColumns = []string{
	"id", "kind", "user_id", "title", "description", "distinctive_features",
	"category", "subcategory", "color", "size", "brand", "location",
	"date_reported", "contact_info", "reward", "status", "created_at", "updated_at",
}

var matchColumns = []string{
	"id", "lost_report_id", "found_report_id", "similarity_score",
	"match_type", "status", "created_at",
}

type reportRow struct {
	ID                  string  `db:"id"`
	Kind                string  `db:"kind"`
	UserID              string  `db:"user_id"`
	Title               string  `db:"title"`
	Description         string  `db:"description"`
	DistinctiveFeatures string  `db:"distinctive_features"`
	Category            string  `db:"category"`
	Subcategory         string  `db:"subcategory"`
	Color               string  `db:"color"`
	Size                string  `db:"size"`
	Brand               string  `db:"brand"`
	Location            string  `db:"location"`
	DateReported        string  `db:"date_reported"`
	ContactInfo         string  `db:"contact_info"`
	Reward              float64 `db:"reward"`
	Status              string  `db:"status"`
	CreatedAt           string  `db:"created_at"`
	UpdatedAt           string  `db:"updated_at"`
}

func (r reportRow) toDomain() domain.Report {
	return domain.Report{
		ID:                  r.ID,
		Kind:                domain.ReportKind(r.Kind),
		UserID:              r.UserID,
		Title:               r.Title,
		Description:         r.Description,
		DistinctiveFeatures: r.DistinctiveFeatures,
		Category:            domain.Category(r.Category),
		Subcategory:         r.Subcategory,
		Color:               r.Color,
		Size:                r.Size,
		Brand:               r.Brand,
		Location:            r.Location,
		DateReported:        r.DateReported,
		ContactInfo:         r.ContactInfo,
		Reward:              r.Reward,
		Status:              domain.ReportStatus(r.Status),
		CreatedAt:           parseTime(r.CreatedAt),
		UpdatedAt:           parseTime(r.UpdatedAt),
	}
}

type matchRow struct {
	ID              string  `db:"id"`
	LostReportID    string  `db:"lost_report_id"`
	FoundReportID   string  `db:"found_report_id"`
	SimilarityScore float64 `db:"similarity_score"`
	MatchType       string  `db:"match_type"`
	Status          string  `db:"status"`
	CreatedAt       string  `db:"created_at"`
}

func (r matchRow) toDomain() domain.Match {
	return domain.Match{
		ID:              r.ID,
		LostReportID:    r.LostReportID,
		FoundReportID:   r.FoundReportID,
		SimilarityScore: r.SimilarityScore,
		MatchType:       domain.MatchType(r.MatchType),
		Status:          domain.MatchStatus(r.Status),
		CreatedAt:       parseTime(r.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SQLiteStore persists reports, matches and conversations in a sqlite database
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLite opens (creating if needed) and migrates the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// migrations[i] upgrades a database at user_version i to i+1
var migrations = [][]string{
	{`
CREATE TABLE IF NOT EXISTS reports (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  user_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  distinctive_features TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL,
  subcategory TEXT NOT NULL DEFAULT '',
  color TEXT NOT NULL DEFAULT '',
  size TEXT NOT NULL DEFAULT '',
  brand TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  date_reported TEXT NOT NULL DEFAULT '',
  contact_info TEXT NOT NULL DEFAULT '',
  reward REAL NOT NULL DEFAULT 0,
  status TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_lookup ON reports(kind, category, status);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_user ON reports(user_id);`,
		`
CREATE TABLE IF NOT EXISTS matches (
  id TEXT PRIMARY KEY,
  lost_report_id TEXT NOT NULL REFERENCES reports(id),
  found_report_id TEXT NOT NULL REFERENCES reports(id),
  similarity_score REAL NOT NULL DEFAULT 0,
  match_type TEXT NOT NULL,
  status TEXT NOT NULL,
  created_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_lost ON matches(lost_report_id);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_found ON matches(found_report_id);`,
	},
	{`
CREATE TABLE IF NOT EXISTS conversations (
  id TEXT PRIMARY KEY,
  user1_id TEXT NOT NULL,
  user2_id TEXT NOT NULL,
  lost_report_id TEXT NOT NULL DEFAULT '',
  found_report_id TEXT NOT NULL DEFAULT '',
  last_message TEXT NOT NULL DEFAULT '',
  last_message_at TEXT NOT NULL,
  created_at TEXT NOT NULL,
  UNIQUE (user1_id, user2_id)
);`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_user2 ON conversations(user2_id);`,
		`
CREATE TABLE IF NOT EXISTS messages (
  id TEXT PRIMARY KEY,
  conversation_id TEXT NOT NULL REFERENCES conversations(id),
  sender_id TEXT NOT NULL,
  receiver_id TEXT NOT NULL,
  content TEXT NOT NULL,
  message_type TEXT NOT NULL,
  lost_report_id TEXT NOT NULL DEFAULT '',
  found_report_id TEXT NOT NULL DEFAULT '',
  is_read INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);`,
	},
}

func migrate(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var version int
	if err := tx.GetContext(ctx, &version, `PRAGMA user_version;`); err != nil {
		return err
	}

	for ; version < len(migrations); version++ {
		for _, stmt := range migrations[version] {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("version %d: %w", version+1, err)
			}
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, version+1)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CreateReport inserts a report
func (s *SQLiteStore) CreateReport(ctx context.Context, report *domain.Report) error {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("reports")
	ib.Cols(reportColumns...)
	ib.Values(
		report.ID, string(report.Kind), report.UserID, report.Title, report.Description, report.DistinctiveFeatures,
		string(report.Category), report.Subcategory, report.Color, report.Size, report.Brand, report.Location,
		report.DateReported, report.ContactInfo, report.Reward, string(report.Status),
		formatTime(report.CreatedAt), formatTime(report.UpdatedAt),
	)

	query, args := ib.Build()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insert report: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// GetReport retrieves a report by id
func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(reportColumns...)
	sb.From("reports")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var row reportRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReportNotFound
		}
		return nil, fmt.Errorf("%w: get report: %v", domain.ErrStoreUnavailable, err)
	}

	report := row.toDomain()
	return &report, nil
}

// ListReports returns the reports matching filter, newest first
func (s *SQLiteStore) ListReports(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(reportColumns...)
	sb.From("reports")
	if filter.Kind != "" {
		sb.Where(sb.Equal("kind", string(filter.Kind)))
	}
	if filter.Category != "" {
		sb.Where(sb.Equal("category", string(filter.Category)))
	}
	if filter.Status != "" {
		sb.Where(sb.Equal("status", string(filter.Status)))
	}
	if filter.UserID != "" {
		sb.Where(sb.Equal("user_id", filter.UserID))
	}
	sb.OrderBy("created_at DESC", "rowid DESC")

	query, args := sb.Build()
	var rows []reportRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: list reports: %v", domain.ErrStoreUnavailable, err)
	}

	reports := make([]domain.Report, len(rows))
	for i, row := range rows {
		reports[i] = row.toDomain()
	}
	return reports, nil
}

// UpdateReportStatus sets a report's status and bumps its update time
func (s *SQLiteStore) UpdateReportStatus(ctx context.Context, id string, status domain.ReportStatus) error {
	return updateReportStatus(ctx, s.db, id, status)
}

func updateReportStatus(ctx context.Context, exec sqlx.ExecerContext, id string, status domain.ReportStatus) error {
	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("reports")
	ub.Set(
		ub.Assign("status", string(status)),
		ub.Assign("updated_at", formatTime(time.Now())),
	)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	return execAffecting(ctx, exec, query, args, domain.ErrReportNotFound)
}

// CreateMatch inserts a match
func (s *SQLiteStore) CreateMatch(ctx context.Context, match *domain.Match) error {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("matches")
	ib.Cols(matchColumns...)
	ib.Values(
		match.ID, match.LostReportID, match.FoundReportID, match.SimilarityScore,
		string(match.MatchType), string(match.Status), formatTime(match.CreatedAt),
	)

	query, args := ib.Build()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insert match: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// GetMatch retrieves a match by id
func (s *SQLiteStore) GetMatch(ctx context.Context, id string) (*domain.Match, error) {
	return getMatch(ctx, s.db, id)
}

func getMatch(ctx context.Context, q sqlx.QueryerContext, id string) (*domain.Match, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(matchColumns...)
	sb.From("matches")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var row matchRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, fmt.Errorf("%w: get match: %v", domain.ErrStoreUnavailable, err)
	}

	match := row.toDomain()
	return &match, nil
}

// ListMatches returns matches newest first, limited to those whose lost or
// found report belongs to filter.UserID when it is set
func (s *SQLiteStore) ListMatches(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(matchColumns...)
	sb.From("matches")
	if filter.UserID != "" {
		owned := sqlbuilder.SQLite.NewSelectBuilder()
		owned.Select("id")
		owned.From("reports")
		owned.Where(owned.Equal("user_id", filter.UserID))
		sb.Where(sb.Or(
			sb.In("lost_report_id", owned),
			sb.In("found_report_id", owned),
		))
	}
	sb.OrderBy("created_at DESC", "rowid DESC")

	query, args := sb.Build()
	var rows []matchRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: list matches: %v", domain.ErrStoreUnavailable, err)
	}

	matches := make([]domain.Match, len(rows))
	for i, row := range rows {
		matches[i] = row.toDomain()
	}
	return matches, nil
}

// ResolveMatch moves a pending match to status in one transaction, together
// with the report status changes a confirmation implies
func (s *SQLiteStore) ResolveMatch(ctx context.Context, id string, status domain.MatchStatus) (*domain.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	match, err := getMatch(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if match.Status != domain.MatchPending {
		return nil, fmt.Errorf("%w: match is already %s", domain.ErrInvalidStatus, match.Status)
	}

	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("matches")
	ub.Set(ub.Assign("status", string(status)))
	ub.Where(ub.Equal("id", id), ub.Equal("status", string(domain.MatchPending)))

	query, args := ub.Build()
	if err := execAffecting(ctx, tx, query, args, domain.ErrMatchNotFound); err != nil {
		return nil, err
	}

	if status == domain.MatchConfirmed {
		if err := updateReportStatus(ctx, tx, match.LostReportID, domain.StatusFound); err != nil {
			return nil, fmt.Errorf("lost report %s: %w", match.LostReportID, err)
		}
		if err := updateReportStatus(ctx, tx, match.FoundReportID, domain.StatusClaimed); err != nil {
			return nil, fmt.Errorf("found report %s: %w", match.FoundReportID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	match.Status = status
	return match, nil
}

// execAffecting runs an update and returns notFound when no row changed
func execAffecting(ctx context.Context, exec sqlx.ExecerContext, query string, args []interface{}, notFound error) error {
	result, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
