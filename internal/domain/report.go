package domain

import "time"

// ReportKind distinguishes lost reports from found reports
type ReportKind string

const (
	KindLost  ReportKind = "lost"
	KindFound ReportKind = "found"
)

// Valid reports whether k is lost or found
func (k ReportKind) Valid() bool {
	return k == KindLost || k == KindFound
}

// Opposite returns the kind a report of kind k is matched against
func (k ReportKind) Opposite() ReportKind {
	if k == KindLost {
		return KindFound
	}
	return KindLost
}

// OpenStatus is the status a fresh report of kind k starts in and the one
// candidates must be in to be offered as matches
func (k ReportKind) OpenStatus() ReportStatus {
	if k == KindLost {
		return StatusActive
	}
	return StatusAvailable
}

// ReportStatus is the lifecycle state of a report
type ReportStatus string

const (
	// Lost report statuses
	StatusActive    ReportStatus = "active"
	StatusFound     ReportStatus = "found"
	StatusCancelled ReportStatus = "cancelled"

	// Found report statuses
	StatusAvailable ReportStatus = "available"
	StatusClaimed   ReportStatus = "claimed"
	StatusReturned  ReportStatus = "returned"
)

// ValidFor reports whether s is a legal status for a report of kind k
func (s ReportStatus) ValidFor(k ReportKind) bool {
	switch k {
	case KindLost:
		return s == StatusActive || s == StatusFound || s == StatusCancelled
	case KindFound:
		return s == StatusAvailable || s == StatusClaimed || s == StatusReturned
	}
	return false
}

// Report is a persisted lost or found report
type Report struct {
	ID                  string       `json:"id"`
	Kind                ReportKind   `json:"kind"`
	UserID              string       `json:"userId"`
	Title               string       `json:"title"`
	Description         string       `json:"description"`
	DistinctiveFeatures string       `json:"distinctiveFeatures,omitempty"`
	Category            Category     `json:"category"`
	Subcategory         string       `json:"subcategory"`
	Color               string       `json:"color,omitempty"`
	Size                string       `json:"size,omitempty"`
	Brand               string       `json:"brand,omitempty"`
	Location            string       `json:"location"`
	DateReported        string       `json:"dateReported"`
	ContactInfo         string       `json:"contactInfo"`
	Reward              float64      `json:"reward,omitempty"`
	Status              ReportStatus `json:"status"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// Item projects the report onto the attribute shape used for scoring
func (r *Report) Item() Item {
	return Item{
		ID:                  r.ID,
		Description:         r.Description,
		DistinctiveFeatures: r.DistinctiveFeatures,
		Category:            r.Category,
		Subcategory:         r.Subcategory,
		Color:               r.Color,
		Brand:               r.Brand,
		Location:            r.Location,
	}
}

// CreateReportRequest is the input for filing a new report
type CreateReportRequest struct {
	Kind                ReportKind `json:"kind" binding:"omitempty,reportkind"`
	UserID              string     `json:"userId"`
	Title               string     `json:"title" binding:"required"`
	Description         string     `json:"description" binding:"required"`
	DistinctiveFeatures string     `json:"distinctiveFeatures,omitempty"`
	Category            Category   `json:"category,omitempty" binding:"omitempty,category"`
	Subcategory         string     `json:"subcategory,omitempty"`
	Color               string     `json:"color,omitempty"`
	Size                string     `json:"size,omitempty"`
	Brand               string     `json:"brand,omitempty"`
	Location            string     `json:"location"`
	DateReported        string     `json:"dateReported"`
	ContactInfo         string     `json:"contactInfo"`
	Reward              float64    `json:"reward,omitempty" binding:"gte=0"`
}

// ReportFilter narrows a report listing. Zero fields are ignored.
type ReportFilter struct {
	Kind     ReportKind
	Category Category
	Status   ReportStatus
	UserID   string
}

// Stats holds dashboard counts
type Stats struct {
	LostByStatus      map[ReportStatus]int `json:"lostByStatus"`
	FoundByStatus     map[ReportStatus]int `json:"foundByStatus"`
	ReportsByCategory map[Category]int     `json:"reportsByCategory"`
	MatchesByStatus   map[MatchStatus]int  `json:"matchesByStatus"`
	TotalLost         int                  `json:"totalLost"`
	TotalFound        int                  `json:"totalFound"`
	TotalMatches      int                  `json:"totalMatches"`
}
