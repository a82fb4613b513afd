package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lostfound/backend/internal/domain"
	"github.com/lostfound/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	reports  *usecase.ReportService
	matching *usecase.MatchingService
	messages *usecase.MessageService
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler. Routes whose service is nil answer 503.
func NewHandler(
	reports *usecase.ReportService,
	matching *usecase.MatchingService,
	messages *usecase.MessageService,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		reports:  reports,
		matching: matching,
		messages: messages,
		logger:   logger,
	}
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type similarityRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

type similarityResponse struct {
	Score     float64  `json:"score"`
	KeywordsA []string `json:"keywordsA"`
	KeywordsB []string `json:"keywordsB"`
}

type rankRequest struct {
	Query      domain.Item   `json:"query"`
	Candidates []domain.Item `json:"candidates"`
	Threshold  *float64      `json:"threshold" binding:"omitempty,gte=0,lte=100"`
}

type matchesResponse struct {
	Matches   []domain.MatchCandidate `json:"matches"`
	Count     int                     `json:"count"`
	Threshold float64                 `json:"threshold"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "lostfound-backend",
		"version": "1.0.0",
	})
}

// CreateReport files a lost or found report depending on the route
func (h *Handler) CreateReport(kind domain.ReportKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.reportsConfigured(c) {
			return
		}

		var req domain.CreateReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		req.Kind = kind

		report, err := h.reports.CreateReport(c.Request.Context(), &req)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, report)
	}
}

// ListReports lists reports of one kind, filtered by query parameters
func (h *Handler) ListReports(kind domain.ReportKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.reportsConfigured(c) {
			return
		}

		filter := domain.ReportFilter{
			Kind:     kind,
			Category: domain.Category(c.Query("category")),
			Status:   domain.ReportStatus(c.Query("status")),
			UserID:   c.Query("userId"),
		}

		reports, err := h.reports.ListReports(c.Request.Context(), filter)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
	}
}

// GetReport fetches one report of the route's kind
func (h *Handler) GetReport(kind domain.ReportKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.reportsConfigured(c) {
			return
		}

		report, err := h.reports.GetReportOfKind(c.Request.Context(), c.Param("id"), kind)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// UpdateReportStatus changes the status of a report of the route's kind
func (h *Handler) UpdateReportStatus(kind domain.ReportKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.reportsConfigured(c) {
			return
		}

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		ctx := c.Request.Context()
		id := c.Param("id")
		if _, err := h.reports.GetReportOfKind(ctx, id, kind); err != nil {
			h.respondError(c, err)
			return
		}

		report, err := h.reports.UpdateReportStatus(ctx, id, domain.ReportStatus(req.Status))
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// FindMatches ranks open reports of the opposite kind against a report
func (h *Handler) FindMatches(kind domain.ReportKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.reportsConfigured(c) {
			return
		}

		threshold, ok := parseThreshold(c)
		if !ok {
			return
		}

		ctx := c.Request.Context()
		id := c.Param("id")
		if _, err := h.reports.GetReportOfKind(ctx, id, kind); err != nil {
			h.respondError(c, err)
			return
		}

		matches, err := h.reports.FindMatches(ctx, id, threshold)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, matchesResponse{
			Matches:   matches,
			Count:     len(matches),
			Threshold: h.matching.EffectiveThreshold(threshold),
		})
	}
}

// CreateMatch records a match between a lost and a found report
func (h *Handler) CreateMatch(c *gin.Context) {
	if !h.reportsConfigured(c) {
		return
	}

	var req domain.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	match, err := h.reports.CreateMatch(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

// ListMatches lists matches, optionally only those touching a user's reports
func (h *Handler) ListMatches(c *gin.Context) {
	if !h.reportsConfigured(c) {
		return
	}

	matches, err := h.reports.ListMatches(c.Request.Context(), c.Query("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// UpdateMatchStatus confirms or rejects a match
func (h *Handler) UpdateMatchStatus(c *gin.Context) {
	if !h.reportsConfigured(c) {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	match, err := h.reports.UpdateMatchStatus(c.Request.Context(), c.Param("id"), domain.MatchStatus(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// Similarity scores how much of text a is covered by text b
func (h *Handler) Similarity(c *gin.Context) {
	var req similarityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, similarityResponse{
		Score:     usecase.Similarity(req.A, req.B),
		KeywordsA: usecase.ExtractKeywords(req.A),
		KeywordsB: usecase.ExtractKeywords(req.B),
	})
}

// Rank ranks ad-hoc candidates against a query item
func (h *Handler) Rank(c *gin.Context) {
	if h.matching == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "matching service not configured"})
		return
	}

	var req rankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	matches, err := h.matching.Rank(c.Request.Context(), req.Query, req.Candidates, req.Threshold)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matchesResponse{
		Matches:   matches,
		Count:     len(matches),
		Threshold: h.matching.EffectiveThreshold(req.Threshold),
	})
}

// Stats returns dashboard counts
func (h *Handler) Stats(c *gin.Context) {
	if !h.reportsConfigured(c) {
		return
	}

	stats, err := h.reports.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// SendMessage sends a message, starting the pair's conversation if needed
func (h *Handler) SendMessage(c *gin.Context) {
	if !h.messagesConfigured(c) {
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	result, err := h.messages.SendMessage(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListConversations lists the conversations of the userId query parameter
func (h *Handler) ListConversations(c *gin.Context) {
	if !h.messagesConfigured(c) {
		return
	}

	conversations, err := h.messages.ListConversations(c.Request.Context(), c.Query("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations, "count": len(conversations)})
}

// GetMessages lists a conversation's messages for one of its participants
func (h *Handler) GetMessages(c *gin.Context) {
	if !h.messagesConfigured(c) {
		return
	}

	messages, err := h.messages.GetMessages(c.Request.Context(), c.Param("id"), c.Query("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
}

func (h *Handler) messagesConfigured(c *gin.Context) bool {
	if h.messages == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "message service not configured"})
		return false
	}
	return true
}

func (h *Handler) reportsConfigured(c *gin.Context) bool {
	if h.reports == nil || h.matching == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report service not configured"})
		return false
	}
	return true
}

// parseThreshold reads the optional threshold query parameter. An absent
// parameter yields nil; one that is not a number in [0, 100] answers 400.
func parseThreshold(c *gin.Context) (*float64, bool) {
	raw, present := c.GetQuery("threshold")
	if !present || raw == "" {
		return nil, true
	}
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil || threshold < 0 || threshold > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be a number between 0 and 100"})
		return nil, false
	}
	return &threshold, true
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrKindMismatch),
		errors.Is(err, domain.ErrInvalidStatus):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrReportNotFound),
		errors.Is(err, domain.ErrMatchNotFound),
		errors.Is(err, domain.ErrConversationNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
