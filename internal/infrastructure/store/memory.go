package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lostfound/backend/internal/domain"
)

// MemoryStore is a thread-safe in-memory store for reports, matches and
// conversations. Data lives for the lifetime of the process.
type MemoryStore struct {
	reports       map[string]domain.Report
	reportOrder   []string
	matches       map[string]domain.Match
	matchOrder    []string
	conversations map[string]domain.Conversation
	pairs         map[[2]string]string // ordered user pair -> conversation id
	messages      map[string][]domain.Message
	mutex         sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reports:       make(map[string]domain.Report),
		matches:       make(map[string]domain.Match),
		conversations: make(map[string]domain.Conversation),
		pairs:         make(map[[2]string]string),
		messages:      make(map[string][]domain.Message),
	}
}

// CreateReport stores a copy of the report
func (s *MemoryStore) CreateReport(ctx context.Context, report *domain.Report) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.reports[report.ID]; !exists {
		s.reportOrder = append(s.reportOrder, report.ID)
	}
	s.reports[report.ID] = *report
	return nil
}

// GetReport retrieves a report by id
func (s *MemoryStore) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	report, exists := s.reports[id]
	if !exists {
		return nil, domain.ErrReportNotFound
	}
	return &report, nil
}

// ListReports returns the reports matching filter, newest first
func (s *MemoryStore) ListReports(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]domain.Report, 0, len(s.reportOrder))
	for i := len(s.reportOrder) - 1; i >= 0; i-- {
		report := s.reports[s.reportOrder[i]]
		if filter.Kind != "" && report.Kind != filter.Kind {
			continue
		}
		if filter.Category != "" && report.Category != filter.Category {
			continue
		}
		if filter.Status != "" && report.Status != filter.Status {
			continue
		}
		if filter.UserID != "" && report.UserID != filter.UserID {
			continue
		}
		result = append(result, report)
	}
	return result, nil
}

// UpdateReportStatus sets a report's status and bumps its update time
func (s *MemoryStore) UpdateReportStatus(ctx context.Context, id string, status domain.ReportStatus) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	report, exists := s.reports[id]
	if !exists {
		return domain.ErrReportNotFound
	}
	report.Status = status
	report.UpdatedAt = time.Now().UTC()
	s.reports[id] = report
	return nil
}

// CreateMatch stores a copy of the match
func (s *MemoryStore) CreateMatch(ctx context.Context, match *domain.Match) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.matches[match.ID]; !exists {
		s.matchOrder = append(s.matchOrder, match.ID)
	}
	s.matches[match.ID] = *match
	return nil
}

// GetMatch retrieves a match by id
func (s *MemoryStore) GetMatch(ctx context.Context, id string) (*domain.Match, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	match, exists := s.matches[id]
	if !exists {
		return nil, domain.ErrMatchNotFound
	}
	return &match, nil
}

// ListMatches returns matches newest first, limited to those whose lost or
// found report belongs to filter.UserID when it is set
func (s *MemoryStore) ListMatches(ctx context.Context, filter domain.MatchFilter) ([]domain.Match, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]domain.Match, 0, len(s.matchOrder))
	for i := len(s.matchOrder) - 1; i >= 0; i-- {
		match := s.matches[s.matchOrder[i]]
		if filter.UserID != "" && !s.ownedBy(match, filter.UserID) {
			continue
		}
		result = append(result, match)
	}
	return result, nil
}

// ownedBy must be called with the read lock held
func (s *MemoryStore) ownedBy(match domain.Match, userID string) bool {
	if lost, ok := s.reports[match.LostReportID]; ok && lost.UserID == userID {
		return true
	}
	if found, ok := s.reports[match.FoundReportID]; ok && found.UserID == userID {
		return true
	}
	return false
}

// ResolveMatch moves a pending match to status under a single lock, so the
// match and its two reports change together or not at all
func (s *MemoryStore) ResolveMatch(ctx context.Context, id string, status domain.MatchStatus) (*domain.Match, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	match, exists := s.matches[id]
	if !exists {
		return nil, domain.ErrMatchNotFound
	}
	if match.Status != domain.MatchPending {
		return nil, fmt.Errorf("%w: match is already %s", domain.ErrInvalidStatus, match.Status)
	}

	if status == domain.MatchConfirmed {
		lost, ok := s.reports[match.LostReportID]
		if !ok {
			return nil, fmt.Errorf("lost report %s: %w", match.LostReportID, domain.ErrReportNotFound)
		}
		found, ok := s.reports[match.FoundReportID]
		if !ok {
			return nil, fmt.Errorf("found report %s: %w", match.FoundReportID, domain.ErrReportNotFound)
		}

		now := time.Now().UTC()
		lost.Status, lost.UpdatedAt = domain.StatusFound, now
		found.Status, found.UpdatedAt = domain.StatusClaimed, now
		s.reports[lost.ID] = lost
		s.reports[found.ID] = found
	}

	match.Status = status
	s.matches[id] = match
	return &match, nil
}

// GetOrCreateConversation returns the pair's conversation, storing conv if
// there is none
func (s *MemoryStore) GetOrCreateConversation(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	user1, user2 := domain.OrderedPair(conv.User1ID, conv.User2ID)
	key := [2]string{user1, user2}
	if id, exists := s.pairs[key]; exists {
		existing := s.conversations[id]
		return &existing, nil
	}

	stored := *conv
	stored.User1ID, stored.User2ID = user1, user2
	s.conversations[stored.ID] = stored
	s.pairs[key] = stored.ID
	return &stored, nil
}

// GetConversation retrieves a conversation by id
func (s *MemoryStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	conv, exists := s.conversations[id]
	if !exists {
		return nil, domain.ErrConversationNotFound
	}
	return &conv, nil
}

// ListConversations returns the user's conversations, latest activity first
func (s *MemoryStore) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]domain.Conversation, 0)
	for _, conv := range s.conversations {
		if conv.HasParticipant(userID) {
			result = append(result, conv)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].LastMessageAt.Equal(result[j].LastMessageAt) {
			return result[i].LastMessageAt.After(result[j].LastMessageAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// AddMessage appends msg to its conversation and makes it the last message
func (s *MemoryStore) AddMessage(ctx context.Context, msg *domain.Message) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	conv, exists := s.conversations[msg.ConversationID]
	if !exists {
		return domain.ErrConversationNotFound
	}
	conv.LastMessage = msg.Content
	conv.LastMessageAt = msg.CreatedAt
	s.conversations[conv.ID] = conv
	s.messages[conv.ID] = append(s.messages[conv.ID], *msg)
	return nil
}

// ListMessages returns a conversation's messages, oldest first
func (s *MemoryStore) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stored := s.messages[conversationID]
	result := make([]domain.Message, len(stored))
	copy(result, stored)
	return result, nil
}

// MarkMessagesRead flags unread messages addressed to receiverID as read
func (s *MemoryStore) MarkMessagesRead(ctx context.Context, conversationID, receiverID string) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	marked := 0
	for i, msg := range s.messages[conversationID] {
		if msg.ReceiverID == receiverID && !msg.IsRead {
			s.messages[conversationID][i].IsRead = true
			marked++
		}
	}
	return marked, nil
}

// Size returns the number of stored reports and matches (for debugging/monitoring)
func (s *MemoryStore) Size() (reports, matches int) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.reports), len(s.matches)
}
