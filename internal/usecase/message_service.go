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

// MessageService lets the owner of a report and the person who spotted the
// item talk to each other. Each pair of users shares one conversation.
type MessageService struct {
	conversations domain.ConversationRepository
	reports       domain.ReportRepository
	logger        *zap.Logger
	now           func() time.Time
}

// NewMessageService creates a new message service with dependencies
func NewMessageService(
	conversations domain.ConversationRepository,
	reports domain.ReportRepository,
	logger *zap.Logger,
) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{
		conversations: conversations,
		reports:       reports,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// SendMessage delivers a message from req.UserID to req.ReceiverID, starting
// their conversation if this is the first message between them
func (s *MessageService) SendMessage(ctx context.Context, req *domain.SendMessageRequest) (*domain.SendMessageResult, error) {
	if req == nil {
		return nil, domain.ErrInvalidRequest
	}
	sender := strings.TrimSpace(req.UserID)
	if sender == "" {
		return nil, domain.ErrUnauthorized
	}
	receiver := strings.TrimSpace(req.ReceiverID)
	content := strings.TrimSpace(req.Content)
	if receiver == "" || content == "" {
		return nil, fmt.Errorf("%w: receiver and content are required", domain.ErrInvalidRequest)
	}
	if receiver == sender {
		return nil, fmt.Errorf("%w: cannot message yourself", domain.ErrInvalidRequest)
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = domain.MessageText
	}
	if !messageType.Valid() {
		return nil, fmt.Errorf("%w: unknown message type %q", domain.ErrInvalidRequest, messageType)
	}

	var lostID, foundID string
	if req.ReportID != "" {
		report, err := s.reports.GetReport(ctx, req.ReportID)
		if err != nil {
			return nil, err
		}
		if report.Kind == domain.KindLost {
			lostID = report.ID
		} else {
			foundID = report.ID
		}
	}

	now := s.now()
	user1, user2 := domain.OrderedPair(sender, receiver)
	conv, err := s.conversations.GetOrCreateConversation(ctx, &domain.Conversation{
		ID:            uuid.New().String(),
		User1ID:       user1,
		User2ID:       user2,
		LostReportID:  lostID,
		FoundReportID: foundID,
		LastMessageAt: now,
		CreatedAt:     now,
	})
	if err != nil {
		s.logger.Error("failed to open conversation", zap.Error(err))
		return nil, err
	}

	msg := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conv.ID,
		SenderID:       sender,
		ReceiverID:     receiver,
		Content:        content,
		MessageType:    messageType,
		LostReportID:   lostID,
		FoundReportID:  foundID,
		CreatedAt:      now,
	}
	if err := s.conversations.AddMessage(ctx, msg); err != nil {
		s.logger.Error("failed to store message", zap.String("conversation_id", conv.ID), zap.Error(err))
		return nil, err
	}

	metrics.MessagesSentTotal.WithLabelValues(string(messageType)).Inc()
	s.logger.Info("message sent",
		zap.String("conversation_id", conv.ID),
		zap.String("message_id", msg.ID))

	return &domain.SendMessageResult{ConversationID: conv.ID, Message: msg}, nil
}

// ListConversations returns the user's conversations, latest activity first
func (s *MessageService) ListConversations(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthorized
	}

	conversations, err := s.conversations.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ConversationSummary, len(conversations))
	for i, conv := range conversations {
		summaries[i] = domain.ConversationSummary{
			Conversation: conv,
			OtherUserID:  conv.OtherParticipant(userID),
		}
	}
	return summaries, nil
}

// GetMessages returns a conversation's messages, oldest first, and marks
// those addressed to userID as read. The returned messages show their state
// from before the call.
func (s *MessageService) GetMessages(ctx context.Context, conversationID, userID string) ([]domain.Message, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthorized
	}

	conv, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, fmt.Errorf("%w: not a participant in this conversation", domain.ErrForbidden)
	}

	messages, err := s.conversations.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	// Failing to mark messages read must not hide them
	if _, err := s.conversations.MarkMessagesRead(ctx, conversationID, userID); err != nil {
		s.logger.Warn("failed to mark messages read",
			zap.String("conversation_id", conversationID),
			zap.Error(err))
	}
	return messages, nil
}
