package domain

import "context"

// ReportRepository persists lost and found reports
type ReportRepository interface {
	CreateReport(ctx context.Context, report *Report) error
	GetReport(ctx context.Context, id string) (*Report, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]Report, error)
	UpdateReportStatus(ctx context.Context, id string, status ReportStatus) error
}

// MatchRepository persists matches between reports
type MatchRepository interface {
	CreateMatch(ctx context.Context, match *Match) error
	GetMatch(ctx context.Context, id string) (*Match, error)
	ListMatches(ctx context.Context, filter MatchFilter) ([]Match, error)
	// ResolveMatch moves a pending match to status. Confirming also marks
	// the lost report found and the found report claimed, all in one write.
	// A match that is no longer pending yields ErrInvalidStatus.
	ResolveMatch(ctx context.Context, id string, status MatchStatus) (*Match, error)
}

// ConversationRepository persists conversations between two users and the
// messages sent in them
type ConversationRepository interface {
	// GetOrCreateConversation returns the conversation between the two users
	// of conv, storing conv when the pair has none yet
	GetOrCreateConversation(ctx context.Context, conv *Conversation) (*Conversation, error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	// ListConversations returns the user's conversations, latest activity first
	ListConversations(ctx context.Context, userID string) ([]Conversation, error)
	// AddMessage stores msg and makes it the conversation's last message
	AddMessage(ctx context.Context, msg *Message) error
	// ListMessages returns a conversation's messages, oldest first
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)
	// MarkMessagesRead flags the messages addressed to receiverID as read and
	// returns how many changed
	MarkMessagesRead(ctx context.Context, conversationID, receiverID string) (int, error)
}
