package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"github.com/lostfound/backend/internal/domain"
)

var conversationColumns = []string{
	"id", "user1_id", "user2_id", "lost_report_id", "found_report_id",
	"last_message", "last_message_at", "created_at",
}

var messageColumns = []string{
	"id", "conversation_id", "sender_id", "receiver_id", "content", "message_type",
	"lost_report_id", "found_report_id", "is_read", "created_at",
}

type conversationRow struct {
	ID            string `db:"id"`
	User1ID       string `db:"user1_id"`
	User2ID       string `db:"user2_id"`
	LostReportID  string `db:"lost_report_id"`
	FoundReportID string `db:"found_report_id"`
	LastMessage   string `db:"last_message"`
	LastMessageAt string `db:"last_message_at"`
	CreatedAt     string `db:"created_at"`
}

func (r conversationRow) toDomain() domain.Conversation {
	return domain.Conversation{
		ID:            r.ID,
		User1ID:       r.User1ID,
		User2ID:       r.User2ID,
		LostReportID:  r.LostReportID,
		FoundReportID: r.FoundReportID,
		LastMessage:   r.LastMessage,
		LastMessageAt: parseTime(r.LastMessageAt),
		CreatedAt:     parseTime(r.CreatedAt),
	}
}

type messageRow struct {
	ID             string `db:"id"`
	ConversationID string `db:"conversation_id"`
	SenderID       string `db:"sender_id"`
	ReceiverID     string `db:"receiver_id"`
	Content        string `db:"content"`
	MessageType    string `db:"message_type"`
	LostReportID   string `db:"lost_report_id"`
	FoundReportID  string `db:"found_report_id"`
	IsRead         int    `db:"is_read"`
	CreatedAt      string `db:"created_at"`
}

func (r messageRow) toDomain() domain.Message {
	return domain.Message{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		SenderID:       r.SenderID,
		ReceiverID:     r.ReceiverID,
		Content:        r.Content,
		MessageType:    domain.MessageType(r.MessageType),
		LostReportID:   r.LostReportID,
		FoundReportID:  r.FoundReportID,
		IsRead:         r.IsRead != 0,
		CreatedAt:      parseTime(r.CreatedAt),
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetOrCreateConversation returns the pair's conversation, inserting conv if
// there is none. The unique (user1_id, user2_id) index settles races.
func (s *SQLiteStore) GetOrCreateConversation(ctx context.Context, conv *domain.Conversation) (*domain.Conversation, error) {
	user1, user2 := domain.OrderedPair(conv.User1ID, conv.User2ID)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertIgnoreInto("conversations")
	ib.Cols(conversationColumns...)
	ib.Values(
		conv.ID, user1, user2, conv.LostReportID, conv.FoundReportID,
		conv.LastMessage, formatTime(conv.LastMessageAt), formatTime(conv.CreatedAt),
	)
	query, args := ib.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: insert conversation: %v", domain.ErrStoreUnavailable, err)
	}

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(conversationColumns...)
	sb.From("conversations")
	sb.Where(sb.Equal("user1_id", user1), sb.Equal("user2_id", user2))

	query, args = sb.Build()
	var row conversationRow
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		return nil, fmt.Errorf("%w: get conversation: %v", domain.ErrStoreUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	stored := row.toDomain()
	return &stored, nil
}

// GetConversation retrieves a conversation by id
func (s *SQLiteStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(conversationColumns...)
	sb.From("conversations")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var row conversationRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("%w: get conversation: %v", domain.ErrStoreUnavailable, err)
	}

	conv := row.toDomain()
	return &conv, nil
}

// ListConversations returns the user's conversations, latest activity first
func (s *SQLiteStore) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(conversationColumns...)
	sb.From("conversations")
	sb.Where(sb.Or(
		sb.Equal("user1_id", userID),
		sb.Equal("user2_id", userID),
	))
	sb.OrderBy("last_message_at DESC", "id")

	query, args := sb.Build()
	var rows []conversationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: list conversations: %v", domain.ErrStoreUnavailable, err)
	}

	conversations := make([]domain.Conversation, len(rows))
	for i, row := range rows {
		conversations[i] = row.toDomain()
	}
	return conversations, nil
}

// AddMessage inserts msg and updates the conversation's last message in one
// transaction
func (s *SQLiteStore) AddMessage(ctx context.Context, msg *domain.Message) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("conversations")
	ub.Set(
		ub.Assign("last_message", msg.Content),
		ub.Assign("last_message_at", formatTime(msg.CreatedAt)),
	)
	ub.Where(ub.Equal("id", msg.ConversationID))
	query, args := ub.Build()
	if err := execAffecting(ctx, tx, query, args, domain.ErrConversationNotFound); err != nil {
		return err
	}

	if err := insertMessage(ctx, tx, msg); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func insertMessage(ctx context.Context, exec sqlx.ExecerContext, msg *domain.Message) error {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto("messages")
	ib.Cols(messageColumns...)
	ib.Values(
		msg.ID, msg.ConversationID, msg.SenderID, msg.ReceiverID, msg.Content, string(msg.MessageType),
		msg.LostReportID, msg.FoundReportID, boolToInt(msg.IsRead), formatTime(msg.CreatedAt),
	)

	query, args := ib.Build()
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: insert message: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// ListMessages returns a conversation's messages, oldest first
func (s *SQLiteStore) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(messageColumns...)
	sb.From("messages")
	sb.Where(sb.Equal("conversation_id", conversationID))
	sb.OrderBy("created_at ASC", "rowid ASC")

	query, args := sb.Build()
	var rows []messageRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", domain.ErrStoreUnavailable, err)
	}

	messages := make([]domain.Message, len(rows))
	for i, row := range rows {
		messages[i] = row.toDomain()
	}
	return messages, nil
}

// MarkMessagesRead flags unread messages addressed to receiverID as read
func (s *SQLiteStore) MarkMessagesRead(ctx context.Context, conversationID, receiverID string) (int, error) {
	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update("messages")
	ub.Set(ub.Assign("is_read", 1))
	ub.Where(
		ub.Equal("conversation_id", conversationID),
		ub.Equal("receiver_id", receiverID),
		ub.Equal("is_read", 0),
	)

	query, args := ub.Build()
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: mark messages read: %v", domain.ErrStoreUnavailable, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return int(affected), nil
}
