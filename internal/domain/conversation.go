package domain

import "time"

// MessageType tells user-written messages from ones the system posts
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageSystem MessageType = "system"
)

// Valid reports whether t is a known message type
func (t MessageType) Valid() bool {
	return t == MessageText || t == MessageSystem
}

// Conversation is the single thread between two users. User1ID sorts before
// User2ID so a pair maps to one conversation whoever writes first.
type Conversation struct {
	ID            string    `json:"id"`
	User1ID       string    `json:"user1Id"`
	User2ID       string    `json:"user2Id"`
	LostReportID  string    `json:"reportId,omitempty"`
	FoundReportID string    `json:"foundReportId,omitempty"`
	LastMessage   string    `json:"lastMessage,omitempty"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

// OrderedPair returns a and b in the order Conversation stores them
func OrderedPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether userID is one of the two users
func (c Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.User1ID == userID || c.User2ID == userID)
}

// OtherParticipant returns the user on the other side from userID
func (c Conversation) OtherParticipant(userID string) string {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// ConversationSummary is a conversation as listed for one of its users
type ConversationSummary struct {
	Conversation
	OtherUserID string `json:"otherUserId"`
}

// Message is one entry in a conversation
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversationId"`
	SenderID       string      `json:"senderId"`
	ReceiverID     string      `json:"receiverId"`
	Content        string      `json:"content"`
	MessageType    MessageType `json:"messageType"`
	LostReportID   string      `json:"reportId,omitempty"`
	FoundReportID  string      `json:"foundReportId,omitempty"`
	IsRead         bool        `json:"isRead"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// SendMessageRequest is the input for sending a message. ReportID may name a
// lost or a found report the message is about.
type SendMessageRequest struct {
	UserID      string      `json:"userId"`
	ReceiverID  string      `json:"receiverId" binding:"required"`
	ReportID    string      `json:"reportId,omitempty"`
	Content     string      `json:"content" binding:"required"`
	MessageType MessageType `json:"messageType,omitempty" binding:"omitempty,oneof=text system"`
}

// SendMessageResult is what SendMessage returns
type SendMessageResult struct {
	ConversationID string   `json:"conversationId"`
	Message        *Message `json:"message"`
}
