package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lostfound/backend/internal/domain"
)

// repository is what both stores implement
type repository interface {
	domain.ReportRepository
	domain.MatchRepository
	domain.ConversationRepository
}

var baseTime = time.Date(2020, 3, 14, 9, 30, 0, 0, time.UTC)

func newReport(id string, kind domain.ReportKind, userID string, category domain.Category, offset time.Duration) *domain.Report {
	created := baseTime.Add(offset)
	return &domain.Report{
		ID:          id,
		Kind:        kind,
		UserID:      userID,
		Title:       "Report " + id,
		Description: "black leather wallet",
		Category:    category,
		Subcategory: "Bags/Wallets",
		Color:       "black",
		Location:    "Central Park",
		ContactInfo: "555-0100",
		Status:      kind.OpenStatus(),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func testRepository(t *testing.T, newRepo func(t *testing.T) repository) {
	ctx := context.Background()

	t.Run("create and get report", func(t *testing.T) {
		repo := newRepo(t)
		report := newReport("r1", domain.KindLost, "u1", domain.CategoryItem, 0)
		report.Reward = 25
		report.DistinctiveFeatures = "initials JD stitched inside"

		require.NoError(t, repo.CreateReport(ctx, report))

		got, err := repo.GetReport(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, report.Title, got.Title)
		assert.Equal(t, domain.KindLost, got.Kind)
		assert.Equal(t, domain.StatusActive, got.Status)
		assert.Equal(t, 25.0, got.Reward)
		assert.Equal(t, "initials JD stitched inside", got.DistinctiveFeatures)
		assert.True(t, report.CreatedAt.Equal(got.CreatedAt), "CreatedAt = %v, want %v", got.CreatedAt, report.CreatedAt)
	})

	t.Run("get missing report", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetReport(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrReportNotFound)
	})

	t.Run("list filters and orders newest first", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateReport(ctx, newReport("lost-old", domain.KindLost, "u1", domain.CategoryItem, 0)))
		require.NoError(t, repo.CreateReport(ctx, newReport("found-1", domain.KindFound, "u2", domain.CategoryItem, time.Minute)))
		require.NoError(t, repo.CreateReport(ctx, newReport("lost-pet", domain.KindLost, "u1", domain.CategoryPet, 2*time.Minute)))
		require.NoError(t, repo.CreateReport(ctx, newReport("lost-new", domain.KindLost, "u3", domain.CategoryItem, 3*time.Minute)))

		all, err := repo.ListReports(ctx, domain.ReportFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"lost-new", "lost-pet", "found-1", "lost-old"}, reportIDs(all))

		lostItems, err := repo.ListReports(ctx, domain.ReportFilter{Kind: domain.KindLost, Category: domain.CategoryItem})
		require.NoError(t, err)
		assert.Equal(t, []string{"lost-new", "lost-old"}, reportIDs(lostItems))

		byUser, err := repo.ListReports(ctx, domain.ReportFilter{UserID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"lost-pet", "lost-old"}, reportIDs(byUser))

		available, err := repo.ListReports(ctx, domain.ReportFilter{Status: domain.StatusAvailable})
		require.NoError(t, err)
		assert.Equal(t, []string{"found-1"}, reportIDs(available))
	})

	t.Run("list on empty store", func(t *testing.T) {
		repo := newRepo(t)
		reports, err := repo.ListReports(ctx, domain.ReportFilter{})
		require.NoError(t, err)
		assert.Empty(t, reports)
	})

	t.Run("update report status", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateReport(ctx, newReport("r1", domain.KindLost, "u1", domain.CategoryItem, 0)))

		require.NoError(t, repo.UpdateReportStatus(ctx, "r1", domain.StatusFound))

		got, err := repo.GetReport(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFound, got.Status)
		assert.True(t, got.UpdatedAt.After(got.CreatedAt))

		assert.ErrorIs(t, repo.UpdateReportStatus(ctx, "missing", domain.StatusFound), domain.ErrReportNotFound)
	})

	t.Run("matches round trip and filter by user", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateReport(ctx, newReport("lost-1", domain.KindLost, "alice", domain.CategoryItem, 0)))
		require.NoError(t, repo.CreateReport(ctx, newReport("found-1", domain.KindFound, "bob", domain.CategoryItem, 0)))
		require.NoError(t, repo.CreateReport(ctx, newReport("lost-2", domain.KindLost, "carol", domain.CategoryItem, 0)))
		require.NoError(t, repo.CreateReport(ctx, newReport("found-2", domain.KindFound, "dave", domain.CategoryItem, 0)))

		m1 := &domain.Match{ID: "m1", LostReportID: "lost-1", FoundReportID: "found-1", SimilarityScore: 87.5,
			MatchType: domain.MatchTypeUserReported, Status: domain.MatchPending, CreatedAt: baseTime}
		m2 := &domain.Match{ID: "m2", LostReportID: "lost-2", FoundReportID: "found-2", SimilarityScore: 42,
			MatchType: domain.MatchTypeAIDescription, Status: domain.MatchPending, CreatedAt: baseTime.Add(time.Minute)}
		require.NoError(t, repo.CreateMatch(ctx, m1))
		require.NoError(t, repo.CreateMatch(ctx, m2))

		got, err := repo.GetMatch(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, 87.5, got.SimilarityScore)
		assert.Equal(t, domain.MatchTypeUserReported, got.MatchType)

		all, err := repo.ListMatches(ctx, domain.MatchFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"m2", "m1"}, matchIDs(all))

		forBob, err := repo.ListMatches(ctx, domain.MatchFilter{UserID: "bob"})
		require.NoError(t, err)
		assert.Equal(t, []string{"m1"}, matchIDs(forBob))

		forCarol, err := repo.ListMatches(ctx, domain.MatchFilter{UserID: "carol"})
		require.NoError(t, err)
		assert.Equal(t, []string{"m2"}, matchIDs(forCarol))

		forNobody, err := repo.ListMatches(ctx, domain.MatchFilter{UserID: "zed"})
		require.NoError(t, err)
		assert.Empty(t, forNobody)
	})

	t.Run("resolve match", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateReport(ctx, newReport("lost-1", domain.KindLost, "alice", domain.CategoryItem, 0)))
		require.NoError(t, repo.CreateReport(ctx, newReport("found-1", domain.KindFound, "bob", domain.CategoryItem, 0)))
		require.NoError(t, repo.CreateMatch(ctx, &domain.Match{ID: "m1", LostReportID: "lost-1", FoundReportID: "found-1",
			MatchType: domain.MatchTypeUserReported, Status: domain.MatchPending, CreatedAt: baseTime}))

		resolved, err := repo.ResolveMatch(ctx, "m1", domain.MatchConfirmed)
		require.NoError(t, err)
		assert.Equal(t, domain.MatchConfirmed, resolved.Status)
		assert.Equal(t, "lost-1", resolved.LostReportID)

		got, err := repo.GetMatch(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, domain.MatchConfirmed, got.Status)

		lost, err := repo.GetReport(ctx, "lost-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFound, lost.Status)
		found, err := repo.GetReport(ctx, "found-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusClaimed, found.Status)

		_, err = repo.ResolveMatch(ctx, "m1", domain.MatchRejected)
		assert.ErrorIs(t, err, domain.ErrInvalidStatus, "a resolved match stays resolved")
		got, err = repo.GetMatch(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, domain.MatchConfirmed, got.Status)

		_, err = repo.ResolveMatch(ctx, "missing", domain.MatchRejected)
		assert.ErrorIs(t, err, domain.ErrMatchNotFound)
		_, err = repo.GetMatch(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrMatchNotFound)
	})

	t.Run("rejecting a match leaves reports open", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.CreateReport(ctx, newReport("lost-1", domain.KindLost, "alice", domain.CategoryItem, 0)))
		require.NoError(t, repo.CreateReport(ctx, newReport("found-1", domain.KindFound, "bob", domain.CategoryItem, 0)))
		require.NoError(t, repo.CreateMatch(ctx, &domain.Match{ID: "m1", LostReportID: "lost-1", FoundReportID: "found-1",
			MatchType: domain.MatchTypeUserReported, Status: domain.MatchPending, CreatedAt: baseTime}))

		resolved, err := repo.ResolveMatch(ctx, "m1", domain.MatchRejected)
		require.NoError(t, err)
		assert.Equal(t, domain.MatchRejected, resolved.Status)

		lost, err := repo.GetReport(ctx, "lost-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, lost.Status)

		_, err = repo.ResolveMatch(ctx, "m1", domain.MatchConfirmed)
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
		lost, err = repo.GetReport(ctx, "lost-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, lost.Status)
	})

	t.Run("conversation per user pair", func(t *testing.T) {
		repo := newRepo(t)

		first, err := repo.GetOrCreateConversation(ctx, newConversation("c1", "bob", "alice", 0))
		require.NoError(t, err)
		assert.Equal(t, "c1", first.ID)
		assert.Equal(t, "alice", first.User1ID)
		assert.Equal(t, "bob", first.User2ID)

		again, err := repo.GetOrCreateConversation(ctx, newConversation("c2", "alice", "bob", time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "c1", again.ID, "the pair reuses its conversation in either order")

		got, err := repo.GetConversation(ctx, "c1")
		require.NoError(t, err)
		assert.True(t, got.HasParticipant("bob"))

		_, err = repo.GetConversation(ctx, "c2")
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)
	})

	t.Run("messages and conversation ordering", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetOrCreateConversation(ctx, newConversation("c1", "alice", "bob", 0))
		require.NoError(t, err)
		_, err = repo.GetOrCreateConversation(ctx, newConversation("c2", "alice", "carol", time.Minute))
		require.NoError(t, err)

		require.NoError(t, repo.AddMessage(ctx, newMessage("m1", "c2", "alice", "carol", "is it yours?", 2*time.Minute)))
		require.NoError(t, repo.AddMessage(ctx, newMessage("m2", "c1", "bob", "alice", "found your wallet", 3*time.Minute)))
		require.NoError(t, repo.AddMessage(ctx, newMessage("m3", "c1", "alice", "bob", "thank you!", 4*time.Minute)))

		err = repo.AddMessage(ctx, newMessage("m4", "missing", "alice", "bob", "hello", 5*time.Minute))
		assert.ErrorIs(t, err, domain.ErrConversationNotFound)

		forAlice, err := repo.ListConversations(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, forAlice, 2)
		assert.Equal(t, "c1", forAlice[0].ID)
		assert.Equal(t, "thank you!", forAlice[0].LastMessage)
		assert.True(t, baseTime.Add(4*time.Minute).Equal(forAlice[0].LastMessageAt))
		assert.Equal(t, "c2", forAlice[1].ID)

		forCarol, err := repo.ListConversations(ctx, "carol")
		require.NoError(t, err)
		require.Len(t, forCarol, 1)
		assert.Equal(t, "c2", forCarol[0].ID)

		forNobody, err := repo.ListConversations(ctx, "zed")
		require.NoError(t, err)
		assert.Empty(t, forNobody)

		messages, err := repo.ListMessages(ctx, "c1")
		require.NoError(t, err)
		require.Len(t, messages, 2)
		assert.Equal(t, "m2", messages[0].ID)
		assert.Equal(t, "m3", messages[1].ID)
		assert.Equal(t, domain.MessageText, messages[0].MessageType)
		assert.Equal(t, "lost-1", messages[0].LostReportID)
		assert.False(t, messages[0].IsRead)

		marked, err := repo.MarkMessagesRead(ctx, "c1", "alice")
		require.NoError(t, err)
		assert.Equal(t, 1, marked)
		marked, err = repo.MarkMessagesRead(ctx, "c1", "alice")
		require.NoError(t, err)
		assert.Zero(t, marked)

		messages, err = repo.ListMessages(ctx, "c1")
		require.NoError(t, err)
		assert.True(t, messages[0].IsRead, "bob's message to alice is read")
		assert.False(t, messages[1].IsRead, "alice's message to bob is not")

		empty, err := repo.ListMessages(ctx, "missing")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func newConversation(id, userA, userB string, offset time.Duration) *domain.Conversation {
	created := baseTime.Add(offset)
	return &domain.Conversation{
		ID:            id,
		User1ID:       userA,
		User2ID:       userB,
		LostReportID:  "lost-1",
		LastMessageAt: created,
		CreatedAt:     created,
	}
}

func newMessage(id, conversationID, sender, receiver, content string, offset time.Duration) *domain.Message {
	return &domain.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       sender,
		ReceiverID:     receiver,
		Content:        content,
		MessageType:    domain.MessageText,
		LostReportID:   "lost-1",
		CreatedAt:      baseTime.Add(offset),
	}
}

func reportIDs(reports []domain.Report) []string {
	ids := make([]string, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
	}
	return ids
}

func matchIDs(matches []domain.Match) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids
}
