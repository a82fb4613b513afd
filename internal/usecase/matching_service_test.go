package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/lostfound/backend/internal/domain"
)

func TestNewMatchingService(t *testing.T) {
	t.Run("creates service with provided config", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{Threshold: 55, Workers: 8}, zap.NewNop())
		if svc.threshold != 55 {
			t.Errorf("threshold = %v, want 55", svc.threshold)
		}
		if svc.workers != 8 {
			t.Errorf("workers = %v, want 8", svc.workers)
		}
	})

	t.Run("uses defaults when zero", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{}, nil)
		if svc.Threshold() != DefaultThreshold {
			t.Errorf("threshold = %v, want %v (default)", svc.Threshold(), DefaultThreshold)
		}
		if svc.workers != defaultWorkers {
			t.Errorf("workers = %v, want %v (default)", svc.workers, defaultWorkers)
		}
		if svc.logger == nil {
			t.Error("logger should default to a no-op logger")
		}
	})

	t.Run("uses default threshold when negative", func(t *testing.T) {
		svc := NewMatchingService(MatchConfig{Threshold: -10}, zap.NewNop())
		if svc.threshold != DefaultThreshold {
			t.Errorf("threshold = %v, want %v (default)", svc.threshold, DefaultThreshold)
		}
	})
}

func thresholdOf(v float64) *float64 {
	return &v
}

func sampleCandidates(n int) []domain.Item {
	descriptions := []string{
		"black leather wallet with cards",
		"black wallet",
		"brown leather bag",
		"golden retriever dog",
		"silver samsung phone with cracked screen",
		"blue umbrella",
	}
	colors := []string{"black", "brown", "golden", "silver", ""}
	subcategories := []string{"Bags/Wallets", "Electronics", "Dog", ""}

	items := make([]domain.Item, n)
	for i := range items {
		items[i] = domain.Item{
			ID:          fmt.Sprintf("c%02d", i),
			Description: descriptions[i%len(descriptions)],
			Category:    domain.CategoryItem,
			Subcategory: subcategories[i%len(subcategories)],
			Color:       colors[i%len(colors)],
			Location:    "Central Park",
		}
		if i%3 == 0 {
			items[i].Brand = "Gucci"
		}
	}
	return items
}

func TestMatchingService_RankMatchesSequential(t *testing.T) {
	svc := NewMatchingService(MatchConfig{Workers: 3, EnableDebugLogging: true}, zap.NewNop())
	query := walletQuery()
	query.Location = "Central Park east gate"
	candidates := sampleCandidates(40)

	got, err := svc.Rank(context.Background(), query, candidates, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := RankCandidates(query, candidates, DefaultThreshold)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parallel Rank differs from RankCandidates\n got: %+v\nwant: %+v", got, want)
	}
	if len(got) == 0 {
		t.Error("expected some matches above the default threshold")
	}
}

func TestMatchingService_RankThreshold(t *testing.T) {
	svc := NewMatchingService(MatchConfig{Threshold: 90}, zap.NewNop())
	query := walletQuery()
	candidates := sampleCandidates(12)

	strict, err := svc.Rank(context.Background(), query, candidates, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, m := range strict {
		if m.MatchScore <= 90 {
			t.Errorf("configured threshold not applied: score %v", m.MatchScore)
		}
	}

	loose, err := svc.Rank(context.Background(), query, candidates, thresholdOf(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loose) <= len(strict) {
		t.Errorf("explicit lower threshold should return more results: %d vs %d", len(loose), len(strict))
	}
}

func TestMatchingService_RankEmpty(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, zap.NewNop())

	got, err := svc.Rank(context.Background(), walletQuery(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Rank with no candidates = %#v, want empty slice", got)
	}
}

func TestMatchingService_RespectsContextCancellation(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := svc.Rank(ctx, walletQuery(), sampleCandidates(5), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestMatchingService_ExplicitZeroThreshold(t *testing.T) {
	svc := NewMatchingService(MatchConfig{}, zap.NewNop())
	query := domain.Item{Description: "wool scarf", Category: domain.CategoryItem}
	candidates := []domain.Item{{ID: "cat", Description: "tabby cat", Category: domain.CategoryItem}}

	// Only the category bonus applies, so the score is 20
	got, err := svc.Rank(context.Background(), query, candidates, thresholdOf(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := RankCandidates(query, candidates, 0)
	if len(want) != 1 || !reflect.DeepEqual(got, want) {
		t.Errorf("Rank(threshold 0) = %+v, want %+v", got, want)
	}

	defaulted, err := svc.Rank(context.Background(), query, candidates, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(defaulted) != 0 {
		t.Errorf("Rank(nil threshold) = %+v, want nothing above the default", defaulted)
	}
}

func TestMatchingService_EffectiveThreshold(t *testing.T) {
	svc := NewMatchingService(MatchConfig{Threshold: 65}, nil)
	if got := svc.EffectiveThreshold(nil); got != 65 {
		t.Errorf("EffectiveThreshold(nil) = %v, want 65", got)
	}
	if got := svc.EffectiveThreshold(thresholdOf(0)); got != 0 {
		t.Errorf("EffectiveThreshold(0) = %v, want 0", got)
	}
}
