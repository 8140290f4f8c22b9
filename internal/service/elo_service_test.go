package service

import (
	"math"
	"testing"
)

func TestELOService_CalculateRatingChanges(t *testing.T) {
	eloService := NewELOService()

	tests := []struct {
		name            string
		ratingA         int
		ratingB         int
		scoreA          float64
		expectedChangeA int
		expectedChangeB int
	}{
		{
			name:            "Equal ratings, A wins",
			ratingA:         1200,
			ratingB:         1200,
			scoreA:          1.0,
			expectedChangeA: 16,
			expectedChangeB: -16,
		},
		{
			name:            "Equal ratings, draw",
			ratingA:         1200,
			ratingB:         1200,
			scoreA:          0.5,
			expectedChangeA: 0,
			expectedChangeB: 0,
		},
		{
			name:            "Underdog wins",
			ratingA:         1200,
			ratingB:         1300,
			scoreA:          1.0,
			expectedChangeA: 20,
			expectedChangeB: -20,
		},
		{
			name:            "Favorite wins",
			ratingA:         1300,
			ratingB:         1200,
			scoreA:          1.0,
			expectedChangeA: 12,
			expectedChangeB: -12,
		},
		{
			name:            "Lower rated player beats higher in close range",
			ratingA:         1000,
			ratingB:         1050,
			scoreA:          1.0,
			expectedChangeA: 18,
			expectedChangeB: -18,
		},
		{
			name:            "Lower rated player loses in close range",
			ratingA:         1000,
			ratingB:         1050,
			scoreA:          0.0,
			expectedChangeA: -14,
			expectedChangeB: 14,
		},
		{
			name:            "Underdog draws against favorite",
			ratingA:         1200,
			ratingB:         1300,
			scoreA:          0.5,
			expectedChangeA: 4,
			expectedChangeB: -4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changeA, changeB := eloService.CalculateRatingChanges(tt.ratingA, tt.ratingB, tt.scoreA)

			if changeA != tt.expectedChangeA || changeB != tt.expectedChangeB {
				t.Errorf("CalculateRatingChanges(%d, %d, %.1f) = (%d, %d), want (%d, %d)",
					tt.ratingA, tt.ratingB, tt.scoreA,
					changeA, changeB, tt.expectedChangeA, tt.expectedChangeB)
			}
		})
	}
}

func TestELOService_ChangeBoundedByKFactor(t *testing.T) {
	eloService := NewELOService()

	ratings := []int{100, 800, 1200, 1500, 2000, 2800}
	scores := []float64{0.0, 0.5, 1.0}

	for _, ra := range ratings {
		for _, rb := range ratings {
			for _, score := range scores {
				changeA, changeB := eloService.CalculateRatingChanges(ra, rb, score)

				if changeA > KFactor || changeA < -KFactor {
					t.Errorf("changeA=%d out of bounds for (%d, %d, %.1f)", changeA, ra, rb, score)
				}
				if changeB > KFactor || changeB < -KFactor {
					t.Errorf("changeB=%d out of bounds for (%d, %d, %.1f)", changeB, ra, rb, score)
				}
			}
		}
	}
}

func TestELOService_WinProbability(t *testing.T) {
	eloService := NewELOService()

	// Equal ratings are a coin flip.
	if p := eloService.WinProbability(1200, 1200); math.Abs(p-0.5) > 1e-9 {
		t.Errorf("WinProbability(1200, 1200) = %v, want 0.5", p)
	}

	// A 400 point gap means ten to one odds.
	if p := eloService.WinProbability(1600, 1200); math.Abs(p-10.0/11.0) > 1e-9 {
		t.Errorf("WinProbability(1600, 1200) = %v, want %v", p, 10.0/11.0)
	}

	// Probabilities from both sides sum to one.
	pa := eloService.WinProbability(1350, 1478)
	pb := eloService.WinProbability(1478, 1350)
	if math.Abs(pa+pb-1.0) > 1e-9 {
		t.Errorf("WinProbability not complementary: %v + %v = %v", pa, pb, pa+pb)
	}
}

func TestRankFromRating(t *testing.T) {
	tests := []struct {
		rating   int
		expected string
	}{
		{1000, "Beginner"},
		{1599, "Beginner"},
		{1600, "Intermediate"},
		{1800, "Advanced"},
		{2000, "Expert"},
		{2200, "Master"},
		{2400, "Grandmaster"},
		{3000, "Grandmaster"},
	}

	for _, tt := range tests {
		if got := RankFromRating(tt.rating); got != tt.expected {
			t.Errorf("RankFromRating(%d) = %q, want %q", tt.rating, got, tt.expected)
		}
	}
}
