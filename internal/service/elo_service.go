package service

import "math"

// KFactor bounds how far one battle can move a rating.
const KFactor = 32

// ELOService computes rating changes for settled battles.
type ELOService struct {
	kFactor float64
}

func NewELOService() *ELOService {
	return &ELOService{
		kFactor: KFactor,
	}
}

// CalculateRatingChanges returns the rating deltas for both players given
// player A's score: 1.0 (A won), 0.5 (draw), 0.0 (B won).
//
// Each side's expected score is computed from the standard formula and each
// delta is rounded independently. The two deltas therefore do not always sum
// to exactly zero; that asymmetry is part of the rating history and is kept.
func (s *ELOService) CalculateRatingChanges(ratingA, ratingB int, scoreA float64) (changeA, changeB int) {
	expectedA := s.expectedScore(float64(ratingA), float64(ratingB))
	expectedB := s.expectedScore(float64(ratingB), float64(ratingA))

	changeA = roundHalfUp(s.kFactor * (scoreA - expectedA))
	changeB = roundHalfUp(s.kFactor * ((1.0 - scoreA) - expectedB))

	return changeA, changeB
}

// roundHalfUp rounds halves toward positive infinity, so a pair of opposite
// deltas landing on .5 shifts the total by one.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// WinProbability is the chance a player rated ratingA beats one rated ratingB.
func (s *ELOService) WinProbability(ratingA, ratingB int) float64 {
	return s.expectedScore(float64(ratingA), float64(ratingB))
}

// expectedScore is the standard ELO expectation for the first rating.
func (s *ELOService) expectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

// RankFromRating maps a rating to its display rank.
func RankFromRating(rating int) string {
	switch {
	case rating >= 2400:
		return "Grandmaster"
	case rating >= 2200:
		return "Master"
	case rating >= 2000:
		return "Expert"
	case rating >= 1800:
		return "Advanced"
	case rating >= 1600:
		return "Intermediate"
	default:
		return "Beginner"
	}
}

// RankColor maps a rating to the hex color its rank renders with.
func RankColor(rating int) string {
	switch {
	case rating >= 2400:
		return "#FF6B6B"
	case rating >= 2200:
		return "#FFD700"
	case rating >= 2000:
		return "#14A44D"
	case rating >= 1800:
		return "#FF4B2B"
	case rating >= 1600:
		return "#5F2EEA"
	default:
		return "#96CEB4"
	}
}
