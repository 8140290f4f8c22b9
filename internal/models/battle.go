package models

import "time"

type BattleStatus string

const (
	BattleStatusWaiting   BattleStatus = "waiting"
	BattleStatusActive    BattleStatus = "active"
	BattleStatusCompleted BattleStatus = "completed"
	BattleStatusAbandoned BattleStatus = "abandoned"
)

// BattleCategory partitions the matchmaking queues.
type BattleCategory string

const (
	CategoryCompetitive BattleCategory = "competitive"
	CategoryPractice    BattleCategory = "practice"
	CategoryTournament  BattleCategory = "tournament"
)

func (c BattleCategory) Valid() bool {
	switch c {
	case CategoryCompetitive, CategoryPractice, CategoryTournament:
		return true
	}
	return false
}

// Outcome is one participant's declared result for a settled battle.
type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeLoss      Outcome = "loss"
	OutcomeDraw      Outcome = "draw"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeAbandoned Outcome = "abandoned"
)

// BattleRecord is the durable row written when a battle is created. The live
// match state stays in memory; this record is what survives a restart.
type BattleRecord struct {
	ID          string         `json:"id" db:"id"`
	Category    BattleCategory `json:"category" db:"category"`
	Player1ID   string         `json:"player1Id" db:"player1_id"`
	Player2ID   string         `json:"player2Id" db:"player2_id"`
	ProblemID   string         `json:"problemId" db:"problem_id"`
	Status      BattleStatus   `json:"status" db:"status"`
	TimeLimit   int            `json:"timeLimit" db:"time_limit_seconds"`
	StartedAt   time.Time      `json:"startedAt" db:"started_at"`
	CompletedAt *time.Time     `json:"completedAt,omitempty" db:"completed_at"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
}

// PlayerResult is one participant's slice of a settled battle.
type PlayerResult struct {
	UserID         string     `json:"userId"`
	DisplayName    string     `json:"displayName"`
	RatingBefore   int        `json:"ratingBefore"`
	RatingAfter    int        `json:"ratingAfter"`
	RatingChange   int        `json:"ratingChange"`
	Score          int        `json:"score"`
	TestsPassed    int        `json:"testsPassed"`
	TotalTests     int        `json:"totalTests"`
	SubmittedAt    *time.Time `json:"submittedAt,omitempty"`
	Code           string     `json:"code"`
	Language       Language   `json:"language"`
	Outcome        Outcome    `json:"outcome"`
	EvaluationNote string     `json:"evaluationNote,omitempty"` // set when a zero score came from an evaluator failure
}

// WinnerSummary identifies the winner of a decisive battle.
type WinnerSummary struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// BattleResult is the append-only settlement record. Written exactly once per
// battle; leaderboards and per-user history read from it.
type BattleResult struct {
	BattleID  string         `json:"battleId" db:"battle_id"`
	Category  BattleCategory `json:"category" db:"category"`
	Players   [2]PlayerResult `json:"players"`
	Winner    *WinnerSummary `json:"winner,omitempty"`
	Duration  int            `json:"duration" db:"duration_seconds"`
	Problem   ProblemSummary `json:"problem"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}
