package battle

import (
	"github.com/codeduel/codeduel-backend/internal/models"
	"github.com/codeduel/codeduel-backend/internal/service"
)

// Inbound event types.
const (
	EventJoinQueue      = "join-queue"
	EventLeaveQueue     = "leave-queue"
	EventCodeUpdate     = "code-update"
	EventSubmitSolution = "submit-solution"
)

// Outbound event types.
const (
	EventQueueJoined        = "queue-joined"
	EventQueueLeft          = "queue-left"
	EventQueueError         = "queue-error"
	EventMatchFound         = "match-found"
	EventCodeUpdated        = "code-updated"
	EventSubmissionReceived = "submission-received"
	EventOpponentSubmitted  = "opponent-submitted"
	EventBattleResult       = "battle-result"
	EventBattleError        = "battle-error"
	EventSubmissionError    = "submission-error"
)

// Conn is one player's connection handle. Send delivers a typed event to the
// peer; a send to a closed connection returns an error and must be treated as
// a no-op by callers.
type Conn interface {
	ID() string
	Send(event string, payload interface{}) error
}

type JoinQueuePayload struct {
	UserID      string                `json:"userId"`
	DisplayName string                `json:"displayName"`
	Category    models.BattleCategory `json:"category"`
	Rating      int                   `json:"rating"`
}

type LeaveQueuePayload struct {
	UserID string `json:"userId"`
}

type QueueJoinedPayload struct {
	Category  models.BattleCategory `json:"category"`
	QueueSize int                   `json:"queueSize"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type CodeUpdatePayload struct {
	BattleID string          `json:"battleId"`
	Code     string          `json:"code"`
	Language models.Language `json:"language"`
}

type CodeUpdatedPayload struct {
	Code     string          `json:"code"`
	Language models.Language `json:"language"`
	From     string          `json:"from"` // opponent's connection id
}

type SubmitSolutionPayload struct {
	BattleID string          `json:"battleId"`
	Code     string          `json:"code"`
	Language models.Language `json:"language"`
}

type SubmissionReceivedPayload struct {
	Message string              `json:"message"`
	Result  *service.Evaluation `json:"result"`
}

type OpponentSubmittedPayload struct {
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// OpponentSummary is what each side learns about the other at match time.
type OpponentSummary struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Rating      int    `json:"rating"`
}

type MatchFoundPayload struct {
	BattleID  string          `json:"battleId"`
	Opponent  OpponentSummary `json:"opponent"`
	Problem   *models.Problem `json:"problem"`
	TimeLimit int             `json:"timeLimit"` // seconds
}

type BattleResultPayload struct {
	BattleID       string                `json:"battleId"`
	Outcome        models.Outcome        `json:"outcome"`
	Winner         *models.WinnerSummary `json:"winner,omitempty"`
	YourResult     models.PlayerResult   `json:"yourResult"`
	OpponentResult models.PlayerResult   `json:"opponentResult"`
	Duration       int                   `json:"duration"` // seconds
}
