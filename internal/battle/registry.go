package battle

import (
	"time"

	"github.com/codeduel/codeduel-backend/internal/models"
)

// QueuedPlayer is a player waiting in a matchmaking queue. It exists only
// while waiting and is owned by exactly one queue.
type QueuedPlayer struct {
	UserID      string
	DisplayName string
	Rating      int
	Conn        Conn
	JoinedAt    time.Time
}

// Participant is one player's live state inside a battle. Mutated only by the
// manager in response to that player's own events.
type Participant struct {
	UserID      string
	DisplayName string
	Rating      int // rating at match start
	Conn        Conn
	Code        string
	Language    models.Language
	Submitted   bool // set at intake; guards at-most-once submission
	Scored      bool // set once the submission's evaluation has been recorded
	SubmittedAt *time.Time
	Score       int
	TestsPassed int
	TotalTests  int
	EvalFailure string // non-empty when the zero score came from an evaluator failure
}

// Battle is the authoritative in-memory state of one active match.
type Battle struct {
	ID        string
	Category  models.BattleCategory
	Players   [2]*Participant
	Problem   *models.Problem
	Status    models.BattleStatus
	TimeLimit time.Duration
	StartedAt time.Time
	EndedAt   time.Time
	Winner    *models.WinnerSummary
}

// Expired reports whether the battle's deadline has passed.
func (b *Battle) Expired(now time.Time) bool {
	return now.After(b.StartedAt.Add(b.TimeLimit))
}

// ParticipantByConn returns the participant bound to the given connection id.
func (b *Battle) ParticipantByConn(connID string) *Participant {
	for _, p := range b.Players {
		if p.Conn != nil && p.Conn.ID() == connID {
			return p
		}
	}
	return nil
}

// Opponent returns the other participant.
func (b *Battle) Opponent(p *Participant) *Participant {
	if b.Players[0] == p {
		return b.Players[1]
	}
	return b.Players[0]
}

// SubmittedCount counts participants that have submitted.
func (b *Battle) SubmittedCount() int {
	n := 0
	for _, p := range b.Players {
		if p.Submitted {
			n++
		}
	}
	return n
}

// ScoredCount counts participants whose evaluation has finished and been
// recorded. Settlement by submissions waits on this, not on SubmittedCount,
// so a submission still in the sandbox is never scored as zero.
func (b *Battle) ScoredCount() int {
	n := 0
	for _, p := range b.Players {
		if p.Scored {
			n++
		}
	}
	return n
}

// Registry is the process-wide in-memory session state: waiting queues per
// category, active battles, and player connections. It holds no persistence
// and is rebuilt empty on restart; queued players must rejoin.
//
// Registry is not safe for concurrent use on its own. The Manager serializes
// every mutation behind its own lock, which keeps each operation a plain
// non-blocking map update.
type Registry struct {
	queues      map[models.BattleCategory][]*QueuedPlayer
	battles     map[string]*Battle
	connections map[string]Conn // userID -> connection
}

func NewRegistry() *Registry {
	return &Registry{
		queues:      make(map[models.BattleCategory][]*QueuedPlayer),
		battles:     make(map[string]*Battle),
		connections: make(map[string]Conn),
	}
}

// Enqueue appends the player to the named queue.
func (r *Registry) Enqueue(player *QueuedPlayer, category models.BattleCategory) {
	r.queues[category] = append(r.queues[category], player)
}

// Queue returns the waiting list for a category.
func (r *Registry) Queue(category models.BattleCategory) []*QueuedPlayer {
	return r.queues[category]
}

// SetQueue replaces the waiting list for a category.
func (r *Registry) SetQueue(category models.BattleCategory, players []*QueuedPlayer) {
	r.queues[category] = players
}

// RemoveFromQueues removes the player from whichever queue holds them.
// Idempotent: removing an absent player is a no-op. Returns true when an
// entry was removed.
func (r *Registry) RemoveFromQueues(userID string) bool {
	for category, queue := range r.queues {
		for i, p := range queue {
			if p.UserID == userID {
				r.queues[category] = append(queue[:i], queue[i+1:]...)
				return true
			}
		}
	}
	return false
}

// InQueue reports whether the player is currently waiting in any queue.
func (r *Registry) InQueue(userID string) bool {
	for _, queue := range r.queues {
		for _, p := range queue {
			if p.UserID == userID {
				return true
			}
		}
	}
	return false
}

// RegisterBattle stores an active battle.
func (r *Registry) RegisterBattle(b *Battle) {
	r.battles[b.ID] = b
}

// GetBattle returns an active battle by id.
func (r *Registry) GetBattle(id string) (*Battle, bool) {
	b, ok := r.battles[id]
	return b, ok
}

// RemoveBattle drops a battle from active state. After removal the battle is
// no longer addressable for updates or submissions.
func (r *Registry) RemoveBattle(id string) {
	delete(r.battles, id)
}

// ActiveBattles returns a snapshot of all active battles.
func (r *Registry) ActiveBattles() []*Battle {
	battles := make([]*Battle, 0, len(r.battles))
	for _, b := range r.battles {
		battles = append(battles, b)
	}
	return battles
}

// BattleForUser returns the active battle the player participates in, if any.
func (r *Registry) BattleForUser(userID string) (*Battle, bool) {
	for _, b := range r.battles {
		for _, p := range b.Players {
			if p.UserID == userID {
				return b, true
			}
		}
	}
	return nil, false
}

// MapConnection binds a player to a connection handle.
func (r *Registry) MapConnection(userID string, conn Conn) {
	r.connections[userID] = conn
}

// Connection returns the player's current connection handle.
func (r *Registry) Connection(userID string) (Conn, bool) {
	conn, ok := r.connections[userID]
	return conn, ok
}

// UnmapConnection removes the binding for a player, but only if the stored
// handle matches connID. A stale unmap from an already-replaced connection
// must not clobber the newer one.
func (r *Registry) UnmapConnection(userID, connID string) {
	if conn, ok := r.connections[userID]; ok && conn.ID() == connID {
		delete(r.connections, userID)
	}
}
