package battle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codeduel/codeduel-backend/internal/models"
	"github.com/codeduel/codeduel-backend/internal/service"
	"github.com/codeduel/codeduel-backend/pkg/logger"
)

var (
	ErrInvalidPlayers  = errors.New("a battle requires exactly two distinct players")
	ErrBattleNotActive = errors.New("battle is not active")
)

// Store persists battles and settlement results. Both writes are write-once
// for their lifecycle stage.
type Store interface {
	CreateBattle(rec *models.BattleRecord) error
	SaveResult(res *models.BattleResult) error
	ApplyRatingChange(userID string, ratingAfter int, outcome models.Outcome) error
}

// Evaluator scores a submission against a battle's test cases.
type Evaluator interface {
	Evaluate(ctx context.Context, code string, lang models.Language, testCases []models.TestCase) (*service.Evaluation, error)
}

type settleCause int

const (
	settleBySubmissions settleCause = iota
	settleByTimeout
	settleByAbandonment
)

// Manager owns matchmaking and the lifecycle of every active battle: queue
// membership, pairing, live code relay, submission scoring, and settlement.
// All registry mutation is serialized behind mu; evaluator and persistence
// calls happen outside it so one slow match never stalls the rest.
type Manager struct {
	mu       sync.Mutex
	registry *Registry

	elo       *service.ELOService
	evaluator Evaluator
	store     Store
	problems  ProblemProvider

	maxRatingDiff int
	timeLimit     time.Duration
	sweepInterval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func NewManager(
	registry *Registry,
	elo *service.ELOService,
	evaluator Evaluator,
	store Store,
	problems ProblemProvider,
	maxRatingDiff int,
	timeLimit time.Duration,
	sweepInterval time.Duration,
) *Manager {
	return &Manager{
		registry:      registry,
		elo:           elo,
		evaluator:     evaluator,
		store:         store,
		problems:      problems,
		maxRatingDiff: maxRatingDiff,
		timeLimit:     timeLimit,
		sweepInterval: sweepInterval,
		stopChan:      make(chan struct{}),
	}
}

// Start launches the timeout sweep.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	logger.Info("Starting battle manager", "sweepInterval", m.sweepInterval)

	m.wg.Add(1)
	go m.sweepLoop()
}

// Stop halts the timeout sweep and waits for it to finish.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	close(m.stopChan)
	m.wg.Wait()
	logger.Info("Battle manager stopped")
}

// HandleConnect binds a player to a fresh connection. When the player is in
// an active battle this is the reconnection path: the participant's stale
// handle is replaced so relays reach them again.
func (m *Manager) HandleConnect(userID string, conn Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.registry.MapConnection(userID, conn)

	if b, ok := m.registry.BattleForUser(userID); ok {
		for _, p := range b.Players {
			if p.UserID == userID {
				p.Conn = conn
			}
		}
		logger.Info("Player reconnected to battle", "userId", userID, "battleId", b.ID)
	}
}

// HandleDisconnect removes the player from any queue they were waiting in and
// unmaps the connection. An active battle survives the disconnect; later
// relays to the stale handle are logged no-ops.
func (m *Manager) HandleDisconnect(userID, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registry.RemoveFromQueues(userID) {
		logger.Info("Player removed from queue on disconnect", "userId", userID)
	}
	m.registry.UnmapConnection(userID, connID)
}

// JoinQueue enqueues the player and attempts pairing. Re-joining replaces any
// stale queue entry; an active battle is untouched.
func (m *Manager) JoinQueue(conn Conn, p JoinQueuePayload) {
	if p.UserID == "" || p.DisplayName == "" {
		m.sendTo(conn, EventQueueError, ErrorPayload{Message: "userId and displayName are required"})
		return
	}
	category := p.Category
	if !category.Valid() {
		category = models.CategoryCompetitive
	}
	rating := p.Rating
	if rating <= 0 {
		rating = models.DefaultRating
	}

	m.mu.Lock()
	m.registry.RemoveFromQueues(p.UserID)
	m.registry.MapConnection(p.UserID, conn)

	player := &QueuedPlayer{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Rating:      rating,
		Conn:        conn,
		JoinedAt:    time.Now(),
	}
	m.registry.Enqueue(player, category)
	queueSize := len(m.registry.Queue(category))

	pair := m.findMatchLocked(category)
	m.mu.Unlock()

	m.sendTo(conn, EventQueueJoined, QueueJoinedPayload{Category: category, QueueSize: queueSize})
	logger.Info("Player joined queue",
		"userId", p.UserID, "category", category, "rating", rating, "queueSize", queueSize)

	if pair != nil {
		if err := m.CreateBattle(*pair, category); err != nil {
			logger.Error("Failed to create battle", "error", err)
		}
	}
}

// LeaveQueue removes the player from whichever queue holds them. Safe to call
// redundantly.
func (m *Manager) LeaveQueue(conn Conn, userID string) {
	m.mu.Lock()
	removed := m.registry.RemoveFromQueues(userID)
	m.mu.Unlock()

	if removed {
		logger.Info("Player left queue", "userId", userID)
	}
	m.sendTo(conn, EventQueueLeft, nil)
}

// findMatchLocked pairs the lowest-rated waiting player with the candidate of
// smallest rating difference within the threshold. Callers must hold mu.
// Both players are removed from the queue when a pair is found.
func (m *Manager) findMatchLocked(category models.BattleCategory) *[2]*QueuedPlayer {
	queue := m.registry.Queue(category)
	if len(queue) < 2 {
		return nil
	}

	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Rating < queue[j].Rating
	})
	m.registry.SetQueue(category, queue)

	head := queue[0]
	var best *QueuedPlayer
	bestDiff := m.maxRatingDiff + 1
	for _, candidate := range queue[1:] {
		diff := candidate.Rating - head.Rating
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			best = candidate
		}
	}
	if best == nil {
		return nil
	}

	// Remove by identity, head first, so a shifted index never drops the
	// wrong player.
	m.registry.RemoveFromQueues(head.UserID)
	m.registry.RemoveFromQueues(best.UserID)

	return &[2]*QueuedPlayer{head, best}
}

// CreateBattle builds an active battle for exactly two paired players,
// persists its creation record, registers it, and notifies both sides.
// A persistence failure is surfaced to both players and the battle never
// becomes active.
func (m *Manager) CreateBattle(players [2]*QueuedPlayer, category models.BattleCategory) error {
	if players[0] == nil || players[1] == nil || players[0].UserID == players[1].UserID {
		return ErrInvalidPlayers
	}

	battleID := uuid.New().String()
	problem := m.problems.Random()
	now := time.Now()

	b := &Battle{
		ID:        battleID,
		Category:  category,
		Problem:   problem,
		Status:    models.BattleStatusActive,
		TimeLimit: m.timeLimit,
		StartedAt: now,
	}
	for i, qp := range players {
		b.Players[i] = &Participant{
			UserID:      qp.UserID,
			DisplayName: qp.DisplayName,
			Rating:      qp.Rating,
			Conn:        qp.Conn,
			Code:        problem.StarterCode(models.DefaultLanguage),
			Language:    models.DefaultLanguage,
		}
	}

	rec := &models.BattleRecord{
		ID:        battleID,
		Category:  category,
		Player1ID: players[0].UserID,
		Player2ID: players[1].UserID,
		ProblemID: problem.ID,
		Status:    models.BattleStatusActive,
		TimeLimit: int(m.timeLimit.Seconds()),
		StartedAt: now,
	}
	if err := m.store.CreateBattle(rec); err != nil {
		for _, qp := range players {
			m.sendTo(qp.Conn, EventBattleError, ErrorPayload{Message: "Failed to create battle"})
		}
		return fmt.Errorf("failed to persist battle: %w", err)
	}

	m.mu.Lock()
	m.registry.RegisterBattle(b)
	m.mu.Unlock()

	for i, p := range b.Players {
		opp := b.Players[1-i]
		m.sendTo(p.Conn, EventMatchFound, MatchFoundPayload{
			BattleID: battleID,
			Opponent: OpponentSummary{
				UserID:      opp.UserID,
				DisplayName: opp.DisplayName,
				Rating:      opp.Rating,
			},
			Problem:   problem,
			TimeLimit: int(m.timeLimit.Seconds()),
		})
	}

	logger.Info("Battle created",
		"battleId", battleID,
		"category", category,
		"player1", players[0].UserID,
		"player2", players[1].UserID,
		"problem", problem.ID)

	return nil
}

// UpdateCode records the caller's live code buffer and relays it to the
// opponent only. This is a relay, not a durable write.
func (m *Manager) UpdateCode(conn Conn, p CodeUpdatePayload) {
	m.mu.Lock()
	b, ok := m.registry.GetBattle(p.BattleID)
	if !ok || b.Status != models.BattleStatusActive {
		m.mu.Unlock()
		return
	}
	participant := b.ParticipantByConn(conn.ID())
	if participant == nil {
		m.mu.Unlock()
		return
	}

	participant.Code = p.Code
	if p.Language.Valid() {
		participant.Language = p.Language
	}
	oppConn := b.Opponent(participant).Conn
	m.mu.Unlock()

	if oppConn != nil {
		if err := oppConn.Send(EventCodeUpdated, CodeUpdatedPayload{
			Code:     p.Code,
			Language: p.Language,
			From:     conn.ID(),
		}); err != nil {
			logger.Warn("Code relay failed", "battleId", p.BattleID, "error", err)
		}
	}
}

// SubmitSolution scores the caller's submission. At most one submission per
// participant per battle; late, repeated, or unknown-caller submissions are
// rejected silently. When both participants have submitted the battle is
// settled.
func (m *Manager) SubmitSolution(ctx context.Context, conn Conn, p SubmitSolutionPayload) {
	m.mu.Lock()
	b, ok := m.registry.GetBattle(p.BattleID)
	if !ok || b.Status != models.BattleStatusActive {
		m.mu.Unlock()
		return
	}
	participant := b.ParticipantByConn(conn.ID())
	if participant == nil || participant.Submitted {
		m.mu.Unlock()
		return
	}

	now := time.Now()
	participant.Submitted = true
	participant.SubmittedAt = &now
	participant.Code = p.Code
	if p.Language.Valid() {
		participant.Language = p.Language
	}
	lang := participant.Language
	testCases := b.Problem.TestCases
	m.mu.Unlock()

	eval, err := m.evaluator.Evaluate(ctx, p.Code, lang, testCases)
	if err != nil {
		logger.Error("Evaluation failed", "battleId", p.BattleID, "userId", participant.UserID, "error", err)
		m.sendTo(conn, EventSubmissionError, ErrorPayload{Message: "Failed to evaluate solution"})
		if eval == nil {
			eval = &service.Evaluation{
				TotalTests:    len(testCases),
				FailureReason: err.Error(),
			}
		}
	}

	m.mu.Lock()
	// The sweep may have settled the battle while the sandbox was running;
	// its result already scored this participant as zero.
	if b.Status != models.BattleStatusActive {
		m.mu.Unlock()
		return
	}
	participant.Score = eval.Score
	participant.TestsPassed = eval.PassedTests
	participant.TotalTests = eval.TotalTests
	participant.EvalFailure = eval.FailureReason
	participant.Scored = true
	// Settle only when both evaluations have landed; the opponent may have
	// submitted but still be waiting on the sandbox.
	bothScored := b.ScoredCount() == 2
	opponent := b.Opponent(participant)
	oppConn := opponent.Conn
	m.mu.Unlock()

	if err == nil {
		m.sendTo(conn, EventSubmissionReceived, SubmissionReceivedPayload{
			Message: "Solution submitted successfully",
			Result:  eval,
		})
	}
	if oppConn != nil {
		if sendErr := oppConn.Send(EventOpponentSubmitted, OpponentSubmittedPayload{
			DisplayName: participant.DisplayName,
			Score:       eval.Score,
		}); sendErr != nil {
			logger.Warn("Opponent notification failed", "battleId", p.BattleID, "error", sendErr)
		}
	}

	logger.Info("Solution submitted",
		"battleId", p.BattleID,
		"userId", participant.UserID,
		"score", eval.Score,
		"testsPassed", eval.PassedTests)

	if bothScored {
		m.settle(b, settleBySubmissions)
	}
}

// SweepExpired settles every active battle past its deadline. Battles where
// nobody submitted and nobody is still connected are closed as abandoned;
// the rest take the timeout path, scoring non-submitters as zero.
func (m *Manager) SweepExpired() {
	now := time.Now()

	m.mu.Lock()
	var expired []*Battle
	var causes []settleCause
	for _, b := range m.registry.ActiveBattles() {
		if b.Status != models.BattleStatusActive || !b.Expired(now) {
			continue
		}
		cause := settleByTimeout
		if b.SubmittedCount() == 0 && !m.anyParticipantConnectedLocked(b) {
			cause = settleByAbandonment
		}
		expired = append(expired, b)
		causes = append(causes, cause)
	}
	m.mu.Unlock()

	for i, b := range expired {
		logger.Info("Settling expired battle", "battleId", b.ID, "abandoned", causes[i] == settleByAbandonment)
		m.settle(b, causes[i])
	}
}

func (m *Manager) anyParticipantConnectedLocked(b *Battle) bool {
	for _, p := range b.Players {
		if _, ok := m.registry.Connection(p.UserID); ok {
			return true
		}
	}
	return false
}

// settle finalizes a battle exactly once: outcome, rating deltas, durable
// result, notifications, and removal from active state. Racing callers
// (dual submission completion vs. the timeout sweep) are serialized by the
// status guard; the loser of the race returns without effect.
func (m *Manager) settle(b *Battle, cause settleCause) {
	m.mu.Lock()
	if b.Status != models.BattleStatusActive {
		m.mu.Unlock()
		return
	}
	b.EndedAt = time.Now()
	if cause == settleByAbandonment {
		b.Status = models.BattleStatusAbandoned
	} else {
		b.Status = models.BattleStatusCompleted
	}

	result := m.buildResultLocked(b, cause)
	b.Winner = result.Winner
	m.registry.RemoveBattle(b.ID)

	conns := [2]Conn{b.Players[0].Conn, b.Players[1].Conn}
	m.mu.Unlock()

	if err := m.store.SaveResult(result); err != nil {
		logger.Error("Failed to persist battle result", "battleId", b.ID, "error", err)
	}
	if cause != settleByAbandonment {
		for _, pr := range result.Players {
			if err := m.store.ApplyRatingChange(pr.UserID, pr.RatingAfter, pr.Outcome); err != nil {
				logger.Error("Failed to apply rating change", "userId", pr.UserID, "error", err)
			}
		}
	}

	for i, conn := range conns {
		own := result.Players[i]
		opp := result.Players[1-i]
		opp.Code = "" // opponents get a summary, never each other's source
		m.sendTo(conn, EventBattleResult, BattleResultPayload{
			BattleID:       b.ID,
			Outcome:        own.Outcome,
			Winner:         result.Winner,
			YourResult:     own,
			OpponentResult: opp,
			Duration:       result.Duration,
		})
	}

	winnerName := "draw"
	if result.Winner != nil {
		winnerName = result.Winner.DisplayName
	}
	logger.Info("Battle settled",
		"battleId", b.ID,
		"winner", winnerName,
		"duration", result.Duration,
		"status", b.Status)
}

// buildResultLocked computes the settlement record. Callers must hold mu.
func (m *Manager) buildResultLocked(b *Battle, cause settleCause) *models.BattleResult {
	p1, p2 := b.Players[0], b.Players[1]

	// Shared outcome value from player 1's perspective.
	var scoreA float64
	switch {
	case p1.Score > p2.Score:
		scoreA = 1.0
	case p2.Score > p1.Score:
		scoreA = 0.0
	default:
		scoreA = 0.5
	}

	var change1, change2 int
	if cause != settleByAbandonment {
		change1, change2 = m.elo.CalculateRatingChanges(p1.Rating, p2.Rating, scoreA)
	}

	var winner *models.WinnerSummary
	if p1.Score != p2.Score {
		w := p1
		if p2.Score > p1.Score {
			w = p2
		}
		winner = &models.WinnerSummary{
			UserID:      w.UserID,
			DisplayName: w.DisplayName,
			Score:       w.Score,
		}
	}

	duration := int(b.EndedAt.Sub(b.StartedAt).Seconds())

	result := &models.BattleResult{
		BattleID:  b.ID,
		Category:  b.Category,
		Winner:    winner,
		Duration:  duration,
		Problem:   b.Problem.Summary(),
		CreatedAt: b.EndedAt,
	}
	result.Players[0] = buildPlayerResult(p1, change1, scoreA, cause)
	result.Players[1] = buildPlayerResult(p2, change2, 1.0-scoreA, cause)

	return result
}

func buildPlayerResult(p *Participant, change int, score float64, cause settleCause) models.PlayerResult {
	var outcome models.Outcome
	switch {
	case cause == settleByAbandonment:
		outcome = models.OutcomeAbandoned
	case cause == settleByTimeout && !p.Submitted:
		outcome = models.OutcomeTimeout
	case score == 1.0:
		outcome = models.OutcomeWin
	case score == 0.0:
		outcome = models.OutcomeLoss
	default:
		outcome = models.OutcomeDraw
	}

	return models.PlayerResult{
		UserID:         p.UserID,
		DisplayName:    p.DisplayName,
		RatingBefore:   p.Rating,
		RatingAfter:    p.Rating + change,
		RatingChange:   change,
		Score:          p.Score,
		TestsPassed:    p.TestsPassed,
		TotalTests:     p.TotalTests,
		SubmittedAt:    p.SubmittedAt,
		Code:           p.Code,
		Language:       p.Language,
		Outcome:        outcome,
		EvaluationNote: p.EvalFailure,
	}
}

// sendTo delivers an event, treating a dead handle as a logged no-op.
func (m *Manager) sendTo(conn Conn, event string, payload interface{}) {
	if conn == nil {
		return
	}
	if err := conn.Send(event, payload); err != nil {
		logger.Warn("Send failed", "event", event, "connId", conn.ID(), "error", err)
	}
}

func (m *Manager) sweepLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.SweepExpired()
		case <-m.stopChan:
			return
		}
	}
}
