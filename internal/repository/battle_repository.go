package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/codeduel/codeduel-backend/internal/models"
	"github.com/codeduel/codeduel-backend/pkg/database"
)

// BattleRepository persists battle creation records and settlement results,
// and applies rating changes to users. It implements battle.Store.
type BattleRepository struct {
	db       *database.DB
	userRepo *UserRepository
}

func NewBattleRepository(db *database.DB, userRepo *UserRepository) *BattleRepository {
	return &BattleRepository{db: db, userRepo: userRepo}
}

// CreateBattle writes the durable creation record. Write-once; the live
// match state stays in memory.
func (r *BattleRepository) CreateBattle(rec *models.BattleRecord) error {
	query := `
		INSERT INTO battles (id, category, player1_id, player2_id, problem_id, status, time_limit_seconds, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(query,
		rec.ID,
		rec.Category,
		rec.Player1ID,
		rec.Player2ID,
		rec.ProblemID,
		rec.Status,
		rec.TimeLimit,
		rec.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create battle record: %w", err)
	}

	return nil
}

// SaveResult writes the settlement record and flips the battle row to its
// terminal status. Write-once per battle.
func (r *BattleRepository) SaveResult(res *models.BattleResult) error {
	players, err := json.Marshal(res.Players)
	if err != nil {
		return fmt.Errorf("failed to marshal player results: %w", err)
	}
	problem, err := json.Marshal(res.Problem)
	if err != nil {
		return fmt.Errorf("failed to marshal problem summary: %w", err)
	}
	var winner []byte
	if res.Winner != nil {
		winner, err = json.Marshal(res.Winner)
		if err != nil {
			return fmt.Errorf("failed to marshal winner: %w", err)
		}
	}

	query := `
		INSERT INTO battle_results (battle_id, category, players, winner, duration_seconds, problem, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.Exec(query,
		res.BattleID,
		res.Category,
		players,
		nullableJSON(winner),
		res.Duration,
		problem,
		res.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to save battle result: %w", err)
	}

	status := models.BattleStatusCompleted
	if res.Players[0].Outcome == models.OutcomeAbandoned {
		status = models.BattleStatusAbandoned
	}
	if _, err := r.db.Exec(
		`UPDATE battles SET status = $1, completed_at = $2 WHERE id = $3`,
		status, res.CreatedAt, res.BattleID,
	); err != nil {
		return fmt.Errorf("failed to update battle status: %w", err)
	}

	return nil
}

// ApplyRatingChange updates the user's rating and outcome counters.
func (r *BattleRepository) ApplyRatingChange(userID string, ratingAfter int, outcome models.Outcome) error {
	return r.userRepo.UpdateRating(userID, ratingAfter, outcome)
}

// FindResult returns one settled battle, or nil when absent.
func (r *BattleRepository) FindResult(battleID string) (*models.BattleResult, error) {
	query := `
		SELECT battle_id, category, players, winner, duration_seconds, problem, created_at
		FROM battle_results
		WHERE battle_id = $1
	`

	res, err := scanResult(r.db.QueryRow(query, battleID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find battle result: %w", err)
	}

	return res, nil
}

// FindResultsByUser returns a user's battle history, newest first.
func (r *BattleRepository) FindResultsByUser(userID string, limit, offset int) ([]*models.BattleResult, error) {
	query := `
		SELECT battle_id, category, players, winner, duration_seconds, problem, created_at
		FROM battle_results
		WHERE players @> $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	// jsonb containment matches the user id in either element of the array.
	needle, err := json.Marshal([]map[string]string{{"userId": userID}})
	if err != nil {
		return nil, fmt.Errorf("failed to build history filter: %w", err)
	}

	rows, err := r.db.Query(query, needle, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query battle history: %w", err)
	}
	defer rows.Close()

	var results []*models.BattleResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan battle result: %w", err)
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

func scanResult(row interface{ Scan(...interface{}) error }) (*models.BattleResult, error) {
	res := &models.BattleResult{}
	var players, problem []byte
	var winner sql.NullString

	if err := row.Scan(
		&res.BattleID,
		&res.Category,
		&players,
		&winner,
		&res.Duration,
		&problem,
		&res.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(players, &res.Players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player results: %w", err)
	}
	if err := json.Unmarshal(problem, &res.Problem); err != nil {
		return nil, fmt.Errorf("failed to unmarshal problem summary: %w", err)
	}
	if winner.Valid {
		res.Winner = &models.WinnerSummary{}
		if err := json.Unmarshal([]byte(winner.String), res.Winner); err != nil {
			return nil, fmt.Errorf("failed to unmarshal winner: %w", err)
		}
	}

	return res, nil
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
