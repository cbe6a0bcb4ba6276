package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rmarques/pointblank/pkg/repositories/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS matches (
	session_id TEXT PRIMARY KEY,
	session_name TEXT NOT NULL,
	winner_id TEXT NOT NULL,
	player1_name TEXT NOT NULL,
	player1_lives INTEGER NOT NULL,
	player2_name TEXT NOT NULL,
	player2_lives INTEGER NOT NULL,
	finished_at BIGINT NOT NULL
);
`

type PostgresRepository struct {
	conn *pgx.Conn
}

// NewPostgresRepository creates a new PostgresRepository.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if _, err := conn.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %v", err)
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveMatchResult(ctx context.Context, result *models.MatchResult) error {
	q := `
	INSERT INTO matches
	(session_id, session_name, winner_id, player1_name, player1_lives, player2_name, player2_lives, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (session_id) DO UPDATE SET winner_id = $3, finished_at = $8;
	`
	_, err := r.conn.Exec(ctx, q, result.SessionID, result.SessionName, result.WinnerID,
		result.Player1Name, result.Player1Lives, result.Player2Name, result.Player2Lives, result.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %v", err)
	}

	return nil
}

func (r *PostgresRepository) GetMatchResult(ctx context.Context, sessionID string) (*models.MatchResult, error) {
	q := `
	SELECT session_id, session_name, winner_id, player1_name, player1_lives, player2_name, player2_lives, finished_at
	FROM matches WHERE session_id = $1;
	`
	result := &models.MatchResult{}
	err := r.conn.QueryRow(ctx, q, sessionID).Scan(&result.SessionID, &result.SessionName,
		&result.WinnerID, &result.Player1Name, &result.Player1Lives, &result.Player2Name,
		&result.Player2Lives, &result.FinishedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to get match result: %v", err)
	}

	return result, nil
}

func (r *PostgresRepository) ListMatchResults(ctx context.Context, limit int) ([]*models.MatchResult, error) {
	q := `
	SELECT session_id, session_name, winner_id, player1_name, player1_lives, player2_name, player2_lives, finished_at
	FROM matches ORDER BY finished_at DESC LIMIT $1;
	`
	rows, err := r.conn.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %v", err)
	}
	defer rows.Close()

	var results []*models.MatchResult
	for rows.Next() {
		result := &models.MatchResult{}
		if err := rows.Scan(&result.SessionID, &result.SessionName, &result.WinnerID,
			&result.Player1Name, &result.Player1Lives, &result.Player2Name, &result.Player2Lives,
			&result.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match result: %v", err)
		}
		results = append(results, result)
	}

	return results, nil
}
