package repositories

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rmarques/pointblank/pkg/repositories/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS matches (
	session_id TEXT PRIMARY KEY,
	session_name TEXT NOT NULL,
	winner_id TEXT NOT NULL,
	player1_name TEXT NOT NULL,
	player1_lives INTEGER NOT NULL,
	player2_name TEXT NOT NULL,
	player2_lives INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);
`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("failed to execute schema: %v", err)
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveMatchResult(ctx context.Context, result *models.MatchResult) error {
	q := `
	INSERT OR REPLACE INTO matches
	(session_id, session_name, winner_id, player1_name, player1_lives, player2_name, player2_lives, finished_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, result.SessionID, result.SessionName, result.WinnerID,
		result.Player1Name, result.Player1Lives, result.Player2Name, result.Player2Lives, result.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) GetMatchResult(ctx context.Context, sessionID string) (*models.MatchResult, error) {
	q := `
	SELECT session_id, session_name, winner_id, player1_name, player1_lives, player2_name, player2_lives, finished_at
	FROM matches WHERE session_id = ?;
	`
	result := &models.MatchResult{}
	err := r.db.QueryRowContext(ctx, q, sessionID).Scan(&result.SessionID, &result.SessionName,
		&result.WinnerID, &result.Player1Name, &result.Player1Lives, &result.Player2Name,
		&result.Player2Lives, &result.FinishedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to get match result: %v", err)
	}

	return result, nil
}

func (r *SQLiteRepository) ListMatchResults(ctx context.Context, limit int) ([]*models.MatchResult, error) {
	q := `
	SELECT session_id, session_name, winner_id, player1_name, player1_lives, player2_name, player2_lives, finished_at
	FROM matches ORDER BY finished_at DESC LIMIT ?;
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
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
