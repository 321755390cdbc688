package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hoshinonyaruko/snaky/structs"
)

const createGamesTableSQL = `
CREATE TABLE IF NOT EXISTS Games (
    ID INTEGER PRIMARY KEY AUTOINCREMENT,
    SessionID TEXT NOT NULL,
    Score INTEGER NOT NULL,
    Length INTEGER NOT NULL,
    Status TEXT NOT NULL,
    TickInterval INTEGER NOT NULL,
    StartedAt INTEGER,
    EndedAt INTEGER
);
`

const createSessionStatsTableSQL = `
CREATE TABLE IF NOT EXISTS SessionStats (
    SessionID TEXT PRIMARY KEY,
    GamesPlayed INTEGER NOT NULL DEFAULT 0,
    BestScore INTEGER NOT NULL DEFAULT 0
);
`

const createGamesIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_games_score ON Games (Score DESC);
`

func executeSQL(db *sql.DB, sqlStatement string) error {
	_, err := db.Exec(sqlStatement)
	if err != nil {
		return fmt.Errorf("error executing SQL statement: %s: %w", sqlStatement, err)
	}
	return nil
}

// InitializeDatabase 建表
func InitializeDatabase(db *sql.DB) error {
	for _, stmt := range []string{createGamesTableSQL, createSessionStatsTableSQL, createGamesIndexSQL} {
		if err := executeSQL(db, stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordGame 保存一局结束的游戏并更新会话统计
func RecordGame(ctx context.Context, db *sql.DB, result structs.GameResult) error {
	// 开启事务
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO Games (SessionID, Score, Length, Status, TickInterval, StartedAt, EndedAt) VALUES (?, ?, ?, ?, ?, ?, ?)",
		result.SessionID, result.Score, result.Length, string(result.Status), result.TickIntervalMs, result.StartedAt, result.EndedAt)
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO SessionStats (SessionID, GamesPlayed, BestScore) VALUES (?, 1, ?)
ON CONFLICT(SessionID) DO UPDATE SET GamesPlayed = GamesPlayed + 1, BestScore = MAX(BestScore, excluded.BestScore)`,
		result.SessionID, result.Score)
	if err != nil {
		tx.Rollback()
		return err
	}

	// 提交事务
	return tx.Commit()
}

// TopScores returns the best finished games, highest score first.
func TopScores(ctx context.Context, db *sql.DB, limit int) ([]structs.GameResult, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.QueryContext(ctx, "SELECT SessionID, Score, Length, Status, TickInterval, StartedAt, EndedAt FROM Games ORDER BY Score DESC, EndedAt ASC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []structs.GameResult{}
	for rows.Next() {
		var r structs.GameResult
		var status string
		if err := rows.Scan(&r.SessionID, &r.Score, &r.Length, &status, &r.TickIntervalMs, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, err
		}
		r.Status = structs.Status(status)
		results = append(results, r)
	}
	return results, rows.Err()
}

// BestScore 所有已结束游戏中的最高分，没有记录时为0
func BestScore(ctx context.Context, db *sql.DB) (int, error) {
	var best int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(Score), 0) FROM Games").Scan(&best); err != nil {
		return 0, err
	}
	return best, nil
}

// SessionStats 一个会话玩过的局数和最高分
type SessionStats struct {
	SessionID   string `json:"session_id"`
	GamesPlayed int    `json:"games_played"`
	BestScore   int    `json:"best_score"`
}

// GetSessionStats returns zero stats for a session with no finished game.
func GetSessionStats(ctx context.Context, db *sql.DB, sessionID string) (SessionStats, error) {
	stats := SessionStats{SessionID: sessionID}
	err := db.QueryRowContext(ctx, "SELECT GamesPlayed, BestScore FROM SessionStats WHERE SessionID = ?", sessionID).Scan(
		&stats.GamesPlayed, &stats.BestScore,
	)
	if err != nil && err != sql.ErrNoRows {
		return stats, err
	}
	return stats, nil
}

// Recorder adapts the database to the session game-over hook.
type Recorder struct {
	DB *sql.DB
}

// RecordGame implements session.Recorder.
func (r Recorder) RecordGame(ctx context.Context, result structs.GameResult) error {
	return RecordGame(ctx, r.DB, result)
}
