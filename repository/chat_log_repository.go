package repository

import (
	"context"

	"chatiip-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatLogRepository handles database operations for chat logs
type ChatLogRepository struct {
	db *pgxpool.Pool
}

// NewChatLogRepository creates a new chat log repository
func NewChatLogRepository(db *pgxpool.Pool) *ChatLogRepository {
	return &ChatLogRepository{db: db}
}

// Create appends a log entry
func (r *ChatLogRepository) Create(ctx context.Context, entry *models.ChatLog) error {
	query := `
		INSERT INTO chat_logs (question, answer, source, session_id, ip, user_agent, meta)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		entry.Question,
		entry.Answer,
		entry.Source,
		entry.SessionID,
		entry.IP,
		entry.UserAgent,
		entry.Meta,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// List returns logs newest first. search matches question or answer
// case-insensitively
func (r *ChatLogRepository) List(ctx context.Context, search string, limit, offset int) ([]*models.ChatLog, int64, error) {
	where := ""
	args := []any{}
	if search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		where = ` WHERE question ILIKE $1 OR answer ILIKE $1`
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM chat_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := `
		SELECT id, question, answer, source, session_id, ip, user_agent, meta, created_at
		FROM chat_logs` + where + `
		ORDER BY created_at DESC
		LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := []*models.ChatLog{}
	for rows.Next() {
		entry := &models.ChatLog{}
		if err := rows.Scan(
			&entry.ID,
			&entry.Question,
			&entry.Answer,
			&entry.Source,
			&entry.SessionID,
			&entry.IP,
			&entry.UserAgent,
			&entry.Meta,
			&entry.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		logs = append(logs, entry)
	}
	return logs, total, rows.Err()
}
