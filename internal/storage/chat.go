// ABOUTME: Chat message log for SQLite storage.
// ABOUTME: Messages are append-only and listed in ascending time order.
package storage

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/kcal/internal/models"
)

// AppendChatMessage stores a chat message.
func (d *DB) AppendChatMessage(m *models.ChatMessage) error {
	query := `INSERT INTO chat_messages (id, text, is_user, sent_at) VALUES (?, ?, ?, ?)`
	_, err := d.db.Exec(query, m.ID.String(), m.Text, m.IsUser, formatTime(m.Timestamp))
	if err != nil {
		return fmt.Errorf("append chat message: %w", err)
	}
	return nil
}

// ListChatMessages returns the latest limit messages, oldest first.
// A limit of 0 returns the whole history.
func (d *DB) ListChatMessages(limit int) ([]*models.ChatMessage, error) {
	query := `SELECT rowid AS seq, id, text, is_user, sent_at FROM chat_messages ORDER BY sent_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	// Reverse the newest-first window back into display order.
	query = `SELECT id, text, is_user, sent_at FROM (` + query + `) ORDER BY sent_at ASC, seq ASC`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		var idStr, sentAt string
		if err := rows.Scan(&idStr, &m.Text, &m.IsUser, &sentAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		m.ID, _ = uuid.Parse(idStr)
		m.Timestamp = parseTime(sentAt)
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
