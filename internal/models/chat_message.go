// ABOUTME: ChatMessage model for the append-only assistant conversation log.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one message in the chat history.
type ChatMessage struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	IsUser    bool      `json:"is_user" yaml:"is_user"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// NewUserMessage creates a message authored by the user.
func NewUserMessage(text string, at time.Time) *ChatMessage {
	return &ChatMessage{ID: uuid.New(), Text: text, IsUser: true, Timestamp: at}
}

// NewAssistantMessage creates a message authored by the remote assistant.
func NewAssistantMessage(text string, at time.Time) *ChatMessage {
	return &ChatMessage{ID: uuid.New(), Text: text, IsUser: false, Timestamp: at}
}
