package domain

import "time"

// ChatTurn is one earlier message in a conversation, as sent by the client.
type ChatTurn struct {
	// Role is "user" or "assistant".
	Role    string `json:"role" firestore:"role"`
	Message string `json:"message" firestore:"message"`
}

// Conversation is a stored advisor exchange.
type Conversation struct {
	ID         string         `json:"id" firestore:"id"`
	UserID     string         `json:"userId" firestore:"userId"`
	Message    string         `json:"message" firestore:"message"`
	Response   string         `json:"response" firestore:"response"`
	IsScenario bool           `json:"isScenario" firestore:"isScenario"`
	Source     AnalysisSource `json:"source" firestore:"source"`
	CreatedAt  time.Time      `json:"createdAt" firestore:"createdAt"`
}
