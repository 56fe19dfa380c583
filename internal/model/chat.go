package model

import "time"

// Sender identifies the author of a chat message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage is one entry of a chat session transcript
type ChatMessage struct {
	ID          string    `json:"id"`
	Seq         int       `json:"seq"`
	Text        string    `json:"text"`
	Sender      Sender    `json:"sender"`
	Timestamp   time.Time `json:"timestamp"`
	LawCard     *LawCard  `json:"lawCard,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// QuickQuestionGroup is a titled set of canned chat prompts
type QuickQuestionGroup struct {
	Category  string   `json:"category"`
	Questions []string `json:"questions"`
}
