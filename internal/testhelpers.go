package internal

import (
	"fmt"
	"time"
)

// CreateTestMessages creates a short alternating user/assistant conversation
func CreateTestMessages(n int) []Message {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	messages := make([]Message, 0, n)
	for i := 0; i < n; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		id := fmt.Sprintf("msg-%d", i+1)
		if i%2 == 0 {
			messages = append(messages, NewUserMessage(id, fmt.Sprintf("question %d", i/2+1), at))
		} else {
			messages = append(messages, NewAssistantMessage(id, fmt.Sprintf("answer %d", i/2+1), at))
		}
	}
	return messages
}

// CreateTestTranscript creates a transcript with sample data
func CreateTestTranscript(id string) *Transcript {
	return &Transcript{
		ID:         id,
		Title:      "Test Conversation",
		Source:     "local",
		ExportedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Messages: []Message{
			NewUserMessage("1", "Hello, how are you?", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
			NewAssistantMessage("2", "I'm doing well, thank you!", time.Date(2024, 1, 1, 12, 0, 5, 0, time.UTC)),
		},
	}
}

// CreateTestTranscriptWithMessages creates a transcript with custom messages
func CreateTestTranscriptWithMessages(id string, messages []Message) *Transcript {
	return &Transcript{
		ID:         id,
		Source:     "local",
		ExportedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Messages:   messages,
	}
}
