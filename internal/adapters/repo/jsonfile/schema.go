package jsonfile

import (
	"time"

	"github.com/bnema/taleweaver/internal/domain"
)

type sessionSchema struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	ModelName     string       `json:"modelName"`
	InitialPrompt string       `json:"initialPrompt"`
	CreatedAt     time.Time    `json:"createdAt"`
	LastPlayedAt  time.Time    `json:"lastPlayedAt"`
	Dialogue      []turnSchema `json:"dialogue"`
}

type turnSchema struct {
	Speaker   string    `json:"speaker"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func toSchema(session domain.Session) sessionSchema {
	dialogue := make([]turnSchema, 0, len(session.Dialogue))
	for _, turn := range session.Dialogue {
		dialogue = append(dialogue, turnSchema{
			Speaker:   string(turn.Speaker),
			Message:   turn.Message,
			Timestamp: domain.NormalizeTime(turn.Timestamp),
		})
	}

	return sessionSchema{
		ID:            string(session.ID),
		Title:         session.Title,
		Description:   session.Description,
		ModelName:     session.ModelName,
		InitialPrompt: session.InitialPrompt,
		CreatedAt:     domain.NormalizeTime(session.CreatedAt),
		LastPlayedAt:  domain.NormalizeTime(session.LastPlayedAt),
		Dialogue:      dialogue,
	}
}

func fromSchema(record sessionSchema) domain.Session {
	var dialogue []domain.Turn
	if len(record.Dialogue) > 0 {
		dialogue = make([]domain.Turn, 0, len(record.Dialogue))
	}
	for _, turn := range record.Dialogue {
		dialogue = append(dialogue, domain.Turn{
			Speaker:   domain.Speaker(turn.Speaker),
			Message:   turn.Message,
			Timestamp: domain.NormalizeTime(turn.Timestamp),
		})
	}

	return domain.Session{
		ID:            domain.SessionID(record.ID),
		Title:         record.Title,
		Description:   record.Description,
		ModelName:     record.ModelName,
		InitialPrompt: record.InitialPrompt,
		CreatedAt:     domain.NormalizeTime(record.CreatedAt),
		LastPlayedAt:  domain.NormalizeTime(record.LastPlayedAt),
		Dialogue:      dialogue,
	}
}
