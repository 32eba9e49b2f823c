package model

import "time"

// ChatSession groups the conversational queries of one user.
// Lifecycle: activa → cerrada. A closed session is never reopened.
type ChatSession struct {
	ID            uint      `gorm:"primaryKey"`
	UsuarioID     uint      `gorm:"not null;index"`
	SessionStart  time.Time `gorm:"not null"`
	SessionEnd    *time.Time
	TotalQueries  int  `gorm:"not null;default:0"`
	SessionActive bool `gorm:"not null;index"`
}

// VoiceQuery is an immutable audit entry for one assistant query.
// Written for both successful and failed attempts.
type VoiceQuery struct {
	ID                 uint      `gorm:"primaryKey"`
	ChatSessionID      uint      `gorm:"not null;index"`
	UsuarioID          uint      `gorm:"not null;index"`
	AudioTranscription string    `gorm:"type:text"`
	UserQuery          string    `gorm:"type:text"`
	AIResponse         string    `gorm:"column:ai_response;type:text"`
	QueryType          string    `gorm:"type:varchar(50)"`
	ExecutionTimeMs    int64     `gorm:"not null"`
	Success            bool      `gorm:"not null"`
	ErrorMessage       *string   `gorm:"type:varchar(500)"`
	Fecha              time.Time `gorm:"not null;index"`
}
