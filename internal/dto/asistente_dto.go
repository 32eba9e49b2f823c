package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ConsultaRequest struct {
	Query     string `json:"query"      validate:"required,max=1000"`
	SessionID *uint  `json:"session_id" validate:"omitempty,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TranscripcionResponse struct {
	Success         bool   `json:"success"`
	Transcription   string `json:"transcription"`
	Language        string `json:"language"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	AudioDuration   int    `json:"audio_duration"`
}

type ConsultaResponse struct {
	Success         bool   `json:"success"`
	Query           string `json:"query"`
	Response        string `json:"response"`
	QueryType       string `json:"query_type"`
	SessionID       uint   `json:"session_id"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
}

type VozChatResponse struct {
	Success             bool   `json:"success"`
	Transcription       string `json:"transcription"`
	TranscriptionTimeMs int64  `json:"transcription_time_ms"`
	Query               string `json:"query"`
	Response            string `json:"response"`
	QueryType           string `json:"query_type"`
	SessionID           uint   `json:"session_id"`
	TotalTimeMs         int64  `json:"total_time_ms"`
}

type SesionInfo struct {
	SessionID    uint   `json:"session_id"`
	StartTime    string `json:"start_time"`
	TotalQueries int    `json:"total_queries"`
	Active       bool   `json:"active"`
}

type HistorialItem struct {
	QueryID         uint   `json:"query_id"`
	Transcription   string `json:"transcription"`
	Query           string `json:"query"`
	Response        string `json:"response"`
	QueryType       string `json:"query_type"`
	Timestamp       string `json:"timestamp"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	Success         bool   `json:"success"`
}

type HistorialResponse struct {
	Success     bool            `json:"success"`
	SessionInfo SesionInfo      `json:"session_info"`
	ChatHistory []HistorialItem `json:"chat_history"`
}

type SesionResumen struct {
	SessionID       uint    `json:"session_id"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time"`
	TotalQueries    int     `json:"total_queries"`
	Active          bool    `json:"active"`
	DurationMinutes *int    `json:"duration_minutes"`
}

type SesionesResponse struct {
	Success  bool            `json:"success"`
	Sessions []SesionResumen `json:"sessions"`
}

type CerrarSesionResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	SessionID uint   `json:"session_id"`
}
