package model

import "time"

// EstimateRequest represents a form submission
type EstimateRequest struct {
	Make           string `json:"make"`
	Model          string `json:"model"`
	Year           string `json:"year"`
	Mileage        string `json:"mileage"`
	Condition      string `json:"condition"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

// Valuation is the outcome of one call to the valuation collaborator.
// Text is always displayable, even when OK is false.
type Valuation struct {
	Text     string `json:"valuation"`
	Provider string `json:"provider"`
	OK       bool   `json:"ok"`
	Took     int64  `json:"took_ms"`
}

// EstimateResponse represents the response of the form endpoint
type EstimateResponse struct {
	Valuation
	Vehicle VehicleAttributes `json:"vehicle"`
}

// FieldError describes a single rejected form field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ChatMessageRequest represents one user utterance
type ChatMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ChatTurnResponse is returned after a chat turn has been processed
type ChatTurnResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []Message         `json:"messages"` // messages added during this turn
	Collected VehicleAttributes `json:"collected"`
	Missing   []string          `json:"missing"`
	Complete  bool              `json:"complete"`
	Valuation *Valuation        `json:"valuation,omitempty"`
}

// ChatSessionResponse is a snapshot of a session
type ChatSessionResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []Message         `json:"messages"`
	Collected VehicleAttributes `json:"collected"`
	Missing   []string          `json:"missing"`
	DarkMode  bool              `json:"dark_mode"`
	CreatedAt time.Time         `json:"created_at"`
}

// ThemeRequest toggles the dark mode preference
type ThemeRequest struct {
	DarkMode *bool `json:"dark_mode" binding:"required"`
}

// ValuationRecord is one row of the valuation history
type ValuationRecord struct {
	ID             int64     `json:"id" db:"id"`
	Source         string    `json:"source" db:"source"`
	Make           string    `json:"make" db:"make"`
	Model          string    `json:"model" db:"model"`
	Year           string    `json:"year" db:"year"`
	Mileage        string    `json:"mileage" db:"mileage"`
	Condition      string    `json:"condition" db:"condition"`
	AdditionalInfo *string   `json:"additional_info,omitempty" db:"additional_info"`
	Provider       string    `json:"provider" db:"provider"`
	Succeeded      bool      `json:"succeeded" db:"succeeded"`
	Valuation      string    `json:"valuation" db:"valuation"`
	ResponseTimeMs int       `json:"response_time_ms" db:"response_time_ms"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
