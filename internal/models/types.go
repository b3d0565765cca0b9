package models

import "time"

// AuthUser is the backend user record. The location triple
// (country/district/sector) decides which surveys the user sees.
type AuthUser struct {
	UserID      string    `json:"user_id"`
	PhoneNumber string    `json:"phone_number"`
	Name        string    `json:"name,omitempty"`
	Country     string    `json:"country"`
	District    string    `json:"district"`
	Sector      string    `json:"sector"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RegisterUser is the payload for creating a new user. Name is optional;
// the location triple is mandatory.
type RegisterUser struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name,omitempty"`
	Country     string `json:"country"`
	District    string `json:"district"`
	Sector      string `json:"sector"`
}

// Survey is a backend survey as fetched. Read-only on the client.
type Survey struct {
	SurveyID    string           `json:"survey_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	Questions   []Question       `json:"questions"`
	Locations   []SurveyLocation `json:"locations"`
}

// StatusActive marks the only survey status eligible for presentation.
const StatusActive = "active"

// Question is a backend survey question. QuestionType is a free-form tag
// that the loader normalizes into a canonical kind.
type Question struct {
	QuestionID   string           `json:"question_id"`
	QuestionText string           `json:"question_text"`
	QuestionType string           `json:"question_type"`
	IsRequired   bool             `json:"is_required"`
	OrderIndex   int              `json:"order_index"`
	Options      []QuestionOption `json:"options,omitempty"`
}

// QuestionOption is one selectable option of a single-choice question.
type QuestionOption struct {
	OptionID   string `json:"option_id"`
	OptionText string `json:"option_text"`
}

// SurveyLocation is one location a survey is eligible for.
type SurveyLocation struct {
	LocationID string `json:"location_id"`
	Country    string `json:"country"`
	District   string `json:"district"`
	Sector     string `json:"sector"`
}

// Answer is one answered question on the wire. AnswerText is the textual
// rendering of the answer regardless of its original kind.
type Answer struct {
	QuestionID string `json:"question_id"`
	AnswerText string `json:"answer_text"`
}

// SurveyResponse is the completed submission payload. It is built once,
// at submission time, and never partially sent.
type SurveyResponse struct {
	SurveyID string   `json:"survey_id"`
	Country  string   `json:"country"`
	District string   `json:"district"`
	Sector   string   `json:"sector"`
	Answers  []Answer `json:"answers"`
}

// Notification types as emitted by the backend.
const (
	NotificationSurvey   = "survey"
	NotificationAlert    = "alert"
	NotificationInfo     = "info"
	NotificationReminder = "reminder"
)

// UserNotification is one notification addressed to a user. IsRead moves
// from false to true exactly once and never reverts.
type UserNotification struct {
	UserNotificationID string     `json:"user_notification_id"`
	UserID             string     `json:"user_id"`
	NotificationID     string     `json:"notification_id"`
	Title              string     `json:"title"`
	Message            string     `json:"message"`
	Type               string     `json:"type"`
	IsRead             bool       `json:"is_read"`
	CreatedAt          time.Time  `json:"created_at"`
	ReadAt             *time.Time `json:"read_at,omitempty"`
}

// MarkReadResult is the backend reply to a read receipt.
type MarkReadResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
