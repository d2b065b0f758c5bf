package models

type Organization struct {
	ID   string `json:"id" yaml:"id" toml:"id" db:"id" validate:"required"`
	Name string `json:"name" yaml:"name" toml:"name" db:"name" validate:"required"`
}

type Interest struct {
	ID          int64  `json:"id,omitempty" db:"id"`
	Name        string `json:"name" db:"name" validate:"required"`
	Slug        string `json:"slug" db:"slug" validate:"required"`
	Description string `json:"description" db:"description"`
}

// EventInterest associates an event with one interest. The pair is unique.
type EventInterest struct {
	EventID    string `json:"event_id" db:"event_id" validate:"required"`
	InterestID int64  `json:"interest_id" db:"interest_id" validate:"required"`
}
