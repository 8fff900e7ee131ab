package portfolio

import (
	"time"

	"github.com/aristath/portfolio-tracker/internal/domain"
)

// PersonInput is a person as supplied by a client
type PersonInput struct {
	Identifier *string           `json:"identifier"`
	ImageURL   *string           `json:"image_url"`
	Name       string            `json:"name" validate:"required"`
	Type       domain.PersonType `json:"type" validate:"required,oneof=politician hedge_fund"`
}

// CreateRequest describes a new portfolio. Widgets lists widget types in display order.
type CreateRequest struct {
	Description *string       `json:"description"`
	Name        string        `json:"name"`
	People      []PersonInput `json:"people" validate:"dive"`
	DataSources []string      `json:"data_sources"`
	Widgets     []string      `json:"widgets"`
}

// UpdateRequest replaces a portfolio's descriptive fields and its full person set.
// Widgets are not touched by an update.
type UpdateRequest struct {
	Description *string       `json:"description"`
	Name        string        `json:"name"`
	People      []PersonInput `json:"people" validate:"dive"`
	DataSources []string      `json:"data_sources"`
}

// LayoutUpdate carries client-chosen coordinates for the widget of WidgetType
type LayoutUpdate struct {
	WidgetType string `json:"widget_type" validate:"required"`
	X          int    `json:"x" validate:"gte=0"`
	Y          int    `json:"y" validate:"gte=0"`
	W          int    `json:"w" validate:"gte=1"`
	H          int    `json:"h" validate:"gte=1"`
}

// Changes is what a repository writes for an update
type Changes struct {
	UpdatedAt   time.Time
	Description *string
	Name        string
	DataSources []string
	People      []domain.Person
}
