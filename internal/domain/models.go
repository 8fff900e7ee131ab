// Package domain provides core domain models and types.
package domain

import "time"

// PersonType classifies a tracked person
type PersonType string

const (
	PersonTypePolitician PersonType = "politician"
	PersonTypeHedgeFund  PersonType = "hedge_fund"
)

// Valid reports whether t is a known person type
func (t PersonType) Valid() bool {
	return t == PersonTypePolitician || t == PersonTypeHedgeFund
}

// DefaultPortfolioName is used when a portfolio is created or updated without a name
const DefaultPortfolioName = "Untitled"

// Portfolio is a named collection of tracked people and dashboard widgets
type Portfolio struct {
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"` // nil until the first mutation
	Description *string    `json:"description"`
	Name        string     `json:"name"`
	DataSources []string   `json:"data_sources"`
	People      []Person   `json:"people"`
	Widgets     []Widget   `json:"widgets"`
	ID          int64      `json:"id"`
}

// Person is a tracked politician or fund, owned by exactly one portfolio.
// ID is its position in the portfolio's person list.
type Person struct {
	Identifier  *string    `json:"identifier"`
	ImageURL    *string    `json:"image_url"`
	Name        string     `json:"name"`
	Type        PersonType `json:"type"`
	ID          int64      `json:"id"`
	PortfolioID int64      `json:"portfolio_id"`
}

// Widget is a positioned dashboard tile, owned by exactly one portfolio.
// ID is its position in the portfolio's widget list; WidgetID is the display id.
type Widget struct {
	WidgetID    string `json:"widget_id"`
	WidgetType  string `json:"widget_type"`
	ID          int64  `json:"id"`
	PortfolioID int64  `json:"portfolio_id"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	W           int    `json:"w"`
	H           int    `json:"h"`
	MinW        int    `json:"min_w,omitempty"`
	MinH        int    `json:"min_h,omitempty"`
}

// Clone returns a deep copy of p
func (p *Portfolio) Clone() *Portfolio {
	if p == nil {
		return nil
	}

	out := *p
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		out.UpdatedAt = &t
	}
	out.Description = cloneString(p.Description)
	out.DataSources = append([]string(nil), p.DataSources...)
	if out.DataSources == nil {
		out.DataSources = []string{}
	}

	out.People = make([]Person, len(p.People))
	for i, person := range p.People {
		person.Identifier = cloneString(person.Identifier)
		person.ImageURL = cloneString(person.ImageURL)
		out.People[i] = person
	}

	out.Widgets = append([]Widget{}, p.Widgets...)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
