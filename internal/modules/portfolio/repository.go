package portfolio

import (
	"context"
	"time"

	"github.com/aristath/portfolio-tracker/internal/domain"
)

// Repository persists portfolios with their people and widgets.
//
// Implementations return domain.ErrNotFound for unknown ids and apply each
// mutation atomically. Returned portfolios are owned by the caller.
type Repository interface {
	// Create stores p, assigning its ID and the PortfolioID of its children
	Create(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, error)
	Get(ctx context.Context, id int64) (*domain.Portfolio, error)
	// List returns all portfolios in ascending id order
	List(ctx context.Context) ([]*domain.Portfolio, error)
	// Update replaces descriptive fields and the full person set
	Update(ctx context.Context, id int64, changes Changes) (*domain.Portfolio, error)
	// UpdateWidgetLayout writes coordinates to the lowest-id widget of each listed type
	UpdateWidgetLayout(ctx context.Context, id int64, updates []LayoutUpdate, updatedAt time.Time) error
	// Delete removes the portfolio and all of its children
	Delete(ctx context.Context, id int64) error
}
