package portfolio

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/portfolio-tracker/internal/domain"
)

// MemoryRepository keeps portfolios in process memory.
// Every read and write goes through a deep copy, so callers never share state.
type MemoryRepository struct {
	mu         sync.RWMutex
	portfolios map[int64]*domain.Portfolio
	order      []int64
	nextID     int64
}

// NewMemoryRepository creates an empty in-memory repository. Ids start at 1.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		portfolios: make(map[int64]*domain.Portfolio),
		nextID:     1,
	}
}

// Create implements Repository
func (r *MemoryRepository) Create(_ context.Context, p *domain.Portfolio) (*domain.Portfolio, error) {
	stored := p.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	stored.ID = r.nextID
	r.nextID++
	setOwner(stored)

	r.portfolios[stored.ID] = stored
	r.order = append(r.order, stored.ID)

	return stored.Clone(), nil
}

// Get implements Repository
func (r *MemoryRepository) Get(_ context.Context, id int64) (*domain.Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.portfolios[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

// List implements Repository
func (r *MemoryRepository) List(_ context.Context) ([]*domain.Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Portfolio, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.portfolios[id].Clone())
	}
	return out, nil
}

// Update implements Repository
func (r *MemoryRepository) Update(_ context.Context, id int64, changes Changes) (*domain.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.portfolios[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	next := p.Clone()
	next.Name = changes.Name
	next.Description = changes.Description
	next.DataSources = changes.DataSources
	next.People = changes.People
	stamp(next, changes.UpdatedAt)

	// Clone once more so the stored value shares nothing with changes
	next = next.Clone()
	setOwner(next)
	r.portfolios[id] = next

	return next.Clone(), nil
}

// UpdateWidgetLayout implements Repository
func (r *MemoryRepository) UpdateWidgetLayout(_ context.Context, id int64, updates []LayoutUpdate, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.portfolios[id]
	if !ok {
		return domain.ErrNotFound
	}

	next := p.Clone()
	for _, u := range updates {
		// Widgets are kept in id order, so the first match has the lowest id
		for i := range next.Widgets {
			if next.Widgets[i].WidgetType == u.WidgetType {
				next.Widgets[i].X = u.X
				next.Widgets[i].Y = u.Y
				next.Widgets[i].W = u.W
				next.Widgets[i].H = u.H
				break
			}
		}
	}
	stamp(next, updatedAt)
	r.portfolios[id] = next

	return nil
}

// Delete implements Repository
func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.portfolios[id]; !ok {
		return domain.ErrNotFound
	}

	delete(r.portfolios, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func setOwner(p *domain.Portfolio) {
	for i := range p.People {
		p.People[i].PortfolioID = p.ID
	}
	for i := range p.Widgets {
		p.Widgets[i].PortfolioID = p.ID
	}
}

// stamp sets updated_at, never earlier than created_at
func stamp(p *domain.Portfolio, at time.Time) {
	if at.Before(p.CreatedAt) {
		at = p.CreatedAt
	}
	p.UpdatedAt = &at
}
