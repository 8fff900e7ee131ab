// Package portfolio owns portfolios, their tracked people, and their dashboard widgets.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-tracker/internal/domain"
	"github.com/aristath/portfolio-tracker/internal/modules/layout"
)

// Service validates portfolio input, applies defaults, places widgets, and
// delegates persistence to a Repository.
//
// All mutators run under a single writer lock, so at most one mutation is in
// flight at a time. Reads go straight to the repository.
type Service struct {
	repo     Repository
	engine   *layout.Engine
	ids      WidgetIDGenerator
	validate *validator.Validate
	now      func() time.Time
	mu       sync.Mutex
	log      zerolog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source used for created_at and updated_at
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithWidgetIDs overrides the widget display id generator
func WithWidgetIDs(ids WidgetIDGenerator) Option {
	return func(s *Service) { s.ids = ids }
}

// NewService creates a portfolio service
func NewService(repo Repository, engine *layout.Engine, log zerolog.Logger, opts ...Option) *Service {
	if engine == nil {
		engine = layout.NewEngine(layout.DefaultColumns)
	}

	s := &Service{
		repo:     repo,
		engine:   engine,
		ids:      SequenceIDs{},
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("service", "portfolio").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates req, lays out its widgets, and stores the new portfolio
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Portfolio, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	placements := s.engine.Place(req.Widgets)
	widgets := make([]domain.Widget, len(placements))
	for i, pl := range placements {
		widgets[i] = domain.Widget{
			ID:         int64(i),
			WidgetID:   s.ids.Next(pl.Type, i),
			WidgetType: pl.Type,
			X:          pl.X,
			Y:          pl.Y,
			W:          pl.W,
			H:          pl.H,
			MinW:       pl.MinW,
			MinH:       pl.MinH,
		}
	}

	p := &domain.Portfolio{
		Name:        nameOrDefault(req.Name),
		Description: req.Description,
		DataSources: sourcesOrEmpty(req.DataSources),
		CreatedAt:   s.now(),
		People:      buildPeople(req.People),
		Widgets:     widgets,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}

	s.log.Info().
		Int64("portfolio_id", created.ID).
		Int("people", len(created.People)).
		Int("widgets", len(created.Widgets)).
		Msg("Portfolio created")

	return created, nil
}

// Get returns the portfolio with id, or domain.ErrNotFound
func (s *Service) Get(ctx context.Context, id int64) (*domain.Portfolio, error) {
	return s.repo.Get(ctx, id)
}

// List returns every portfolio in creation order
func (s *Service) List(ctx context.Context) ([]*domain.Portfolio, error) {
	return s.repo.List(ctx)
}

// Update replaces name, description, data sources and the full person set.
// People are renumbered from 0. Widgets are left as they are.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*domain.Portfolio, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.repo.Update(ctx, id, Changes{
		Name:        nameOrDefault(req.Name),
		Description: req.Description,
		DataSources: sourcesOrEmpty(req.DataSources),
		People:      buildPeople(req.People),
		UpdatedAt:   s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("portfolio_id", id).Int("people", len(updated.People)).Msg("Portfolio updated")
	return updated, nil
}

// UpdateWidgetLayout writes caller-supplied coordinates verbatim. Overlap is not checked.
// The widget addressed for each entry is the lowest-id widget of that type; entries
// naming a type the portfolio lacks are ignored.
func (s *Service) UpdateWidgetLayout(ctx context.Context, id int64, updates []LayoutUpdate) error {
	for i, u := range updates {
		if err := s.validate.Struct(u); err != nil {
			return toValidationError(err, fmt.Sprintf("[%d]", i))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.UpdateWidgetLayout(ctx, id, updates, s.now()); err != nil {
		return err
	}

	s.log.Debug().Int64("portfolio_id", id).Int("updates", len(updates)).Msg("Widget layout updated")
	return nil
}

// Delete removes the portfolio and everything it owns
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Int64("portfolio_id", id).Msg("Portfolio deleted")
	return nil
}

func (s *Service) validateStruct(v interface{}) error {
	if err := s.validate.Struct(v); err != nil {
		return toValidationError(err, "")
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// toValidationError reports the first failing field using its JSON path, e.g. people[0].type
func toValidationError(err error, prefix string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("", err.Error())
	}

	fe := fieldErrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	if prefix != "" {
		field = prefix + "." + field
	}

	return domain.NewValidationError(field, describeTag(fe))
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}

func buildPeople(in []PersonInput) []domain.Person {
	people := make([]domain.Person, len(in))
	for i, p := range in {
		people[i] = domain.Person{
			ID:         int64(i),
			Name:       p.Name,
			Type:       p.Type,
			Identifier: p.Identifier,
			ImageURL:   p.ImageURL,
		}
	}
	return people
}

func nameOrDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return domain.DefaultPortfolioName
	}
	return name
}

func sourcesOrEmpty(sources []string) []string {
	if sources == nil {
		return []string{}
	}
	return append([]string(nil), sources...)
}
