package portfolio

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-tracker/internal/database"
	"github.com/aristath/portfolio-tracker/internal/domain"
)

// SQLiteRepository stores portfolios in portfolio.db.
// People and widgets reference their portfolio with ON DELETE CASCADE.
type SQLiteRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteRepository creates a repository over a migrated portfolio database
func NewSQLiteRepository(db *sql.DB, log zerolog.Logger) *SQLiteRepository {
	return &SQLiteRepository{
		db:  db,
		log: log.With().Str("repo", "portfolio").Logger(),
	}
}

// queryer is satisfied by *sql.DB and *sql.Tx
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// timeLayout is fixed-width so stored timestamps compare correctly as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Create implements Repository
func (r *SQLiteRepository) Create(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, error) {
	stored := p.Clone()

	sources, err := json.Marshal(stored.DataSources)
	if err != nil {
		return nil, fmt.Errorf("failed to encode data sources: %w", err)
	}

	err = database.WithTransactionContext(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO portfolios (name, description, data_sources, created_at, updated_at) VALUES (?, ?, ?, ?, NULL)`,
			stored.Name, nullString(stored.Description), string(sources), stored.CreatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("failed to insert portfolio: %w", err)
		}

		stored.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read portfolio id: %w", err)
		}
		setOwner(stored)

		if err := insertPeople(ctx, tx, stored.ID, stored.People); err != nil {
			return err
		}

		for _, w := range stored.Widgets {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO widgets (portfolio_id, id, widget_id, widget_type, x, y, w, h, min_w, min_h)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				stored.ID, w.ID, w.WidgetID, w.WidgetType, w.X, w.Y, w.W, w.H, w.MinW, w.MinH,
			)
			if err != nil {
				return fmt.Errorf("failed to insert widget %s: %w", w.WidgetID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// Get implements Repository
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*domain.Portfolio, error) {
	var p *domain.Portfolio
	err := r.read(ctx, func(q queryer) error {
		var err error
		p, err = getPortfolio(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List implements Repository
func (r *SQLiteRepository) List(ctx context.Context) ([]*domain.Portfolio, error) {
	var out []*domain.Portfolio
	err := r.read(ctx, func(q queryer) error {
		rows, err := q.QueryContext(ctx,
			`SELECT id, name, description, data_sources, created_at, updated_at FROM portfolios ORDER BY id`)
		if err != nil {
			return fmt.Errorf("failed to query portfolios: %w", err)
		}
		defer rows.Close()

		byID := make(map[int64]*domain.Portfolio)
		for rows.Next() {
			p, err := scanPortfolio(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
			byID[p.ID] = p
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating portfolios: %w", err)
		}
		if err := rows.Close(); err != nil {
			return err
		}

		people, err := loadPeople(ctx, q, "", nil)
		if err != nil {
			return err
		}
		for _, person := range people {
			if p, ok := byID[person.PortfolioID]; ok {
				p.People = append(p.People, person)
			}
		}

		widgets, err := loadWidgets(ctx, q, "", nil)
		if err != nil {
			return err
		}
		for _, w := range widgets {
			if p, ok := byID[w.PortfolioID]; ok {
				p.Widgets = append(p.Widgets, w)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out == nil {
		out = []*domain.Portfolio{}
	}
	return out, nil
}

// Update implements Repository
func (r *SQLiteRepository) Update(ctx context.Context, id int64, changes Changes) (*domain.Portfolio, error) {
	sources, err := json.Marshal(changes.DataSources)
	if err != nil {
		return nil, fmt.Errorf("failed to encode data sources: %w", err)
	}

	var updated *domain.Portfolio
	err = database.WithTransactionContext(ctx, r.db, func(tx *sql.Tx) error {
		// MAX keeps updated_at from ever preceding created_at
		res, err := tx.ExecContext(ctx,
			`UPDATE portfolios SET name = ?, description = ?, data_sources = ?, updated_at = MAX(created_at, ?) WHERE id = ?`,
			changes.Name, nullString(changes.Description), string(sources), changes.UpdatedAt.UTC().Format(timeLayout), id,
		)
		if err != nil {
			return fmt.Errorf("failed to update portfolio: %w", err)
		}
		if err := requireRow(res); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM people WHERE portfolio_id = ?`, id); err != nil {
			return fmt.Errorf("failed to clear people: %w", err)
		}
		if err := insertPeople(ctx, tx, id, changes.People); err != nil {
			return err
		}

		updated, err = getPortfolio(ctx, tx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return updated, nil
}

// UpdateWidgetLayout implements Repository
func (r *SQLiteRepository) UpdateWidgetLayout(ctx context.Context, id int64, updates []LayoutUpdate, updatedAt time.Time) error {
	err := database.WithTransactionContext(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE portfolios SET updated_at = MAX(created_at, ?) WHERE id = ?`,
			updatedAt.UTC().Format(timeLayout), id,
		)
		if err != nil {
			return fmt.Errorf("failed to touch portfolio: %w", err)
		}
		if err := requireRow(res); err != nil {
			return err
		}

		for _, u := range updates {
			_, err := tx.ExecContext(ctx,
				`UPDATE widgets SET x = ?, y = ?, w = ?, h = ?
				 WHERE portfolio_id = ? AND id = (
				     SELECT MIN(id) FROM widgets WHERE portfolio_id = ? AND widget_type = ?
				 )`,
				u.X, u.Y, u.W, u.H, id, id, u.WidgetType,
			)
			if err != nil {
				return fmt.Errorf("failed to update widget %s: %w", u.WidgetType, err)
			}
		}
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// Delete implements Repository
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	err := database.WithTransactionContext(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM portfolios WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete portfolio: %w", err)
		}
		return requireRow(res)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// read runs fn in a transaction so multi-statement reads see one snapshot
func (r *SQLiteRepository) read(ctx context.Context, fn func(q queryer) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin read: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}

func getPortfolio(ctx context.Context, q queryer, id int64) (*domain.Portfolio, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, name, description, data_sources, created_at, updated_at FROM portfolios WHERE id = ?`, id)
	p, err := scanPortfolio(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.People, err = loadPeople(ctx, q, "WHERE portfolio_id = ?", []interface{}{id}); err != nil {
		return nil, err
	}
	if p.Widgets, err = loadWidgets(ctx, q, "WHERE portfolio_id = ?", []interface{}{id}); err != nil {
		return nil, err
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPortfolio(s scanner) (*domain.Portfolio, error) {
	var (
		p           domain.Portfolio
		description sql.NullString
		sources     string
		createdAt   string
		updatedAt   sql.NullString
	)

	if err := s.Scan(&p.ID, &p.Name, &description, &sources, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan portfolio: %w", err)
	}

	if description.Valid {
		p.Description = &description.String
	}
	if err := json.Unmarshal([]byte(sources), &p.DataSources); err != nil {
		return nil, fmt.Errorf("failed to decode data sources of portfolio %d: %w", p.ID, err)
	}
	if p.DataSources == nil {
		p.DataSources = []string{}
	}

	var err error
	if p.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at of portfolio %d: %w", p.ID, err)
	}
	if updatedAt.Valid {
		t, err := time.Parse(timeLayout, updatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at of portfolio %d: %w", p.ID, err)
		}
		p.UpdatedAt = &t
	}

	p.People = []domain.Person{}
	p.Widgets = []domain.Widget{}
	return &p, nil
}

func loadPeople(ctx context.Context, q queryer, where string, args []interface{}) ([]domain.Person, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT portfolio_id, id, name, type, identifier, image_url FROM people `+where+` ORDER BY portfolio_id, id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer rows.Close()

	people := []domain.Person{}
	for rows.Next() {
		var (
			person     domain.Person
			identifier sql.NullString
			imageURL   sql.NullString
		)
		if err := rows.Scan(&person.PortfolioID, &person.ID, &person.Name, &person.Type, &identifier, &imageURL); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		if identifier.Valid {
			person.Identifier = &identifier.String
		}
		if imageURL.Valid {
			person.ImageURL = &imageURL.String
		}
		people = append(people, person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}
	return people, nil
}

func loadWidgets(ctx context.Context, q queryer, where string, args []interface{}) ([]domain.Widget, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT portfolio_id, id, widget_id, widget_type, x, y, w, h, min_w, min_h FROM widgets `+where+` ORDER BY portfolio_id, id`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query widgets: %w", err)
	}
	defer rows.Close()

	widgets := []domain.Widget{}
	for rows.Next() {
		var w domain.Widget
		if err := rows.Scan(&w.PortfolioID, &w.ID, &w.WidgetID, &w.WidgetType, &w.X, &w.Y, &w.W, &w.H, &w.MinW, &w.MinH); err != nil {
			return nil, fmt.Errorf("failed to scan widget: %w", err)
		}
		widgets = append(widgets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating widgets: %w", err)
	}
	return widgets, nil
}

func insertPeople(ctx context.Context, tx *sql.Tx, portfolioID int64, people []domain.Person) error {
	for _, p := range people {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO people (portfolio_id, id, name, type, identifier, image_url) VALUES (?, ?, ?, ?, ?, ?)`,
			portfolioID, p.ID, p.Name, string(p.Type), nullString(p.Identifier), nullString(p.ImageURL),
		)
		if err != nil {
			return fmt.Errorf("failed to insert person %q: %w", p.Name, err)
		}
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
