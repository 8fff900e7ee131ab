package portfolio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/portfolio-tracker/internal/domain"
	"github.com/aristath/portfolio-tracker/internal/modules/layout"
	testingpkg "github.com/aristath/portfolio-tracker/internal/testing"
)

// fakeClock hands out strictly increasing times
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type backend struct {
	name string
	repo func(t *testing.T) Repository
}

func backends() []backend {
	return []backend{
		{name: "memory", repo: func(t *testing.T) Repository { return NewMemoryRepository() }},
		{name: "sqlite", repo: func(t *testing.T) Repository {
			db, cleanup := testingpkg.NewTestDB(t, "portfolio")
			t.Cleanup(cleanup)
			return NewSQLiteRepository(db.Conn(), zerolog.Nop())
		}},
	}
}

func newTestService(t *testing.T, b backend) (*Service, *fakeClock) {
	clock := newFakeClock()
	svc := NewService(b.repo(t), layout.NewEngine(12), zerolog.Nop(), WithClock(clock.Now))
	return svc, clock
}

func strPtr(s string) *string { return &s }

func techWatch() CreateRequest {
	return CreateRequest{
		Name:        "Tech Watch",
		DataSources: []string{"news", "reddit"},
		People:      []PersonInput{{Name: "Nancy Pelosi", Type: domain.PersonTypePolitician}},
		Widgets:     []string{"sentiment", "holdings", "news"},
	}
}

func TestService_CreateTechWatch(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			svc, _ := newTestService(t, b)

			p, err := svc.Create(context.Background(), techWatch())
			require.NoError(t, err)

			assert.Positive(t, p.ID)
			assert.Equal(t, "Tech Watch", p.Name)
			assert.Nil(t, p.UpdatedAt)
			assert.False(t, p.CreatedAt.IsZero())
			assert.Equal(t, []string{"news", "reddit"}, p.DataSources)

			require.Len(t, p.People, 1)
			assert.Equal(t, int64(0), p.People[0].ID)
			assert.Equal(t, p.ID, p.People[0].PortfolioID)

			require.Len(t, p.Widgets, 3)
			expected := [][4]int{{0, 0, 3, 3}, {3, 0, 6, 4}, {0, 4, 4, 4}}
			for i, w := range p.Widgets {
				assert.Equal(t, int64(i), w.ID)
				assert.Equal(t, p.ID, w.PortfolioID)
				assert.Equal(t, expected[i], [4]int{w.X, w.Y, w.W, w.H}, w.WidgetType)
			}
			assert.Equal(t, "sentiment-0", p.Widgets[0].WidgetID)
			assert.Equal(t, 2, p.Widgets[0].MinW)

			got, err := svc.Get(context.Background(), p.ID)
			require.NoError(t, err)
			assert.Equal(t, p.Widgets, got.Widgets)
			assert.Equal(t, p.People, got.People)
			assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
		})
	}
}

func TestService_CreateDefaults(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			svc, _ := newTestService(t, b)

			p, err := svc.Create(context.Background(), CreateRequest{})
			require.NoError(t, err)

			assert.Equal(t, domain.DefaultPortfolioName, p.Name)
			assert.Nil(t, p.Description)
			assert.Equal(t, []string{}, p.DataSources)
			assert.Empty(t, p.People)
			assert.Empty(t, p.Widgets)
		})
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc, _ := newTestService(t, backends()[0])

	tests := []struct {
		name  string
		req   CreateRequest
		field string
	}{
		{
			name:  "missing person name",
			req:   CreateRequest{People: []PersonInput{{Type: domain.PersonTypePolitician}}},
			field: "people[0].name",
		},
		{
			name:  "missing person type",
			req:   CreateRequest{People: []PersonInput{{Name: "A", Type: domain.PersonTypeHedgeFund}, {Name: "B"}}},
			field: "people[1].type",
		},
		{
			name:  "unknown person type",
			req:   CreateRequest{People: []PersonInput{{Name: "A", Type: "senator"}}},
			field: "people[0].type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list, "invalid input must not be stored")
}

func TestService_GetNotFound(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			svc, _ := newTestService(t, b)

			_, err := svc.Get(context.Background(), 42)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestService_ListInCreationOrder(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			svc, _ := newTestService(t, b)
			ctx := context.Background()

			for _, name := range []string{"A", "B", "C"} {
				_, err := svc.Create(ctx, CreateRequest{Name: name, Widgets: []string{"news"}})
				require.NoError(t, err)
			}

			list, err := svc.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, "A", list[0].Name)
			assert.Equal(t, "B", list[1].Name)
			assert.Equal(t, "C", list[2].Name)
			assert.Less(t, list[0].ID, list[1].ID)
			assert.Less(t, list[1].ID, list[2].ID)
			for _, p := range list {
				require.Len(t, p.Widgets, 1)
				assert.Equal(t, p.ID, p.Widgets[0].PortfolioID)
			}
		})
	}
}

func TestService_UpdateReplacesPeopleAndKeepsWidgets(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			svc, _ := newTestService(t, b)
			ctx := context.Background()

			created, err := svc.Create(ctx, techWatch())
			require.NoError(t, err)

			updated, err := svc.Update(ctx, created.ID, UpdateRequest{
				Name:        "Renamed",
				Description: strPtr("now with funds"),
				DataSources: []string{"threads"},
				People: []PersonInput{
					{Name: "Warren Buffett", Type: domain.PersonTypeHedgeFund, Identifier: strPtr("brk")},
					{Name: "Ray Dalio", Type: domain.PersonTypeHedgeFund},
				},
			})
			require.NoError(t, err)

			assert.Equal(t, "Renamed", updated.Name)
			require.NotNil(t, updated.Description)
			assert.Equal(t, "now with funds", *updated.Description)
			assert.Equal(t, []string{"threads"}, updated.DataSources)
			require.Len(t, updated.People, 2)
			assert.Equal(t, int64(0), updated.People[0].ID)
			assert.Equal(t, int64(1), updated.People[1].ID)
			assert.Equal(t, "brk", *updated.People[0].Identifier)
			assert.Equal(t, created.Widgets, updated.Widgets)

			require.NotNil(t, updated.UpdatedAt)
			assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
			assert.True(t, created.CreatedAt.Equal(updated.CreatedAt), "created_at is immutable")
		})
	}
}

func TestService_UpdateEmptyNameDefaults(t *testing.T) {
	svc, _ := newTestService(t, backends()[0])
	ctx := context.Background()

	created, err := svc.Create(ctx, techWatch())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPortfolioName, updated.Name)
	assert.Empty(t, updated.People)
}

func TestService_UpdateNotFound(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			svc, _ := newTestService(t, b)

			_, err := svc.Update(context.Background(), 99, UpdateRequest{Name: "x"})
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestService_UpdateWidgetLayout(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			svc, _ := newTestService(t, b)
			ctx := context.Background()

			created, err := svc.Create(ctx, CreateRequest{Widgets: []string{"news", "chart", "news"}})
			require.NoError(t, err)

			err = svc.UpdateWidgetLayout(ctx, created.ID, []LayoutUpdate{
				{WidgetType: "news", X: 8, Y: 8, W: 2, H: 2},
				{WidgetType: "chart", X: 0, Y: 20, W: 12, H: 5},
				{WidgetType: "watchlist", X: 1, Y: 1, W: 1, H: 1},
			})
			require.NoError(t, err)

			got, err := svc.Get(ctx, created.ID)
			require.NoError(t, err)
			require.Len(t, got.Widgets, 3)

			// lowest-id widget of a shared type is the one addressed
			assert.Equal(t, [4]int{8, 8, 2, 2}, [4]int{got.Widgets[0].X, got.Widgets[0].Y, got.Widgets[0].W, got.Widgets[0].H})
			assert.Equal(t, [4]int{0, 20, 12, 5}, [4]int{got.Widgets[1].X, got.Widgets[1].Y, got.Widgets[1].W, got.Widgets[1].H})
			assert.Equal(t, created.Widgets[2], got.Widgets[2])

			require.NotNil(t, got.UpdatedAt)
			assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
		})
	}
}

func TestService_UpdateWidgetLayoutNotFoundMutatesNothing(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			svc, _ := newTestService(t, b)
			ctx := context.Background()

			existing, err := svc.Create(ctx, techWatch())
			require.NoError(t, err)
			before, err := svc.List(ctx)
			require.NoError(t, err)

			err = svc.UpdateWidgetLayout(ctx, existing.ID+100, []LayoutUpdate{{WidgetType: "sentiment", X: 5, Y: 5, W: 1, H: 1}})
			assert.ErrorIs(t, err, domain.ErrNotFound)

			after, err := svc.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestService_UpdateWidgetLayoutValidation(t *testing.T) {
	svc, _ := newTestService(t, backends()[0])
	ctx := context.Background()

	created, err := svc.Create(ctx, techWatch())
	require.NoError(t, err)

	tests := []struct {
		name    string
		updates []LayoutUpdate
		field   string
	}{
		{name: "negative x", updates: []LayoutUpdate{{WidgetType: "news", X: -1, W: 1, H: 1}}, field: "[0].x"},
		{name: "zero height", updates: []LayoutUpdate{{WidgetType: "news", W: 1}}, field: "[0].h"},
		{
			name:    "missing type",
			updates: []LayoutUpdate{{WidgetType: "news", W: 1, H: 1}, {W: 1, H: 1}},
			field:   "[1].widget_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.UpdateWidgetLayout(ctx, created.ID, tt.updates)

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UpdatedAt, "rejected layout must not touch the portfolio")
}

func TestService_DeleteCascades(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			svc, _ := newTestService(t, b)
			ctx := context.Background()

			keep, err := svc.Create(ctx, CreateRequest{Name: "keep", Widgets: []string{"news"}})
			require.NoError(t, err)
			gone, err := svc.Create(ctx, techWatch())
			require.NoError(t, err)

			require.NoError(t, svc.Delete(ctx, gone.ID))

			_, err = svc.Get(ctx, gone.ID)
			assert.ErrorIs(t, err, domain.ErrNotFound)
			assert.ErrorIs(t, svc.Delete(ctx, gone.ID), domain.ErrNotFound)

			list, err := svc.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, keep.ID, list[0].ID)
			assert.Len(t, list[0].Widgets, 1)

			// ids are never reused after deletion
			next, err := svc.Create(ctx, CreateRequest{})
			require.NoError(t, err)
			assert.Greater(t, next.ID, gone.ID)
		})
	}
}

func TestService_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			svc, _ := newTestService(t, b)
			ctx := context.Background()

			const n = 20
			ids := make(chan int64, n)
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					p, err := svc.Create(ctx, techWatch())
					if assert.NoError(t, err) {
						ids <- p.ID
					}
				}()
			}
			wg.Wait()
			close(ids)

			seen := make(map[int64]bool)
			for id := range ids {
				assert.False(t, seen[id], "duplicate id %d", id)
				seen[id] = true
			}
			assert.Len(t, seen, n)
		})
	}
}

func TestService_ReturnedValuesAreDetached(t *testing.T) {
	svc, _ := newTestService(t, backends()[0])
	ctx := context.Background()

	created, err := svc.Create(ctx, techWatch())
	require.NoError(t, err)

	created.Name = "mutated"
	created.Widgets[0].X = 11

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tech Watch", got.Name)
	assert.Equal(t, 0, got.Widgets[0].X)
}

func TestService_RandomWidgetIDs(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, zerolog.Nop(), WithWidgetIDs(RandomIDs{}))

	p, err := svc.Create(context.Background(), CreateRequest{Widgets: []string{"news", "news"}})
	require.NoError(t, err)

	assert.Regexp(t, `^news-[0-9a-f]{8}$`, p.Widgets[0].WidgetID)
	assert.NotEqual(t, p.Widgets[0].WidgetID, p.Widgets[1].WidgetID)
}
