package exportmemory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-impact-export/export"
)

const fixtures = `{
	"volunteers": [
		{"full_name": "Amina", "location": "Nairobi", "joined_at": "2024-01-05"},
		{"full_name": "Tomas", "location": "Quito", "joined_at": "2024-02-11"},
		{"full_name": "Mei", "location": "Manila", "joined_at": "2024-03-20"}
	],
	"projects": [
		{"project_name": "Clean water", "budget": 12000}
	]
}`

func newFixtureResolver(t *testing.T) *Resolver {
	t.Helper()
	r := NewResolver()
	err := r.LoadFixtures(strings.NewReader(fixtures), map[export.EntityType]string{
		export.EntityVolunteers: "joined_at",
	})
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	return r
}

func TestResolver_DateRangeAndProjection(t *testing.T) {
	r := newFixtureResolver(t)

	ds, err := r.Resolve(context.Background(), export.ResolveQuery{
		EntityType:     export.EntityVolunteers,
		DateRange:      &export.DateRange{From: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		SelectedFields: []string{"location", "full_name"},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if strings.Join(ds.Fields, ",") != "full_name,location" {
		t.Fatalf("expected record order preserved, got %v", ds.Fields)
	}
	if ds.Len() != 2 || ds.Rows[0][0] != "Tomas" || ds.Rows[1][0] != "Mei" {
		t.Fatalf("unexpected rows %v", ds.Rows)
	}
}

func TestResolver_NoFilterWithoutDateField(t *testing.T) {
	r := newFixtureResolver(t)

	ds, err := r.Resolve(context.Background(), export.ResolveQuery{
		EntityType: export.EntityProjects,
		DateRange:  &export.DateRange{From: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ds.Len() != 1 {
		t.Fatalf("expected unfiltered project, got %d rows", ds.Len())
	}
}

func TestResolver_UnknownEntityIsEmpty(t *testing.T) {
	r := NewResolver()
	ds, err := r.Resolve(context.Background(), export.ResolveQuery{EntityType: export.EntityDonations})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !ds.Empty() {
		t.Fatalf("expected empty dataset")
	}
}

func TestResolver_UnknownSelectedField(t *testing.T) {
	r := newFixtureResolver(t)
	_, err := r.Resolve(context.Background(), export.ResolveQuery{
		EntityType:     export.EntityVolunteers,
		SelectedFields: []string{"salary"},
	})
	if export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolver_RegisterRejects(t *testing.T) {
	r := NewResolver()
	if err := r.Register("grants", nil, ""); err == nil {
		t.Fatalf("expected invalid entity error")
	}
	ds := export.NewDataset([]string{"title"}, export.Row{"Hello"})
	if err := r.Register(export.EntityBlogPosts, ds, "published_at"); err == nil {
		t.Fatalf("expected missing date field error")
	}
	if err := r.LoadFixtures(strings.NewReader(`[1,2]`), nil); err == nil {
		t.Fatalf("expected invalid fixtures error")
	}
}

func TestResolver_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewResolver().Resolve(ctx, export.ResolveQuery{EntityType: export.EntityDonations}); err == nil {
		t.Fatalf("expected context error")
	}
}
