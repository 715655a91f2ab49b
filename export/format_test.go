package export

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func TestParseFormat(t *testing.T) {
	cases := []struct {
		raw  string
		want Format
	}{
		{"csv", FormatCSV},
		{"CSV", FormatCSV},
		{"delimited", FormatCSV},
		{"excel", FormatExcel},
		{"xlsx", FormatExcel},
		{"spreadsheet", FormatExcel},
		{"json", FormatJSON},
		{"structured-data", FormatJSON},
		{" pdf ", FormatPDF},
		{"document", FormatPDF},
	}
	for _, tc := range cases {
		got, err := ParseFormat(tc.raw)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: expected %s, got %s", tc.raw, tc.want, got)
		}
	}
}

func TestParseFormat_InvalidListsAllowed(t *testing.T) {
	_, err := ParseFormat("docx")
	exportErr, ok := AsExportError(err)
	if !ok || exportErr.Kind != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if exportErr.Field != "format" || len(exportErr.Allowed) != len(Formats()) {
		t.Fatalf("expected allowed formats, got %+v", exportErr)
	}
}

func TestFormatMetadata(t *testing.T) {
	seen := map[string]bool{}
	for _, format := range Formats() {
		ext := format.Extension()
		if ext == "bin" {
			t.Fatalf("format %s has no extension", format)
		}
		if seen[ext] {
			t.Fatalf("duplicate extension %s", ext)
		}
		seen[ext] = true
		if format.ContentType() == "application/octet-stream" {
			t.Fatalf("format %s has no content type", format)
		}
	}
}

func TestParseEntityType(t *testing.T) {
	cases := map[string]EntityType{
		"donations":     EntityDonations,
		"Volunteers":    EntityVolunteers,
		"beneficiaries": EntityBeneficiaries,
		"projects":      EntityProjects,
		"blog-posts":    EntityBlogPosts,
		"blogposts":     EntityBlogPosts,
	}
	for raw, want := range cases {
		got, err := ParseEntityType(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", raw, want, got)
		}
	}

	_, err := ParseEntityType("invoices")
	exportErr, ok := AsExportError(err)
	if !ok || exportErr.Field != "type" || len(exportErr.Allowed) != len(EntityTypes()) {
		t.Fatalf("expected allowed types, got %v", err)
	}
}

func TestEntityLabel(t *testing.T) {
	if EntityBlogPosts.Label() != "Blog Posts" {
		t.Fatalf("unexpected label %q", EntityBlogPosts.Label())
	}
	if EntityDonations.Label() != "Donations" {
		t.Fatalf("unexpected label %q", EntityDonations.Label())
	}
}

func TestGeneratorSet_EveryFormatResolves(t *testing.T) {
	stub := GeneratorFunc(func(ctx context.Context, ds *Dataset, w io.Writer, opts RenderOptions) (RenderStats, error) {
		return RenderStats{}, nil
	})
	set := DefaultGenerators()
	set.PDF = stub

	for _, format := range Formats() {
		gen, err := set.For(format)
		if err != nil {
			t.Fatalf("format %s: %v", format, err)
		}
		if gen == nil {
			t.Fatalf("format %s: nil generator", format)
		}
		if _, err := gen.Render(context.Background(), NewDataset([]string{"id"}, Row{1}), &bytes.Buffer{}, RenderOptions{}); err != nil {
			t.Fatalf("format %s: render: %v", format, err)
		}
	}
}

func TestGeneratorSet_MissingGenerators(t *testing.T) {
	set := DefaultGenerators()

	if _, err := set.For(FormatPDF); !IsDegraded(err) {
		t.Fatalf("expected degraded error for missing document generator, got %v", err)
	}

	set.CSV = nil
	if _, err := set.For(FormatCSV); KindFromError(err) != KindNotImpl {
		t.Fatalf("expected not_implemented, got %v", err)
	}

	if _, err := set.For(Format("docx")); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
