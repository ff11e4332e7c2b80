package category

import (
	"testing"
)

// TestCategorize tests category derivation from URL paths.
func TestCategorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		url      string
		basePath string
		want     string
	}{
		{"base path itself", "https://docs.example.edu/arc", "/arc", "overview"},
		{"segment after base", "https://docs.example.edu/arc/services/great-lakes", "/arc", "services"},
		{"single segment after base", "https://docs.example.edu/arc/storage", "/arc", "storage"},
		{"site root with base", "https://docs.example.edu/", "/arc", "overview"},
		{"outside the base path", "https://docs.example.edu/about/contact", "/arc", "about"},
		{"base sibling prefix is not the base", "https://docs.example.edu/archive/old", "/arc", "archive"},
		{"no base path", "https://docs.example.edu/guides/login", "", "guides"},
		{"root with no base", "https://docs.example.edu/", "", "overview"},
		{"root base path", "https://docs.example.edu/guides", "/", "guides"},
		{"base without leading slash", "https://docs.example.edu/arc/hpc", "arc", "hpc"},
		{"unparseable URL", "://nope", "/arc", "overview"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Categorize(tt.url, tt.basePath)
			if got != tt.want {
				t.Errorf("Categorize(%q, %q) = %q, want %q", tt.url, tt.basePath, got, tt.want)
			}
		})
	}
}

// TestCategorizeDeterministic tests that repeated calls agree.
func TestCategorizeDeterministic(t *testing.T) {
	t.Parallel()

	url := "https://docs.example.edu/arc/services/great-lakes"
	first := Categorize(url, "/arc")
	for i := 0; i < 10; i++ {
		if got := Categorize(url, "/arc"); got != first {
			t.Fatalf("expected stable category, got %q then %q", first, got)
		}
	}
}

// TestGroup tests bucketing URLs by category.
func TestGroup(t *testing.T) {
	t.Parallel()

	t.Run("every URL lands in exactly one bucket", func(t *testing.T) {
		t.Parallel()

		urls := []string{
			"https://docs.example.edu/arc",
			"https://docs.example.edu/arc/services/great-lakes",
			"https://docs.example.edu/arc/services/lighthouse",
			"https://docs.example.edu/arc/storage",
		}

		categories := Group(urls, "/arc")

		if categories.PageCount() != len(urls) {
			t.Errorf("expected %d bucketed URLs, got %d", len(urls), categories.PageCount())
		}
		if len(categories["services"]) != 2 {
			t.Errorf("expected 2 service pages, got %v", categories["services"])
		}
		if len(categories["overview"]) != 1 {
			t.Errorf("expected 1 overview page, got %v", categories["overview"])
		}
		if len(categories["storage"]) != 1 {
			t.Errorf("expected 1 storage page, got %v", categories["storage"])
		}
	})

	t.Run("preserves input order within buckets", func(t *testing.T) {
		t.Parallel()

		urls := []string{
			"https://docs.example.edu/arc/services/armis2",
			"https://docs.example.edu/arc/services/great-lakes",
		}

		categories := Group(urls, "/arc")

		services := categories["services"]
		if len(services) != 2 || services[0] != urls[0] || services[1] != urls[1] {
			t.Errorf("expected input order preserved, got %v", services)
		}
	})

	t.Run("empty input yields empty buckets", func(t *testing.T) {
		t.Parallel()

		categories := Group(nil, "/arc")
		if len(categories) != 0 {
			t.Errorf("expected no buckets, got %v", categories)
		}
	})
}
