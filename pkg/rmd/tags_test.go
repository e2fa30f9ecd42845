package rmd

import (
	"slices"
	"testing"
)

func TestTagSet(t *testing.T) {
	s := NewTagSet("abc123")
	s.Add("node:1", "rmd_data", "", "node:1")

	want := []string{"rmd_data", "rmd_data:profile:abc123", "node:1"}
	if got := s.Tags(); !slices.Equal(got, want) {
		t.Errorf("Tags() = %v, want %v", got, want)
	}
	if !s.Has("node:1") || s.Has("node:2") {
		t.Error("Has reports wrong membership")
	}

	tags := s.Tags()
	tags[0] = "changed"
	if s.Tags()[0] != "rmd_data" {
		t.Error("Tags() must return a copy")
	}
}

func TestCategories(t *testing.T) {
	keys := CategoryKeys()
	want := []string{
		"publications", "grants", "presentations", "performances",
		"master_advising_roles", "phd_advising_roles", "other_publications", "news_stories",
	}
	if !slices.Equal(keys, want) {
		t.Errorf("CategoryKeys() = %v, want %v", keys, want)
	}
	if label, ok := CategoryLabel("phd_advising_roles"); !ok || label != "PhD Advising Roles" {
		t.Errorf("CategoryLabel(phd_advising_roles) = %q, %v", label, ok)
	}
	if _, ok := CategoryLabel("awards"); ok {
		t.Error("unknown category should not have a label")
	}

	c := Categories()
	c[0].Label = "changed"
	if l, _ := CategoryLabel("publications"); l != "Publications" {
		t.Error("Categories() must return a copy")
	}
}
