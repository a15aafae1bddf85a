package services

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"linkmark-backend/internal/models"
)

func TestDiffTagNames(t *testing.T) {
	tests := []struct {
		name        string
		current     []string
		requested   []string
		wantAdded   []string
		wantRemoved []string
	}{
		{
			"no change",
			[]string{"go", "web"},
			[]string{"go", "web"},
			nil, nil,
		},
		{
			"pure addition",
			[]string{"go"},
			[]string{"go", "web"},
			[]string{"web"}, nil,
		},
		{
			"pure removal",
			[]string{"go", "web"},
			[]string{"go"},
			nil, []string{"web"},
		},
		{
			"swap",
			[]string{"go", "web"},
			[]string{"go", "backend"},
			[]string{"backend"}, []string{"web"},
		},
		{
			"duplicates in request collapse",
			[]string{},
			[]string{"go", "go", "web"},
			[]string{"go", "web"}, nil,
		},
		{
			"empty names in request ignored",
			[]string{"go"},
			[]string{"", "go"},
			nil, nil,
		},
		{
			"clear all",
			[]string{"go", "web"},
			[]string{},
			nil, []string{"go", "web"},
		},
		{
			"from nothing",
			nil,
			[]string{"go"},
			[]string{"go"}, nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			added, removed := DiffTagNames(tc.current, tc.requested)
			if !reflect.DeepEqual(added, tc.wantAdded) {
				t.Errorf("Expected added %v, got %v", tc.wantAdded, added)
			}
			if !reflect.DeepEqual(removed, tc.wantRemoved) {
				t.Errorf("Expected removed %v, got %v", tc.wantRemoved, removed)
			}
		})
	}
}

func TestTagIDsAndResponses(t *testing.T) {
	a := models.Tag{ID: uuid.New(), Tagname: "go", Color: models.DefaultTagColor}
	b := models.Tag{ID: uuid.New(), Tagname: "web", Color: 123}

	ids := tagIDs([]models.Tag{a, b})
	if len(ids) != 2 || ids[0] != a.ID || ids[1] != b.ID {
		t.Errorf("Unexpected ids: %v", ids)
	}

	resps := tagResponses([]models.Tag{a, b})
	if len(resps) != 2 {
		t.Fatalf("Expected 2 responses, got %d", len(resps))
	}
	if resps[0].Tagname != "go" || resps[0].Color != models.DefaultTagColor {
		t.Errorf("Unexpected first response: %+v", resps[0])
	}
	if resps[1].Tagname != "web" || resps[1].Color != 123 {
		t.Errorf("Unexpected second response: %+v", resps[1])
	}

	if got := tagResponses(nil); got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", got)
	}
}

func TestOptional(t *testing.T) {
	if optional("") != nil {
		t.Error("Expected nil for empty string")
	}
	if p := optional("x"); p == nil || *p != "x" {
		t.Errorf("Expected pointer to 'x', got %v", p)
	}
}
