package repository

import (
	"reflect"
	"testing"
)

func TestDedupeNames(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{"nil", nil, []string{}},
		{"already unique", []string{"go", "web"}, []string{"go", "web"}},
		{"duplicates collapse keeping order", []string{"go", "web", "go"}, []string{"go", "web"}},
		{"empty names dropped", []string{"", "go", ""}, []string{"go"}},
		{"all empty", []string{"", ""}, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := dedupeNames(tc.names)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
}
