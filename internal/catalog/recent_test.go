package catalog

import (
	"reflect"
	"testing"
)

func TestRecentTagsPush(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		push  [][]string
		want  []string
	}{
		{
			name:  "most recent first",
			limit: 5,
			push:  [][]string{{"a"}, {"b"}, {"c"}},
			want:  []string{"c", "b", "a"},
		},
		{
			name:  "duplicates collapse to front",
			limit: 5,
			push:  [][]string{{"a", "b"}, {"a"}},
			want:  []string{"a", "b"},
		},
		{
			name:  "bounded",
			limit: 2,
			push:  [][]string{{"a", "b", "c"}},
			want:  []string{"c", "b"},
		},
		{
			name:  "empty tags ignored",
			limit: 5,
			push:  [][]string{{"", "x"}},
			want:  []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRecentTags(tt.limit)
			for _, tags := range tt.push {
				r.Push(tags...)
			}
			if got := r.List(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("List() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecentTagsDefaultCap(t *testing.T) {
	r := NewRecentTags(0)
	for i := 0; i < DefaultRecentTagCap+5; i++ {
		r.Push(string(rune('a' + i)))
	}
	if r.Len() != DefaultRecentTagCap {
		t.Errorf("Len() = %d, want %d", r.Len(), DefaultRecentTagCap)
	}
}

func TestRecentTagsListIsCopy(t *testing.T) {
	r := NewRecentTags(3)
	r.Push("a")
	list := r.List()
	list[0] = "changed"
	if r.List()[0] != "a" {
		t.Error("List() exposes internal slice")
	}
}
