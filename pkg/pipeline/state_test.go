package pipeline

import (
	"reflect"
	"testing"
)

func TestStateOrderAndOverwrite(t *testing.T) {
	s := NewState(map[string]string{"topic": "t", "audience": "a"})
	s.Set("draft", "one")
	s.Set("draft", "two")

	if got := s.Fields(); !reflect.DeepEqual(got, []string{"audience", "topic", "draft"}) {
		t.Fatalf("unexpected order: %v", got)
	}
	if value, _ := s.Get("draft"); value != "two" {
		t.Fatalf("expected overwritten value, got %q", value)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 fields, got %d", s.Len())
	}

	snap := s.Snapshot()
	snap["draft"] = "changed"
	if value, _ := s.Get("draft"); value != "two" {
		t.Fatalf("snapshot must be a copy")
	}
}

func TestStateHasTreatsBlankAsAbsent(t *testing.T) {
	s := NewState(map[string]string{"blank": " \n", "empty": "", "set": "x"})
	if s.Has("blank") || s.Has("empty") || s.Has("missing") {
		t.Fatalf("blank, empty and missing fields must not count as present")
	}
	if !s.Has("set") {
		t.Fatalf("expected set field to be present")
	}
	if _, ok := s.Get("blank"); !ok {
		t.Fatalf("blank field should still be stored")
	}
}
