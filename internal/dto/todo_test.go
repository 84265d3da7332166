package dto

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDueDateFormats(t *testing.T) {
	var req UpdateTodoRequest
	if err := json.Unmarshal([]byte(`{"due_date":"2026-02-19"}`), &req); err != nil {
		t.Fatalf("date-only: %v", err)
	}
	got := req.DueDate.Ptr()
	want := time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Fatalf("date-only parsed as %v, want %v", got, want)
	}

	if err := json.Unmarshal([]byte(`{"due_date":"2026-02-19T15:04:05Z"}`), &req); err != nil {
		t.Fatalf("rfc3339: %v", err)
	}
	if got := req.DueDate.Ptr(); got == nil || got.Hour() != 15 {
		t.Fatalf("rfc3339 parsed as %v", got)
	}

	if err := json.Unmarshal([]byte(`{"due_date":"next tuesday"}`), &req); err == nil {
		t.Fatal("junk due_date accepted")
	}
}

func TestUpdateRequestTriState(t *testing.T) {
	var absent UpdateTodoRequest
	if err := json.Unmarshal([]byte(`{"title":"x"}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if absent.Description.IsSet() || absent.DueDate.IsSet() {
		t.Fatal("missing keys reported as set")
	}

	var cleared UpdateTodoRequest
	if err := json.Unmarshal([]byte(`{"description":null,"due_date":null}`), &cleared); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !cleared.Description.IsSet() || cleared.Description.Ptr() != nil {
		t.Fatal("explicit null description should be set with nil value")
	}
	if !cleared.DueDate.IsSet() || cleared.DueDate.Ptr() != nil {
		t.Fatal("explicit null due_date should be set with nil value")
	}

	var set UpdateTodoRequest
	if err := json.Unmarshal([]byte(`{"description":"details"}`), &set); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !set.Description.IsSet() || set.Description.Ptr() == nil || *set.Description.Ptr() != "details" {
		t.Fatal("description value lost")
	}
}
