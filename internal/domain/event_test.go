package domain

import "testing"

func TestDecodeEventPayload(t *testing.T) {
	raw := []byte(`{"title":"Write report","description":null,"dueDate":null,"status":"pending"}`)
	payload, err := DecodeEventPayload(EventTodoUpdated, raw)
	if err != nil {
		t.Fatalf("DecodeEventPayload: %v", err)
	}
	p, ok := payload.(*TodoUpdatedPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", payload)
	}
	if p.Title != "Write report" || p.Status != TodoPending {
		t.Fatalf("bad decode: %+v", p)
	}
}

func TestDecodeEventPayloadUnknownType(t *testing.T) {
	if _, err := DecodeEventPayload("TodoArchived", []byte(`{}`)); err == nil {
		t.Fatal("unknown event type accepted")
	}
}

func TestDecodeEventPayloadBadJSON(t *testing.T) {
	if _, err := DecodeEventPayload(EventTodoDeleted, []byte(`{`)); err == nil {
		t.Fatal("malformed payload accepted")
	}
}
