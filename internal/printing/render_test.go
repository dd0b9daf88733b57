package printing

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRenderVisitSlip(t *testing.T) {
	payload, _ := json.Marshal(map[string]interface{}{
		"visit_date":   "2026-03-02",
		"queue_number": 7,
		"patient_name": "Budi Santoso",
	})

	text, err := Render("visit_slip", payload)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(text, "ANTRIAN KLINIK") {
		t.Fatalf("expected header, got:\n%s", text)
	}
	if !strings.Contains(text, "NO. 007") {
		t.Fatalf("expected padded queue number, got:\n%s", text)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	if _, err := Render("boarding_pass", []byte(`{}`)); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestRenderRejectsBadPayload(t *testing.T) {
	if _, err := Render("visit_slip", []byte(`not json`)); err == nil {
		t.Fatalf("expected error for invalid payload")
	}
}
