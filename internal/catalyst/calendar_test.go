package catalyst

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadAndMarkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalysts.yaml")
	content := `catalysts:
  - date: "2026-09-02"
    title: "FOMC rate decision"
  - date: "2026-08-31"
    title: "US CPI release"
  - date: "2026-10-20"
    title: "Far future event"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cal, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	markers := cal.Markers(now)

	if len(markers) != 2 {
		t.Fatalf("markers = %v, want 2 entries", markers)
	}
	// отсортированы по дате: сначала CPI, потом FOMC
	if !strings.Contains(markers[0], "US CPI release") {
		t.Errorf("markers[0] = %q, want CPI first", markers[0])
	}
	if !strings.Contains(markers[1], "FOMC rate decision") {
		t.Errorf("markers[1] = %q, want FOMC second", markers[1])
	}
	for _, m := range markers {
		if strings.Contains(m, "Far future") {
			t.Errorf("event outside horizon leaked: %q", m)
		}
	}
}

func TestMarkers_NilCalendarIsSafe(t *testing.T) {
	var cal *Calendar
	if got := cal.Markers(time.Now()); got != nil {
		t.Errorf("nil calendar markers = %v, want nil", got)
	}
}

func TestLoad_BadDateFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalysts.yaml")
	content := `catalysts:
  - date: "not-a-date"
    title: "Broken"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error on malformed date")
	}
}
