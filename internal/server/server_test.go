package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/dutyboard/internal/database"
	"github.com/dukerupert/dutyboard/internal/model"
	"github.com/dukerupert/dutyboard/internal/schedule"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(db, schedule.DefaultConfig(), logger)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestScheduleAPIFlow(t *testing.T) {
	ts := setupTestServer(t)

	// Roster
	var people []model.Person
	for _, name := range []string{"Анна", "Борис", "Вера"} {
		resp := postJSON(t, ts.URL+"/api/people", map[string]string{"name": name})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create person: status %d", resp.StatusCode)
		}
		people = append(people, decodeJSON[model.Person](t, resp))
	}

	// The stock catalog is present.
	resp, err := http.Get(ts.URL + "/api/tasks")
	if err != nil {
		t.Fatalf("GET tasks: %v", err)
	}
	tasks := decodeJSON[[]model.Task](t, resp)
	if len(tasks) != 10 {
		t.Fatalf("expected 10 seed tasks, got %d", len(tasks))
	}

	// Generate September 2025.
	resp = postJSON(t, ts.URL+"/api/schedule/generate", map[string]int{"year": 2025, "month": 9})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate: status %d", resp.StatusCode)
	}
	result := decodeJSON[schedule.Result](t, resp)
	if result.Created == 0 {
		t.Fatal("generation created nothing")
	}

	// Month view matches.
	resp, err = http.Get(ts.URL + "/api/schedule/month?year=2025&month=9")
	if err != nil {
		t.Fatalf("GET month: %v", err)
	}
	month := decodeJSON[struct {
		Days map[string][]model.Assignment `json:"days"`
	}](t, resp)
	if len(month.Days) == 0 {
		t.Fatal("month view empty after generation")
	}

	// Complete one assignment on behalf of another member.
	first := month.Days["2025-09-01"]
	if len(first) == 0 {
		t.Fatal("no assignments on September 1st")
	}
	resp = postJSON(t, fmt.Sprintf("%s/api/assignments/%d/complete", ts.URL, first[0].ID), map[string]int64{"person_id": people[2].ID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("complete: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Completing a missing assignment is a 404, not an error.
	resp = postJSON(t, ts.URL+"/api/assignments/999999/complete", map[string]int64{"person_id": people[0].ID})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("complete missing: status %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	// Person week view.
	resp, err = http.Get(fmt.Sprintf("%s/api/people/%d/duties?week_start=2025-09-01", ts.URL, people[0].ID))
	if err != nil {
		t.Fatalf("GET duties: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("duties: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Wipe spares the completed assignment.
	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/schedule/month?year=2025&month=9", nil)
	if err != nil {
		t.Fatalf("build wipe request: %v", err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("wipe: %v", err)
	}
	wipe := decodeJSON[struct {
		Deleted int64 `json:"deleted"`
	}](t, resp)
	if wipe.Deleted != int64(result.Created-1) {
		t.Errorf("deleted = %d, want %d", wipe.Deleted, result.Created-1)
	}
}

func TestGenerateRejectsBadMonth(t *testing.T) {
	ts := setupTestServer(t)

	resp := postJSON(t, ts.URL+"/api/schedule/generate", map[string]int{"year": 2025, "month": 13})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
