package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

func sampleEvent() *amqp.LedgerEvent {
	return &amqp.LedgerEvent{
		EventID:      "evt-1",
		Action:       amqp.ActionCreated,
		Entity:       amqp.EntityExpense,
		ID:           7,
		UserID:       3,
		AmountCents:  2540,
		Date:         "2026-03-01",
		Description:  "=HYPERLINK(\"x\")",
		CategoryName: "Groceries",
		OccurredAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func sampleCategory() core.Category {
	return core.Category{ID: 4, UserID: 3, Name: "Salary", IsIncome: true}
}

func TestEventRow(t *testing.T) {
	row := eventRow(sampleEvent())
	if len(row) != len(headerRow) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(headerRow))
	}
	want := []any{
		"2026-03-01T12:00:00Z", "evt-1", "created", "expense", int64(7), int64(3),
		"2026-03-01", "'=HYPERLINK(\"x\")", "Groceries", "expense", "25.40",
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d (%v) = %#v, want %#v", i, headerRow[i], row[i], want[i])
		}
	}
}

func TestEventRowCategory(t *testing.T) {
	ev := amqp.CategoryEvent(amqp.ActionDeleted, sampleCategory())
	row := eventRow(ev)
	if row[9] != "income" {
		t.Errorf("kind = %v, want income", row[9])
	}
	if row[10] != "" {
		t.Errorf("amount = %v, want empty for categories", row[10])
	}
	if row[8] != "Salary" {
		t.Errorf("category = %v, want Salary", row[8])
	}
}

func TestTextCell(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"coffee":    "coffee",
		"=1+1":      "'=1+1",
		"+39 phone": "'+39 phone",
		"-5":        "'-5",
		"@mention":  "'@mention",
	}
	for in, want := range cases {
		if got := textCell(in); got != want {
			t.Errorf("textCell(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuoteSheet(t *testing.T) {
	cases := map[string]string{
		"Ledger":      "Ledger",
		"My Ledger":   "'My Ledger'",
		"Bob's sheet": "'Bob''s sheet'",
	}
	for in, want := range cases {
		if got := quoteSheet(in); got != want {
			t.Errorf("quoteSheet(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewConfigErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, Config{SheetName: "Ledger", CredentialsJSON: "{}"}); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if _, err := New(ctx, Config{SpreadsheetID: "id", CredentialsJSON: "{}"}); err == nil {
		t.Fatal("expected error for missing sheet name")
	}
	_, err := New(ctx, Config{SpreadsheetID: "id", SheetName: "Ledger"})
	if err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
	_, err = New(ctx, Config{SpreadsheetID: "id", SheetName: "Ledger", CredentialsFile: filepath.Join(t.TempDir(), "missing.json")})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected file error, got %v", err)
	}
}

func TestLoadCredentialsPrefersJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := loadCredentials(Config{CredentialsJSON: `{"from":"env"}`, CredentialsFile: path})
	if err != nil || string(got) != `{"from":"env"}` {
		t.Fatalf("got %q, %v", got, err)
	}
	got, err = loadCredentials(Config{CredentialsFile: path})
	if err != nil || string(got) != `{"from":"file"}` {
		t.Fatalf("got %q, %v", got, err)
	}
}

// fakeSheets records the requests made against a stub Sheets endpoint.
type fakeSheets struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []map[string]any
	header   bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, body)

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, ":append"):
		_, _ = w.Write([]byte(`{"updates":{"updatedRange":"Ledger!A2:K2","updatedRows":1}}`))
	case r.Method == http.MethodGet && f.header:
		_, _ = w.Write([]byte(`{"range":"Ledger!A1:K1","values":[["occurred_at"]]}`))
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func newTestClient(t *testing.T, f *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return newClient(svc, Config{SpreadsheetID: "sheet-1", SheetName: "Ledger"})
}

func TestExportAppendsRow(t *testing.T) {
	f := &fakeSheets{}
	c := newTestClient(t, f)

	ref, err := c.Export(context.Background(), sampleEvent())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if ref != "Ledger!A2:K2" {
		t.Errorf("ref = %q", ref)
	}
	if len(f.requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(f.requests))
	}
	req := f.requests[0]
	if req.Method != http.MethodPost || !strings.Contains(req.URL.Path, "sheet-1") {
		t.Errorf("unexpected request %s %s", req.Method, req.URL.Path)
	}
	if got := req.URL.Query().Get("valueInputOption"); got != "USER_ENTERED" {
		t.Errorf("valueInputOption = %q", got)
	}
	values, _ := f.bodies[0]["values"].([]any)
	if len(values) != 1 {
		t.Fatalf("expected one row, got %v", f.bodies[0])
	}
	row, _ := values[0].([]any)
	if len(row) != len(headerRow) || row[1] != "evt-1" {
		t.Errorf("unexpected row %v", row)
	}
}

func TestExportRejectsInvalidEvent(t *testing.T) {
	f := &fakeSheets{}
	c := newTestClient(t, f)
	ev := sampleEvent()
	ev.EventID = ""
	if _, err := c.Export(context.Background(), ev); err == nil {
		t.Fatal("expected validation error")
	}
	if len(f.requests) != 0 {
		t.Errorf("invalid event reached the API")
	}
}

func TestEnsureHeader(t *testing.T) {
	f := &fakeSheets{}
	c := newTestClient(t, f)
	if err := c.EnsureHeader(context.Background()); err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}
	if len(f.requests) != 2 || f.requests[1].Method != http.MethodPut {
		t.Fatalf("expected read then write, got %d requests", len(f.requests))
	}

	f2 := &fakeSheets{header: true}
	c2 := newTestClient(t, f2)
	if err := c2.EnsureHeader(context.Background()); err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}
	if len(f2.requests) != 1 {
		t.Errorf("header already present, expected only a read, got %d requests", len(f2.requests))
	}
}
