package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-intelligence/internal/detector"
	"github.com/insightdelivered/statement-intelligence/internal/models"
	"github.com/insightdelivered/statement-intelligence/internal/rules"
	"github.com/insightdelivered/statement-intelligence/internal/scheduler"
)

const statement = `Metro Bank
Date Description Money out Money in Balance
Opening Balance 1,000.00
01/01/2024 DD BRITISH GAS 45.00 955.00
01/02/2024 DD BRITISH GAS 45.50 909.50
01/03/2024 DD BRITISH GAS 44.80 864.70`

func plainText(_ context.Context, data []byte) (string, error) {
	return string(data), nil
}

func setupTestApp(t *testing.T, extract scheduler.ExtractFunc) (*fiber.App, *scheduler.Scheduler) {
	t.Helper()
	d, err := detector.New(detector.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	s := scheduler.New(d, zerolog.Nop(), scheduler.Options{Extract: extract})
	t.Cleanup(func() { s.Shutdown(context.Background()) })

	app := NewApp(&Handler{
		Scheduler: s,
		Rules:     rules.Default(),
		OwnerID:   "default",
		Version:   "test",
		Log:       zerolog.Nop(),
	})
	return app, s
}

// envelope mirrors Response for decoding; records are interfaces and are
// left out.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Run     *struct {
		ID        string           `json:"id"`
		SessionID string           `json:"sessionId"`
		Status    scheduler.Status `json:"status"`
		Error     string           `json:"error"`
		Result    *struct {
			Metadata     models.StatementMetadata  `json:"metadata"`
			Transactions []models.Transaction      `json:"transactions"`
			Patterns     []models.RecurringPattern `json:"patterns"`
		} `json:"result"`
	} `json:"run"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	body, _ := io.ReadAll(resp.Body)
	var out envelope
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", body, err)
	}
	return out
}

func TestHealthEndpoint(t *testing.T) {
	app, _ := setupTestApp(t, plainText)

	req := httptest.NewRequest("GET", "/api/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var result map[string]string
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", result["status"])
	}
	if result["engine"] != "fiber" {
		t.Errorf("expected engine=fiber, got %q", result["engine"])
	}
}

func TestAnalyzeEndpointRequiresStatement(t *testing.T) {
	app, _ := setupTestApp(t, plainText)

	tests := []struct {
		name        string
		contentType string
	}{
		{"empty multipart", "multipart/form-data; boundary=----test"},
		{"empty body", "text/plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/analyze", nil)
			req.Header.Set("Content-Type", tt.contentType)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
			if out := decode(t, resp); out.Success || out.Error == "" {
				t.Errorf("expected an error envelope, got %+v", out)
			}
		})
	}
}

func TestAnalyzeEndpoint_UnknownBank(t *testing.T) {
	app, _ := setupTestApp(t, plainText)

	req := httptest.NewRequest("POST", "/api/analyze?bank=credit-union", strings.NewReader(statement))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestAnalyzeEndpoint_WaitRawBody(t *testing.T) {
	app, _ := setupTestApp(t, plainText)

	req := httptest.NewRequest("POST", "/api/analyze?wait=true&session=s1&owner=alice", strings.NewReader(statement))
	req.Header.Set("Content-Type", "text/plain")
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	out := decode(t, resp)
	if !out.Success || out.Run == nil {
		t.Fatalf("unexpected response: %+v", out)
	}
	run := out.Run
	if run.SessionID != "s1" || run.Status != scheduler.StatusCompleted {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.Result == nil || len(run.Result.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %+v", run.Result)
	}
	if len(run.Result.Patterns) != 1 || run.Result.Patterns[0].Payee != "British Gas" {
		t.Errorf("expected one British Gas pattern, got %+v", run.Result.Patterns)
	}
	t.Logf("pattern: %+v", run.Result.Patterns[0])
}

func TestAnalyzeEndpoint_MultipartUpload(t *testing.T) {
	app, _ := setupTestApp(t, plainText)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "statement.txt")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(statement))
	mw.WriteField("session", "upload-1")
	mw.WriteField("bank", "metro")
	mw.Close()

	req := httptest.NewRequest("POST", "/api/analyze?wait=true", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	out := decode(t, resp)
	if out.Run.SessionID != "upload-1" {
		t.Errorf("session: got %q", out.Run.SessionID)
	}
	if out.Run.Result.Metadata.Bank != "metro" {
		t.Errorf("bank: got %q", out.Run.Result.Metadata.Bank)
	}
}

func TestAnalyzeEndpoint_FailedRun(t *testing.T) {
	failing := func(context.Context, []byte) (string, error) {
		return "", io.ErrUnexpectedEOF
	}
	app, _ := setupTestApp(t, failing)

	req := httptest.NewRequest("POST", "/api/analyze?wait=true", strings.NewReader("%PDF-1.4 broken"))
	req.Header.Set("Content-Type", "application/pdf")
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	out := decode(t, resp)
	if out.Success || out.Run.Status != scheduler.StatusFailed {
		t.Errorf("unexpected response: %+v", out)
	}
	if out.Run.SessionID == "" {
		t.Error("expected a generated session id")
	}
}

// blocking is an extractor that waits for release or cancellation.
func blocking(release <-chan struct{}) scheduler.ExtractFunc {
	return func(ctx context.Context, data []byte) (string, error) {
		select {
		case <-release:
			return string(data), nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	release := make(chan struct{})
	app, s := setupTestApp(t, blocking(release))

	post := func() *http.Response {
		req := httptest.NewRequest("POST", "/api/analyze?session=live", strings.NewReader(statement))
		req.Header.Set("Content-Type", "text/plain")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		return resp
	}

	if resp := post(); resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("first analyze: expected 202, got %d", resp.StatusCode)
	}
	if resp := post(); resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("second analyze: expected 409, got %d", resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/api/sessions/live", nil))
	if err != nil {
		t.Fatal(err)
	}
	if out := decode(t, resp); out.Run.Status != scheduler.StatusRunning {
		t.Errorf("expected running, got %q", out.Run.Status)
	}

	resp, err = app.Test(httptest.NewRequest("DELETE", "/api/sessions/live", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusAccepted {
		t.Errorf("cancel: expected 202, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	run, err := s.Wait(ctx, "live")
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != scheduler.StatusCancelled {
		t.Errorf("expected cancelled, got %q", run.Status)
	}
	close(release)

	// a finished session accepts a new run
	if resp := post(); resp.StatusCode != fiber.StatusAccepted {
		t.Errorf("rerun: expected 202, got %d", resp.StatusCode)
	}
}

func TestSessionEndpoints_NotFound(t *testing.T) {
	app, _ := setupTestApp(t, plainText)

	for _, method := range []string{"GET", "DELETE"} {
		t.Run(method, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(method, "/api/sessions/nope", nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != fiber.StatusNotFound {
				t.Errorf("expected 404, got %d", resp.StatusCode)
			}
		})
	}
}
