package server_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"pdfsummarybot/internal/server"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot/models"
)

const testSecret = "s3cret"

type stubHandler struct {
	mu      sync.Mutex
	updates []*models.Update
	ctxErrs []error
}

func (s *stubHandler) HandleUpdate(ctx context.Context, update *models.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update)
	s.ctxErrs = append(s.ctxErrs, ctx.Err())
}

func (s *stubHandler) received() []*models.Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*models.Update(nil), s.updates...)
}

func serve(t *testing.T, h *stubHandler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := server.New(h, testSecret, slog.Default()).Router()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	return rr
}

func TestIndexReportsLiveness(t *testing.T) {
	rr := serve(t, &stubHandler{}, http.MethodGet, "/", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != server.IndexText {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

func TestWebhookForwardsUpdate(t *testing.T) {
	h := &stubHandler{}
	body := `{
		"update_id": 100,
		"message": {
			"message_id": 5,
			"date": 1700000000,
			"chat": {"id": 42, "type": "private"},
			"document": {
				"file_id": "file-1",
				"file_unique_id": "u1",
				"file_name": "report.pdf",
				"mime_type": "application/pdf",
				"file_size": 2048
			}
		}
	}`

	rr := serve(t, h, http.MethodPost, "/webhook/"+testSecret, body)

	if rr.Code != http.StatusOK || rr.Body.String() != server.AckText {
		t.Fatalf("unexpected response: %d %q", rr.Code, rr.Body.String())
	}

	updates := h.received()
	if len(updates) != 1 {
		t.Fatalf("expected one update, got %d", len(updates))
	}

	update := updates[0]
	if update.ID != 100 || update.Message == nil || update.Message.Document == nil {
		t.Fatalf("unexpected update: %+v", update)
	}
	if update.Message.Chat.ID != 42 {
		t.Fatalf("unexpected chat id: %d", update.Message.Chat.ID)
	}
	if update.Message.Document.FileName != "report.pdf" || update.Message.Document.MimeType != "application/pdf" {
		t.Fatalf("unexpected document: %+v", update.Message.Document)
	}
}

func TestWebhookAcknowledgesMalformedJSON(t *testing.T) {
	h := &stubHandler{}

	rr := serve(t, h, http.MethodPost, "/webhook/"+testSecret, `{"update_id": 1, "message": `)

	if rr.Code != http.StatusOK || rr.Body.String() != server.AckText {
		t.Fatalf("unexpected response: %d %q", rr.Code, rr.Body.String())
	}
	if got := len(h.received()); got != 0 {
		t.Fatalf("expected no downstream calls, got %d", got)
	}
}

func TestWebhookRejectsWrongSecret(t *testing.T) {
	h := &stubHandler{}

	rr := serve(t, h, http.MethodPost, "/webhook/guess", `{"update_id": 1}`)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
	if got := len(h.received()); got != 0 {
		t.Fatalf("expected no downstream calls, got %d", got)
	}
}

func TestWebhookRejectsGet(t *testing.T) {
	h := &stubHandler{}

	rr := serve(t, h, http.MethodGet, "/webhook/"+testSecret, "")

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rr.Code)
	}
	if got := len(h.received()); got != 0 {
		t.Fatalf("expected no downstream calls, got %d", got)
	}
}

func TestWebhookDetachesFromRequestCancellation(t *testing.T) {
	h := &stubHandler{}
	router := server.New(h, testSecret, slog.Default()).Router()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequestWithContext(ctx, http.MethodPost, "/webhook/"+testSecret, strings.NewReader(`{"update_id": 7}`))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.ctxErrs) != 1 || h.ctxErrs[0] != nil {
		t.Fatalf("expected handler context to ignore client cancellation, got %v", h.ctxErrs)
	}
}
