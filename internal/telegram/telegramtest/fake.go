// Package telegramtest provides an in-process fake of the Telegram Bot API.
package telegramtest

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const (
	Token    = "123456:TEST-token"
	FilePath = "documents/file_1.pdf"
)

type Call struct {
	Method string
	Values map[string]string
}

// FakeBotAPI answers Bot API methods and serves a single downloadable file.
type FakeBotAPI struct {
	URL string

	mu          sync.Mutex
	calls       []Call
	downloads   int
	fileSize    int64
	fileContent []byte
	webhookURL  string
}

// NewServer starts a fake that is closed when the test ends.
func NewServer(t *testing.T) *FakeBotAPI {
	t.Helper()

	f := &FakeBotAPI{}

	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	f.URL = srv.URL

	return f
}

// SetFile sets the bytes served for any file id and the size getFile reports.
func (f *FakeBotAPI) SetFile(content []byte, declaredSize int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fileContent = content
	f.fileSize = declaredSize
}

func (f *FakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if filePath, ok := strings.CutPrefix(r.URL.Path, "/file/bot"+Token+"/"); ok {
		f.mu.Lock()
		f.downloads++
		content := f.fileContent
		f.mu.Unlock()

		if filePath != FilePath {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(content)

		return
	}

	method, ok := strings.CutPrefix(r.URL.Path, "/bot"+Token+"/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	values := requestValues(r)

	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: method, Values: values})
	if method == "setWebhook" {
		f.webhookURL = values["url"]
	}
	result := f.resultFor(method, values)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"ok":true,"result":%s}`, result)
}

func (f *FakeBotAPI) resultFor(method string, values map[string]string) string {
	switch method {
	case "getMe":
		return `{"id":1,"is_bot":true,"first_name":"Test","username":"test_bot"}`
	case "sendMessage":
		text, _ := json.Marshal(values["text"])
		return fmt.Sprintf(`{"message_id":7,"date":0,"chat":{"id":%s,"type":"private"},"text":%s}`,
			values["chat_id"], text)
	case "getFile":
		fileID, _ := json.Marshal(values["file_id"])
		return fmt.Sprintf(`{"file_id":%s,"file_unique_id":"u1","file_size":%d,"file_path":%q}`,
			fileID, f.fileSize, FilePath)
	case "getWebhookInfo":
		webhookURL, _ := json.Marshal(f.webhookURL)
		return fmt.Sprintf(`{"url":%s,"has_custom_certificate":false,"pending_update_count":0}`, webhookURL)
	default:
		return "true"
	}
}

// Calls returns the recorded calls of one method, in order.
func (f *FakeBotAPI) Calls(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Call
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}

	return out
}

// SentTexts returns the text of every sendMessage call.
func (f *FakeBotAPI) SentTexts() []string {
	var texts []string
	for _, c := range f.Calls("sendMessage") {
		texts = append(texts, c.Values["text"])
	}

	return texts
}

func (f *FakeBotAPI) DownloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.downloads
}

func requestValues(r *http.Request) map[string]string {
	values := make(map[string]string)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				values[k] = v[0]
			}
		}
	case "application/json":
		raw, _ := io.ReadAll(r.Body)
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err == nil {
			for k, v := range m {
				values[k] = fmt.Sprint(v)
			}
		}
	default:
		if err := r.ParseForm(); err == nil {
			for k, v := range r.Form {
				values[k] = v[0]
			}
		}
	}

	return values
}
