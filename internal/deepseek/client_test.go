package deepseek_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jxucoder/dsping/internal/deepseek"
)

const fixedBody = `{"model":"deepseek-chat","messages":[{"role":"user","content":"Hello from DeepSeek API!"}]}`

// newTestServer returns a server that replies with status and body and
// counts the requests it sees.
func newTestServer(t *testing.T, status int, body string, check func(*http.Request, []byte)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		reqBody, _ := io.ReadAll(r.Body)
		if check != nil {
			check(r, reqBody)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestClient(t *testing.T, url string) *deepseek.Client {
	t.Helper()
	c, err := deepseek.New("sk-test", deepseek.WithEndpoint(url))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_MissingCredential(t *testing.T) {
	for _, key := range []string{"", "   ", "\t\n"} {
		c, err := deepseek.New(key)
		if !errors.Is(err, deepseek.ErrMissingCredential) {
			t.Errorf("New(%q) error = %v, want ErrMissingCredential", key, err)
		}
		if c != nil {
			t.Errorf("New(%q) returned non-nil client", key)
		}
	}
}

func TestComplete_Success(t *testing.T) {
	srv, hits := newTestServer(t, http.StatusOK, `{"choices": [{"message": {"content": "hi"}}]}`,
		func(r *http.Request, body []byte) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
				t.Errorf("Authorization = %q, want %q", got, "Bearer sk-test")
			}
			if got := r.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", got)
			}
		})

	got, err := newTestClient(t, srv.URL).Complete(context.Background())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "hi" {
		t.Errorf("content = %q, want %q", got, "hi")
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
}

func TestComplete_APIError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusUnauthorized, `{"error": {"message": "invalid_api_key"}}`, nil)

	_, err := newTestClient(t, srv.URL).Complete(context.Background())
	var apiErr *deepseek.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", apiErr.StatusCode)
	}
	if apiErr.Message() != "invalid_api_key" {
		t.Errorf("Message() = %q", apiErr.Message())
	}
	want := "{\n  \"error\": {\n    \"message\": \"invalid_api_key\"\n  }\n}"
	if got := apiErr.Pretty(); got != want {
		t.Errorf("Pretty() =\n%s\nwant\n%s", got, want)
	}
}

func TestComplete_ParseError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadGateway, "<html>502</html>", nil)

	_, err := newTestClient(t, srv.URL).Complete(context.Background())
	var parseErr *deepseek.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if string(parseErr.Raw) != "<html>502</html>" {
		t.Errorf("Raw = %q", parseErr.Raw)
	}
	if parseErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want 502", parseErr.StatusCode)
	}
}

func TestComplete_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).Complete(context.Background())
	var transportErr *deepseek.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
}

func TestComplete_CanceledContext(t *testing.T) {
	srv, hits := newTestServer(t, http.StatusOK, `{"choices":[{"message":{"content":"hi"}}]}`, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, srv.URL).Complete(ctx)
	var transportErr *deepseek.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want it to wrap context.Canceled", err)
	}
	if n := hits.Load(); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
}

func TestComplete_FixedPayload(t *testing.T) {
	// Variables a careless implementation might pick up.
	t.Setenv("DEEPSEEK_MODEL", "deepseek-reasoner")
	t.Setenv("DEEPSEEK_PROMPT", "something else")

	var (
		mu     sync.Mutex
		bodies [][]byte
	)
	srv, _ := newTestServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`,
		func(_ *http.Request, body []byte) {
			mu.Lock()
			bodies = append(bodies, body)
			mu.Unlock()
		})

	c := newTestClient(t, srv.URL)
	for i := 0; i < 3; i++ {
		if _, err := c.Complete(context.Background()); err != nil {
			t.Fatalf("Complete #%d: %v", i, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 3 {
		t.Fatalf("got %d request bodies, want 3", len(bodies))
	}
	for i, b := range bodies {
		if got := string(bytes.TrimSpace(b)); got != fixedBody {
			t.Errorf("body #%d = %s, want %s", i, got, fixedBody)
		}
	}
}
