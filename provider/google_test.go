package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZaguanLabs/rtlify"
)

func newTestGoogle(t *testing.T, handler http.HandlerFunc) *GoogleProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGoogleProvider(GoogleConfig{Endpoint: srv.URL, Timeout: 2 * time.Second})
}

func TestGoogleProvider_Request(t *testing.T) {
	var gotQuery map[string]string
	var gotUA string

	p := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k, v := range r.URL.Query() {
			gotQuery[k] = v[0]
		}
		gotUA = r.UserAgent()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[["سلام","Hello",null,null,10]],null,"en"]`))
	})

	got, err := p.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "fa"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "سلام" {
		t.Errorf("Expected 'سلام', got %q", got)
	}

	want := map[string]string{"client": "gtx", "sl": "auto", "tl": "fa", "dt": "t", "q": "Hello"}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
	if gotUA != DefaultBrowserUserAgent {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestGoogleProvider_SourceLang(t *testing.T) {
	var sl string
	p := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		sl = r.URL.Query().Get("sl")
		_, _ = w.Write([]byte(`[[["x"]]]`))
	})

	if _, err := p.Translate(context.Background(), TranslateRequest{Text: "a", SourceLang: "en", TargetLang: "fa"}); err != nil {
		t.Fatal(err)
	}
	if sl != "en" {
		t.Errorf("sl = %q, want 'en'", sl)
	}
}

func TestGoogleProvider_StatusIsRetryable(t *testing.T) {
	p := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := p.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "fa"})

	var perr *rtlify.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ProviderError, got %v", err)
	}
	if perr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d", perr.StatusCode)
	}
	if !rtlify.IsRetryable(err) {
		t.Error("Non-2xx status should be retryable")
	}
}

func TestGoogleProvider_MalformedIsFatal(t *testing.T) {
	p := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>captcha</html>`))
	})

	_, err := p.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "fa"})

	if !errors.Is(err, rtlify.ErrMalformedResponse) {
		t.Fatalf("Expected ErrMalformedResponse, got %v", err)
	}
	if rtlify.IsRetryable(err) {
		t.Error("Malformed response should not be retryable")
	}
}

func TestGoogleProvider_NetworkErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	p := NewGoogleProvider(GoogleConfig{Endpoint: endpoint, Timeout: time.Second})
	_, err := p.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "fa"})

	if err == nil {
		t.Fatal("Expected error from closed server")
	}
	if !rtlify.IsRetryable(err) {
		t.Errorf("Network error should be retryable: %v", err)
	}
}

func TestGoogleProvider_RetriedThroughWrapper(t *testing.T) {
	var calls int32
	p := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[[["درود"]]]`))
	})

	cfg := rtlify.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond}
	got, err := rtlify.NewRetryableProvider(p, cfg).Translate(context.Background(),
		TranslateRequest{Text: "Hi", TargetLang: "fa"})

	if err != nil {
		t.Fatalf("Expected success on third attempt, got %v", err)
	}
	if got != "درود" || atomic.LoadInt32(&calls) != 3 {
		t.Errorf("got %q after %d calls", got, atomic.LoadInt32(&calls))
	}
}

func TestParseGoogleResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"single segment", `[[["سلام","Hello"]]]`, "سلام", false},
		{"concatenates segments", `[[["جمله اول. ","First. "],["جمله دوم.","Second."]],null,"en"]`, "جمله اول. جمله دوم.", false},
		{"skips empty and null pieces", `[[["الف","a"],["",""],[null,"b"],["ب","c"]]]`, "الفب", false},
		{"empty segment list", `[[]]`, "", false},
		{"not json", `nope`, "", true},
		{"object", `{"a":1}`, "", true},
		{"empty array", `[]`, "", true},
		{"null segments", `[null]`, "", true},
		{"segment not array", `[["x"]]`, "", true},
		{"empty segment", `[[[]]]`, "", true},
		{"piece not string", `[[[1,"a"]]]`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGoogleResponse([]byte(tt.body))
			if tt.wantErr {
				if !errors.Is(err, rtlify.ErrMalformedResponse) {
					t.Errorf("Expected ErrMalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewGoogleProvider_Defaults(t *testing.T) {
	p := NewGoogleProvider(GoogleConfig{})

	if p.endpoint != DefaultGoogleEndpoint {
		t.Errorf("endpoint = %q", p.endpoint)
	}
	if p.clientID != "gtx" {
		t.Errorf("clientID = %q", p.clientID)
	}
	if p.client.Timeout != 15*time.Second {
		t.Errorf("timeout = %v", p.client.Timeout)
	}
}
