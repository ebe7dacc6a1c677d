package rtlify_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZaguanLabs/rtlify"
	"github.com/ZaguanLabs/rtlify/cache"
	"github.com/ZaguanLabs/rtlify/processor"
	"github.com/ZaguanLabs/rtlify/provider"
	"github.com/ZaguanLabs/rtlify/site"
	"github.com/go-redis/redismock/v9"
)

// Integration tests using all real components

func newGenerator(t *rtlify.Translator, opts ...processor.HTMLProcessorOption) *site.Generator {
	return site.NewGenerator(t,
		processor.NewHTMLProcessor(opts...),
		processor.NewRTLAdjuster(processor.DefaultRTLOptions()),
	)
}

func TestIntegration_LocalizePage(t *testing.T) {
	p := provider.NewMockProvider()
	g := newGenerator(rtlify.NewTranslator("fa", p), processor.WithPrettyPrint(false))

	page := `<html lang="en"><head><title>Hello</title><style>p { color: red }</style></head>` +
		`<body class="foo"><p>  Hello World  </p><script>var s = "Hello";</script>` +
		`<img alt="World" src="logo.png"></body></html>`

	out, res, err := g.Localize(context.Background(), strings.NewReader(page))
	if err != nil {
		t.Fatalf("Localize failed: %v", err)
	}

	for _, want := range []string{
		`<html lang="fa" dir="rtl">`,
		`<body class="foo rtl-body" dir="rtl">`,
		`<title>سلام</title>`,
		`<p>  سلام دنیا  </p>`,
		`var s = "Hello";`,
		`p { color: red }`,
		`alt="جهان"`,
		`<link rel="stylesheet" href="css/rtl.css"/>`,
		`<script src="js/rtl.js"></script>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}

	if res.Units != 3 || p.CallCount != 3 {
		t.Errorf("Expected 3 units and 3 calls, got %+v and %d calls", res, p.CallCount)
	}
}

func TestIntegration_RedisCacheAcrossRuns(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	rc := cache.NewRedisCacheFromClient(db, 0, "")
	key := "rtlify:" + rtlify.CacheKey("Hello", "fa")

	// First run misses and stores
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, "سلام", 0).SetVal("OK")

	first := provider.NewMockProvider()
	if _, _, err := newGenerator(rtlify.NewTranslator("fa", first, rtlify.WithCache(rc))).
		Localize(context.Background(), strings.NewReader(`<p>Hello</p>`)); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	// Second run, fresh translator, same Redis
	mock.ExpectGet(key).SetVal("سلام")

	second := provider.NewMockProvider()
	out, res, err := newGenerator(rtlify.NewTranslator("fa", second, rtlify.WithCache(rc))).
		Localize(context.Background(), strings.NewReader(`<p>Hello</p>`))
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if first.CallCount != 1 || second.CallCount != 0 {
		t.Errorf("Expected 1 then 0 provider calls, got %d and %d", first.CallCount, second.CallCount)
	}
	if res.Cached != 1 || !strings.Contains(out, "سلام") {
		t.Errorf("Expected cached translation, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestIntegration_CacheExportImport(t *testing.T) {
	page := `<p>Hello</p><p>World</p><input placeholder="Search">`

	runCache := cache.NewRunCache()
	first := provider.NewMockProvider()
	if _, _, err := newGenerator(rtlify.NewTranslator("fa", first, rtlify.WithCache(runCache))).
		Localize(context.Background(), strings.NewReader(page)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := cache.NewExporter(runCache).Export(&buf, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	restored := cache.NewRunCache()
	result, err := cache.NewImporter(restored).Import(&buf)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if result.Imported != 3 {
		t.Errorf("Expected 3 imported entries, got %d", result.Imported)
	}

	second := provider.NewMockProvider()
	if _, _, err := newGenerator(rtlify.NewTranslator("fa", second, rtlify.WithCache(restored))).
		Localize(context.Background(), strings.NewReader(page)); err != nil {
		t.Fatal(err)
	}
	if second.CallCount != 0 {
		t.Errorf("Expected no provider calls after import, got %d", second.CallCount)
	}
}

func TestIntegration_MalformedResponseIsFatal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"error":"unexpected"}`))
	}))
	defer srv.Close()

	p := rtlify.NewRetryableProvider(
		provider.NewGoogleProvider(provider.GoogleConfig{Endpoint: srv.URL}),
		rtlify.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond},
	)

	_, _, err := newGenerator(rtlify.NewTranslator("fa", p)).
		Localize(context.Background(), strings.NewReader(`<p>Hello</p>`))

	if !errors.Is(err, rtlify.ErrMalformedResponse) {
		t.Fatalf("Expected ErrMalformedResponse, got %v", err)
	}

	var terr *rtlify.TranslationError
	if !errors.As(err, &terr) || terr.Attempts != 1 {
		t.Errorf("Expected a single attempt, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected 1 request, got %d", atomic.LoadInt32(&calls))
	}
}

func TestIntegration_RateLimitedRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[[["سلام"]]]`))
	}))
	defer srv.Close()

	limited := rtlify.NewRateLimitedProvider(
		provider.NewGoogleProvider(provider.GoogleConfig{Endpoint: srv.URL}),
		rtlify.RateLimitConfig{RequestsPerMinute: 6000, BurstSize: 1},
	)
	p := rtlify.NewRetryableProvider(limited, rtlify.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond})

	got, err := rtlify.NewTranslator("fa", p).Translate(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "سلام" || atomic.LoadInt32(&calls) != 2 {
		t.Errorf("got %q after %d calls", got, atomic.LoadInt32(&calls))
	}
}
