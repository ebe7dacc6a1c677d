package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZaguanLabs/rtlify"
)

const (
	// DefaultGoogleEndpoint is the public translate endpoint.
	DefaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"

	// DefaultBrowserUserAgent is sent instead of the Go default; the endpoint
	// rejects unknown agents more eagerly.
	DefaultBrowserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36"

	defaultGoogleClientID = "gtx"
	defaultGoogleTimeout  = 15 * time.Second
	maxResponseBytes      = 4 << 20
)

// GoogleProvider translates one string per request through the public
// Google translate endpoint.
type GoogleProvider struct {
	client    *http.Client
	endpoint  string
	clientID  string
	userAgent string
}

// GoogleConfig holds configuration for the Google provider.
type GoogleConfig struct {
	Endpoint   string        // Default: DefaultGoogleEndpoint
	ClientID   string        // Value of the client parameter (default: "gtx")
	UserAgent  string        // Default: DefaultBrowserUserAgent
	Timeout    time.Duration // Per-request timeout (default: 15s)
	HTTPClient *http.Client  // Optional; Timeout is ignored when set
}

// NewGoogleProvider creates a new Google provider.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	p := &GoogleProvider{
		client:    cfg.HTTPClient,
		endpoint:  cfg.Endpoint,
		clientID:  cfg.ClientID,
		userAgent: cfg.UserAgent,
	}

	if p.client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultGoogleTimeout
		}
		p.client = &http.Client{Timeout: timeout}
	}
	if p.endpoint == "" {
		p.endpoint = DefaultGoogleEndpoint
	}
	if p.clientID == "" {
		p.clientID = defaultGoogleClientID
	}
	if p.userAgent == "" {
		p.userAgent = DefaultBrowserUserAgent
	}

	return p
}

// Translate sends req.Text to the endpoint. Network failures and non-2xx
// responses are retryable; an unexpected body is not.
func (p *GoogleProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	source := req.SourceLang
	if source == "" {
		source = "auto"
	}

	params := url.Values{}
	params.Set("client", p.clientID)
	params.Set("sl", source)
	params.Set("tl", req.TargetLang)
	params.Set("dt", "t")
	params.Set("q", req.Text)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", &rtlify.ProviderError{
			Message: "building request",
			Cause:   err,
		}
	}
	httpReq.Header.Set("User-Agent", p.userAgent)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", &rtlify.ProviderError{
			Message:   "request failed",
			Cause:     err,
			Retryable: true,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &rtlify.ProviderError{
			Message:    "reading response",
			StatusCode: resp.StatusCode,
			Cause:      err,
			Retryable:  true,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &rtlify.ProviderError{
			Message:    "unexpected status",
			StatusCode: resp.StatusCode,
			Retryable:  true,
		}
	}

	return ParseGoogleResponse(body)
}

// ParseGoogleResponse extracts the translation from an endpoint response.
// The body is a nested array whose first entry lists segments; the first
// element of each segment is a translated piece. Non-empty pieces are
// joined in order.
func ParseGoogleResponse(body []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return "", malformed("response is not an array", err)
	}
	if len(top) == 0 || isNull(top[0]) {
		return "", malformed("missing segment list", nil)
	}

	var segments []json.RawMessage
	if err := json.Unmarshal(top[0], &segments); err != nil {
		return "", malformed("segment list is not an array", err)
	}

	var sb strings.Builder
	for i, raw := range segments {
		var parts []json.RawMessage
		if err := json.Unmarshal(raw, &parts); err != nil || len(parts) == 0 {
			return "", malformed(fmt.Sprintf("segment %d is not a non-empty array", i), err)
		}

		var piece *string
		if err := json.Unmarshal(parts[0], &piece); err != nil {
			return "", malformed(fmt.Sprintf("segment %d has no text", i), err)
		}
		if piece != nil {
			sb.WriteString(*piece)
		}
	}

	return sb.String(), nil
}

func malformed(msg string, cause error) error {
	if cause != nil {
		cause = fmt.Errorf("%w: %v", rtlify.ErrMalformedResponse, cause)
	} else {
		cause = rtlify.ErrMalformedResponse
	}
	return &rtlify.ProviderError{
		Message:   msg,
		Cause:     cause,
		Retryable: false,
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Verify GoogleProvider implements Provider
var _ Provider = (*GoogleProvider)(nil)
