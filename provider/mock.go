package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a mock provider for testing.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	Err          error             // Returned by every call when set
	CallCount    int               // Number of times Translate was called
	Calls        []string          // Texts received, in order
	LastRequest  *TranslateRequest // Last request received

	mu sync.Mutex
}

// NewMockProvider creates a new mock provider with default Persian translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                "سلام",
			"World":                "جهان",
			"Hello World":          "سلام دنیا",
			"Welcome to our site.": "به سایت ما خوش آمدید.",
			"Search":               "جستجو",
		},
	}
}

// Translate returns the mapped translation, or the text in brackets when
// none is known.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	m.Calls = append(m.Calls, req.Text)
	m.LastRequest = &req

	if m.Err != nil {
		return "", m.Err
	}

	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s]", req.Text), nil
}

// Reset resets the call count and recorded requests.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount = 0
	m.Calls = nil
	m.LastRequest = nil
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
