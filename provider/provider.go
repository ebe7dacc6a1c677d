// Package provider implements translation backends.
package provider

import "github.com/ZaguanLabs/rtlify"

// Provider is the interface for translation backends.
// This is an alias to the main package interface for convenience.
type Provider = rtlify.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = rtlify.TranslateRequest
