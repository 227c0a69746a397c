package lookup

import (
	"context"
	"fmt"
	"net/http"
)

// Request policy values carried on every RequestInit.
const (
	CacheDefault       = "default"
	CredentialsInclude = "include"
	ModeCORS           = "cors"
)

// RequestInit describes an outgoing lookup request. Cache, Credentials and
// Mode mirror the browser fetch policy the API expects; only Method and
// Header affect the Go request.
type RequestInit struct {
	Cache       string
	Credentials string
	Mode        string
	Method      string
	Header      http.Header
}

// RequestObject returns the descriptor for the next request. The
// Authorization header is only set when a non-empty token is available.
func (b *Base[T]) RequestObject() RequestInit {
	h := http.Header{}
	h.Set("Content-Type", "application/json")

	if b.auth != nil {
		if token := b.auth.AuthenticationToken(); token != "" {
			h.Set("Authorization", "Bearer "+token)
		}
	}

	return RequestInit{
		Cache:       CacheDefault,
		Credentials: CredentialsInclude,
		Mode:        ModeCORS,
		Method:      http.MethodGet,
		Header:      h,
	}
}

// NewRequest builds an HTTP request for url from init.
func NewRequest(ctx context.Context, url string, init RequestInit) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, init.Method, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range init.Header {
		req.Header[k] = append([]string(nil), v...)
	}
	return req, nil
}
