package mocks

import (
	"bytes"
	"io"
	"net/http"
)

// HTTPTransport implements http.RoundTripper so client code can be tested
// against stubbed responses without a listening server
type HTTPTransport struct {
	// Control behavior
	RoundTripFunc func(req *http.Request) (*http.Response, error)

	// Call tracking
	CallCount   int
	LastRequest *http.Request
}

// RoundTrip implements the http.RoundTripper interface
func (m *HTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.CallCount++
	m.LastRequest = req

	if m.RoundTripFunc != nil {
		return m.RoundTripFunc(req)
	}

	// Default response
	return JSONResponse(200, `{}`), nil
}

// Client wraps the transport in a ready-to-use http.Client
func (m *HTTPTransport) Client() *http.Client {
	return &http.Client{Transport: m}
}

// JSONResponse builds an HTTP response with a JSON body for RoundTripFunc helpers
func JSONResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}
