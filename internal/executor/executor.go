package executor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultTimeout applies when no timeout option is given
const DefaultTimeout = 30 * time.Second

// Request is what the pipeline hands to a transport
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    io.Reader

	// Credentials sends and records cookies through the transport's jar
	Credentials bool
}

// Response is the raw transport result before normalization
type Response struct {
	Status   int
	Text     string
	Headers  map[string]string
	Duration int64
}

// Transport performs one request/response round trip.
// A returned error means the request never produced a response.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TLSConfig holds TLS/mTLS settings for outgoing connections
type TLSConfig struct {
	CertFile           string `yaml:"certFile,omitempty"`
	KeyFile            string `yaml:"keyFile,omitempty"`
	CAFile             string `yaml:"caFile,omitempty"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify,omitempty"`
}

// HTTPTransport sends requests over HTTP relative to a base URL
type HTTPTransport struct {
	BaseURL string

	client     *http.Client
	credClient *http.Client
}

// HTTPOption configures an HTTPTransport
type HTTPOption func(*httpOptions)

type httpOptions struct {
	timeout time.Duration
	tls     *TLSConfig
}

// WithTimeout sets the client timeout. Zero disables it.
func WithTimeout(d time.Duration) HTTPOption {
	return func(o *httpOptions) { o.timeout = d }
}

// WithTLS configures TLS for https base URLs
func WithTLS(cfg *TLSConfig) HTTPOption {
	return func(o *httpOptions) { o.tls = cfg }
}

// NewHTTPTransport creates a transport resolving relative paths against baseURL
func NewHTTPTransport(baseURL string, opts ...HTTPOption) (*HTTPTransport, error) {
	o := httpOptions{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if o.tls != nil {
		tlsCfg, err := buildTLSConfig(o.tls)
		if err != nil {
			return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
		}
		transport.TLSClientConfig = tlsCfg
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &HTTPTransport{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: o.timeout, Transport: transport},
		credClient: &http.Client{Timeout: o.timeout, Transport: transport, Jar: jar},
	}, nil
}

// Do performs the request
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	startTime := time.Now()

	target, err := ResolveURL(t.BaseURL, req.URL)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	client := t.client
	if req.Credentials {
		client = t.credClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Header names are lower-cased for store mappings
	headers := make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		headers[strings.ToLower(key)] = strings.Join(values, ", ")
	}

	return &Response{
		Status:   resp.StatusCode,
		Text:     string(bodyBytes),
		Headers:  headers,
		Duration: time.Since(startTime).Milliseconds(),
	}, nil
}

// ResolveURL joins a relative path onto base. Absolute URLs pass through.
func ResolveURL(base, path string) (string, error) {
	if strings.Contains(path, "://") {
		return path, nil
	}
	if base == "" {
		if path == "" {
			return "", fmt.Errorf("empty request path")
		}
		return path, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(u.String(), "/") + path, nil
}

// buildTLSConfig creates a TLS configuration with optional client and CA certificates
func buildTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	// Load client certificate if provided (for mTLS)
	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	// Load CA certificate if provided (for server verification)
	if cfg.CAFile != "" {
		caCert, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		tlsCfg.RootCAs = caCertPool
	}

	return tlsCfg, nil
}

// FormatDuration formats duration in milliseconds to human-readable string
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	seconds := float64(ms) / 1000.0
	return fmt.Sprintf("%.2fs", seconds)
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
