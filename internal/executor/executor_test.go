package executor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestHTTPTransportDo(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("X-Request-Id", "req-1")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"balance":40}}`))
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL + "/")
	if err != nil {
		t.Fatalf("NewHTTPTransport: %v", err)
	}

	resp, err := transport.Do(context.Background(), &Request{
		Method:  "POST",
		URL:     "/accounts/1/spend?x=1",
		Headers: map[string]string{"Authorization": "Bearer abc"},
		Body:    strings.NewReader(`{"amount":50}`),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if gotMethod != "POST" || gotPath != "/accounts/1/spend?x=1" || gotAuth != "Bearer abc" || gotBody != `{"amount":50}` {
		t.Errorf("server saw %s %s auth=%q body=%q", gotMethod, gotPath, gotAuth, gotBody)
	}
	if resp.Status != http.StatusCreated {
		t.Errorf("status = %d", resp.Status)
	}
	if resp.Headers["x-request-id"] != "req-1" {
		t.Errorf("headers = %v", resp.Headers)
	}
}

func TestHTTPTransportCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: "s1", Path: "/"})
			return
		}
		if c, err := r.Cookie("sid"); err == nil {
			w.Write([]byte(c.Value))
		}
	}))
	defer server.Close()

	transport, err := NewHTTPTransport(server.URL)
	if err != nil {
		t.Fatalf("NewHTTPTransport: %v", err)
	}
	ctx := context.Background()

	if _, err := transport.Do(ctx, &Request{Method: "POST", URL: "/login", Credentials: true}); err != nil {
		t.Fatalf("login: %v", err)
	}

	with, _ := transport.Do(ctx, &Request{Method: "GET", URL: "/me", Credentials: true})
	without, _ := transport.Do(ctx, &Request{Method: "GET", URL: "/me"})
	if with.Text != "s1" {
		t.Errorf("credentialed request body = %q, want cookie value", with.Text)
	}
	if without.Text != "" {
		t.Errorf("plain request sent cookies: %q", without.Text)
	}
}

func TestHTTPTransportTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	transport, _ := NewHTTPTransport(server.URL, WithTimeout(20*time.Millisecond))
	if _, err := transport.Do(context.Background(), &Request{Method: "GET", URL: "/slow"}); err == nil {
		t.Error("expected timeout error")
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, path, want string
		wantErr          bool
	}{
		{"http://api", "/items", "http://api/items", false},
		{"http://api/", "items", "http://api/items", false},
		{"http://api/v1", "/items", "http://api/v1/items", false},
		{"http://api", "https://other/x", "https://other/x", false},
		{"", "/items", "/items", false},
		{"", "", "", true},
	}
	for _, tt := range tests {
		got, err := ResolveURL(tt.base, tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveURL(%q, %q) err = %v", tt.base, tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		resp      Response
		wantOK    bool
		wantData  any
		wantError string
	}{
		{"data body", Response{Status: 200, Text: `{"data":[{"id":1}]}`}, true, []any{map[string]any{"id": float64(1)}}, ""},
		{"error body", Response{Status: 422, Text: `{"error":{"message":"amount required"}}`}, false, nil, "amount required"},
		{"string error", Response{Status: 400, Text: `{"error":"bad"}`}, false, nil, "bad"},
		{"malformed body", Response{Status: 500, Text: "<html>oops"}, false, nil, "<html>oops"},
		{"empty body", Response{Status: 204, Text: ""}, true, nil, ""},
		{"array body", Response{Status: 200, Text: `[1,2]`}, true, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Normalize(&tt.resp)
			if env.OK != tt.wantOK {
				t.Errorf("ok = %v", env.OK)
			}
			if diff := cmp.Diff(tt.wantData, env.Data); diff != "" {
				t.Errorf("data mismatch (-want +got):\n%s", diff)
			}
			if env.ErrorMessage() != tt.wantError {
				t.Errorf("error = %q, want %q", env.ErrorMessage(), tt.wantError)
			}
			if env.Raw != tt.resp.Text {
				t.Errorf("raw = %q", env.Raw)
			}
		})
	}
}

func TestNormalizeEmptyBodyIsError(t *testing.T) {
	env := Normalize(&Response{Status: 204})
	body, ok := env.JSON.(map[string]any)
	if !ok || body["error"] == nil {
		t.Errorf("json = %#v, want synthesized error body", env.JSON)
	}
}

func TestFailure(t *testing.T) {
	env := Failure(io.ErrUnexpectedEOF)
	if env.OK || env.Status != 0 || env.ErrorMessage() != io.ErrUnexpectedEOF.Error() {
		t.Errorf("failure envelope = %+v", env)
	}
}

func TestMocked(t *testing.T) {
	env := Mocked([]any{"a"})
	if !env.OK || env.Status != 200 || !env.HasData {
		t.Errorf("mocked envelope = %+v", env)
	}
	if env.Raw != `{"data":["a"]}` {
		t.Errorf("raw = %q", env.Raw)
	}
}
