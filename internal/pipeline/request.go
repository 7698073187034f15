package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/studiowebux/restui/internal/executor"
	"github.com/studiowebux/restui/internal/resolver"
	"github.com/studiowebux/restui/internal/types"
)

// RequestSpec is everything needed to send one request
type RequestSpec struct {
	Method      string
	Path        string
	Body        map[string]any
	Headers     map[string]string
	Auth        *types.Auth
	Credentials bool

	// Row is the template scope for headers when the body is empty
	Row map[string]any
}

// Send builds, performs and normalizes one request. It never returns a
// nil envelope; transport failures become status 0 envelopes.
func (p *Pipeline) Send(ctx context.Context, spec RequestSpec) *types.Envelope {
	method := strings.ToUpper(spec.Method)
	if method == "" {
		method = types.MethodGet
	}
	log := p.logger().WithFields(logrus.Fields{"method": method, "path": spec.Path})

	req, err := p.buildRequest(method, spec)
	if err != nil {
		log.WithError(err).Warn("failed to build request")
		return executor.Failure(err)
	}

	log.Debug("sending request")
	var env *types.Envelope
	resp, err := p.Transport.Do(ctx, req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		env = executor.Failure(err)
	} else {
		env = executor.Normalize(resp)
		log.WithField("status", env.Status).Debug("response received")
	}

	if p.Recorder != nil {
		if err := p.Recorder.Record(ctx, req.Method, req.URL, env); err != nil {
			log.WithError(err).Warn("failed to record history")
		}
	}
	return env
}

func (p *Pipeline) buildRequest(method string, spec RequestSpec) (*executor.Request, error) {
	headers := make(map[string]string)
	req := &executor.Request{
		Method:      method,
		URL:         spec.Path,
		Credentials: spec.Credentials,
	}

	switch method {
	case types.MethodUpload:
		body, contentType, err := multipartBody(spec.Body)
		if err != nil {
			return nil, err
		}
		req.Method = types.MethodPost
		req.Body = body
		setHeader(headers, "Content-Type", contentType)
	case types.MethodGet:
	default:
		payload := spec.Body
		if payload == nil {
			payload = map[string]any{}
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode body: %w", err)
		}
		req.Body = bytes.NewReader(encoded)
		setHeader(headers, "Content-Type", "application/json")
	}

	snapshot := p.Store.Snapshot()
	applyAuth(headers, spec.Auth, spec.Body, snapshot)

	// Declared headers go last so they can override
	scope := spec.Body
	if len(scope) == 0 {
		scope = spec.Row
	}
	keys := make([]string, 0, len(spec.Headers))
	for key := range spec.Headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		setHeader(headers, key, resolver.RenderTemplate(spec.Headers[key], scope, snapshot))
	}

	req.Headers = headers
	return req, nil
}

// setHeader stores a header under its canonical name so a later write
// replaces an earlier one regardless of case
func setHeader(headers map[string]string, key, value string) {
	headers[http.CanonicalHeaderKey(key)] = value
}

// applyAuth injects the Authorization header; key values come from body, then store
func applyAuth(headers map[string]string, auth *types.Auth, body, store map[string]any) {
	if auth == nil {
		return
	}
	switch strings.ToLower(auth.Mode) {
	case types.AuthBasic:
		user := resolver.Stringify(resolver.LookupValue(auth.UserKey, body, store))
		pass := resolver.Stringify(resolver.LookupValue(auth.PassKey, body, store))
		token := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
		setHeader(headers, "Authorization", "Basic "+token)
	case types.AuthBearer:
		token := resolver.Stringify(resolver.LookupValue(auth.TokenKey, body, store))
		setHeader(headers, "Authorization", "Bearer "+token)
	}
}

// multipartBody encodes truthy body values; file handles become file parts
func multipartBody(body map[string]any) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(body))
	for key := range body {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := body[key]
		if !resolver.Truthy(value) {
			continue
		}
		file, isFile := value.(types.FileHandle)
		if !isFile {
			if err := w.WriteField(key, resolver.Stringify(value)); err != nil {
				return nil, "", fmt.Errorf("failed to write field %s: %w", key, err)
			}
			continue
		}
		if err := writeFilePart(w, key, file); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, key string, file types.FileHandle) error {
	f, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file.Path, err)
	}
	defer f.Close()

	name := file.Name
	if name == "" {
		name = filepath.Base(file.Path)
	}
	part, err := w.CreateFormFile(key, name)
	if err != nil {
		return fmt.Errorf("failed to create file part %s: %w", key, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to copy %s: %w", file.Path, err)
	}
	return nil
}
