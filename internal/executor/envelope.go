package executor

import (
	"encoding/json"

	"github.com/studiowebux/restui/internal/resolver"
	"github.com/studiowebux/restui/internal/types"
)

// Normalize turns a transport response into an envelope. Bodies that do
// not parse as JSON become {"error": {"message": <raw>}}.
func Normalize(resp *Response) *types.Envelope {
	env := &types.Envelope{
		OK:       IsSuccessStatus(resp.Status),
		Status:   resp.Status,
		Raw:      resp.Text,
		Headers:  resp.Headers,
		Duration: resp.Duration,
	}
	if env.Headers == nil {
		env.Headers = map[string]string{}
	}

	var parsed any
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		parsed = map[string]any{"error": map[string]any{"message": resp.Text}}
	}
	env.JSON = parsed

	if body, ok := parsed.(map[string]any); ok {
		if data, exists := body["data"]; exists {
			env.Data = data
			env.HasData = true
		}
		if errValue, exists := body["error"]; exists && errValue != nil {
			env.Error = errorBody(errValue)
		}
	}
	return env
}

// Failure builds the envelope of a request that produced no response
func Failure(err error) *types.Envelope {
	message := err.Error()
	return &types.Envelope{
		OK:      false,
		Status:  0,
		Error:   &types.ErrorBody{Message: message},
		Raw:     "",
		JSON:    map[string]any{"error": map[string]any{"message": message}},
		Headers: map[string]string{},
	}
}

// Local builds the synthetic success envelope of a local action
func Local() *types.Envelope {
	return &types.Envelope{
		OK:      true,
		Status:  200,
		Raw:     "ok",
		JSON:    map[string]any{},
		Headers: map[string]string{},
	}
}

// Mocked wraps a mock payload as if a read had returned {"data": payload}
func Mocked(payload any) *types.Envelope {
	return &types.Envelope{
		OK:      true,
		Status:  200,
		Data:    payload,
		HasData: true,
		Raw:     resolver.JSON(map[string]any{"data": payload}),
		JSON:    map[string]any{"data": payload},
		Headers: map[string]string{},
	}
}

func errorBody(value any) *types.ErrorBody {
	switch v := value.(type) {
	case string:
		return &types.ErrorBody{Message: v}
	case map[string]any:
		if msg, ok := v["message"]; ok {
			return &types.ErrorBody{Message: resolver.Stringify(msg)}
		}
	}
	return &types.ErrorBody{Message: resolver.Stringify(value)}
}
