package upstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
)

// Decoder turns a 2xx body into the caller's value and extracts messages from error bodies.
type Decoder interface {
	Decode(status int, body []byte, out any) error
	ErrorMessage(body []byte) string
}

// CommerceEnvelope unwraps the commerce API's {code, data, total?, page?, size?} envelope.
type CommerceEnvelope struct{}

func (CommerceEnvelope) Decode(status int, body []byte, out any) error {
	payload := body
	if fields, ok := objectFields(body); ok {
		_, hasCode := fields["code"]
		data, hasData := fields["data"]
		if hasCode && hasData {
			payload = data
			if isArray(data) && hasKeys(fields, "total", "page", "size") {
				paged, err := json.Marshal(map[string]json.RawMessage{
					"items": data,
					"total": fields["total"],
					"page":  fields["page"],
					"size":  fields["size"],
				})
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallbackMessage)
				}
				payload = paged
			}
		}
	} else if !json.Valid(body) {
		return pkgerrors.New(pkgerrors.CodeDependency, fallbackMessage).
			WithDetails(map[string]any{"status": status})
	}
	return decodeInto(status, payload, out)
}

func (CommerceEnvelope) ErrorMessage(body []byte) string {
	fields, ok := objectFields(body)
	if !ok {
		return ""
	}
	return stringField(fields, "message")
}

// IdentityEnvelope checks the identity API's {code, msg, data} envelope, which reports
// failures with HTTP 200 and a non-success code.
type IdentityEnvelope struct {
	// SuccessCodes defaults to {200, 201}.
	SuccessCodes []int
}

// StrictIdentityEnvelope accepts only code 200, as login and refresh require.
var StrictIdentityEnvelope = IdentityEnvelope{SuccessCodes: []int{http.StatusOK}}

func (e IdentityEnvelope) Decode(status int, body []byte, out any) error {
	fields, ok := objectFields(body)
	if !ok {
		if !json.Valid(body) {
			return pkgerrors.New(pkgerrors.CodeDependency, fallbackMessage).
				WithDetails(map[string]any{"status": status})
		}
		return decodeInto(status, body, out)
	}

	if code, present := envelopeCode(fields["code"]); present && !e.accepts(code) {
		message := stringField(fields, "msg")
		var cause error
		if message == "" {
			message = "SSO error " + code
			cause = ErrNoServerMessage
		}
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, cause, message).
			WithDetails(map[string]any{"status": status, "code": code})
	}

	payload := body
	if data, has := fields["data"]; has && !isNull(data) {
		payload = data
	}
	return decodeInto(status, payload, out)
}

func (e IdentityEnvelope) ErrorMessage(body []byte) string {
	fields, ok := objectFields(body)
	if !ok {
		return ""
	}
	if msg := stringField(fields, "msg"); msg != "" {
		return msg
	}
	return stringField(fields, "message")
}

func (e IdentityEnvelope) accepts(code string) bool {
	codes := e.SuccessCodes
	if len(codes) == 0 {
		codes = []int{http.StatusOK, http.StatusCreated}
	}
	for _, ok := range codes {
		if code == fmt.Sprint(ok) {
			return true
		}
	}
	return false
}

// envelopeCode reports the code as text; absent, null, zero, false and "" count as absent.
func envelopeCode(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || isNull(raw) {
		return "", false
	}
	var value any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&value); err != nil {
		return "", false
	}
	switch v := value.(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return "", false
		}
		return v.String(), true
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case bool:
		if !v {
			return "", false
		}
		return "true", true
	default:
		return string(raw), true
	}
}

func decodeInto(status int, payload []byte, out any) error {
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallbackMessage).
			WithDetails(map[string]any{"status": status})
	}
	return nil
}

func objectFields(body []byte) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

func hasKeys(fields map[string]json.RawMessage, keys ...string) bool {
	for _, key := range keys {
		if _, ok := fields[key]; !ok {
			return false
		}
	}
	return true
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
