package httputil

import (
	"encoding/json"
	"net/http"
)

const problemContentType = "application/problem+json"

// problemTypes maps the statuses this API emits to their RFC 9110 definitions.
var problemTypes = map[int]string{
	http.StatusBadRequest:            "https://www.rfc-editor.org/rfc/rfc9110#name-400-bad-request",
	http.StatusUnauthorized:          "https://www.rfc-editor.org/rfc/rfc9110#name-401-unauthorized",
	http.StatusForbidden:             "https://www.rfc-editor.org/rfc/rfc9110#name-403-forbidden",
	http.StatusNotFound:              "https://www.rfc-editor.org/rfc/rfc9110#name-404-not-found",
	http.StatusConflict:              "https://www.rfc-editor.org/rfc/rfc9110#name-409-conflict",
	http.StatusRequestEntityTooLarge: "https://www.rfc-editor.org/rfc/rfc9110#name-413-content-too-large",
	http.StatusInternalServerError:   "https://www.rfc-editor.org/rfc/rfc9110#name-500-internal-server-error",
	http.StatusServiceUnavailable:    "https://www.rfc-editor.org/rfc/rfc9110#name-503-service-unavailable",
}

// Problem is an RFC 9457 problem document. Fields holds extension members,
// which are written beside the standard ones and can never replace them.
type Problem struct {
	Type   string
	Title  string
	Status int
	Detail string
	Fields map[string]any
}

// NewProblem builds the problem for status with a human-readable detail.
func NewProblem(status int, detail string) *Problem {
	typ, ok := problemTypes[status]
	if !ok {
		typ = "about:blank"
	}
	return &Problem{
		Type:   typ,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

// With adds an extension member and returns p for chaining.
func (p *Problem) With(key string, value any) *Problem {
	if p.Fields == nil {
		p.Fields = make(map[string]any)
	}
	p.Fields[key] = value
	return p
}

func (p *Problem) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Fields)+4)
	for k, v := range p.Fields {
		m[k] = v
	}
	m["type"] = p.Type
	m["title"] = p.Title
	m["status"] = p.Status
	if p.Detail != "" {
		m["detail"] = p.Detail
	} else {
		delete(m, "detail")
	}
	return json.Marshal(m)
}

// Write sends p with its own status code.
func (p *Problem) Write(w http.ResponseWriter) {
	writeBody(w, p.Status, problemContentType, p)
}

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	writeBody(w, status, "application/json", data)
}

// RespondError writes a problem document without extension members.
func RespondError(w http.ResponseWriter, status int, detail string) {
	NewProblem(status, detail).Write(w)
}

// RespondNoContent writes 204 with no body
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeBody marshals before touching headers so an encoding failure
// still yields a complete 500 response.
func writeBody(w http.ResponseWriter, status int, contentType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("failed to encode response"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	w.Write(payload)
}
