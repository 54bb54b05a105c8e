// Package httpx provides the JSON response envelopes used across the API.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body: code 0 on success, an HTTP-ish
// code plus message otherwise.
type Envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// JSON sends a raw JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK wraps data in the success envelope.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Code: 0, Msg: "success", Data: data})
}

// OKMsg wraps data in a success envelope with a custom message.
func OKMsg(w http.ResponseWriter, msg string, data any) {
	JSON(w, http.StatusOK, Envelope{Code: 0, Msg: msg, Data: data})
}

// Fail sends an error envelope whose code mirrors the HTTP status.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Envelope{Code: status, Msg: msg, Data: nil})
}

// InvalidAPIKey is the fixed bearer-token rejection body. It is the same
// for malformed, unknown-user and revoked tokens so a caller cannot probe
// which check failed.
func InvalidAPIKey(w http.ResponseWriter) {
	JSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid API key"})
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
