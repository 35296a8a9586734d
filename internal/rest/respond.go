package rest

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// WriteJSON encodes v and writes it with the given status. A trailing
// newline is appended, matching the wire behavior clients already parse.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

// WriteError writes msg in the client's negotiated format: a JSON error
// object when JSON is accepted, plain text otherwise.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if AcceptsJSON(r) {
		WriteJSON(w, status, map[string]string{"error": msg})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg + "\n"))
}

// marshalModel serializes a structured producer model. Types with custom
// marshalers (sets, timestamps, users) control their own wire shape.
func marshalModel(v any) ([]byte, error) {
	return json.Marshal(v)
}

// SeeOther issues a 303 redirect to location with optional query parameters.
func SeeOther(w http.ResponseWriter, location string, params url.Values) {
	if len(params) > 0 {
		location = location + "?" + params.Encode()
	}
	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusSeeOther)
}
