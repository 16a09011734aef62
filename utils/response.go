package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"recipehub/apperr"
	"recipehub/globals"
)

// ExposeErrorDetails adds the underlying cause to error envelopes. main
// turns it off in production.
var ExposeErrorDetails = true

type M map[string]any

// Envelope wraps every JSON body except the user list and login result.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("encode response")
	}
}

// RespondWithData sends a success envelope.
func RespondWithData(w http.ResponseWriter, statusCode int, message string, data any) {
	RespondWithJSON(w, statusCode, Envelope{Success: true, Message: message, Data: data})
}

// RespondWithError maps err onto a status code and failure envelope.
// Internal errors are logged here so handlers don't have to.
func RespondWithError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	env := Envelope{Success: false, Message: apperr.Message(err)}
	if ExposeErrorDetails {
		env.Error = err.Error()
	}

	if status >= http.StatusInternalServerError {
		entry := logrus.WithError(err)
		if r != nil {
			entry = entry.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path})
			if id, ok := r.Context().Value(globals.RequestIDKey).(string); ok {
				entry = entry.WithField("requestId", id)
			}
		}
		entry.Error("request failed")
	}
	RespondWithJSON(w, status, env)
}
