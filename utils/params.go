package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"recipehub/apperr"
	"recipehub/globals"
)

const (
	DefaultLimit = 10
	// maxBodyBytes bounds JSON request bodies.
	maxBodyBytes = 1 << 20
)

// Pagination holds the limit/skip query values.
type Pagination struct {
	Limit int64
	Skip  int64
}

// ParsePagination reads ?limit= and ?skip=. A non-positive limit falls back
// to DefaultLimit, a limit above max is clamped to max, a negative skip
// becomes 0. Values that are not integers are rejected.
func ParsePagination(r *http.Request, max int64) (Pagination, error) {
	q := r.URL.Query()
	p := Pagination{Limit: DefaultLimit}

	if s := q.Get("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return p, apperr.BadRequest("limit must be an integer")
		}
		if n > 0 {
			p.Limit = n
		}
	}
	if s := q.Get("skip"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return p, apperr.BadRequest("skip must be an integer")
		}
		if n > 0 {
			p.Skip = n
		}
	}
	if max > 0 && p.Limit > max {
		p.Limit = max
	}
	return p, nil
}

// DecodeJSON reads a JSON body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.BadRequest("Request body is empty")
		}
		return &apperr.Error{Kind: apperr.KindBadRequest, Message: "Invalid request body", Err: err}
	}
	return nil
}

// GetUserIDFromRequest returns the authenticated subject, or "".
func GetUserIDFromRequest(r *http.Request) string {
	requestingUserID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || requestingUserID == "" {
		return ""
	}
	return requestingUserID
}
