package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"eventlog/internal/event/domain"
)

// maxBodyBytes caps POST /api/events bodies.
const maxBodyBytes = 1 << 20

var errInvalidMetadata = errors.New("metadata is not valid JSON")

// decodeNewEvent reads a JSON or urlencoded form body. Absent fields stay nil and values are
// kept as text for the store to judge.
func decodeNewEvent(w http.ResponseWriter, r *http.Request) (domain.NewEvent, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		return decodeForm(r)
	}

	var in domain.NewEvent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return in, errors.New("empty body")
		}
		return in, fmt.Errorf("decode json body: %w", err)
	}
	return in, nil
}

func decodeForm(r *http.Request) (domain.NewEvent, error) {
	var in domain.NewEvent
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return in, fmt.Errorf("parse form body: %w", err)
	}
	in.Source = formValue(r, "source")
	in.EventType = formValue(r, "event_type")
	in.OccurredAt = formValue(r, "occurred_at")
	if v := formValue(r, "metadata"); v != nil {
		if !json.Valid([]byte(*v)) {
			return in, errInvalidMetadata
		}
		in.Metadata = json.RawMessage(*v)
	}
	return in, nil
}

// formValue returns nil for a field that is absent from the form.
func formValue(r *http.Request, key string) *string {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	return &v
}
