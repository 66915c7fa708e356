package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/carebook-io/carebook/internal/validation"
	"github.com/go-chi/chi/v5"
)

// StatusResourceValidation is returned when appointment or doctor input
// fails validation. Existing clients depend on it.
const StatusResourceValidation = http.StatusPaymentRequired

const maxBodyBytes = 1 << 20

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"message": message})
}

// writeData sends message together with a presented payload.
func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{"message": message, "data": data})
}

// writeInternal logs err and answers with a generic message.
func writeInternal(w http.ResponseWriter, r *http.Request, message string, err error) {
	log.Printf("[API] %s %s: %s: %v", r.Method, r.URL.Path, message, err)
	writeMessage(w, http.StatusInternalServerError, message)
}

// writeValidation answers with the per-field error map. Any other error is
// an internal failure.
func writeValidation(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		writeInternal(w, r, "Internal server error", err)
		return
	}
	writeJSON(w, status, envelope{"message": message, "errors": verrs})
}

// decodeInput reads a JSON or form encoded body into a generic map. An empty
// body decodes to an empty map.
func decodeInput(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	input := make(map[string]any)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return nil, false
		}
		for key, vals := range r.PostForm {
			if len(vals) > 0 {
				input[key] = vals[0]
			}
		}
		return input, true
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if input == nil {
		// a literal null body
		input = make(map[string]any)
	}
	return input, true
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func isValidation(err error) bool {
	var verrs validation.Errors
	return errors.As(err, &verrs)
}
