package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"papertrader/internal/types"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ServiceError is the error payload returned by the trader API surface.
type ServiceError struct {
	Message string             `json:"message"`
	Errors  []ServiceErrorItem `json:"errors,omitempty"`
}

type ServiceErrorItem struct {
	ID     string `json:"id,omitempty"`
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadJSON decodes the request body into v, rejecting unknown fields.
func ReadJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("request body must be valid JSON")
	}
	return nil
}

// WriteDomainError maps the closed error set onto the trader API error
// payload: not-found 404, invalid-input 400, anything else 500.
func WriteDomainError(w http.ResponseWriter, err error) {
	var nf *types.NotFoundError
	if errors.As(err, &nf) {
		WriteJSON(w, http.StatusNotFound, ServiceError{
			Message: "An error message indicating the resource is not found",
			Errors: []ServiceErrorItem{{
				ID:     nf.ID,
				Status: http.StatusNotFound,
				Title:  "Not Found",
				Detail: "The requested " + lower(nf.Resource) + " does not exist",
			}},
		})
		return
	}
	var ii *types.InvalidInputError
	if errors.As(err, &ii) {
		WriteJSON(w, http.StatusBadRequest, ServiceError{
			Message: "An error message indicating the validation problem with the request",
			Errors: []ServiceErrorItem{{
				Status: http.StatusBadRequest,
				Title:  "Bad Request",
				Detail: ii.Reason,
			}},
		})
		return
	}
	WriteJSON(w, http.StatusInternalServerError, ServiceError{
		Message: "An error message indicating there was an unexpected server error",
		Errors: []ServiceErrorItem{{
			Status: http.StatusInternalServerError,
			Title:  "Internal Server Error",
			Detail: err.Error(),
		}},
	})
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
