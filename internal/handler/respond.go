package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/motionhq/motion-go/internal/apperr"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type errorBody struct {
	Message    string              `json:"message"`
	StatusCode int                 `json:"statusCode"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

type errorEnvelope struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type successEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, successEnvelope{Success: true, Data: data, Message: message})
}

// writeError renders a typed failure; anything else becomes a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		slog.Error("unhandled error reached boundary", "error", err)
		appErr = apperr.Internal()
	}

	writeJSON(w, appErr.Status, errorEnvelope{
		Success: false,
		Error: errorBody{
			Message:    appErr.Message,
			StatusCode: appErr.Status,
			Errors:     appErr.Fields,
		},
	})
}

// decodeAndValidate parses the request body (capped at 1MB) into req and
// runs struct validation. Decode failures are 400s; validation failures are
// 422s with per-field details.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return &apperr.Error{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large"}
		}
		return apperr.BadRequest("Invalid request body")
	}

	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make(map[string][]string, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields[fe.Field()] = append(fields[fe.Field()], validationMessage(fe))
			}
			return apperr.UnprocessableEntity("Validation failed", fields)
		}
		return apperr.BadRequest("Invalid request body")
	}

	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "uuid4":
		return "must be a valid ID"
	default:
		return "is invalid"
	}
}
