package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hana-yusof/lawcheck/internal/common"
	"github.com/hana-yusof/lawcheck/internal/repository"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates application errors into a consistent JSON envelope.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"

	var appErr *common.AppError
	switch {
	case errors.Is(err, repository.ErrNotFound) || errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
		code = "NOT_FOUND"
	case errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
		code = "INVALID_INPUT"
	case errors.As(err, &appErr):
		code = appErr.Code
		if code == "INVALID_INPUT" {
			status = http.StatusBadRequest
		}
	}

	writeJSON(w, status, map[string]string{
		"error":   code,
		"message": err.Error(),
	})
}
