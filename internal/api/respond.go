package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "turnero/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeError maps service errors onto their status code. Anything that is
// not an HTTPError, and every IO error, is logged and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	httpErr, ok := apperrors.As(err)
	if !ok {
		logger.Error("request failed", zap.String("path", r.URL.Path), zap.String("request_id", RequestIDFromContext(r.Context())), zap.Error(err))
		writeErrorMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if httpErr.Kind == apperrors.KindIO {
		logger.Error("storage failure", zap.String("path", r.URL.Path), zap.String("request_id", RequestIDFromContext(r.Context())), zap.Error(err))
	}
	writeErrorMessage(w, httpErr.Code, httpErr.Message)
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
