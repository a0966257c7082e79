package api

import (
	"net/http"
	"time"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "OK",
		Message:   "Server is running",
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}
