package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tieubaoca/questbot-be/service"
	"github.com/tieubaoca/questbot-be/types"
)

// SessionHeader carries the client's session id. Every handler resolves
// its session from it; a missing header starts a fresh session whose id
// is echoed back on the response.
const SessionHeader = "X-Session-Id"

func resolveSession(store *service.SessionStore, w http.ResponseWriter, r *http.Request) *service.Session {
	session := store.Acquire(r.Header.Get(SessionHeader))
	w.Header().Set(SessionHeader, session.ID)
	return session
}

func sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.DataResponse{
		Status:  "error",
		Message: message,
	})
}

func sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(types.DataResponse{
		Status: "success",
		Data:   data,
	})
}

// sendMessage reports a handled condition as an inline message, not an
// error status. Used for input-format problems that degrade gracefully.
func sendMessage(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(types.DataResponse{
		Status:  "success",
		Message: message,
	})
}
