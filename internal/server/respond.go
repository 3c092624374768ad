package server

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// messageResp is the body of every failure response and of the create
// responses: always a JSON object with at least a message field.
type messageResp struct {
	Message    string `json:"message"`
	AnimalID   string `json:"animalId,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// clientError reports an expected, caller-caused failure. Not an incident:
// no server-side error logging.
func (s *Server) clientError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResp{Message: message})
}

// serverError reports an unexpected failure: the client sees only the
// generic message, the full detail goes to the log with the request id and
// operation name.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, op, message string, err error) {
	s.log.Error(op+" failed", map[string]any{
		"request_id": chimw.GetReqID(r.Context()),
		"op":         op,
	}, err)
	writeJSON(w, http.StatusInternalServerError, messageResp{Message: message})
}
