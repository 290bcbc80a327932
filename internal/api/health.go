package api

import "net/http"

// handleHealth is the liveness probe. It reports process health only;
// database reachability surfaces through request errors, not here, so a
// degraded dependency does not take the whole pod out of rotation.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
