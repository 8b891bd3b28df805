package api

import (
	"encoding/json"
	"net/http"
)

// handleNLPStats exposes annotation server latency aggregates.
func (s *Server) handleNLPStats(w http.ResponseWriter, r *http.Request) {
	snap := s.nlpClient.StatsSnapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}
