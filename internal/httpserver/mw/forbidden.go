package mw

import (
	"encoding/json"
	"net/http"
)

type deniedResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// deny answers 403 in the same JSON shape the item API uses for errors.
func deny(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(deniedResponse{Error: "forbidden", Reason: reason})
}
