// Package status exposes a small read-only JSON introspection endpoint over
// the fields BeliefSet publishes atomically (self score, partition size),
// so an operator can poll agent health without taking a lock the driver
// goroutine owns. Routed with gorilla/mux, grounded on this repository's
// existing net/http-based status surface.
package status

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"deliveroo/belief"
	"deliveroo/config"
)

// Snapshot is the JSON body served at GET /status.
type Snapshot struct {
	Mode config.Mode `json:"mode"`
	SelfScore float64 `json:"selfScore"`
	PartitionSize int `json:"partitionSize"`
}

// NewHandler builds the status router. b's concurrent-safe accessors
// (SelfScore, PartitionSize) are the only BeliefSet state touched here;
// every other BeliefSet field is owned exclusively by the driver goroutine
// and must never be read from this handler.
func NewHandler(b *belief.BeliefSet, mode config.Mode) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/status", func(w http.ResponseWriter, req *http.Request) {
		snap := Snapshot{
			Mode: mode,
			SelfScore: b.SelfScore(),
			PartitionSize: b.PartitionSize(),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}).Methods(http.MethodGet)
	return r
}
