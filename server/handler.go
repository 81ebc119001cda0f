package server

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/VismaKosice/pension-engine/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// handleCalculationRequest evaluates a calculation request.
//
// Every request that decodes and passes schema validation gets a 200, whether
// the business outcome is SUCCESS or FAILURE.
func (s *Server) handleCalculationRequest(w http.ResponseWriter, r *http.Request) {
	var req types.CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.config.Collector.IncRequestRejected()
		writeProblem(w, http.StatusBadRequest, "request body is not valid JSON: "+err.Error(), nil)
		return
	}

	if fieldErrs := req.Validate(); len(fieldErrs) > 0 {
		s.config.Collector.IncRequestRejected()
		writeProblem(w, http.StatusBadRequest, "request failed schema validation", fieldErrs)
		return
	}

	resp := s.config.Evaluator.Evaluate(r.Context(), &req)
	writeJSON(w, http.StatusOK, resp)
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
