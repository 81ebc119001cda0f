package server

import (
	"net/http"

	"github.com/VismaKosice/pension-engine/types"
)

// Problem is an RFC 7807 problem-details document.
type Problem struct {
	Type          string             `json:"type"`
	Title         string             `json:"title"`
	Status        int                `json:"status"`
	Detail        string             `json:"detail,omitempty"`
	InvalidParams []types.FieldError `json:"invalid_params,omitempty"`
}

// writeProblem writes a problem-details response.
func writeProblem(w http.ResponseWriter, status int, detail string, invalidParams []types.FieldError) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Type:          "about:blank",
		Title:         http.StatusText(status),
		Status:        status,
		Detail:        detail,
		InvalidParams: invalidParams,
	})
}
