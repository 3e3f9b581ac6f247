package workflow

import (
	"github.com/vnagri/claimfusion/internal/claim"
	"github.com/vnagri/claimfusion/internal/resolver"
)

// DebugInfo accumulates non-fatal failures encountered while running a
// Workflow, so a partial result still carries an explanation.
type DebugInfo struct {
	Errors    []string
	Cancelled bool
}

// State is the shared record threaded through the search -> extract ->
// resolve -> writer pipeline.
type State struct {
	Crop           string
	Query          string
	SearchResults  []string
	Claims         []claim.Claim
	ResolvedClaims []resolver.ResolvedClaim
	Summary        string
	DebugInfo      DebugInfo
}
