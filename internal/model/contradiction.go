package model

import (
	"time"

	"github.com/google/uuid"
)

// ContradictionType enumerates the kinds of conflict the pipeline can emit.
type ContradictionType string

const (
	TypeNumeric   ContradictionType = "numeric"
	TypeModal     ContradictionType = "modal"
	TypeAuthority ContradictionType = "authority"
	TypeEntity    ContradictionType = "entity"
	TypeDate      ContradictionType = "date"
	TypeFinancial ContradictionType = "financial"
	TypeLocation  ContradictionType = "location"
	TypeQuantity  ContradictionType = "quantity"
	TypeSemantic  ContradictionType = "semantic"
)

// Severity enumerates the severity buckets a contradiction can be stored
// with. Low is part of the data model (SPEC_FULL.md Open Question 1) but is
// never produced by the current decision layer — reserved for a future rule
// class, not removed.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// SeverityForConfidence maps a 0-100 confidence percentage to the severity
// bucket required by SPEC_FULL.md's monotonicity invariant:
// confidence >= 90 => high; 50 <= confidence < 90 => medium; otherwise the
// pair is not stored at all (the caller must check ok).
func SeverityForConfidence(confidencePct float64) (sev Severity, ok bool) {
	switch {
	case confidencePct >= 90:
		return SeverityHigh, true
	case confidencePct >= 50:
		return SeverityMedium, true
	default:
		return "", false
	}
}

// Status enumerates the lifecycle state of a stored contradiction. The core
// pipeline always creates contradictions as StatusOpen; resolution is
// exposed as a data-model capability for the (out-of-scope) HTTP layer.
type Status string

const (
	StatusOpen         Status = "open"
	StatusAcknowledged Status = "acknowledged"
	StatusResolved     Status = "resolved"
	StatusWontFix      Status = "wont_fix"
)

// Contradiction is a detected conflict between exactly two clauses.
//
// Ownership is either a single document (DocID set, SessionID nil) or a
// comparison session spanning multiple documents (SessionID set; DocAID/
// DocBID record which source document each clause belongs to). Clause
// positions A and B are logically unordered. Single-document
// contradictions store the pair in PairKey order (ClauseAID < ClauseBID);
// session contradictions store the clause from DocAID as ClauseAID and the
// one from DocBID as ClauseBID.
type Contradiction struct {
	ID uuid.UUID `json:"id"`

	ClauseAID uuid.UUID `json:"clause_a_id"`
	ClauseBID uuid.UUID `json:"clause_b_id"`

	// Single-document ownership.
	DocID *uuid.UUID `json:"document_id,omitempty"`

	// Cross-document (comparison session) ownership.
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	DocAID    *uuid.UUID `json:"document_a_id,omitempty"`
	DocBID    *uuid.UUID `json:"document_b_id,omitempty"`

	Type        ContradictionType `json:"type"`
	Severity    Severity          `json:"severity"`
	Confidence  float64           `json:"confidence"` // 0-100
	Description string            `json:"description"`

	Status         Status     `json:"status"`
	ResolvedBy     *string    `json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ResolutionNote *string    `json:"resolution_note,omitempty"`

	DetectedAt time.Time `json:"detected_at"`
}

// PairKey returns the canonical, order-independent identity of the clause
// pair a Contradiction references — the two clause IDs sorted so that
// (a, b) and (b, a) produce the same key. Used by C10 to deduplicate rule
// pairs and to order the clause IDs of single-document contradictions (C8
// keys pairs with its own equivalent, decision.canonicalKey).
func PairKey(a, b uuid.UUID) [2]uuid.UUID {
	if lessUUID(b, a) {
		return [2]uuid.UUID{b, a}
	}
	return [2]uuid.UUID{a, b}
}

func lessUUID(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
