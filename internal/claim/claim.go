// Package claim defines AgriClaim, the fundamental unit the fusion
// pipeline ingests, clusters, and resolves.
package claim

import (
	"fmt"
	"strings"
)

// Claim is a single structured factual assertion extracted from one
// source. Subject and Predicate are mandatory; Object and Context may be
// empty (qualitative or missing data). SourceURL is optional but any
// claim with an empty SourceURL is scored by the trust scorer as an
// "unknown source" (weight 0.5).
type Claim struct {
	Subject    string  `json:"subject" validate:"required"`
	Predicate  string  `json:"predicate" validate:"required"`
	Object     string  `json:"object,omitempty"`
	Context    string  `json:"context,omitempty"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
	SourceURL  string  `json:"source_url,omitempty"`
}

// New validates and constructs a Claim. Subject and Predicate must be
// non-empty after trimming; Confidence must fall in [0,1]. The original
// casing of every field is preserved — only the grouping keys (SubjectKey,
// PredicateKey) are case-folded.
func New(subject, predicate, object, context string, confidence float64, sourceURL string) (Claim, error) {
	subject = strings.TrimSpace(subject)
	predicate = strings.TrimSpace(predicate)
	if subject == "" {
		return Claim{}, fmt.Errorf("%w: subject must not be empty", ErrInvalid)
	}
	if predicate == "" {
		return Claim{}, fmt.Errorf("%w: predicate must not be empty", ErrInvalid)
	}
	if confidence < 0 || confidence > 1 {
		return Claim{}, fmt.Errorf("%w: confidence %.3f out of [0,1]", ErrInvalid, confidence)
	}
	return Claim{
		Subject:    subject,
		Predicate:  predicate,
		Object:     strings.TrimSpace(object),
		Context:    strings.TrimSpace(context),
		Confidence: confidence,
		SourceURL:  strings.TrimSpace(sourceURL),
	}, nil
}

// ErrInvalid is returned by New and Validate when a Claim's fields
// violate the schema invariants.
var ErrInvalid = fmt.Errorf("invalid claim")

// Validate re-checks an already-constructed Claim against the same
// invariants New enforces, for claims unmarshalled directly from JSON
// (e.g. LLM output) without going through the constructor.
func (c Claim) Validate() error {
	if strings.TrimSpace(c.Subject) == "" {
		return fmt.Errorf("%w: subject must not be empty", ErrInvalid)
	}
	if strings.TrimSpace(c.Predicate) == "" {
		return fmt.Errorf("%w: predicate must not be empty", ErrInvalid)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("%w: confidence %.3f out of [0,1]", ErrInvalid, c.Confidence)
	}
	return nil
}

// SubjectKey returns the case-folded, trimmed grouping key for Subject.
func (c Claim) SubjectKey() string {
	return foldKey(c.Subject)
}

// PredicateKey returns the case-folded, trimmed grouping key for Predicate.
func (c Claim) PredicateKey() string {
	return foldKey(c.Predicate)
}

// GroupKey returns the (subject_key, predicate_key) pair used to group
// claims into candidate clusters.
func (c Claim) GroupKey() GroupKey {
	return GroupKey{Subject: c.SubjectKey(), Predicate: c.PredicateKey()}
}

// DedupKey returns the raw-casing (subject, predicate, object) triple
// used by the extractor to deduplicate output. This intentionally does
// NOT use the case-folded grouping key.
func (c Claim) DedupKey() DedupKey {
	return DedupKey{Subject: c.Subject, Predicate: c.Predicate, Object: c.Object}
}

// ObjectKey returns the case-folded, trimmed Object, used for exact-match
// comparisons during judging and non-numeric fallback clustering.
func (c Claim) ObjectKey() string {
	return foldKey(c.Object)
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GroupKey identifies the candidate cluster a Claim belongs to.
type GroupKey struct {
	Subject   string
	Predicate string
}

// DedupKey identifies a claim for extractor-level deduplication.
type DedupKey struct {
	Subject   string
	Predicate string
	Object    string
}
