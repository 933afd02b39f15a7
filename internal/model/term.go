package model

import (
	"strings"
	"time"
)

// CriticalTerm is a tracked word or phrase whose occurrences across notes
// are indexed. Identity is case-insensitive: the stored name is always the
// normalized form.
type CriticalTerm struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`        // Normalized: trimmed, lower-cased
	Description string    `json:"description"` // Optional user-supplied gloss
	IsActive    bool      `json:"is_active"`   // Inactive terms are skipped by corpus rescans
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NormalizeTermName canonicalizes a term name: trimmed, lower-cased, inner
// whitespace collapsed to single spaces. Two names with the same normalized
// form are the same term.
func NormalizeTermName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// AliasStatus is the lifecycle state of a proposed alias.
type AliasStatus string

const (
	AliasProposed AliasStatus = "proposed"
	AliasApproved AliasStatus = "approved"
	AliasRejected AliasStatus = "rejected"
)

// TermAlias is a proposed alternate name for a term. Approval registers the
// alias as an additional scan key; it never renames the canonical term.
// Status transitions exactly once, from proposed to approved or rejected.
type TermAlias struct {
	ID        string      `json:"id"`
	TermID    string      `json:"term_id"`
	Name      string      `json:"name"` // Normalized like a term name
	Status    AliasStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
