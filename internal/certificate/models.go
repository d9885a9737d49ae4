// Package certificate holds the domain model shared by the issuance and
// verification workflows. Records are owned by the ledger once written;
// nothing here is persisted locally.
package certificate

import (
	dErrors "certichain/pkg/domain-errors"
)

// Field names a comparable certificate attribute.
type Field string

const (
	FieldName      Field = "name"
	FieldCourse    Field = "course"
	FieldIssuer    Field = "issuer"
	FieldIssueDate Field = "issue_date"
)

// Fields is the free-text payload stored on the ledger for a certificate.
// Values are opaque labels; the core never parses or normalizes them.
type Fields struct {
	Name      string `json:"name"`
	Course    string `json:"course"`
	Issuer    string `json:"issuer"`
	IssueDate string `json:"issue_date"`
}

// Record is one on-ledger certificate. Immutable after creation: the
// registry exposes no update or delete.
type Record struct {
	TokenID   uint64 `json:"token_id"`
	Recipient string `json:"recipient,omitempty"`
	Fields
}

// VerificationRequest carries a token identifier plus the subset of field
// values the caller claims the certificate holds. A nil pointer means the
// field is not asserted; an empty string is still a claim and is compared.
type VerificationRequest struct {
	TokenID   uint64
	Name      *string
	Course    *string
	Issuer    *string
	IssueDate *string
}

// Expected returns the asserted fields in stable order.
func (r *VerificationRequest) Expected() []ExpectedField {
	var out []ExpectedField
	if r.Name != nil {
		out = append(out, ExpectedField{Field: FieldName, Value: *r.Name})
	}
	if r.Course != nil {
		out = append(out, ExpectedField{Field: FieldCourse, Value: *r.Course})
	}
	if r.Issuer != nil {
		out = append(out, ExpectedField{Field: FieldIssuer, Value: *r.Issuer})
	}
	if r.IssueDate != nil {
		out = append(out, ExpectedField{Field: FieldIssueDate, Value: *r.IssueDate})
	}
	return out
}

// ExpectedField is a single claimed attribute value.
type ExpectedField struct {
	Field Field
	Value string
}

// Verdict is the overall outcome of a verification.
type Verdict string

const (
	// VerdictAuthentic: at least one field compared and every compared
	// field matched the stored value exactly.
	VerdictAuthentic Verdict = "AUTHENTIC"
	// VerdictFake: at least one compared field differs from the ledger.
	VerdictFake Verdict = "FAKE"
	// VerdictUnknown: no record exists under the token identifier.
	VerdictUnknown Verdict = "UNKNOWN"
	// VerdictDisplayedOnly: the record exists but the caller asserted
	// nothing, so nothing was corroborated or rejected.
	VerdictDisplayedOnly Verdict = "DISPLAYED_ONLY"
)

// FieldComparison records the outcome for one asserted field, keeping both
// sides for diagnostic display.
type FieldComparison struct {
	Field    Field  `json:"field"`
	Expected string `json:"expected"`
	Stored   string `json:"stored"`
	Match    bool   `json:"match"`
}

// VerificationResult is the engine's output. Never persisted.
type VerificationResult struct {
	TokenID     uint64            `json:"token_id"`
	Verdict     Verdict           `json:"verdict"`
	Comparisons []FieldComparison `json:"comparisons,omitempty"`
	Record      *Record           `json:"record,omitempty"`
}

// Validate rejects requests that must never reach the ledger.
func (r *VerificationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "request is required")
	}
	if r.TokenID == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "token id is required")
	}
	return nil
}

// ValidateForIssue checks the required issuance inputs.
func ValidateForIssue(recipient string, f Fields) error {
	switch {
	case recipient == "":
		return dErrors.New(dErrors.CodeInvalidInput, "recipient is required")
	case f.Name == "":
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	case f.Course == "":
		return dErrors.New(dErrors.CodeInvalidInput, "course is required")
	case f.Issuer == "":
		return dErrors.New(dErrors.CodeInvalidInput, "issuer is required")
	case f.IssueDate == "":
		return dErrors.New(dErrors.CodeInvalidInput, "issue date is required")
	}
	return nil
}

// Value returns the stored value for a field.
func (f Fields) Value(field Field) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldCourse:
		return f.Course
	case FieldIssuer:
		return f.Issuer
	case FieldIssueDate:
		return f.IssueDate
	}
	return ""
}
