package domain

import dErrors "caseflow/pkg/domain-errors"

// Jurisdiction identifies which body of housing law applies to a case.
// Invariant: the value must be one of the supported UK jurisdictions. Rule
// packs are partitioned by jurisdiction and never apply across partitions.
//
// Usage: construct via ParseJurisdiction at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Jurisdiction string

const (
	JurisdictionEngland         Jurisdiction = "england"
	JurisdictionWales           Jurisdiction = "wales"
	JurisdictionScotland        Jurisdiction = "scotland"
	JurisdictionNorthernIreland Jurisdiction = "northern_ireland"
)

// ParseJurisdiction validates and returns a Jurisdiction.
func ParseJurisdiction(s string) (Jurisdiction, error) {
	j := Jurisdiction(s)
	if !j.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown jurisdiction: %q", s)
	}
	return j, nil
}

// IsValid checks the jurisdiction against the supported set.
func (j Jurisdiction) IsValid() bool {
	switch j {
	case JurisdictionEngland, JurisdictionWales, JurisdictionScotland, JurisdictionNorthernIreland:
		return true
	}
	return false
}

func (j Jurisdiction) String() string {
	return string(j)
}

// Jurisdictions returns all supported jurisdictions.
func Jurisdictions() []Jurisdiction {
	return []Jurisdiction{
		JurisdictionEngland,
		JurisdictionWales,
		JurisdictionScotland,
		JurisdictionNorthernIreland,
	}
}
