package casefacts

import id "caseflow/pkg/domain"

// CaseFacts is the typed projection of WizardFacts, grouped by legal domain.
// It is derived, never stored: each evaluation recomputes it from the current
// fact snapshot. Every field traces to a WizardFacts key via the alias table
// in aliases.go or to a pure computation over such keys.
type CaseFacts struct {
	Meta       Meta
	Parties    Parties
	Property   Property
	Tenancy    Tenancy
	Issues     Issues
	Compliance Compliance
	Notice     Notice
	Evidence   Evidence
}

// Meta carries the partition the case evaluates under. The case record is
// authoritative; the wizard service overwrites whatever the fact dictionary
// claims before evaluation.
type Meta struct {
	Jurisdiction id.Jurisdiction
	Product      id.Product
}

type Parties struct {
	LandlordName    String
	LandlordAddress String
	LandlordPhone   String
	LandlordEmail   String
	TenantNames     StringList
}

type Property struct {
	AddressLine1 String
	AddressLine2 String
	City         String
	Postcode     String
}

// RentPeriod values accepted by the tenancy facts.
const (
	RentPeriodWeekly      = "weekly"
	RentPeriodFortnightly = "fortnightly"
	RentPeriodMonthly     = "monthly"
	RentPeriodQuarterly   = "quarterly"
)

type Tenancy struct {
	StartDate           Date
	FixedTermEndDate    Date
	RentAmount          Money
	RentPeriod          String
	DepositAmount       Money
	DepositReceivedDate Date
}

type Issues struct {
	ArrearsAmount     Money
	Section8Grounds   StringList
	AntisocialConduct Bool
	LandlordSelling   Bool
	OtherBreaches     StringList
}

type Compliance struct {
	DepositProtected       Bool
	DepositProtectionDate  Date
	PrescribedInfoGiven    Bool
	PrescribedInfoDate     Date
	GasCertificateProvided Bool
	EPCProvided            Bool
	HowToRentProvided      Bool
	LicensingRequired      Bool
	LicenceHeld            Bool
}

type Notice struct {
	ServiceDate   Date
	ServiceMethod String
	ExpiryDate    Date
}

type Evidence struct {
	TenancyAgreementUploaded   Bool
	ArrearsScheduleUploaded    Bool
	DepositCertificateUploaded Bool
}
