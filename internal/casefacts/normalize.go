package casefacts

import (
	"sort"

	"caseflow/internal/facts"
	id "caseflow/pkg/domain"
)

// Ambiguity records aliased source keys that are simultaneously present with
// disagreeing values. The highest-priority key still wins, but the
// disagreement is surfaced so data-entry bugs are not masked.
type Ambiguity struct {
	Field     string   `json:"field"`
	Keys      []string `json:"keys"`
	ChosenKey string   `json:"chosen_key"`
}

// Result is the outcome of one normalization pass.
type Result struct {
	Facts CaseFacts
	// Unconsumed lists fact keys no normalizer mapping reads - typically a new
	// wizard question whose field was never wired. Sorted for determinism.
	Unconsumed []string
	// Ambiguities lists alias disagreements found during resolution.
	Ambiguities []Ambiguity
}

// Normalize projects a flat fact dictionary into CaseFacts. Pure and
// idempotent: same input, same output, and re-normalizing a normalized
// projection changes nothing.
//
// Tri-state contract: a key that is missing or null yields an absent field; an
// explicit false, zero, or empty string yields a present field carrying that
// value. No field ever defaults via falsy fallback.
func Normalize(wf facts.WizardFacts) Result {
	r := &resolver{facts: wf, consumed: make(map[string]bool, len(wf))}

	var cf CaseFacts

	if j := r.str("meta.jurisdiction"); j.Present {
		if parsed, err := id.ParseJurisdiction(j.Value); err == nil {
			cf.Meta.Jurisdiction = parsed
		}
	}
	if p := r.str("meta.product"); p.Present {
		if parsed, err := id.ParseProduct(p.Value); err == nil {
			cf.Meta.Product = parsed
		}
	}

	cf.Parties.LandlordName = r.str("parties.landlord_name")
	cf.Parties.LandlordAddress = r.str("parties.landlord_address")
	cf.Parties.LandlordPhone = r.str("parties.landlord_phone")
	cf.Parties.LandlordEmail = r.str("parties.landlord_email")
	cf.Parties.TenantNames = r.strList("parties.tenant_names")

	cf.Property.AddressLine1 = r.str("property.address_line1")
	cf.Property.AddressLine2 = r.str("property.address_line2")
	cf.Property.City = r.str("property.city")
	cf.Property.Postcode = r.str("property.postcode")

	cf.Tenancy.StartDate = r.date("tenancy.start_date")
	cf.Tenancy.FixedTermEndDate = r.date("tenancy.fixed_term_end_date")
	cf.Tenancy.RentAmount = r.money("tenancy.rent_amount")
	cf.Tenancy.RentPeriod = r.str("tenancy.rent_period")
	cf.Tenancy.DepositAmount = r.money("tenancy.deposit_amount")
	cf.Tenancy.DepositReceivedDate = r.date("tenancy.deposit_received_date")

	cf.Issues.ArrearsAmount = r.money("issues.arrears_amount")
	cf.Issues.Section8Grounds = r.strList("issues.section8_grounds")
	cf.Issues.AntisocialConduct = r.boolean("issues.antisocial_conduct")
	cf.Issues.LandlordSelling = r.boolean("issues.landlord_selling")
	cf.Issues.OtherBreaches = r.strList("issues.other_breaches")

	cf.Compliance.DepositProtected = r.boolean("compliance.deposit_protected")
	cf.Compliance.DepositProtectionDate = r.date("compliance.deposit_protection_date")
	cf.Compliance.PrescribedInfoGiven = r.boolean("compliance.prescribed_info_given")
	cf.Compliance.PrescribedInfoDate = r.date("compliance.prescribed_info_date")
	cf.Compliance.GasCertificateProvided = r.boolean("compliance.gas_certificate_provided")
	cf.Compliance.EPCProvided = r.boolean("compliance.epc_provided")
	cf.Compliance.HowToRentProvided = r.boolean("compliance.how_to_rent_provided")
	cf.Compliance.LicensingRequired = r.boolean("compliance.licensing_required")
	cf.Compliance.LicenceHeld = r.boolean("compliance.licence_held")

	cf.Notice.ServiceDate = r.date("notice.service_date")
	cf.Notice.ServiceMethod = r.str("notice.service_method")
	cf.Notice.ExpiryDate = r.date("notice.expiry_date")

	cf.Evidence.TenancyAgreementUploaded = r.boolean("evidence.tenancy_agreement_uploaded")
	cf.Evidence.ArrearsScheduleUploaded = r.boolean("evidence.arrears_schedule_uploaded")
	cf.Evidence.DepositCertificateUploaded = r.boolean("evidence.deposit_certificate_uploaded")

	return Result{
		Facts:       cf,
		Unconsumed:  r.unconsumed(),
		Ambiguities: r.ambiguities,
	}
}

// resolver walks the alias table, tracking which source keys were read so
// unmapped keys can be reported.
type resolver struct {
	facts       facts.WizardFacts
	consumed    map[string]bool
	ambiguities []Ambiguity
}

// presentKeys returns the alias keys for field that exist with non-null
// values, in priority order, marking every alias consumed whether chosen or
// not (an alias key is wired even when it loses resolution).
func (r *resolver) presentKeys(field string) []string {
	keys := aliasTable[field]
	var present []string
	for _, key := range keys {
		r.consumed[key] = true
		if v, ok := r.facts[key]; ok && v != nil {
			present = append(present, key)
		}
	}
	return present
}

func (r *resolver) recordAmbiguity(field string, keys []string) {
	r.ambiguities = append(r.ambiguities, Ambiguity{
		Field:     field,
		Keys:      keys,
		ChosenKey: keys[0],
	})
}

func (r *resolver) boolean(field string) Bool {
	present := r.presentKeys(field)
	var (
		out    Bool
		chosen []string
	)
	for _, key := range present {
		v, ok := coerceBool(r.facts[key])
		if !ok {
			continue
		}
		if !out.Present {
			out = BoolOf(v)
			chosen = append(chosen, key)
			continue
		}
		if v != out.Value {
			chosen = append(chosen, key)
		}
	}
	if len(chosen) > 1 {
		r.recordAmbiguity(field, chosen)
	}
	return out
}

func (r *resolver) str(field string) String {
	present := r.presentKeys(field)
	var (
		out    String
		chosen []string
	)
	for _, key := range present {
		v, ok := coerceString(r.facts[key])
		if !ok {
			continue
		}
		if !out.Present {
			out = StringOf(v)
			chosen = append(chosen, key)
			continue
		}
		if v != out.Value {
			chosen = append(chosen, key)
		}
	}
	if len(chosen) > 1 {
		r.recordAmbiguity(field, chosen)
	}
	return out
}

func (r *resolver) money(field string) Money {
	present := r.presentKeys(field)
	var (
		out    Money
		chosen []string
	)
	for _, key := range present {
		v, ok := coerceMoney(r.facts[key])
		if !ok {
			continue
		}
		if !out.Present {
			out = MoneyOf(v)
			chosen = append(chosen, key)
			continue
		}
		if v != out.Value {
			chosen = append(chosen, key)
		}
	}
	if len(chosen) > 1 {
		r.recordAmbiguity(field, chosen)
	}
	return out
}

func (r *resolver) date(field string) Date {
	present := r.presentKeys(field)
	var (
		out    Date
		chosen []string
	)
	for _, key := range present {
		v, ok := coerceDate(r.facts[key])
		if !ok {
			continue
		}
		if !out.Present {
			out = DateOf(v)
			chosen = append(chosen, key)
			continue
		}
		if !datesEqual(v, out.Value) {
			chosen = append(chosen, key)
		}
	}
	if len(chosen) > 1 {
		r.recordAmbiguity(field, chosen)
	}
	return out
}

func (r *resolver) strList(field string) StringList {
	present := r.presentKeys(field)
	var (
		out    StringList
		chosen []string
	)
	for _, key := range present {
		v, ok := coerceStringList(r.facts[key])
		if !ok {
			continue
		}
		if !out.Present {
			out = StringList{Values: v, Present: true}
			chosen = append(chosen, key)
			continue
		}
		if !listsEqual(v, out.Values) {
			chosen = append(chosen, key)
		}
	}
	if len(chosen) > 1 {
		r.recordAmbiguity(field, chosen)
	}
	return out
}

func (r *resolver) unconsumed() []string {
	var out []string
	for key := range r.facts {
		if !r.consumed[key] {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}
