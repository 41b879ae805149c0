package casefacts

import "time"

// Activation renders CaseFacts as the nested map rule predicates evaluate
// against. Absent fields are omitted entirely so predicates distinguish
// "explicitly false" from "never answered" via has().
//
// Dates are rendered as ISO-8601 strings (lexical order == chronological
// order); money as doubles in pounds. A derived section carries pure
// computations over the facts (monthly-equivalent rent, arrears in months).
func (cf CaseFacts) Activation() map[string]any {
	root := map[string]any{}

	meta := map[string]any{}
	if cf.Meta.Jurisdiction != "" {
		meta["jurisdiction"] = cf.Meta.Jurisdiction.String()
	}
	if cf.Meta.Product != "" {
		meta["product"] = cf.Meta.Product.String()
	}
	root["meta"] = meta

	parties := map[string]any{}
	putString(parties, "landlord_name", cf.Parties.LandlordName)
	putString(parties, "landlord_address", cf.Parties.LandlordAddress)
	putString(parties, "landlord_phone", cf.Parties.LandlordPhone)
	putString(parties, "landlord_email", cf.Parties.LandlordEmail)
	putList(parties, "tenant_names", cf.Parties.TenantNames)
	root["parties"] = parties

	property := map[string]any{}
	putString(property, "address_line1", cf.Property.AddressLine1)
	putString(property, "address_line2", cf.Property.AddressLine2)
	putString(property, "city", cf.Property.City)
	putString(property, "postcode", cf.Property.Postcode)
	root["property"] = property

	tenancy := map[string]any{}
	putDate(tenancy, "start_date", cf.Tenancy.StartDate)
	putDate(tenancy, "fixed_term_end_date", cf.Tenancy.FixedTermEndDate)
	putMoney(tenancy, "rent_amount", cf.Tenancy.RentAmount)
	putString(tenancy, "rent_period", cf.Tenancy.RentPeriod)
	putMoney(tenancy, "deposit_amount", cf.Tenancy.DepositAmount)
	putDate(tenancy, "deposit_received_date", cf.Tenancy.DepositReceivedDate)
	root["tenancy"] = tenancy

	issues := map[string]any{}
	putMoney(issues, "arrears_amount", cf.Issues.ArrearsAmount)
	putList(issues, "section8_grounds", cf.Issues.Section8Grounds)
	putBool(issues, "antisocial_conduct", cf.Issues.AntisocialConduct)
	putBool(issues, "landlord_selling", cf.Issues.LandlordSelling)
	putList(issues, "other_breaches", cf.Issues.OtherBreaches)
	root["issues"] = issues

	compliance := map[string]any{}
	putBool(compliance, "deposit_protected", cf.Compliance.DepositProtected)
	putDate(compliance, "deposit_protection_date", cf.Compliance.DepositProtectionDate)
	putBool(compliance, "prescribed_info_given", cf.Compliance.PrescribedInfoGiven)
	putDate(compliance, "prescribed_info_date", cf.Compliance.PrescribedInfoDate)
	putBool(compliance, "gas_certificate_provided", cf.Compliance.GasCertificateProvided)
	putBool(compliance, "epc_provided", cf.Compliance.EPCProvided)
	putBool(compliance, "how_to_rent_provided", cf.Compliance.HowToRentProvided)
	putBool(compliance, "licensing_required", cf.Compliance.LicensingRequired)
	putBool(compliance, "licence_held", cf.Compliance.LicenceHeld)
	root["compliance"] = compliance

	notice := map[string]any{}
	putDate(notice, "service_date", cf.Notice.ServiceDate)
	putString(notice, "service_method", cf.Notice.ServiceMethod)
	putDate(notice, "expiry_date", cf.Notice.ExpiryDate)
	root["notice"] = notice

	evidence := map[string]any{}
	putBool(evidence, "tenancy_agreement_uploaded", cf.Evidence.TenancyAgreementUploaded)
	putBool(evidence, "arrears_schedule_uploaded", cf.Evidence.ArrearsScheduleUploaded)
	putBool(evidence, "deposit_certificate_uploaded", cf.Evidence.DepositCertificateUploaded)
	root["evidence"] = evidence

	derived := map[string]any{}
	if monthly, ok := cf.MonthlyRent(); ok {
		derived["monthly_rent"] = monthly
	}
	if months, ok := cf.ArrearsMonths(); ok {
		derived["arrears_months"] = months
	}
	root["derived"] = derived

	return root
}

// weeksPerMonth is the statutory-practice approximation (52/12) used to
// convert weekly rent into a monthly equivalent.
const weeksPerMonth = 52.0 / 12.0

// MonthlyRent returns the rent normalized to a monthly amount, or false if
// rent amount or period is not yet known.
func (cf CaseFacts) MonthlyRent() (float64, bool) {
	if !cf.Tenancy.RentAmount.Present || !cf.Tenancy.RentPeriod.Present {
		return 0, false
	}
	amount := cf.Tenancy.RentAmount.Value
	switch cf.Tenancy.RentPeriod.Value {
	case RentPeriodWeekly:
		return amount * weeksPerMonth, true
	case RentPeriodFortnightly:
		return amount * weeksPerMonth / 2, true
	case RentPeriodMonthly:
		return amount, true
	case RentPeriodQuarterly:
		return amount / 3, true
	}
	return 0, false
}

// ArrearsMonths returns arrears expressed in months of rent, or false if the
// inputs are not yet known or rent is zero.
func (cf CaseFacts) ArrearsMonths() (float64, bool) {
	monthly, ok := cf.MonthlyRent()
	if !ok || monthly <= 0 {
		return 0, false
	}
	if !cf.Issues.ArrearsAmount.Present {
		return 0, false
	}
	return cf.Issues.ArrearsAmount.Value / monthly, true
}

func putBool(m map[string]any, key string, v Bool) {
	if v.Present {
		m[key] = v.Value
	}
}

func putString(m map[string]any, key string, v String) {
	if v.Present {
		m[key] = v.Value
	}
}

func putMoney(m map[string]any, key string, v Money) {
	if v.Present {
		m[key] = v.Value
	}
}

func putDate(m map[string]any, key string, v Date) {
	if v.Present {
		m[key] = v.Value.Format(time.DateOnly)
	}
}

func putList(m map[string]any, key string, v StringList) {
	if v.Present {
		vals := make([]any, len(v.Values))
		for i, s := range v.Values {
			vals[i] = s
		}
		m[key] = vals
	}
}
