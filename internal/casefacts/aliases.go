package casefacts

// aliasTable is the single documented resolution order for WizardFacts keys.
// The first present, non-null key wins. Later keys are legacy names kept for
// cases created before a question was renamed; when a legacy key is present
// alongside the canonical one and their coerced values disagree, normalization
// records an ambiguity diagnostic instead of silently mixing sources.
//
// Adding a wizard question means adding its key here (or to a new field);
// keys with no entry surface in the unconsumed-fields diagnostic.
var aliasTable = map[string][]string{
	// meta
	"meta.jurisdiction": {"jurisdiction", "case_jurisdiction"},
	"meta.product":      {"product", "product_type"},

	// parties
	"parties.landlord_name":    {"landlord_full_name", "landlord_name"},
	"parties.landlord_address": {"landlord_address", "landlord_correspondence_address"},
	"parties.landlord_phone":   {"landlord_phone", "landlord_telephone"},
	"parties.landlord_email":   {"landlord_email"},
	"parties.tenant_names":     {"tenant_names", "tenant_full_names", "tenant_full_name"},

	// property. The city key has been renamed twice; priority is the current
	// name first, then each prior generation.
	"property.address_line1": {"property_address_line1", "property_address1"},
	"property.address_line2": {"property_address_line2", "property_address2"},
	"property.city":          {"property_city", "property_town", "city"},
	"property.postcode":      {"property_postcode", "postcode"},

	// tenancy
	"tenancy.start_date":            {"tenancy_start_date", "tenancy_commencement_date"},
	"tenancy.fixed_term_end_date":   {"fixed_term_end_date", "tenancy_end_date"},
	"tenancy.rent_amount":           {"rent_amount", "monthly_rent"},
	"tenancy.rent_period":           {"rent_period", "rent_frequency"},
	"tenancy.deposit_amount":        {"deposit_amount"},
	"tenancy.deposit_received_date": {"deposit_received_date", "deposit_paid_date"},

	// issues
	"issues.arrears_amount":     {"arrears_amount", "rent_arrears_total"},
	"issues.section8_grounds":   {"section8_grounds", "s8_grounds"},
	"issues.antisocial_conduct": {"antisocial_behaviour", "asb_reported"},
	"issues.landlord_selling":   {"landlord_selling", "landlord_intends_to_sell"},
	"issues.other_breaches":     {"other_breaches"},

	// compliance
	"compliance.deposit_protected":        {"deposit_protected", "deposit_in_scheme"},
	"compliance.deposit_protection_date":  {"deposit_protection_date", "deposit_protected_date"},
	"compliance.prescribed_info_given":    {"prescribed_info_given", "prescribed_information_served"},
	"compliance.prescribed_info_date":     {"prescribed_info_date"},
	"compliance.gas_certificate_provided": {"gas_certificate_provided", "gas_safety_cert_given"},
	"compliance.epc_provided":             {"epc_provided", "epc_given"},
	"compliance.how_to_rent_provided":     {"how_to_rent_provided", "how_to_rent_guide_given"},
	"compliance.licensing_required":       {"licensing_required", "property_licensable"},
	"compliance.licence_held":             {"licence_held", "hmo_licence_held"},

	// notice
	"notice.service_date":   {"notice_service_date", "service_date"},
	"notice.service_method": {"notice_service_method", "service_method"},
	"notice.expiry_date":    {"notice_expiry_date", "expiry_date"},

	// evidence
	"evidence.tenancy_agreement_uploaded":   {"tenancy_agreement_uploaded"},
	"evidence.arrears_schedule_uploaded":    {"arrears_schedule_uploaded"},
	"evidence.deposit_certificate_uploaded": {"deposit_certificate_uploaded"},
}
