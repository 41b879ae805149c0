package domain

import dErrors "caseflow/pkg/domain-errors"

// Product identifies which document product a case is building towards.
// Rule packs are partitioned by (jurisdiction, product).
type Product string

const (
	// ProductNoticeOnly: a standalone eviction notice (Form 3 / Form 6A).
	ProductNoticeOnly Product = "notice_only"
	// ProductCompletePack: notice plus the court possession claim bundle.
	ProductCompletePack Product = "complete_pack"
	// ProductMoneyClaim: rent arrears money claim without possession.
	ProductMoneyClaim Product = "money_claim"
	// ProductTenancyAgreement: new tenancy agreement drafting.
	ProductTenancyAgreement Product = "tenancy_agreement"
)

// ParseProduct validates and returns a Product.
func ParseProduct(s string) (Product, error) {
	p := Product(s)
	if !p.IsValid() {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown product: %q", s)
	}
	return p, nil
}

// IsValid checks the product against the supported set.
func (p Product) IsValid() bool {
	switch p {
	case ProductNoticeOnly, ProductCompletePack, ProductMoneyClaim, ProductTenancyAgreement:
		return true
	}
	return false
}

func (p Product) String() string {
	return string(p)
}

// Products returns all supported products.
func Products() []Product {
	return []Product{ProductNoticeOnly, ProductCompletePack, ProductMoneyClaim, ProductTenancyAgreement}
}
