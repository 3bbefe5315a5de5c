package entity

// TaxpayerInfo is the tax directory's answer for a registration number.
// It is a passthrough value object, never persisted.
type TaxpayerInfo struct {
	TIN                    string `json:"tin"`
	Name                   string `json:"name"`
	Found                  bool   `json:"found"`
	VATPayer               bool   `json:"vat_payer"`
	CityPayer              bool   `json:"city_payer"`
	FreeProject            bool   `json:"free_project"`
	VATPayerRegisteredDate string `json:"vat_payer_registered_date,omitempty"`
}

// DistrictCode is one row of the authority's branch/district reference list.
// The list changes rarely and is served from a process-wide cache.
type DistrictCode struct {
	BranchCode   string `json:"branch_code"`
	BranchName   string `json:"branch_name"`
	DistrictCode string `json:"district_code"`
	DistrictName string `json:"district_name"`
}
