package model

// TariffRecord is one line of the government tariff table ("List V").
// A spreadsheet cell may carry several codes sharing one description;
// the upload fans that out to one record per code, so duplicate
// descriptions under different codes are normal.
type TariffRecord struct {
	Code           string `json:"code"`             // tariff classification code (GTIP)
	Description    string `json:"description"`      // free-text product/chemical description
	TaxRatePercent string `json:"tax_rate_percent"` // customs duty percentage, kept as text
	Footnote       string `json:"footnote,omitempty"`
	ValidUntilRaw  string `json:"valid_until_raw"` // review/expiry date in whatever form the sheet had
}

// TariffMeta records when and from which file the tariff table was
// last rebuilt.
type TariffMeta struct {
	Filename     string `json:"filename"`
	UploadDate   string `json:"upload_date"`
	TotalRecords int    `json:"total_records"`
}
