// Package rowparse turns raw spreadsheet rows into typed import records.
//
// Column headers vary between insurer exports, so each logical field has a
// declarative list of accepted header spellings. Headers are matched once per
// file after normalization.
package rowparse

// Field is a logical column of an import file.
type Field string

// Logical fields shared by the import flows.
const (
	FieldPolicyNumber Field = "policy_number"
	FieldCompany      Field = "company"
	FieldPolicyType   Field = "policy_type"
	FieldStartDate    Field = "start_date"
	FieldEndDate      Field = "end_date"
	FieldPremium      Field = "premium"
	FieldPlate        Field = "plate"
	FieldAddress      Field = "address"
	FieldClientName   Field = "client_name"
	FieldNationalID   Field = "national_id"
	FieldTaxID        Field = "tax_id"
	FieldPhone        Field = "phone"
	FieldEmail        Field = "email"
	FieldDescription  Field = "description"
	FieldClaimNumber  Field = "claim_number"
	FieldClaimDate    Field = "claim_date"
	FieldAmount       Field = "amount"
	FieldStatus       Field = "status"
)

var fieldLabels = map[Field]string{
	FieldPolicyNumber: "policy number",
	FieldCompany:      "company",
	FieldPolicyType:   "policy type",
	FieldStartDate:    "start date",
	FieldEndDate:      "end date",
	FieldPremium:      "premium",
	FieldPlate:        "plate",
	FieldAddress:      "address",
	FieldClientName:   "client name",
	FieldNationalID:   "national id",
	FieldTaxID:        "tax id",
	FieldPhone:        "phone",
	FieldEmail:        "email",
	FieldDescription:  "description",
	FieldClaimNumber:  "claim number",
	FieldClaimDate:    "claim date",
	FieldAmount:       "amount",
	FieldStatus:       "status",
}

// Label returns the human readable name of the field used in diagnostics.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// Alias lists the accepted header spellings of one field, most specific first.
type Alias struct {
	Field   Field
	Headers []string
}

// AliasTable maps logical fields to header variants. Order matters: when two
// fields could claim the same header, the earlier entry wins.
type AliasTable []Alias

// Fields returns the fields of the table in declaration order.
func (t AliasTable) Fields() []Field {
	out := make([]Field, len(t))
	for i, a := range t {
		out[i] = a.Field
	}
	return out
}

// TemplateHeaders returns the preferred header of every field, for template export.
func (t AliasTable) TemplateHeaders() []string {
	out := make([]string, 0, len(t))
	for _, a := range t {
		if len(a.Headers) > 0 {
			out = append(out, a.Headers[0])
		}
	}
	return out
}

var clientAliases = AliasTable{
	{Field: FieldClientName, Headers: []string{"Müşteri Adı", "Sigortalı Adı", "Sigortalı", "Ad Soyad", "Müşteri", "Client Name", "Customer", "client_name"}},
	{Field: FieldNationalID, Headers: []string{"TC Kimlik No", "TCKN", "TC No", "Kimlik No", "National ID", "national_id"}},
	{Field: FieldTaxID, Headers: []string{"Vergi No", "VKN", "Vergi Numarası", "Tax ID", "tax_id"}},
	{Field: FieldPhone, Headers: []string{"Telefon", "Cep Telefonu", "GSM", "Phone", "phone"}},
	{Field: FieldEmail, Headers: []string{"E-posta", "Eposta", "E-mail", "Email", "email"}},
}

// PolicyAliases is the header table of policy import files.
var PolicyAliases = append(AliasTable{
	{Field: FieldPolicyNumber, Headers: []string{"Poliçe No", "Poliçe Numarası", "Police No", "Policy No", "Policy Number", "policy_number"}},
	{Field: FieldCompany, Headers: []string{"Sigorta Şirketi", "Şirket Adı", "Şirket", "Insurance Company", "Insurer", "Company", "company"}},
	{Field: FieldPolicyType, Headers: []string{"Poliçe Türü", "Poliçe Tipi", "Branş", "Ürün", "Policy Type", "policy_type"}},
	{Field: FieldStartDate, Headers: []string{"Başlangıç Tarihi", "Vade Başlangıç", "Başlangıç", "Start Date", "start_date"}},
	{Field: FieldEndDate, Headers: []string{"Bitiş Tarihi", "Vade Bitiş", "Bitiş", "End Date", "Expiry Date", "end_date"}},
	{Field: FieldPremium, Headers: []string{"Brüt Prim", "Prim", "Net Prim", "Premium", "premium"}},
	{Field: FieldPlate, Headers: []string{"Plaka", "Plate", "plate"}},
	{Field: FieldAddress, Headers: []string{"Risk Adresi", "Adres", "Address", "address"}},
	{Field: FieldDescription, Headers: []string{"Açıklama", "İşlem Tipi", "Description", "Notes", "description"}},
}, clientAliases...)

// ClaimAliases is the header table of claim import files.
var ClaimAliases = append(AliasTable{
	{Field: FieldClaimNumber, Headers: []string{"Hasar No", "Hasar Numarası", "Dosya No", "Claim No", "Claim Number", "claim_number"}},
	{Field: FieldPolicyNumber, Headers: []string{"Poliçe No", "Poliçe Numarası", "Police No", "Policy No", "Policy Number", "policy_number"}},
	{Field: FieldCompany, Headers: []string{"Sigorta Şirketi", "Şirket Adı", "Şirket", "Insurance Company", "Insurer", "Company", "company"}},
	{Field: FieldPolicyType, Headers: []string{"Poliçe Türü", "Branş", "Policy Type", "policy_type"}},
	{Field: FieldClaimDate, Headers: []string{"Hasar Tarihi", "Olay Tarihi", "Claim Date", "claim_date"}},
	{Field: FieldAmount, Headers: []string{"Hasar Tutarı", "Ödenen Tutar", "Tutar", "Paid Amount", "Amount", "amount"}},
	{Field: FieldStatus, Headers: []string{"Hasar Durumu", "Durum", "Status", "status"}},
	{Field: FieldDescription, Headers: []string{"Açıklama", "Description", "Notes", "description"}},
}, clientAliases...)

var sampleValues = map[Field]string{
	FieldPolicyNumber: "1234567890",
	FieldCompany:      "ABC Sigorta",
	FieldPolicyType:   "Kasko",
	FieldStartDate:    "01.01.2025",
	FieldEndDate:      "01.01.2026",
	FieldPremium:      "12.500,00",
	FieldPlate:        "34 ABC 123",
	FieldAddress:      "Kadıköy, İstanbul",
	FieldClientName:   "Ayşe Yılmaz",
	FieldNationalID:   "12345678901",
	FieldPhone:        "0532 000 00 00",
	FieldEmail:        "ayse@example.com",
	FieldDescription:  "Yeni iş",
	FieldClaimNumber:  "H-2025-001",
	FieldClaimDate:    "15.03.2025",
	FieldAmount:       "4.750,00",
	FieldStatus:       "Ödendi",
}

// TemplateSample returns an example row aligned with TemplateHeaders.
func (t AliasTable) TemplateSample() []string {
	out := make([]string, 0, len(t))
	for _, a := range t {
		if len(a.Headers) > 0 {
			out = append(out, sampleValues[a.Field])
		}
	}
	return out
}

// AliasesFor returns the header table of an import kind, "policies" or "claims".
func AliasesFor(kind string) (AliasTable, bool) {
	switch kind {
	case "policies":
		return PolicyAliases, true
	case "claims":
		return ClaimAliases, true
	}
	return nil, false
}
