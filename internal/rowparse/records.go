package rowparse

import (
	"strings"
	"time"
	"unicode"

	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/normalize"
	"github.com/Veraticus/policy-sync/internal/tabular"
	"github.com/shopspring/decimal"
)

// ClientFields carries the identity and contact cells of a row.
type ClientFields struct {
	Name       string
	NationalID string
	TaxID      string
	Phone      string
	Email      string
	Address    string
}

// HasIdentifier reports whether either national id kind is present.
func (c ClientFields) HasIdentifier() bool {
	return c.NationalID != "" || c.TaxID != ""
}

// PolicyRecord is a parsed row of a policy import file.
type PolicyRecord struct {
	StartDate    time.Time
	EndDate      time.Time
	Premium      decimal.Decimal
	Client       ClientFields
	PolicyNumber string
	Company      string
	TypeText     string
	Type         model.PolicyType
	Plate        string
	Address      string
	Description  string
	Line         int
	KnownType    bool
}

// ClaimRecord is a parsed row of a claim import file.
type ClaimRecord struct {
	ClaimDate    time.Time
	Amount       decimal.Decimal
	Client       ClientFields
	ClaimNumber  string
	PolicyNumber string
	Company      string
	Type         model.PolicyType
	StatusText   string
	Description  string
	Line         int
	Rejected     bool
}

// ParsePolicy parses one row of a policy file. The returned error is a
// *ParseError naming the first offending field, or ErrBlankRow.
func ParsePolicy(row tabular.Row, cols *Columns) (*PolicyRecord, error) {
	if row.IsBlank() {
		return nil, ErrBlankRow
	}

	rec := &PolicyRecord{
		Line:         row.Line,
		PolicyNumber: cols.Get(row, FieldPolicyNumber),
		Company:      cols.Get(row, FieldCompany),
		TypeText:     cols.Get(row, FieldPolicyType),
		Plate:        strings.ToUpper(strings.Join(strings.Fields(cols.Get(row, FieldPlate)), " ")),
		Address:      cols.Get(row, FieldAddress),
		Description:  cols.Get(row, FieldDescription),
	}

	for _, f := range []Field{FieldPolicyNumber, FieldCompany, FieldPolicyType} {
		if cols.Get(row, f) == "" {
			return nil, fieldError(f, "", ErrEmpty)
		}
	}
	rec.Type, rec.KnownType = ParsePolicyType(rec.TypeText)

	var err error
	raw := cols.Get(row, FieldStartDate)
	if rec.StartDate, err = ParseDate(raw); err != nil {
		return nil, fieldError(FieldStartDate, raw, err)
	}
	raw = cols.Get(row, FieldEndDate)
	if rec.EndDate, err = ParseDate(raw); err != nil {
		return nil, fieldError(FieldEndDate, raw, err)
	}
	if rec.EndDate.Before(rec.StartDate) {
		return nil, fieldError(FieldEndDate, raw, ErrInvalidDate)
	}

	raw = cols.Get(row, FieldPremium)
	if rec.Premium, err = ParseAmount(raw); err != nil {
		return nil, fieldError(FieldPremium, raw, err)
	}

	if rec.Client, err = parseClient(row, cols); err != nil {
		return nil, err
	}
	return rec, nil
}

// ParseClaim parses one row of a claim file. Claim number, policy number and
// company are optional; the claim date and paid amount are required.
func ParseClaim(row tabular.Row, cols *Columns) (*ClaimRecord, error) {
	if row.IsBlank() {
		return nil, ErrBlankRow
	}

	rec := &ClaimRecord{
		Line:         row.Line,
		ClaimNumber:  cols.Get(row, FieldClaimNumber),
		PolicyNumber: cols.Get(row, FieldPolicyNumber),
		Company:      cols.Get(row, FieldCompany),
		StatusText:   cols.Get(row, FieldStatus),
		Description:  cols.Get(row, FieldDescription),
	}
	if t := cols.Get(row, FieldPolicyType); t != "" {
		rec.Type, _ = ParsePolicyType(t)
	}
	rec.Rejected = IsRejectedStatus(rec.StatusText)

	var err error
	raw := cols.Get(row, FieldClaimDate)
	if rec.ClaimDate, err = ParseDate(raw); err != nil {
		return nil, fieldError(FieldClaimDate, raw, err)
	}

	raw = cols.Get(row, FieldAmount)
	if rec.Amount, err = ParseAmount(raw); err != nil {
		return nil, fieldError(FieldAmount, raw, err)
	}

	if rec.Client, err = parseClient(row, cols); err != nil {
		return nil, err
	}
	return rec, nil
}

func parseClient(row tabular.Row, cols *Columns) (ClientFields, error) {
	c := ClientFields{
		Name:    cols.Get(row, FieldClientName),
		Phone:   cols.Get(row, FieldPhone),
		Email:   cols.Get(row, FieldEmail),
		Address: cols.Get(row, FieldAddress),
	}

	var err error
	raw := cols.Get(row, FieldNationalID)
	if c.NationalID, err = ParseIdentifier(raw, 11); err != nil {
		return c, fieldError(FieldNationalID, raw, err)
	}
	raw = cols.Get(row, FieldTaxID)
	if c.TaxID, err = ParseIdentifier(raw, 10); err != nil {
		return c, fieldError(FieldTaxID, raw, err)
	}
	return c, nil
}

// ParseIdentifier extracts the digits of a national id or tax number and
// checks their count. Spreadsheets often store these as numbers, so a
// trailing ".0" is tolerated. Empty input returns "" and no error.
func ParseIdentifier(s string, length int) (string, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".0")
	if s == "" {
		return "", nil
	}
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		} else if !unicode.IsSpace(r) {
			return "", ErrInvalidID
		}
	}
	if b.Len() != length {
		return "", ErrInvalidID
	}
	return b.String(), nil
}

var policyTypeKeywords = []struct {
	keyword string
	typ     model.PolicyType
}{
	{"kasko", model.PolicyTypeKasko},
	{"trafik", model.PolicyTypeTrafik},
	{"zmss", model.PolicyTypeTrafik},
	{"zorunlu mali", model.PolicyTypeTrafik},
	{"dask", model.PolicyTypeDASK},
	{"deprem", model.PolicyTypeDASK},
	{"konut", model.PolicyTypeKonut},
	{"isyeri", model.PolicyTypeIsyeri},
	{"is yeri", model.PolicyTypeIsyeri},
	{"saglik", model.PolicyTypeSaglik},
	{"ferdi kaza", model.PolicyTypeFerdiKaza},
	{"seyahat", model.PolicyTypeSeyahat},
	{"nakliyat", model.PolicyTypeNakliyat},
}

// ParsePolicyType maps free text such as "Zorunlu Trafik" or "KASKO POLİÇESİ"
// to a canonical type. Unknown text maps to PolicyTypeOther and false.
func ParsePolicyType(text string) (model.PolicyType, bool) {
	n := normalize.Normalize(text)
	if n == "" {
		return model.PolicyTypeOther, false
	}
	if n == string(model.PolicyTypeFerdiKaza) {
		return model.PolicyTypeFerdiKaza, true
	}
	for _, k := range policyTypeKeywords {
		if strings.Contains(" "+n+" ", " "+k.keyword) {
			return k.typ, true
		}
	}
	return model.PolicyTypeOther, false
}

var rejectionWords = []string{"red", "ret", "reddedildi", "rejected", "denied"}

// IsRejectedStatus reports whether a status cell says the claim was rejected.
func IsRejectedStatus(text string) bool {
	for _, w := range rejectionWords {
		if normalize.ContainsWord(text, w) {
			return true
		}
	}
	return false
}
