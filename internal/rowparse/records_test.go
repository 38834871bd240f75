package rowparse

import (
	"testing"

	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var policyHeaders = []string{
	"Poliçe No", "Sigorta Şirketi", "Poliçe Türü", "Başlangıç Tarihi", "Bitiş Tarihi",
	"Brüt Prim", "Plaka", "Müşteri Adı", "TC Kimlik No", "Vergi No",
}

func policyRow(values ...string) tabular.Row {
	return tabular.Row{Values: values, Line: 2}
}

func TestParsePolicy(t *testing.T) {
	cols := ResolveColumns(policyHeaders, PolicyAliases)

	rec, err := ParsePolicy(policyRow(
		"P-100", "ABC Sigorta", "Kasko", "01.01.2024", "01.01.2025",
		"1.250,50", "34 abc  123", "Ayşe Yılmaz", "12345678901", "",
	), cols)
	require.NoError(t, err)

	assert.Equal(t, 2, rec.Line)
	assert.Equal(t, "P-100", rec.PolicyNumber)
	assert.Equal(t, "ABC Sigorta", rec.Company)
	assert.Equal(t, model.PolicyTypeKasko, rec.Type)
	assert.True(t, rec.KnownType)
	assert.Equal(t, date(2024, 1, 1), rec.StartDate)
	assert.Equal(t, date(2025, 1, 1), rec.EndDate)
	assert.Equal(t, "1250.5", rec.Premium.String())
	assert.Equal(t, "34 ABC 123", rec.Plate)
	assert.Equal(t, "Ayşe Yılmaz", rec.Client.Name)
	assert.Equal(t, "12345678901", rec.Client.NationalID)
	assert.True(t, rec.Client.HasIdentifier())
}

func TestParsePolicy_Errors(t *testing.T) {
	cols := ResolveColumns(policyHeaders, PolicyAliases)

	tests := []struct {
		wantErr   error
		name      string
		wantField Field
		wantMsg   string
		values    []string
	}{
		{
			name:      "missing policy number",
			values:    []string{"", "ABC Sigorta", "Kasko", "01.01.2024", "01.01.2025", "100"},
			wantErr:   ErrEmpty,
			wantField: FieldPolicyNumber,
			wantMsg:   "missing policy number",
		},
		{
			name:      "unparseable start date",
			values:    []string{"P-1", "ABC Sigorta", "Kasko", "bugün", "01.01.2025", "100"},
			wantErr:   ErrInvalidDate,
			wantField: FieldStartDate,
			wantMsg:   `invalid start date "bugün": unrecognized date`,
		},
		{
			name:      "end before start",
			values:    []string{"P-1", "ABC Sigorta", "Kasko", "01.01.2025", "01.01.2024", "100"},
			wantErr:   ErrInvalidDate,
			wantField: FieldEndDate,
		},
		{
			name:      "negative premium",
			values:    []string{"P-1", "ABC Sigorta", "Kasko", "01.01.2024", "01.01.2025", "-100"},
			wantErr:   ErrNegative,
			wantField: FieldPremium,
		},
		{
			name:      "missing premium",
			values:    []string{"P-1", "ABC Sigorta", "Kasko", "01.01.2024", "01.01.2025", ""},
			wantErr:   ErrEmpty,
			wantField: FieldPremium,
		},
		{
			name:      "short national id",
			values:    []string{"P-1", "ABC Sigorta", "Kasko", "01.01.2024", "01.01.2025", "100", "", "Ali", "123"},
			wantErr:   ErrInvalidID,
			wantField: FieldNationalID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePolicy(policyRow(tt.values...), cols)
			require.ErrorIs(t, err, tt.wantErr)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.wantField, perr.Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, perr.Error())
			}
		})
	}
}

func TestParsePolicy_Blank(t *testing.T) {
	cols := ResolveColumns(policyHeaders, PolicyAliases)

	_, err := ParsePolicy(policyRow("", "  ", ""), cols)
	assert.ErrorIs(t, err, ErrBlankRow)
}

func TestParseClaim(t *testing.T) {
	headers := []string{"Hasar No", "Poliçe No", "Hasar Tarihi", "Hasar Tutarı", "Durum", "TC Kimlik No"}
	cols := ResolveColumns(headers, ClaimAliases)

	tests := []struct {
		wantErr      error
		name         string
		wantAmount   string
		values       []string
		wantRejected bool
	}{
		{
			name:       "paid claim",
			values:     []string{"H-1", "P-100", "10.03.2024", "5.000,00", "Kapandı", "12345678901"},
			wantAmount: "5000",
		},
		{
			name:       "open claim without number",
			values:     []string{"", "", "2024-03-10", "0", "", "12345678901"},
			wantAmount: "0",
		},
		{
			name:         "rejected claim",
			values:       []string{"H-2", "P-100", "10.03.2024", "0", "Reddedildi", ""},
			wantAmount:   "0",
			wantRejected: true,
		},
		{
			name:    "missing amount",
			values:  []string{"H-3", "P-100", "10.03.2024", "", "", ""},
			wantErr: ErrEmpty,
		},
		{
			name:    "bad date",
			values:  []string{"H-4", "P-100", "10/03/24", "100", "", ""},
			wantErr: ErrAmbiguousDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseClaim(tabular.Row{Values: tt.values, Line: 5}, cols)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 5, rec.Line)
			assert.Equal(t, tt.wantAmount, rec.Amount.String())
			assert.Equal(t, tt.wantRejected, rec.Rejected)
		})
	}
}

func TestParsePolicyType(t *testing.T) {
	tests := []struct {
		input string
		want  model.PolicyType
		known bool
	}{
		{"Kasko", model.PolicyTypeKasko, true},
		{"KASKO POLİÇESİ", model.PolicyTypeKasko, true},
		{"Zorunlu Trafik", model.PolicyTypeTrafik, true},
		{"ZMSS", model.PolicyTypeTrafik, true},
		{"DASK", model.PolicyTypeDASK, true},
		{"Zorunlu Deprem", model.PolicyTypeDASK, true},
		{"Konut Paket", model.PolicyTypeKonut, true},
		{"İşyeri", model.PolicyTypeIsyeri, true},
		{"Tamamlayıcı Sağlık", model.PolicyTypeSaglik, true},
		{"Ferdi Kaza", model.PolicyTypeFerdiKaza, true},
		{"ferdi_kaza", model.PolicyTypeFerdiKaza, true},
		{"Yurtdışı Seyahat", model.PolicyTypeSeyahat, true},
		{"Emtia Nakliyat", model.PolicyTypeNakliyat, true},
		{"Hayat", model.PolicyTypeOther, false},
		{"", model.PolicyTypeOther, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, known := ParsePolicyType(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestParseIdentifier(t *testing.T) {
	got, err := ParseIdentifier("12345678901.0", 11)
	require.NoError(t, err)
	assert.Equal(t, "12345678901", got)

	got, err = ParseIdentifier(" 123 456 7890 ", 10)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", got)

	got, err = ParseIdentifier("", 11)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseIdentifier("12A45678901", 11)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestIsRejectedStatus(t *testing.T) {
	assert.True(t, IsRejectedStatus("RED"))
	assert.True(t, IsRejectedStatus("Hasar reddedildi"))
	assert.False(t, IsRejectedStatus("Kapandı"))
	assert.False(t, IsRejectedStatus("Redaksiyon"))
}
