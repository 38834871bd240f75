package rowparse

import (
	"testing"

	"github.com/Veraticus/policy-sync/internal/tabular"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveColumns(t *testing.T) {
	tests := []struct {
		want    map[Field]string
		name    string
		headers []string
	}{
		{
			name:    "turkish headers",
			headers: []string{"Poliçe No", "Sigorta Şirketi", "Poliçe Türü", "Başlangıç Tarihi", "Bitiş Tarihi", "Brüt Prim"},
			want: map[Field]string{
				FieldPolicyNumber: "Poliçe No",
				FieldCompany:      "Sigorta Şirketi",
				FieldPolicyType:   "Poliçe Türü",
				FieldStartDate:    "Başlangıç Tarihi",
				FieldEndDate:      "Bitiş Tarihi",
				FieldPremium:      "Brüt Prim",
			},
		},
		{
			name:    "ascii and upper case variants",
			headers: []string{"POLICE NO", "SIRKET", "BRANS", "BASLANGIC", "BITIS", "PRIM"},
			want: map[Field]string{
				FieldPolicyNumber: "POLICE NO",
				FieldCompany:      "SIRKET",
				FieldPolicyType:   "BRANS",
				FieldStartDate:    "BASLANGIC",
				FieldEndDate:      "BITIS",
				FieldPremium:      "PRIM",
			},
		},
		{
			name:    "english snake case",
			headers: []string{"policy_number", "company", "policy_type", "start_date", "end_date", "premium"},
			want: map[Field]string{
				FieldPolicyNumber: "policy_number",
				FieldCompany:      "company",
				FieldEndDate:      "end_date",
			},
		},
		{
			name:    "containment fallback",
			headers: []string{"Müşteri Poliçe No (Eski)", "Sürücü TC Kimlik No"},
			want: map[Field]string{
				FieldPolicyNumber: "Müşteri Poliçe No (Eski)",
				FieldNationalID:   "Sürücü TC Kimlik No",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := ResolveColumns(tt.headers, PolicyAliases)
			for field, header := range tt.want {
				assert.True(t, cols.Has(field), "field %s", field)
				assert.Equal(t, header, cols.Header(field))
			}
		})
	}
}

func TestColumns_HeaderClaimedOnce(t *testing.T) {
	cols := ResolveColumns([]string{"Poliçe No"}, ClaimAliases)

	assert.True(t, cols.Has(FieldPolicyNumber))
	assert.False(t, cols.Has(FieldClaimNumber))
}

func TestColumns_GetFirstNonEmpty(t *testing.T) {
	cols := ResolveColumns([]string{"Prim", "Brüt Prim"}, PolicyAliases)
	row := tabular.Row{Values: []string{"", " 150,00 "}, Line: 2}

	assert.Equal(t, "150,00", cols.Get(row, FieldPremium))
}

func TestColumns_Missing(t *testing.T) {
	cols := ResolveColumns([]string{"Poliçe No", "Şirket"}, PolicyAliases)

	missing := cols.Missing(FieldPolicyNumber, FieldCompany, FieldStartDate, FieldEndDate)
	assert.Equal(t, []Field{FieldStartDate, FieldEndDate}, missing)
}

func TestTemplate_RoundTrip(t *testing.T) {
	for _, kind := range []string{"policies", "claims"} {
		t.Run(kind, func(t *testing.T) {
			aliases, ok := AliasesFor(kind)
			require.True(t, ok)

			headers := aliases.TemplateHeaders()
			sample := aliases.TemplateSample()
			require.Len(t, sample, len(headers))

			cols := ResolveColumns(headers, aliases)
			assert.Empty(t, cols.Missing(aliases.Fields()...))

			row := tabular.Row{Line: 2, Values: sample}
			if kind == "policies" {
				rec, err := ParsePolicy(row, cols)
				require.NoError(t, err)
				assert.Equal(t, "12500", rec.Premium.String())
				assert.True(t, rec.KnownType)
			} else {
				rec, err := ParseClaim(row, cols)
				require.NoError(t, err)
				assert.Equal(t, "4750", rec.Amount.String())
			}
		})
	}

	_, ok := AliasesFor("vendors")
	assert.False(t, ok)
}
