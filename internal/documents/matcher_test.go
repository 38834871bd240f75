package documents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/policy-sync/internal/reconcile"
	"github.com/Veraticus/policy-sync/internal/service"
	"github.com/Veraticus/policy-sync/internal/tabular"
	"github.com/Veraticus/policy-sync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operator = "agent-1"

func setupPolicies(t *testing.T) (*testutil.TestDB, *reconcile.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t, "ABC Sigorta")
	engine := reconcile.NewEngine(db.Storage, reconcile.Options{})

	tbl, err := tabular.FromRecords("seed.csv", [][]string{
		{"Poliçe No", "Sigorta Şirketi", "Poliçe Türü", "Başlangıç Tarihi", "Bitiş Tarihi", "Prim", "Müşteri Adı", "TC Kimlik No"},
		{"P-100", "ABC Sigorta", "Kasko", "01.01.2025", "01.01.2026", "1000", "Ayşe Yılmaz", "11111111111"},
		{"P-200", "ABC Sigorta", "DASK", "01.01.2025", "01.01.2026", "300", "Ayşe Yılmaz", "11111111111"},
	})
	require.NoError(t, err)
	_, err = engine.ImportPolicies(context.Background(), tbl, reconcile.ImportContext{OperatorID: operator})
	require.NoError(t, err)
	return db, engine
}

func writeFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(paths[i], []byte("not really a pdf"), 0o600))
	}
	return paths
}

func documentPaths(t *testing.T, db *testutil.TestDB) map[string]string {
	t.Helper()
	policies, err := db.Storage.GetPolicies(context.Background(), service.PolicyFilter{OwnerID: operator})
	require.NoError(t, err)
	out := make(map[string]string, len(policies))
	for _, p := range policies {
		out[p.PolicyNumber] = p.DocumentPath
	}
	return out
}

func TestMatcher_Attach(t *testing.T) {
	db, engine := setupPolicies(t)
	paths := writeFiles(t, "P-100.pdf", "scan-7.pdf", "notes.txt")

	var read []string
	matcher := NewMatcher(engine).WithText(func(path string) (string, error) {
		read = append(read, filepath.Base(path))
		return "DASK poliçesi, Poliçe No: P-200", nil
	})

	out, err := matcher.Attach(context.Background(), paths, reconcile.ImportContext{OperatorID: operator})
	require.NoError(t, err)

	assert.Equal(t, 2, out.Updated)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, []string{"scan-7.pdf"}, read, "text is only read for unmatched pdf names")
	assert.Equal(t, []string{`row 3: policy "notes.txt" matches no policy`}, out.Errors)

	docs := documentPaths(t, db)
	assert.Equal(t, paths[0], docs["P-100"])
	assert.Equal(t, paths[1], docs["P-200"])
}

func TestMatcher_UnreadablePDF(t *testing.T) {
	_, engine := setupPolicies(t)
	paths := writeFiles(t, "unknown.pdf")

	out, err := NewMatcher(engine).Attach(context.Background(), paths, reconcile.ImportContext{OperatorID: operator})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Failed)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "unknown.pdf: text not readable: failed to open pdf")
}

func TestMatcher_NoFiles(t *testing.T) {
	_, engine := setupPolicies(t)
	_, err := NewMatcher(engine).Attach(context.Background(), nil, reconcile.ImportContext{OperatorID: operator})
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestExtractFile_Missing(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.pdf", true},
		{"A.PDF", true},
		{"a.pdf.txt", false},
		{"pdf", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPDF(tt.path))
		})
	}
}
