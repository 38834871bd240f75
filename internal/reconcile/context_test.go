package reconcile

import (
	"context"
	"testing"

	"github.com/Veraticus/policy-sync/internal/common"
	"github.com/Veraticus/policy-sync/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImportContext(t *testing.T) {
	ic, err := NewImportContext(context.Background(), service.StaticSession("agent-7"), "  client-1 ")
	require.NoError(t, err)
	assert.Equal(t, ImportContext{OperatorID: "agent-7", ClientScope: "client-1"}, ic)

	_, err = NewImportContext(context.Background(), service.StaticSession(""), "")
	assert.ErrorIs(t, err, common.ErrNoOperator)
	assert.ErrorIs(t, err, service.ErrNoSession)
}
