package seed

import (
	"context"
	"io"
	"testing"

	"ecoreport/internal/auth"
	"ecoreport/internal/store/memstore"
	"ecoreport/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedExpertsIsRepeatable(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctx := context.Background()
	mem := memstore.New()

	seeded, err := SeedExperts(ctx, logger, mem, mem, "DemoPassw0rd")
	require.NoError(t, err)
	assert.Equal(t, len(demoExperts), seeded)

	seeded, err = SeedExperts(ctx, logger, mem, mem, "DemoPassw0rd")
	require.NoError(t, err)
	assert.Equal(t, 0, seeded)
	assert.Equal(t, len(demoExperts), mem.AccountCount())

	for _, demo := range demoExperts {
		account, err := mem.AccountByEmail(ctx, demo.Email)
		require.NoError(t, err)
		assert.Equal(t, types.RoleExpert, account.Role, demo.Email)
		assert.True(t, auth.Verify("DemoPassw0rd", account.PasswordHash))
	}
}
