package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/contractor-payments/internal/auth"
)

func TestTokenCommandIssuesAdminToken(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/payments")
	t.Setenv("JWT_ACCESS_SECRET", "cli-secret")

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"token", "--subject", "ops", "--ttl", "1h"})
	require.NoError(t, root.Execute())

	claims, err := auth.NewParser("cli-secret").Parse(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, "ops", claims.Subject)
}

func TestTokenCommandRequiresSecret(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/payments")
	t.Setenv("JWT_ACCESS_SECRET", "")

	root := newRootCommand()
	root.SetArgs([]string{"token"})
	assert.Error(t, root.Execute())
}
