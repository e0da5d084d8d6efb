package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dexhub/hr-portal/internal/auth"
	"github.com/dexhub/hr-portal/internal/config"
	"github.com/dexhub/hr-portal/internal/models"
	"github.com/dexhub/hr-portal/internal/repository"
	userssvc "github.com/dexhub/hr-portal/internal/service/users"
	"github.com/dexhub/hr-portal/pkg/logger"
	"github.com/dexhub/hr-portal/test/testdb"
)

func newEnv(t *testing.T) (*env, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &env{
		cfg: &config.Config{Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost}},
		db:  testdb.New(t),
		log: logger.NewNop(),
		out: &out,
	}, &out
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"frobnicate"}},
		{name: "unknown global flag", args: []string{"--verbose", "seed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, &bytes.Buffer{})
			assert.ErrorIs(t, err, errUsage)
		})
	}
}

func TestSeedCmd_Defaults(t *testing.T) {
	e, out := newEnv(t)
	ctx := context.Background()

	require.NoError(t, seedCmd(ctx, e, nil))
	assert.Contains(t, out.String(), "leave types created: 5")

	types, err := repository.NewCatalogRepository(e.db).ListLeaveTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 5)

	out.Reset()
	require.NoError(t, seedCmd(ctx, e, nil))
	assert.Contains(t, out.String(), "leave types created: 0")
	assert.Contains(t, out.String(), "skipped: 5")
}

func TestSeedCmd_File(t *testing.T) {
	e, out := newEnv(t)
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
admin:
  email: root@example.com
  password: changeme123
holidays:
  - date: "2026-05-01"
    name: Labour Day
`), 0o600))

	require.NoError(t, seedCmd(context.Background(), e, []string{"--file", path}))
	assert.Contains(t, out.String(), "admin created: true")
	assert.Contains(t, out.String(), "holidays created: 1")
}

func TestSeedCmd_MissingFile(t *testing.T) {
	e, _ := newEnv(t)
	err := seedCmd(context.Background(), e, []string{"-f", filepath.Join(t.TempDir(), "absent.yaml")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResetPasswordCmd(t *testing.T) {
	e, out := newEnv(t)
	ctx := context.Background()
	alice := testdb.User(t, e.db, "alice", models.RoleEmployee, nil)

	err := resetPasswordCmd(ctx, e, []string{"--email", alice.Email})
	assert.ErrorIs(t, err, errUsage)

	require.NoError(t, resetPasswordCmd(ctx, e, []string{"--email", alice.Email, "--password", "n3w-secret"}))
	assert.Contains(t, out.String(), "password reset for alice@example.com")

	stored, err := repository.NewUserRepository(e.db).GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.NoError(t, auth.NewPasswordHasher(bcrypt.MinCost).Verify(stored.PasswordHash, "n3w-secret"))

	t.Setenv("HR_NEW_PASSWORD", "env-secret")
	require.NoError(t, resetPasswordCmd(ctx, e, []string{"--email", alice.Email}))

	err = resetPasswordCmd(ctx, e, []string{"--email", "nobody@example.com", "--password", "whatever1"})
	assert.ErrorIs(t, err, userssvc.ErrNotFound)
}

func TestLinkManagerCmd(t *testing.T) {
	e, out := newEnv(t)
	ctx := context.Background()
	maya := testdb.User(t, e.db, "maya", models.RoleManager, nil)
	alice := testdb.User(t, e.db, "alice", models.RoleEmployee, nil)

	require.NoError(t, linkManagerCmd(ctx, e, []string{"--employee", alice.Email, "--manager", maya.Email}))
	assert.Contains(t, out.String(), "alice@example.com now reports to maya@example.com")

	stored, err := repository.NewUserRepository(e.db).GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ManagerID)
	assert.Equal(t, maya.ID, *stored.ManagerID)

	err = linkManagerCmd(ctx, e, []string{"--employee", maya.Email, "--manager", alice.Email})
	assert.ErrorIs(t, err, userssvc.ErrManagerCycle)

	err = linkManagerCmd(ctx, e, []string{"--employee", alice.Email})
	assert.ErrorIs(t, err, errUsage)
}

func TestMigrateCmd_Usage(t *testing.T) {
	cfg := &config.Config{}
	for _, args := range [][]string{nil, {"sideways"}, {"up", "extra"}} {
		err := migrateCmd(cfg, logger.NewNop(), args, &bytes.Buffer{})
		assert.ErrorIs(t, err, errUsage, "args=%v", args)
	}
}
