package userrepo_test

import (
	"context"
	"database/sql"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goidentity/internal/domain"
	apperror "goidentity/internal/errors"
	"goidentity/internal/pkg/database"
	"goidentity/internal/pkg/logger"
	"goidentity/internal/repository/userrepo"
)

// setupTestDB abre a conexão apontada por TEST_DATABASE_URL e garante o
// esquema usado pelos testes. Sem a variável, os testes de integração são
// pulados.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL não definido; pulando testes de integração com PostgreSQL")
	}

	db, err := database.NewPostgresDB(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// Mesmo esquema das migrações em sql/
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL,
			normalized_email TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			email_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_normalized_email_key ON users (normalized_email)`,
		`CREATE TABLE IF NOT EXISTS roles (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS user_roles (
			user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			role_id UUID NOT NULL REFERENCES roles (id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, role_id)
		)`,
		`INSERT INTO roles (name) VALUES ('admin'), ('user') ON CONFLICT (name) DO NOTHING`,
	}
	for _, stmt := range schema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		db.Exec(`DELETE FROM users`)
	})

	return db
}

func newTestRepo(db *sql.DB) *userrepo.UserRepository {
	return userrepo.NewUserRepository(db, 5*time.Second, logger.NewLoggerWithWriter("error", io.Discard))
}

func testUser(email string) domain.User {
	return domain.User{
		Email:           email,
		NormalizedEmail: domain.NormalizeEmail(email),
		FirstName:       "John",
		LastName:        "Smith",
		PasswordHash:    "hash-qualquer",
		Roles:           []string{string(domain.RoleUser)},
	}
}

// TestIntegrationSave_DuplicateEmail verifica que a restrição de unicidade do
// e-mail normalizado vira ConflictError no segundo registro.
func TestIntegrationSave_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepo(db)
	ctx := context.Background()

	_, err := repo.Save(ctx, testUser("dup@smith.com"))
	require.NoError(t, err)

	_, err = repo.Save(ctx, testUser("DUP@smith.com "))
	require.Error(t, err)
	var cErr *apperror.ConflictError
	assert.ErrorAs(t, err, &cErr)
}

// TestIntegrationAssignRole_Idempotent verifica que vincular um papel que o
// usuário já possui é um no-op, e não um erro de banco.
func TestIntegrationAssignRole_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepo(db)
	ctx := context.Background()

	user, err := repo.Save(ctx, testUser("roles@smith.com"))
	require.NoError(t, err)

	// O papel "user" já foi vinculado pelo Save; repetir não pode falhar.
	require.NoError(t, repo.AssignRole(ctx, user.ID, domain.RoleUser))
	require.NoError(t, repo.AssignRole(ctx, user.ID, domain.RoleUser))

	// Um papel novo entra uma única vez.
	require.NoError(t, repo.AssignRole(ctx, user.ID, domain.RoleAdmin))
	require.NoError(t, repo.AssignRole(ctx, user.ID, domain.RoleAdmin))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "user"}, got.Roles)
}

// TestIntegrationAssignRole_UnknownRole verifica a rejeição de papel inexistente.
func TestIntegrationAssignRole_UnknownRole(t *testing.T) {
	db := setupTestDB(t)
	repo := newTestRepo(db)
	ctx := context.Background()

	user, err := repo.Save(ctx, testUser("norole@smith.com"))
	require.NoError(t, err)

	err = repo.AssignRole(ctx, user.ID, domain.UserRole("inexistente"))
	require.Error(t, err)
	var nfErr *apperror.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}
