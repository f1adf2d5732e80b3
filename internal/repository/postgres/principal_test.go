package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anesteasy/api/internal/model"
)

func TestPrincipalRepository_FindByIDReturnsEveryMatch(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPrincipalRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"kind", "id", "email"}).
		AddRow("anesthesiologist", id.String(), "dr@example.com").
		AddRow("secretary", id.String(), "dr@example.com")

	mock.ExpectQuery(`FROM anesthesiologists WHERE id = \$1\s+UNION ALL\s+SELECT 'secretary'`).
		WithArgs(id).
		WillReturnRows(rows)

	found, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, model.PrincipalAnesthesiologist, found[0].Kind)
	assert.Equal(t, model.PrincipalSecretary, found[1].Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepository_FindByEmailNoMatch(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectQuery(`lower\(email\) = lower\(\$1\)`).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"kind", "id", "email"}))

	found, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepository_FindByCPFIncludesPendingRegistration(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPrincipalRepository(db)

	pending := uuid.New()
	rows := sqlmock.NewRows([]string{"kind", "id", "email"}).
		AddRow("anesthesiologist", pending.String(), "novo@example.com")

	mock.ExpectQuery(`(?s)FROM secretaries WHERE cpf = \$1\s+UNION ALL.*FROM credentials c\s+WHERE c.metadata->>'cpf' = \$1 AND\s+NOT EXISTS`).
		WithArgs("52998224725").
		WillReturnRows(rows)

	found, err := repo.FindByCPF(context.Background(), "52998224725")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, model.PrincipalAnesthesiologist, found[0].Kind)
	assert.Equal(t, pending, found[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPrincipalRepository_FindByEmailIncludesPendingRegistration(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPrincipalRepository(db)

	mock.ExpectQuery(`(?s)FROM credentials c\s+WHERE lower\(c.email\) = lower\(\$1\)`).
		WithArgs("novo@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"kind", "id", "email"}).
			AddRow("anesthesiologist", uuid.New().String(), "novo@example.com"))

	found, err := repo.FindByEmail(context.Background(), "novo@example.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
