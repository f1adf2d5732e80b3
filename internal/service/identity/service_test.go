package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
	"github.com/anesteasy/api/internal/repository/mocks"
	apperrors "github.com/anesteasy/api/pkg/errors"
)

type fixture struct {
	principals        *mocks.PrincipalRepository
	anesthesiologists *mocks.AnesthesiologistRepository
	secretaries       *mocks.SecretaryRepository
	svc               *Service
}

func newFixture() *fixture {
	f := &fixture{
		principals:        &mocks.PrincipalRepository{},
		anesthesiologists: &mocks.AnesthesiologistRepository{},
		secretaries:       &mocks.SecretaryRepository{},
	}
	f.svc = NewService(f.principals, f.anesthesiologists, f.secretaries)
	return f
}

func TestResolveSecretary(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.principals.On("FindByID", mock.Anything, id).Return([]model.PrincipalRow{{Kind: model.PrincipalSecretary, ID: id}}, nil)
	f.secretaries.On("Get", mock.Anything, id).Return(&model.Secretary{Name: "Ana"}, nil)

	p, err := f.svc.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, p.IsSecretary())
	assert.False(t, p.IsAnesthesiologist())
	assert.Equal(t, "Ana", p.DisplayName())
}

func TestResolveUnknownIsNone(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.principals.On("FindByID", mock.Anything, id).Return([]model.PrincipalRow{}, nil)

	p, err := f.svc.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.PrincipalNone, p.Kind)
}

func TestResolveRejectsIdentityInBothTables(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.principals.On("FindByID", mock.Anything, id).Return([]model.PrincipalRow{
		{Kind: model.PrincipalAnesthesiologist, ID: id},
		{Kind: model.PrincipalSecretary, ID: id},
	}, nil)

	_, err := f.svc.Resolve(context.Background(), id)
	assert.ErrorIs(t, err, ErrKindConflict)
	assert.False(t, f.svc.IsSecretary(context.Background(), id))
	assert.False(t, f.svc.IsAnesthesiologist(context.Background(), id))
}

func TestClassificationFailsClosed(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.principals.On("FindByID", mock.Anything, id).Return(nil, errors.New("connection reset"))

	assert.False(t, f.svc.IsSecretary(context.Background(), id))
	assert.False(t, f.svc.IsAnesthesiologist(context.Background(), id))
}

func TestResolveMissingProfileIsNone(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.principals.On("FindByID", mock.Anything, id).Return([]model.PrincipalRow{{Kind: model.PrincipalAnesthesiologist, ID: id}}, nil)
	f.anesthesiologists.On("Get", mock.Anything, id).Return(nil, repository.ErrNotFound)

	p, err := f.svc.Resolve(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.PrincipalNone, p.Kind)
}

func TestEnsureAvailableRejectsAnesthesiologistEmailForSecretary(t *testing.T) {
	f := newFixture()
	f.principals.On("FindByEmail", mock.Anything, "doc@x.com").Return([]model.PrincipalRow{
		{Kind: model.PrincipalAnesthesiologist, ID: uuid.New(), Email: "doc@x.com"},
	}, nil)

	err := f.svc.EnsureAvailable(context.Background(), model.PrincipalSecretary, " Doc@X.com ", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmailTakenByAnesthesiologist)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestEnsureAvailableAllowsSameKind(t *testing.T) {
	f := newFixture()
	f.principals.On("FindByEmail", mock.Anything, "sec@x.com").Return([]model.PrincipalRow{
		{Kind: model.PrincipalSecretary, ID: uuid.New()},
	}, nil)

	assert.NoError(t, f.svc.EnsureAvailable(context.Background(), model.PrincipalSecretary, "sec@x.com", nil, nil))
}

func TestEnsureAvailableRejectsCPFOfOtherKind(t *testing.T) {
	f := newFixture()
	cpf := "529.982.247-25"
	f.principals.On("FindByEmail", mock.Anything, "new@x.com").Return([]model.PrincipalRow{}, nil)
	f.principals.On("FindByCPF", mock.Anything, "52998224725").Return([]model.PrincipalRow{
		{Kind: model.PrincipalSecretary, ID: uuid.New()},
	}, nil)

	err := f.svc.EnsureAvailable(context.Background(), model.PrincipalAnesthesiologist, "new@x.com", &cpf, nil)
	assert.ErrorIs(t, err, ErrCPFTakenBySecretary)
}

func TestEnsureAvailableIgnoresSelf(t *testing.T) {
	f := newFixture()
	self := uuid.New()
	cpf := "52998224725"
	f.principals.On("FindByCPF", mock.Anything, cpf).Return([]model.PrincipalRow{
		{Kind: model.PrincipalSecretary, ID: self},
	}, nil)

	assert.NoError(t, f.svc.EnsureAvailable(context.Background(), model.PrincipalAnesthesiologist, "", &cpf, &self))
}

func TestUpdateSecretaryRequiresSecretary(t *testing.T) {
	f := newFixture()
	actor := &model.Principal{ID: uuid.New(), Kind: model.PrincipalAnesthesiologist, Anesthesiologist: &model.Anesthesiologist{}}
	name := "Bia"

	_, err := f.svc.UpdateSecretary(context.Background(), actor, &model.UpdateSecretaryRequest{Name: &name})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestUpdateSecretaryAppliesFields(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	actor := &model.Principal{ID: id, Kind: model.PrincipalSecretary, Secretary: &model.Secretary{Name: "Ana"}}
	name := "Ana Paula"
	f.secretaries.On("Update", mock.Anything, mock.MatchedBy(func(s *model.Secretary) bool {
		return s.Name == name
	})).Return(nil)

	sec, err := f.svc.UpdateSecretary(context.Background(), actor, &model.UpdateSecretaryRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, sec.Name)
	assert.Equal(t, "Ana", actor.Secretary.Name)
}
