package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/anesteasy/api/internal/email"
	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
	"github.com/anesteasy/api/internal/repository/mocks"
	"github.com/anesteasy/api/internal/service/policy"
	apperrors "github.com/anesteasy/api/pkg/errors"
)

type inviteRecorder struct {
	email.LogService
	links []string
}

func (r *inviteRecorder) SendFeedbackInvite(_ context.Context, _, _, link string) error {
	r.links = append(r.links, link)
	return nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo       *mocks.FeedbackRepository
	procedures *mocks.ProcedureRepository
	mailer     *inviteRecorder
	svc        *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:       &mocks.FeedbackRepository{},
		procedures: &mocks.ProcedureRepository{},
		mailer:     &inviteRecorder{},
	}
	f.svc = NewService(f.repo, f.procedures, policy.NewEngine(&mocks.DelegationRepository{}), f.mailer, "https://app.anesteasy.com/")
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func owner(id uuid.UUID) *model.Principal {
	return &model.Principal{ID: id, Kind: model.PrincipalAnesthesiologist, Anesthesiologist: &model.Anesthesiologist{}}
}

func TestCreateLink(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ownerID := uuid.New()
	p := &model.Procedure{Base: model.Base{ID: uuid.New()}, UserID: ownerID, ProcedureName: "Cesárea"}

	f.procedures.On("Get", ctx, p.ID).Return(p, nil)
	f.repo.On("CreateLink", ctx, mock.MatchedBy(func(l *model.FeedbackLink) bool {
		return l.ProcedureID == p.ID &&
			l.SurgeonEmail == "cirurgiao@h.com" &&
			len(l.Token) == 64 &&
			l.ExpiresAt.Equal(fixedNow.Add(48*time.Hour))
	})).Return(nil)

	link, err := f.svc.CreateLink(ctx, owner(ownerID), p.ID, &model.CreateFeedbackLinkRequest{SurgeonEmail: "Cirurgiao@H.com", SendEmail: true})
	require.NoError(t, err)
	require.Len(t, f.mailer.links, 1)
	assert.Equal(t, "https://app.anesteasy.com/feedback/"+link.Token, f.mailer.links[0])
}

func TestCreateLink_OtherOwnerForbidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := &model.Procedure{Base: model.Base{ID: uuid.New()}, UserID: uuid.New()}
	f.procedures.On("Get", ctx, p.ID).Return(p, nil)

	_, err := f.svc.CreateLink(ctx, owner(uuid.New()), p.ID, &model.CreateFeedbackLinkRequest{SurgeonEmail: "a@b.com"})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	f.repo.AssertNotCalled(t, "CreateLink", mock.Anything, mock.Anything)
}

func TestValidate(t *testing.T) {
	answered := fixedNow.Add(-time.Hour)
	tests := []struct {
		name string
		link *model.FeedbackLink
		err  error
		code apperrors.ErrorCode
	}{
		{name: "live", link: &model.FeedbackLink{ExpiresAt: fixedNow.Add(time.Hour)}},
		{name: "expired", link: &model.FeedbackLink{ExpiresAt: fixedNow.Add(-time.Second)}, code: apperrors.ErrBadRequest},
		{name: "answered", link: &model.FeedbackLink{ExpiresAt: fixedNow.Add(time.Hour), RespondedAt: &answered}, code: apperrors.ErrConflict},
		{name: "unknown", err: repository.ErrNotFound, code: apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.repo.On("GetLinkByToken", mock.Anything, "tok").Return(tt.link, tt.err)

			_, err := f.svc.Validate(context.Background(), "tok")
			if tt.code == 0 {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperrors.Is(err, tt.code), err)
		})
	}
}

func TestSubmit_LostRaceIsConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	link := &model.FeedbackLink{ID: uuid.New(), ExpiresAt: fixedNow.Add(time.Hour)}
	f.repo.On("GetLinkByToken", ctx, "tok").Return(link, nil)
	f.repo.On("SaveResponse", ctx, link, mock.Anything).Return(repository.ErrNotFound)

	_, err := f.svc.Submit(ctx, "tok", &model.SubmitFeedbackRequest{Headache: true})
	assert.ErrorIs(t, err, ErrAlreadyAnswered)
}

func TestSubmit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	link := &model.FeedbackLink{ID: uuid.New(), ExpiresAt: fixedNow.Add(time.Hour)}
	f.repo.On("GetLinkByToken", ctx, "tok").Return(link, nil)
	f.repo.On("SaveResponse", ctx, link, mock.MatchedBy(func(r *model.FeedbackResponse) bool {
		return r.FeedbackLinkID == link.ID && r.BackPain && !r.Headache
	})).Return(nil)

	resp, err := f.svc.Submit(ctx, "tok", &model.SubmitFeedbackRequest{BackPain: true})
	require.NoError(t, err)
	assert.True(t, resp.BackPain)
}

func TestStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ownerID := uuid.New()
	p := &model.Procedure{Base: model.Base{ID: uuid.New()}, UserID: ownerID}
	f.procedures.On("Get", ctx, p.ID).Return(p, nil)
	f.repo.On("GetLinkByProcedure", ctx, p.ID).Return(&model.FeedbackLink{
		SurgeonEmail: "s@h.com",
		ExpiresAt:    fixedNow.Add(-time.Minute),
		CreatedAt:    fixedNow.Add(-49 * time.Hour),
	}, nil)

	st, err := f.svc.Status(ctx, owner(ownerID), p.ID)
	require.NoError(t, err)
	assert.True(t, st.LinkCreated)
	assert.True(t, st.LinkExpired)
	assert.False(t, st.Responded)
}

func TestStatus_NoLink(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ownerID := uuid.New()
	p := &model.Procedure{Base: model.Base{ID: uuid.New()}, UserID: ownerID}
	f.procedures.On("Get", ctx, p.ID).Return(p, nil)
	f.repo.On("GetLinkByProcedure", ctx, p.ID).Return(nil, repository.ErrNotFound)

	st, err := f.svc.Status(ctx, owner(ownerID), p.ID)
	require.NoError(t, err)
	assert.False(t, st.LinkCreated)
}
