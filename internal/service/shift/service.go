package shift

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/anesteasy/api/internal/model"
	"github.com/anesteasy/api/internal/repository"
	"github.com/anesteasy/api/internal/service/policy"
	apperrors "github.com/anesteasy/api/pkg/errors"
	"github.com/anesteasy/api/pkg/lock"
	"github.com/anesteasy/api/pkg/metrics"
)

var (
	ErrShiftOverlap     = errors.New("shift overlaps an existing shift")
	ErrInvalidInterval  = errors.New("shift start must be before its end")
	ErrGroupBusy        = errors.New("shift group is being edited, try again")
	ErrRecurrenceFields = errors.New("recurring shifts need a recurrence type and end date")
)

type Authorizer interface {
	CanAccess(ctx context.Context, principal *model.Principal, action policy.Action, resource policy.Resource) policy.Decision
}

type Config struct {
	// Location is the wall clock recurring shifts are expanded in.
	Location *time.Location
	LockTTL  time.Duration
}

// Service is the shift scheduling engine. Read methods fail soft and return
// empty values; write methods return errors.
type Service struct {
	repo    repository.ShiftRepository
	policy  Authorizer
	locker  lock.Locker
	loc     *time.Location
	lockTTL time.Duration
	metrics *metrics.Metrics
}

func NewService(repo repository.ShiftRepository, policy Authorizer, locker lock.Locker, cfg Config, metrics *metrics.Metrics) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 30 * time.Second
	}
	if locker == nil {
		locker = lock.NopLocker{}
	}
	return &Service{
		repo:    repo,
		policy:  policy,
		locker:  locker,
		loc:     cfg.Location,
		lockTTL: cfg.LockTTL,
		metrics: metrics,
	}
}

func (s *Service) authorize(ctx context.Context, actor *model.Principal, action policy.Action, ownerID uuid.UUID) error {
	return s.policy.CanAccess(ctx, actor, action, policy.Resource{Kind: policy.ResourceShift, OwnerID: ownerID}).Err()
}

func (s *Service) ListShifts(ctx context.Context, ownerID uuid.UUID) []*model.Shift {
	shifts, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		log.Error().Err(err).Str("user_id", ownerID.String()).Msg("Failed to list shifts")
		return []*model.Shift{}
	}
	return shifts
}

// ListShiftsInRange returns the shifts intersecting [rangeStart, rangeEnd].
func (s *Service) ListShiftsInRange(ctx context.Context, ownerID uuid.UUID, rangeStart, rangeEnd time.Time) []*model.Shift {
	shifts, err := s.repo.ListInRange(ctx, ownerID, rangeStart, rangeEnd)
	if err != nil {
		log.Error().Err(err).Str("user_id", ownerID.String()).Msg("Failed to list shifts in range")
		return []*model.Shift{}
	}
	return shifts
}

func (s *Service) GetShift(ctx context.Context, actor *model.Principal, id uuid.UUID) (*model.Shift, error) {
	shift, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if err := s.authorize(ctx, actor, policy.ActionRead, shift.UserID); err != nil {
		return nil, err
	}
	return shift, nil
}

// CheckOverlap reports whether [start, end) collides with another shift of
// the owner. A lookup failure reports no overlap.
func (s *Service) CheckOverlap(ctx context.Context, ownerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) bool {
	overlap, err := s.overlaps(ctx, ownerID, start, end, excludeID)
	if err != nil {
		log.Error().Err(err).Str("user_id", ownerID.String()).Msg("Failed to check shift overlap")
		return false
	}
	return overlap
}

// overlaps is the failing variant used by writes. When excludeID is given,
// every member of its group is ignored as well.
func (s *Service) overlaps(ctx context.Context, ownerID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	candidates, err := s.repo.FindOverlapping(ctx, ownerID, start, end, excludeID)
	if err != nil {
		return false, err
	}
	if len(candidates) == 0 || excludeID == nil {
		return len(candidates) > 0, nil
	}

	excluded, err := s.repo.Get(ctx, *excludeID)
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return len(outsideGroup(candidates, excluded.GroupID())) > 0, nil
}

func outsideGroup(shifts []*model.Shift, root uuid.UUID) []*model.Shift {
	var out []*model.Shift
	for _, sh := range shifts {
		if sh.ID == root || (sh.ParentShiftID != nil && *sh.ParentShiftID == root) {
			continue
		}
		out = append(out, sh)
	}
	return out
}

// anyOverlap checks every interval against the owner's other shifts, ignoring
// the group rooted at exclude when it is set.
func (s *Service) anyOverlap(ctx context.Context, ownerID uuid.UUID, shifts []*model.Shift, exclude *uuid.UUID) error {
	for _, sh := range shifts {
		overlap, err := s.overlaps(ctx, ownerID, sh.StartDate, sh.EndDate, exclude)
		if err != nil {
			return apperrors.Internal(err)
		}
		if overlap {
			s.metrics.OverlapRejections.Inc()
			return apperrors.Conflict(ErrShiftOverlap.Error(), ErrShiftOverlap)
		}
	}
	return nil
}

func (s *Service) CreateShift(ctx context.Context, actor *model.Principal, req *model.CreateShiftRequest) (*model.Shift, error) {
	if actor == nil {
		return nil, apperrors.Unauthorized(nil)
	}
	ownerID := actor.ID
	if req.UserID != nil {
		ownerID = *req.UserID
	}
	if err := s.authorize(ctx, actor, policy.ActionCreate, ownerID); err != nil {
		return nil, err
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, apperrors.Validation(ErrInvalidInterval.Error())
	}

	parent := &model.Shift{
		UserID:       ownerID,
		Title:        req.Title,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ShiftType:    req.ShiftType,
		HospitalName: req.HospitalName,
		Description:  req.Description,
		IsRecurring:  req.IsRecurring,
	}
	parent.ID = uuid.New()
	if req.IsRecurring {
		if req.RecurrenceType == nil || req.RecurrenceEndDate == nil || *req.RecurrenceEndDate == "" {
			return nil, apperrors.Validation(ErrRecurrenceFields.Error())
		}
		parent.RecurrenceType = req.RecurrenceType
		parent.RecurrenceEndDate = req.RecurrenceEndDate
	}

	children, err := Occurrences(parent, s.loc)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	if err := s.anyOverlap(ctx, ownerID, append([]*model.Shift{parent}, children...), nil); err != nil {
		return nil, err
	}

	if len(children) == 0 {
		err = s.repo.Create(ctx, parent)
	} else {
		err = s.repo.CreateBatch(ctx, append([]*model.Shift{parent}, children...))
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.metrics.ShiftsCreated.WithLabelValues("manual").Inc()
	if len(children) > 0 {
		s.metrics.ShiftsCreated.WithLabelValues("generated").Add(float64(len(children)))
	}
	log.Info().
		Str("shift_id", parent.ID.String()).
		Str("user_id", ownerID.String()).
		Int("occurrences", len(children)).
		Msg("Shift created")
	return parent, nil
}

// GenerateRecurringShifts inserts the occurrences of parent, skipping dates
// recorded as exceptions. It does not look for existing children.
func (s *Service) GenerateRecurringShifts(ctx context.Context, parent *model.Shift) ([]*model.Shift, error) {
	children, err := Occurrences(parent, s.loc)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	exceptions, err := s.repo.ListExceptions(ctx, parent.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	children = withoutExceptions(children, exceptions)
	if len(children) == 0 {
		return children, nil
	}

	if err := s.repo.CreateBatch(ctx, children); err != nil {
		return nil, apperrors.Internal(err)
	}
	s.metrics.ShiftsCreated.WithLabelValues("generated").Add(float64(len(children)))
	return children, nil
}

// GetShiftGroup returns the group of shiftID: its root and every child of
// that root, ordered by start.
func (s *Service) GetShiftGroup(ctx context.Context, shiftID uuid.UUID) []*model.Shift {
	group, err := s.group(ctx, shiftID)
	if err != nil {
		log.Error().Err(err).Str("shift_id", shiftID.String()).Msg("Failed to get shift group")
		return []*model.Shift{}
	}
	return group
}

func (s *Service) group(ctx context.Context, shiftID uuid.UUID) ([]*model.Shift, error) {
	shift, err := s.repo.Get(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListGroup(ctx, shift.GroupID())
}

func lockKey(root uuid.UUID) string {
	return "shift-group:" + root.String()
}

func (s *Service) withGroupLock(ctx context.Context, root uuid.UUID, fn func() error) error {
	err := lock.WithLock(ctx, s.locker, lockKey(root), s.lockTTL, fn)
	if errors.Is(err, lock.ErrNotAcquired) {
		return apperrors.Conflict(ErrGroupBusy.Error(), err)
	}
	return err
}

// UpdateShiftGroup applies title, kind, hospital and description to every
// member of the group. Start or end moves the group root and rebuilds its
// generated occurrences; overridden and cancelled dates are kept as they are.
func (s *Service) UpdateShiftGroup(ctx context.Context, actor *model.Principal, shiftID uuid.UUID, req *model.UpdateShiftRequest) error {
	if req.StartDate != nil && req.EndDate != nil && !req.StartDate.Before(*req.EndDate) {
		return apperrors.Validation(ErrInvalidInterval.Error())
	}

	shift, err := s.repo.Get(ctx, shiftID)
	if err != nil {
		return notFoundOr(err)
	}
	if err := s.authorize(ctx, actor, policy.ActionUpdate, shift.UserID); err != nil {
		return err
	}

	root := shift.GroupID()
	return s.withGroupLock(ctx, root, func() error {
		members, err := s.repo.ListGroup(ctx, root)
		if err != nil {
			return apperrors.Internal(err)
		}
		parent := findByID(members, root)
		if parent == nil {
			return apperrors.NotFound("shift group", nil)
		}

		common := req.Common()
		if !req.HasTemporal() {
			if common.Empty() {
				return nil
			}
			if err := s.repo.UpdateCommonFields(ctx, ids(members), common); err != nil {
				return apperrors.Internal(err)
			}
			return nil
		}

		// Nothing is written until the new interval and its occurrences are
		// known to be valid and free.
		applyCommon(parent, common)
		if req.StartDate != nil {
			parent.StartDate = *req.StartDate
		}
		if req.EndDate != nil {
			parent.EndDate = *req.EndDate
		}
		if !parent.StartDate.Before(parent.EndDate) {
			return apperrors.Validation(ErrInvalidInterval.Error())
		}

		if !parent.IsRecurring {
			if err := s.anyOverlap(ctx, parent.UserID, []*model.Shift{parent}, &parent.ID); err != nil {
				return err
			}
			if err := s.repo.Update(ctx, parent); err != nil {
				return apperrors.Internal(err)
			}
			if others := without(members, parent.ID); len(others) > 0 && !common.Empty() {
				if err := s.repo.UpdateCommonFields(ctx, ids(others), common); err != nil {
					return apperrors.Internal(err)
				}
			}
			return nil
		}

		children, err := Occurrences(parent, s.loc)
		if err != nil {
			return apperrors.Validation(err.Error())
		}
		exceptions, err := s.repo.ListExceptions(ctx, root)
		if err != nil {
			return apperrors.Internal(err)
		}
		children = withoutExceptions(children, exceptions)

		if err := s.anyOverlap(ctx, parent.UserID, append([]*model.Shift{parent}, children...), &parent.ID); err != nil {
			return err
		}
		if err := s.repo.RegenerateSeries(ctx, parent, children, common); err != nil {
			return apperrors.Internal(err)
		}

		s.metrics.SeriesRegenerated.Inc()
		log.Info().
			Str("shift_id", root.String()).
			Int("occurrences", len(children)).
			Int("exceptions", len(exceptions)).
			Msg("Shift series regenerated")
		return nil
	})
}

// DeleteShiftGroup removes one shift or its whole group. The flag reports
// whether every delete succeeded. Deleting a single generated occurrence
// records a cancellation so the series is not rebuilt onto that date.
func (s *Service) DeleteShiftGroup(ctx context.Context, actor *model.Principal, shiftID uuid.UUID, onlyThis bool) (bool, error) {
	shift, err := s.repo.Get(ctx, shiftID)
	if err != nil {
		return false, notFoundOr(err)
	}
	if err := s.authorize(ctx, actor, policy.ActionDelete, shift.UserID); err != nil {
		return false, err
	}

	if onlyThis {
		if shift.ParentShiftID != nil && shift.OccurrenceDate != nil {
			if err := s.repo.UpsertException(ctx, &model.ShiftException{
				ParentShiftID:  *shift.ParentShiftID,
				OccurrenceDate: *shift.OccurrenceDate,
				Kind:           model.ShiftExceptionCancelled,
			}); err != nil {
				return false, apperrors.Internal(err)
			}
		}
		if err := s.repo.Delete(ctx, shift.ID); err != nil {
			return false, apperrors.Internal(err)
		}
		return true, nil
	}

	root := shift.GroupID()
	allDeleted := true
	err = s.withGroupLock(ctx, root, func() error {
		members, err := s.repo.ListGroup(ctx, root)
		if err != nil {
			return apperrors.Internal(err)
		}
		// Children first so the root goes last.
		for i := len(members) - 1; i >= 0; i-- {
			m := members[i]
			if m.ID == root {
				continue
			}
			if err := s.repo.Delete(ctx, m.ID); err != nil {
				log.Error().Err(err).Str("shift_id", m.ID.String()).Msg("Failed to delete group member")
				allDeleted = false
			}
		}
		if err := s.repo.Delete(ctx, root); err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.Error().Err(err).Str("shift_id", root.String()).Msg("Failed to delete group root")
			allDeleted = false
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return allDeleted, nil
}

// UpdateShift edits one shift on its own. A generated occurrence edited this
// way is recorded as an override and survives later series rebuilds.
func (s *Service) UpdateShift(ctx context.Context, actor *model.Principal, id uuid.UUID, req *model.UpdateShiftRequest) (*model.Shift, error) {
	shift, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if err := s.authorize(ctx, actor, policy.ActionUpdate, shift.UserID); err != nil {
		return nil, err
	}

	applyCommon(shift, req.Common())
	if req.StartDate != nil {
		shift.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		shift.EndDate = *req.EndDate
	}
	if !shift.StartDate.Before(shift.EndDate) {
		return nil, apperrors.Validation(ErrInvalidInterval.Error())
	}

	if req.HasTemporal() {
		if err := s.anyOverlap(ctx, shift.UserID, []*model.Shift{shift}, &shift.ID); err != nil {
			return nil, err
		}
	}

	if shift.IsGenerated && shift.ParentShiftID != nil && shift.OccurrenceDate != nil {
		shiftID := shift.ID
		if err := s.repo.UpsertException(ctx, &model.ShiftException{
			ParentShiftID:  *shift.ParentShiftID,
			OccurrenceDate: *shift.OccurrenceDate,
			Kind:           model.ShiftExceptionOverride,
			ShiftID:        &shiftID,
		}); err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	if err := s.repo.Update(ctx, shift); err != nil {
		return nil, notFoundOr(err)
	}
	return shift, nil
}

func applyCommon(shift *model.Shift, f model.ShiftCommonFields) {
	if f.Title != nil {
		shift.Title = *f.Title
	}
	if f.ShiftType != nil {
		shift.ShiftType = *f.ShiftType
	}
	if f.HospitalName != nil {
		shift.HospitalName = f.HospitalName
	}
	if f.Description != nil {
		shift.Description = f.Description
	}
}

func without(shifts []*model.Shift, id uuid.UUID) []*model.Shift {
	out := make([]*model.Shift, 0, len(shifts))
	for _, sh := range shifts {
		if sh.ID != id {
			out = append(out, sh)
		}
	}
	return out
}

func findByID(shifts []*model.Shift, id uuid.UUID) *model.Shift {
	for _, sh := range shifts {
		if sh.ID == id {
			return sh
		}
	}
	return nil
}

func ids(shifts []*model.Shift) []uuid.UUID {
	out := make([]uuid.UUID, len(shifts))
	for i, sh := range shifts {
		out[i] = sh.ID
	}
	return out
}

func notFoundOr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("shift", err)
	}
	return apperrors.Internal(err)
}
