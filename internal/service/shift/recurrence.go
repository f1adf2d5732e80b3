package shift

import (
	"errors"
	"fmt"
	"time"

	"github.com/anesteasy/api/internal/model"
)

// MaxOccurrences bounds a single series expansion.
const MaxOccurrences = 1000

const dateLayout = "2006-01-02"

var ErrTooManyOccurrences = fmt.Errorf("recurrence would generate more than %d occurrences", MaxOccurrences)

// ParseRecurrenceEnd reads a recurrence end bound. A plain date means the end
// of that day in loc.
func ParseRecurrenceEnd(value string, loc *time.Location) (time.Time, error) {
	if d, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		return d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid recurrence end date %q", value)
}

// CrossesMidnight reports whether start and end fall on different calendar
// days in loc.
func CrossesMidnight(start, end time.Time, loc *time.Location) bool {
	return daySpan(start.In(loc), end.In(loc)) != 0
}

// daySpan is the number of calendar days from a's date to b's date.
func daySpan(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// addMonthsClamped moves n months from y-m-d, clamping the day to the last
// day of the target month.
func addMonthsClamped(y int, m time.Month, d, n int) (int, time.Month, int) {
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.Year(), first.Month(), d
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Occurrences expands a recurring parent into its generated children, in date
// order. The parent is never emitted. Occurrence n is placed n steps from the
// parent's date so month lengths do not accumulate drift. Each child keeps the
// parent's wall-clock start and end in loc.
func Occurrences(parent *model.Shift, loc *time.Location) ([]*model.Shift, error) {
	if !parent.IsRecurring || parent.RecurrenceType == nil || parent.RecurrenceEndDate == nil {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	until, err := ParseRecurrenceEnd(*parent.RecurrenceEndDate, loc)
	if err != nil {
		return nil, err
	}

	start := parent.StartDate.In(loc)
	end := parent.EndDate.In(loc)
	span := daySpan(start, end)
	y, m, d := start.Date()

	var children []*model.Shift
	for n := 1; ; n++ {
		var cy, cd int
		var cm time.Month
		switch *parent.RecurrenceType {
		case model.RecurrenceWeekly:
			cy, cm, cd = time.Date(y, m, d+7*n, 0, 0, 0, 0, loc).Date()
		case model.RecurrenceMonthly:
			cy, cm, cd = addMonthsClamped(y, m, d, n)
		default:
			return nil, errors.New("unknown recurrence type")
		}

		occStart := time.Date(cy, cm, cd, start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), loc)
		if occStart.After(until) {
			break
		}
		if len(children) == MaxOccurrences {
			return nil, ErrTooManyOccurrences
		}
		occEnd := time.Date(cy, cm, cd+span, end.Hour(), end.Minute(), end.Second(), end.Nanosecond(), loc)
		occDate := time.Date(cy, cm, cd, 0, 0, 0, 0, time.UTC)

		parentID := parent.ID
		children = append(children, &model.Shift{
			UserID:            parent.UserID,
			Title:             parent.Title,
			StartDate:         occStart,
			EndDate:           occEnd,
			ShiftType:         parent.ShiftType,
			HospitalName:      parent.HospitalName,
			Description:       parent.Description,
			IsRecurring:       false,
			RecurrenceType:    parent.RecurrenceType,
			RecurrenceEndDate: parent.RecurrenceEndDate,
			ParentShiftID:     &parentID,
			IsGenerated:       true,
			OccurrenceDate:    &occDate,
		})
	}
	return children, nil
}

// withoutExceptions drops occurrences whose date was overridden or cancelled.
func withoutExceptions(children []*model.Shift, exceptions []*model.ShiftException) []*model.Shift {
	if len(exceptions) == 0 {
		return children
	}
	skip := make(map[string]struct{}, len(exceptions))
	for _, e := range exceptions {
		skip[dateOf(e.OccurrenceDate).Format(dateLayout)] = struct{}{}
	}

	kept := children[:0]
	for _, c := range children {
		if c.OccurrenceDate != nil {
			if _, ok := skip[c.OccurrenceDate.Format(dateLayout)]; ok {
				continue
			}
		}
		kept = append(kept, c)
	}
	return kept
}
