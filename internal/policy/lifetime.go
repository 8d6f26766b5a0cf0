package policy

import (
	"fmt"
	"time"

	"docserver/internal/errs"
	"docserver/internal/model"
)

// MaxInstant is the expiration of documents that never expire. It is kept at
// microsecond precision so it survives a round trip through the metadata store.
var MaxInstant = time.Date(9999, time.December, 31, 23, 59, 59, 999999000, time.UTC)

type projection func(from time.Time) time.Time

func hours(n int) projection {
	return func(from time.Time) time.Time { return from.Add(time.Duration(n) * time.Hour) }
}

func days(n int) projection {
	return func(from time.Time) time.Time { return from.AddDate(0, 0, n) }
}

func months(n int) projection {
	return func(from time.Time) time.Time { return addMonths(from, n) }
}

// lifetimeTable is the only place lifetimes are turned into instants.
// ParentDetermined has no entry.
var lifetimeTable = map[model.DocumentLifetime]projection{
	model.LifetimeHoursOne:    hours(1),
	model.LifetimeHoursFour:   hours(4),
	model.LifetimeHoursTwelve: hours(12),
	model.LifetimeDayOne:      days(1),
	model.LifetimeWeekOne:     days(7),
	model.LifetimeMonthOne:    months(1),
	model.LifetimeMonthsThree: months(3),
	model.LifetimeMonthsSix:   months(6),
	model.LifetimeYearOne:     months(12),
	model.LifetimeYearsTwo:    months(24),
	model.LifetimeYearsThree:  months(36),
	model.LifetimeYearsFour:   months(48),
	model.LifetimeYearsSeven:  months(84),
	model.LifetimeYearsTen:    months(120),
	model.LifetimeNever:       func(time.Time) time.Time { return MaxInstant },
}

// Project moves from forward by lifetime. The result is in UTC.
func Project(lifetime model.DocumentLifetime, from time.Time) (time.Time, error) {
	p, ok := lifetimeTable[lifetime]
	if !ok {
		return time.Time{}, errs.E(errs.InvalidLifetime, "policy.Project", fmt.Errorf("lifetime %s has no projection", lifetime))
	}
	return p(from.UTC()), nil
}

// FolderInstant returns the instant whose year and month name the folder a
// document of type dt lands in when stored at now. Temporary types use the
// projected expiration; every other mode uses now.
func FolderInstant(dt *model.DocumentType, now time.Time) (time.Time, error) {
	if dt.StorageMode != model.StorageModeTemporary {
		return now.UTC(), nil
	}
	return Project(dt.InactiveLifetime, now)
}

// addMonths adds n calendar months, clamping the day to the end of the target
// month (Jan 31 + 1 month = Feb 28/29) instead of overflowing like AddDate.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
