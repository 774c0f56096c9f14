package model

import "time"

// AgeUnit is the unit of an age threshold or delay.
type AgeUnit string

const (
	UnitDays   AgeUnit = "days"
	UnitWeeks  AgeUnit = "weeks"
	UnitMonths AgeUnit = "months"
	UnitYears  AgeUnit = "years"
)

// Valid reports whether the unit is one of the supported values.
func (u AgeUnit) Valid() bool {
	switch u {
	case UnitDays, UnitWeeks, UnitMonths, UnitYears:
		return true
	}
	return false
}

// Shift moves t by n units. Negative n moves into the past.
func (u AgeUnit) Shift(t time.Time, n int) time.Time {
	switch u {
	case UnitDays:
		return t.AddDate(0, 0, n)
	case UnitWeeks:
		return t.AddDate(0, 0, 7*n)
	case UnitMonths:
		return t.AddDate(0, n, 0)
	case UnitYears:
		return t.AddDate(n, 0, 0)
	}
	return t
}

// WhoPolicy selects which content-related user is notified.
type WhoPolicy string

const (
	NotifyCreated  WhoPolicy = "created"
	NotifyModified WhoPolicy = "modified"
	NotifyNone     WhoPolicy = "none"
)

// LanguageUser makes the recipient's stored language preference win over
// the site default when resolving the notification language.
const LanguageUser = "user"

// RunConfig is a fully-normalized task configuration. Every field is
// populated before a run starts; the core never falls back on defaults.
type RunConfig struct {
	Threshold     int
	ThresholdUnit AgeUnit

	SecondEnabled   bool
	SecondDelay     int
	SecondDelayUnit AgeUnit

	Categories        []int64
	CategoriesInclude bool

	LimitPerRun int

	ExplicitEmails []string
	AdminEmails    []string

	WhoPolicy WhoPolicy

	// LanguageOverride is "user" (recipient preference), a concrete language
	// tag, or empty for the site default.
	LanguageOverride string
}

// CategoryFilter returns the category restriction for content queries.
func (c RunConfig) CategoryFilter() CategoryFilter {
	return CategoryFilter{IDs: c.Categories, Include: c.CategoriesInclude}
}

// RunStatus is the final outcome of one notification run.
type RunStatus int

const (
	StatusOK RunStatus = iota
	StatusFatal
)

func (s RunStatus) String() string {
	if s == StatusFatal {
		return "fatal"
	}
	return "ok"
}

// RunResult aggregates what one run did.
type RunResult struct {
	Status     RunStatus
	FirstSent  int
	SecondSent int
	Cancelled  int
	Skipped    int
}
