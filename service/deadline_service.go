package service

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"dzlegal-backend/config"
	"dzlegal-backend/models"
)

const dateLayout = "2006-01-02"

var (
	ErrUnknownProcedure = errors.New("unknown procedure type")
	ErrUnknownPolicy    = errors.New("unknown deadline policy")
	ErrInvalidStartDate = errors.New("start date must be formatted as YYYY-MM-DD")
	ErrNegativeDays     = errors.New("deadline days must be non-negative")
)

var procedureOrder = []models.ProcedureType{
	models.ProcedureCivilAppeal,
	models.ProcedureAdministrativeAppeal,
	models.ProcedureOpposition,
	models.ProcedureCassation,
}

var arabicWeekdays = [...]string{
	time.Sunday:    "الأحد",
	time.Monday:    "الاثنين",
	time.Tuesday:   "الثلاثاء",
	time.Wednesday: "الأربعاء",
	time.Thursday:  "الخميس",
	time.Friday:    "الجمعة",
	time.Saturday:  "السبت",
}

// Month names as used in Algeria
var arabicMonths = [...]string{
	time.January:   "جانفي",
	time.February:  "فيفري",
	time.March:     "مارس",
	time.April:     "أفريل",
	time.May:       "ماي",
	time.June:      "جوان",
	time.July:      "جويلية",
	time.August:    "أوت",
	time.September: "سبتمبر",
	time.October:   "أكتوبر",
	time.November:  "نوفمبر",
	time.December:  "ديسمبر",
}

// DeadlineService computes procedural filing deadlines. The day table can be
// replaced at runtime; a calculation always sees one consistent table.
type DeadlineService struct {
	mu     sync.RWMutex
	days   map[models.ProcedureType]int
	policy models.DeadlinePolicy
}

// DeadlineServiceOption is a functional option for DeadlineService
type DeadlineServiceOption func(*DeadlineService)

// DeadlineWithTable overrides day counts and the default policy.
// Invalid values are ignored; use SetTable to get an error instead.
func DeadlineWithTable(days map[string]int, policy string) DeadlineServiceOption {
	return func(s *DeadlineService) {
		_ = s.SetTable(days, policy)
	}
}

// NewDeadlineService creates a deadline service with the default table
func NewDeadlineService(opts ...DeadlineServiceOption) *DeadlineService {
	s := &DeadlineService{
		days:   make(map[models.ProcedureType]int, len(config.DefaultDeadlineDays)),
		policy: models.PolicyCalendarDays,
	}
	for procedure, days := range config.DefaultDeadlineDays {
		s.days[models.ProcedureType(procedure)] = days
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetTable replaces the day counts of known procedures and the default policy.
// Unknown procedure keys are ignored. An empty policy keeps the current one.
func (s *DeadlineService) SetTable(days map[string]int, policy string) error {
	p := models.DeadlinePolicy(policy)
	if policy != "" && !validPolicy(p) {
		return fmt.Errorf("%w: %s", ErrUnknownPolicy, policy)
	}

	next := make(map[models.ProcedureType]int, len(procedureOrder))
	s.mu.RLock()
	for k, v := range s.days {
		next[k] = v
	}
	s.mu.RUnlock()

	for key, n := range days {
		procedure := models.ProcedureType(key)
		if _, ok := models.ProcedureTitles[procedure]; !ok {
			continue
		}
		if n < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeDays, key, n)
		}
		next[procedure] = n
	}

	s.mu.Lock()
	s.days = next
	if policy != "" {
		s.policy = p
	}
	s.mu.Unlock()
	return nil
}

// Procedures lists the deadline table in display order
func (s *DeadlineService) Procedures() []models.Procedure {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Procedure, 0, len(procedureOrder))
	for _, p := range procedureOrder {
		out = append(out, models.Procedure{
			Type:  p,
			Title: models.ProcedureTitles[p],
			Days:  s.days[p],
		})
	}
	return out
}

// DefaultPolicy returns the policy used when a request names none
func (s *DeadlineService) DefaultPolicy() models.DeadlinePolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// CalculateDeadlineRequest represents a request to compute a deadline
type CalculateDeadlineRequest struct {
	StartDate string
	Procedure models.ProcedureType
	Policy    models.DeadlinePolicy // empty means the service default
}

// Calculate returns the deadline for the request. An empty start date yields
// a nil result and no error.
func (s *DeadlineService) Calculate(req CalculateDeadlineRequest) (*models.Deadline, error) {
	s.mu.RLock()
	days, ok := s.days[req.Procedure]
	policy := s.policy
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProcedure, req.Procedure)
	}
	if req.Policy != "" {
		if !validPolicy(req.Policy) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, req.Policy)
		}
		policy = req.Policy
	}
	if req.StartDate == "" {
		return nil, nil
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, ErrInvalidStartDate
	}

	var deadline time.Time
	switch policy {
	case models.PolicyBusinessDays:
		deadline = AddBusinessDays(start, days)
	default:
		deadline = AddCalendarDays(start, days)
	}

	return &models.Deadline{
		Procedure: req.Procedure,
		Policy:    policy,
		StartDate: start.Format(dateLayout),
		Days:      days,
		Deadline:  deadline.Format(dateLayout),
		Weekday:   arabicWeekdays[deadline.Weekday()],
		Formatted: FormatArabicDate(deadline),
	}, nil
}

// IsWeekend reports whether t falls on Friday or Saturday
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Friday || wd == time.Saturday
}

// AddCalendarDays adds n days, then moves a weekend result to the next Sunday
func AddCalendarDays(start time.Time, n int) time.Time {
	d := start.AddDate(0, 0, n)
	switch d.Weekday() {
	case time.Friday:
		d = d.AddDate(0, 0, 2)
	case time.Saturday:
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// AddBusinessDays steps forward until n non-weekend days have been counted
func AddBusinessDays(start time.Time, n int) time.Time {
	d := start
	for counted := 0; counted < n; {
		d = d.AddDate(0, 0, 1)
		if !IsWeekend(d) {
			counted++
		}
	}
	return d
}

// FormatArabicDate renders t as a long Arabic (Algeria) date,
// e.g. "الأحد 1 فيفري 2026".
func FormatArabicDate(t time.Time) string {
	return arabicWeekdays[t.Weekday()] + " " +
		strconv.Itoa(t.Day()) + " " +
		arabicMonths[t.Month()] + " " +
		strconv.Itoa(t.Year())
}

func validPolicy(p models.DeadlinePolicy) bool {
	return p == models.PolicyCalendarDays || p == models.PolicyBusinessDays
}
