package models

// ProcedureType is a legal procedure with a filing deadline
type ProcedureType string

const (
	ProcedureCivilAppeal          ProcedureType = "civil_appeal"
	ProcedureAdministrativeAppeal ProcedureType = "administrative_appeal"
	ProcedureOpposition           ProcedureType = "opposition"
	ProcedureCassation            ProcedureType = "cassation"
)

// ProcedureTitles holds the Arabic label of each procedure
var ProcedureTitles = map[ProcedureType]string{
	ProcedureCivilAppeal:          "استئناف مدني",
	ProcedureAdministrativeAppeal: "استئناف إداري",
	ProcedureOpposition:           "معارضة",
	ProcedureCassation:            "طعن بالنقض",
}

// DeadlinePolicy selects how weekend days are treated
type DeadlinePolicy string

const (
	// PolicyCalendarDays adds all days, then moves a Friday/Saturday result to Sunday
	PolicyCalendarDays DeadlinePolicy = "calendar_days"
	// PolicyBusinessDays counts only days that are neither Friday nor Saturday
	PolicyBusinessDays DeadlinePolicy = "business_days"
)

// Procedure describes one row of the deadline table
type Procedure struct {
	Type  ProcedureType `json:"type"`
	Title string        `json:"title"`
	Days  int           `json:"days"`
}

// Deadline is the result of a deadline calculation
type Deadline struct {
	Procedure ProcedureType  `json:"procedure"`
	Policy    DeadlinePolicy `json:"policy"`
	StartDate string         `json:"start_date"`
	Days      int            `json:"days"`
	Deadline  string         `json:"deadline"`
	Weekday   string         `json:"weekday"`
	Formatted string         `json:"formatted"`
}
