package job

import (
	"encoding/json"
	"time"
)

type Source string

const (
	SourceRemotive       Source = "Remotive"
	SourceHimalayas      Source = "Himalayas"
	SourceJobicy         Source = "Jobicy"
	SourceRemoteOK       Source = "RemoteOK"
	SourceWeWorkRemotely Source = "WeWorkRemotely"
	SourceWorkingNomads  Source = "WorkingNomads"
	SourceDailyRemote    Source = "DailyRemote"
	SourceTheMuse        Source = "TheMuse"
)

// Sources lists every upstream in the order a fetch pass visits them.
var Sources = []Source{
	SourceRemotive,
	SourceHimalayas,
	SourceJobicy,
	SourceRemoteOK,
	SourceWeWorkRemotely,
	SourceWorkingNomads,
	SourceDailyRemote,
	SourceTheMuse,
}

type LocationType string

const (
	LocationAnywhere   LocationType = "Anywhere"
	LocationWorldwide  LocationType = "Worldwide"
	LocationGlobal     LocationType = "Global"
	LocationRemote     LocationType = "Remote"
	LocationRemoteAPAC LocationType = "Remote (APAC)"
)

// AllowedLocationTypes is the closed set of location types a stored job may carry.
var AllowedLocationTypes = []LocationType{
	LocationAnywhere,
	LocationWorldwide,
	LocationGlobal,
	LocationRemote,
	LocationRemoteAPAC,
}

func (l LocationType) Valid() bool {
	for _, allowed := range AllowedLocationTypes {
		if l == allowed {
			return true
		}
	}
	return false
}

// Level is either one of the known seniority labels below or, as a last
// resort, the upstream's own cleaned level text. Empty means undetectable.
type Level string

const (
	LevelPrincipal Level = "Principal"
	LevelStaff     Level = "Staff"
	LevelLead      Level = "Lead"
	LevelSenior    Level = "Senior"
	LevelMid       Level = "Mid"
	LevelJunior    Level = "Junior"
	LevelIntern    Level = "Intern"
	LevelDirector  Level = "Director"
	LevelManager   Level = "Manager"
	LevelExecutive Level = "Executive"
)

type LifecycleStatus string

const (
	LifecycleNew      LifecycleStatus = "new"
	LifecycleActive   LifecycleStatus = "active"
	LifecycleInactive LifecycleStatus = "inactive"
)

func (l LifecycleStatus) Valid() bool {
	return l == LifecycleNew || l == LifecycleActive || l == LifecycleInactive
}

// Status is the user's own action on a job. It is never touched by a fetch pass.
type Status string

const (
	StatusNone    Status = ""
	StatusApplied Status = "applied"
	StatusIgnored Status = "ignored"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNone, StatusApplied, StatusIgnored:
		return Status(s), nil
	}
	return StatusNone, ErrInvalidStatus
}

// MarshalJSON writes null when the user has taken no action.
func (s Status) MarshalJSON() ([]byte, error) {
	if s == StatusNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

func (s *Status) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = StatusNone
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Job is the canonical, source-agnostic record every adapter produces.
type Job struct {
	ExternalID   string       `json:"externalId"`
	Title        string       `json:"title"`
	Company      string       `json:"company"`
	CompanyLogo  string       `json:"companyLogo,omitempty"`
	LocationType LocationType `json:"locationType"`
	Level        Level        `json:"level,omitempty"`
	TechTags     []string     `json:"techTags"`
	URL          string       `json:"url"`
	Source       Source       `json:"source"`
	Salary       string       `json:"salary,omitempty"`
	PostedDate   *time.Time   `json:"postedDate,omitempty"`
	Description  string       `json:"description,omitempty"`
	JobType      string       `json:"jobType,omitempty"`
}

// Key is the identity of a job across fetch passes.
type Key struct {
	ExternalID string
	Source     Source
}

func (j Job) Key() Key {
	return Key{ExternalID: j.ExternalID, Source: j.Source}
}

type PersistedJob struct {
	ID int `json:"id"`
	Job
	Status          Status          `json:"status"`
	LifecycleStatus LifecycleStatus `json:"lifecycleStatus"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type Query struct {
	Page      int
	Limit     int
	Search    string
	Level     string
	Companies []string
	Lifecycle LifecycleStatus
	Sort      SortKey
}

type QueryResult struct {
	Jobs       []PersistedJob `json:"jobs"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
}

type CountBy struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type Stats struct {
	TotalJobs        int       `json:"totalJobs"`
	TotalCompanies   int       `json:"totalCompanies"`
	TotalSources     int       `json:"totalSources"`
	ByLevel          []CountBy `json:"byLevel"`
	BySource         []CountBy `json:"bySource"`
	ByLocationType   []CountBy `json:"byLocationType"`
	ByLifecycle      []CountBy `json:"byLifecycle"`
	TopCompanies     []CountBy `json:"topCompanies"`
	SalarySampleSize int       `json:"salarySampleSize"`
	SalaryP50        int64     `json:"salaryP50"`
	SalaryP90        int64     `json:"salaryP90"`
}
