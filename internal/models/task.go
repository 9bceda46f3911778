package models

type Task struct {
	ID              string `json:"id" bson:"_id"`
	Title           string `json:"title" bson:"title"`
	Date            string `json:"date" bson:"date"`
	StartTime       string `json:"startTime" bson:"startTime"`
	EndTime         string `json:"endTime" bson:"endTime"`
	Duration        string `json:"duration" bson:"duration"`
	Packages        int    `json:"packages" bson:"packages"`
	TeamSize        int    `json:"teamSize" bson:"teamSize"`
	ManagerSection  string `json:"managerSection" bson:"managerSection"`
	ManagerInitials string `json:"managerInitials" bson:"managerInitials"`
	// TeamMembers is nil for legacy tasks recorded before per-member assignment.
	TeamMembers []int `json:"teamMembers" bson:"teamMembers"`
}

// Crew returns the assigned member ids. ok is false for legacy tasks and
// for tasks whose member list is empty; neither ever blocks an employee.
func (t Task) Crew() (members []int, ok bool) {
	if len(t.TeamMembers) == 0 {
		return nil, false
	}
	return t.TeamMembers, true
}

// IsLegacy reports whether the task predates member assignment.
func (t Task) IsLegacy() bool {
	return t.TeamMembers == nil
}

type EventType string

const (
	EventTypeTask     EventType = "task"
	EventTypeMeeting  EventType = "meeting"
	EventTypeTraining EventType = "training"
)

// FixedEvent is an immovable calendar item consulted only for conflict checks.
type FixedEvent struct {
	Title     string    `json:"title"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Type      EventType `json:"type"`
}

type Conflict struct {
	Title     string    `json:"title"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Type      EventType `json:"type,omitempty"`
	TaskID    string    `json:"taskId,omitempty"`
}

type LoadLevel string

const (
	LoadExcellent LoadLevel = "excellent"
	LoadGood      LoadLevel = "good"
	LoadWarning   LoadLevel = "warning"
	LoadCritical  LoadLevel = "critical"
)

// TimeCalculation is the derived duration breakdown. All amounts are seconds.
type TimeCalculation struct {
	BaseTime       int       `json:"baseTime"`
	PalettePenalty int       `json:"palettePenalty"`
	TeamBonus      int       `json:"teamBonus"`
	TotalTime      int       `json:"totalTime"`
	Hours          int       `json:"hours"`
	Minutes        int       `json:"minutes"`
	Seconds        int       `json:"seconds"`
	FormattedTime  string    `json:"formattedTime"`
	Load           LoadLevel `json:"load"`
}
