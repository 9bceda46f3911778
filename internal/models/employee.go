package models

type EmployeeStatus string

const (
	StatusOnline  EmployeeStatus = "online"
	StatusBusy    EmployeeStatus = "busy"
	StatusOffline EmployeeStatus = "offline"
	StatusBreak   EmployeeStatus = "break"
)

const (
	ShiftMorning   = "matin"
	ShiftAfternoon = "après-midi"
	ShiftEvening   = "soir"
)

var ShiftPresets = []string{ShiftMorning, ShiftAfternoon, ShiftEvening}

type Employee struct {
	ID             int            `json:"id" bson:"_id"`
	Name           string         `json:"name" bson:"name"`
	Role           string         `json:"role" bson:"role"`
	Section        string         `json:"section" bson:"section"`
	Status         EmployeeStatus `json:"status" bson:"status"`
	Rating         float64        `json:"rating" bson:"rating"`
	Location       string         `json:"location" bson:"location"`
	Phone          *string        `json:"phone" bson:"phone,omitempty"`
	Email          *string        `json:"email" bson:"email,omitempty"`
	Avatar         *string        `json:"avatar" bson:"avatar,omitempty"`
	Shift          string         `json:"shift" bson:"shift"`
	Performance    int            `json:"performance" bson:"performance"`
	TasksCompleted int            `json:"tasksCompleted" bson:"tasksCompleted"`
}

type WorkingHours struct {
	Start string `json:"start" bson:"start"`
	End   string `json:"end" bson:"end"`
}
