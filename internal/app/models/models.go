package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin   RoleType = "ADMIN"
	RoleStudent RoleType = "STUDENT"
	RoleTeacher RoleType = "TEACHER"
	RoleMonitor RoleType = "MONITOR"
)

// AllRoles lists every role the platform knows about.
var AllRoles = []RoleType{RoleAdmin, RoleStudent, RoleTeacher, RoleMonitor}

// NoAnswerID is the answer id reported in exam results for questions the
// student never answered.
const NoAnswerID int64 = 0
