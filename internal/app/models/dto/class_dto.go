package dto

// CreateClassRequest represents a class creation request
type CreateClassRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Code        string `json:"code" binding:"required,min=2,max=20"`
	Description string `json:"description"`
}

// EnrollStudentRequest enrolls a student in a class
type EnrollStudentRequest struct {
	StudentID int64 `json:"studentId" binding:"required,gt=0"`
}
