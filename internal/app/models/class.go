package models

// Class defines the class model based on the 'classes' table.
// UserID is the owning teacher.
type Class struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Code        string `json:"code" db:"code"`
	Description string `json:"description" db:"description"`
	UserID      int64  `json:"userId" db:"user_id"`
}
