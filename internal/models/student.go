package models

import "time"

// AdminStudentID is the reserved identity granted management privileges.
const AdminStudentID = "admin"

// Departments is the fixed enumeration offered by the admin panel.
var Departments = []string{
	"Computer Science",
	"Information Technology",
	"Mechanical Engineering",
	"Civil Engineering",
	"Electronics",
	"B.Com",
	"B.Sc",
	"MBA",
	"Physics",
}

// ValidDepartment reports whether the value is part of the enumeration.
// The empty string is allowed: a profile may be saved before a department
// is assigned.
func ValidDepartment(value string) bool {
	if value == "" {
		return true
	}
	for _, d := range Departments {
		if d == value {
			return true
		}
	}
	return false
}

// Student represents one person's record, including the reserved admin row.
type Student struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Username     string    `db:"username" json:"username"`
	Department   string    `db:"department" json:"department"`
	YearStart    string    `db:"year_start" json:"year_start"`
	YearEnd      string    `db:"year_end" json:"year_end"`
	Address      string    `db:"address" json:"address"`
	FatherName   string    `db:"father_name" json:"father_name"`
	MotherName   string    `db:"mother_name" json:"mother_name"`
	Phone        string    `db:"phone" json:"phone"`
	AltPhone     string    `db:"alt_phone" json:"alt_phone"`
	BloodGroup   string    `db:"blood_grp" json:"blood_grp"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether this record is the reserved administrator.
func (s *Student) IsAdmin() bool {
	return s != nil && s.StudentID == AdminStudentID
}

// StudentDetail is a student together with their documents, as rendered by
// the admin panel and the portal.
type StudentDetail struct {
	Student
	Documents []Document `json:"documents"`
}
