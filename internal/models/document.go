package models

import "time"

// Document represents one stored file owned by exactly one student.
// The row is only committed after the backing file exists on disk.
type Document struct {
	ID        string    `db:"id" json:"id"`
	StudentPK string    `db:"student_pk" json:"-"`
	Filename  string    `db:"filename" json:"filename"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
