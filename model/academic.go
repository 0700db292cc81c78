// model/academic.go
package model

import "time"

type Stream struct {
	ID        string    `json:"stream_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Course struct {
	ID        string    `json:"course_id"`
	Name      string    `json:"name"`
	StreamID  string    `json:"stream_id"`
	Semesters int       `json:"semesters"`
	CreatedAt time.Time `json:"created_at"`

	StreamName *string `json:"stream_name,omitempty"`
}

type Subject struct {
	ID        string    `json:"subject_id"`
	Name      string    `json:"name"`
	CourseID  string    `json:"course_id"`
	Semester  int       `json:"semester"`
	CreatedAt time.Time `json:"created_at"`

	CourseName *string `json:"course_name,omitempty"`
	StreamName *string `json:"stream_name,omitempty"`
}

// HierarchyCourse groups a course's subjects by semester for the tree view.
type HierarchyCourse struct {
	Course
	SubjectsBySemester map[int][]Subject `json:"subjects_by_semester"`
}

type HierarchyStream struct {
	Stream
	Courses []HierarchyCourse `json:"courses"`
}
