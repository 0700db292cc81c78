package academic

type AddStreamReq struct {
	Name string `json:"name" validate:"required"`
}

type AddCourseReq struct {
	Name      string `json:"name" validate:"required"`
	StreamID  string `json:"stream_id" validate:"required"`
	Semesters int    `json:"semesters" validate:"required,gt=0"`
}

type AddSubjectReq struct {
	Name     string `json:"name" validate:"required"`
	CourseID string `json:"course_id" validate:"required"`
	Semester int    `json:"semester" validate:"required,gt=0"`
}
