package model

import "github.com/volatiletech/null/v8"

// GradeInput is a create/update submission in canonical field names.
type GradeInput struct {
	SectionID null.Int64 `json:"section_id" validate:"required,gt=0"`
	StudentID null.Int64 `json:"student_id" validate:"required,gt=0"`
	Scores
}

// Draft is the pending form state of the grade editor.
type Draft struct {
	// EditID is the grade being edited; zero means the draft creates a new grade.
	EditID int64 `json:"edit_id,omitempty"`
	GradeInput
}

// Empty reports whether the draft carries nothing.
func (d Draft) Empty() bool {
	return d == Draft{}
}

// DraftFromRow loads a published row into a draft for editing.
func DraftFromRow(r GradeRow) Draft {
	d := Draft{EditID: r.ID}
	d.Scores = r.Scores
	if r.SectionID > 0 {
		d.SectionID = null.Int64From(r.SectionID)
	}
	if r.StudentID > 0 {
		d.StudentID = null.Int64From(r.StudentID)
	}
	return d
}

// Registration is a teacher account request.
type Registration struct {
	Username        string `json:"username" validate:"required,min=3"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email" validate:"omitempty,email"`
}

// Credentials are exchanged for an access token.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is returned by the token endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
