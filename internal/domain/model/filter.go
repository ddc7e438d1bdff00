package model

import "strings"

// Filter scopes grade queries, exports and ML runs. All fields combine.
type Filter struct {
	CourseCode  string `json:"course_code,omitempty"`
	SectionID   int64  `json:"section_id,omitempty"`
	SectionName string `json:"section_name,omitempty"`
	StudentCode string `json:"student_code,omitempty"`
	Page        int    `json:"page,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// Normalized trims the textual fields.
func (f Filter) Normalized() Filter {
	f.CourseCode = strings.TrimSpace(f.CourseCode)
	f.SectionName = strings.TrimSpace(f.SectionName)
	f.StudentCode = strings.TrimSpace(f.StudentCode)
	return f
}

// HasSection reports whether a section is selected by id.
func (f Filter) HasSection() bool { return f.SectionID > 0 }

// IdentifiesSection reports whether the filter names exactly one section,
// either by id or by a (course, section name) pair.
func (f Filter) IdentifiesSection() bool {
	n := f.Normalized()
	return n.SectionID > 0 || (n.CourseCode != "" && n.SectionName != "")
}

// SameScope reports whether two filters select the same rows, ignoring paging.
func (f Filter) SameScope(o Filter) bool {
	a, b := f.Normalized(), o.Normalized()
	return a.CourseCode == b.CourseCode && a.SectionID == b.SectionID &&
		a.SectionName == b.SectionName && a.StudentCode == b.StudentCode
}
