package repositories

import (
	"github.com/Masterminds/squirrel"
)

// StudentUpdate describes a partial update. A nil pointer leaves the column
// untouched. A pointer to "" clears a nullable text column.
type StudentUpdate struct {
	UIN               *string
	Name              *string
	Email             *string
	DegreeType        *string
	AcademicLevel     *string
	ProgramOfStudy    *string
	GraduationYear    *int
	NeedsMentor       *bool
	DomainsOfInterest *[]string
	TargetIndustries  *[]string
	Skills            *[]string
	ResumePath        *string
	ResumeKey         *string
	PasswordHash      *string
	ProfileSummary    *string
	LinkedinURL       *string
	GPA               *float64
	ClearGPA          bool
	IsRegistered      *bool

	// UpdatedBy is stamped on every update and does not count as a change
	UpdatedBy string
}

type assignment struct {
	column string
	value  interface{}
}

func nullableText(v *string) interface{} {
	if *v == "" {
		return nil
	}
	return *v
}

// assignments lists the SET clauses in studentColumns order
func (u *StudentUpdate) assignments() []assignment {
	var out []assignment
	text := func(column string, v *string) {
		if v != nil {
			out = append(out, assignment{column, *v})
		}
	}
	nullable := func(column string, v *string) {
		if v != nil {
			out = append(out, assignment{column, nullableText(v)})
		}
	}
	list := func(column string, v *[]string) {
		if v != nil {
			out = append(out, assignment{column, jsonList(*v)})
		}
	}

	text("uin", u.UIN)
	text("name", u.Name)
	text("email", u.Email)
	text("degree_type", u.DegreeType)
	text("academic_level", u.AcademicLevel)
	nullable("program_of_study", u.ProgramOfStudy)
	if u.GraduationYear != nil {
		out = append(out, assignment{"graduation_year", *u.GraduationYear})
	}
	if u.NeedsMentor != nil {
		out = append(out, assignment{"need_mentorship", *u.NeedsMentor})
	}
	list("domain_interests", u.DomainsOfInterest)
	list("target_industries", u.TargetIndustries)
	list("skills", u.Skills)
	nullable("resume_path", u.ResumePath)
	nullable("resume_path_key", u.ResumeKey)
	nullable("password", u.PasswordHash)
	nullable("profile_summary", u.ProfileSummary)
	nullable("linkedin_url", u.LinkedinURL)
	switch {
	case u.GPA != nil:
		out = append(out, assignment{"gpa", *u.GPA})
	case u.ClearGPA:
		out = append(out, assignment{"gpa", nil})
	}
	if u.IsRegistered != nil {
		out = append(out, assignment{"is_registrered", *u.IsRegistered})
	}
	return out
}

// HasChanges reports whether any column other than the audit stamp is set
func (u *StudentUpdate) HasChanges() bool {
	return u != nil && len(u.assignments()) > 0
}

// Build renders the UPDATE statement for student id
func (u *StudentUpdate) Build(id int64) (string, []interface{}, error) {
	builder := squirrel.Update("students").PlaceholderFormat(squirrel.Dollar)
	for _, a := range u.assignments() {
		builder = builder.Set(a.column, a.value)
	}

	var updatedBy interface{}
	if u.UpdatedBy != "" {
		updatedBy = u.UpdatedBy
	}

	return builder.
		Set("updated_by", updatedBy).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"student_id": id}).
		Suffix(returningStudent).
		ToSql()
}
