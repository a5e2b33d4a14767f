package dto

import (
	"strings"
	"time"

	"github.com/cmis/studentportal/internal/app/models"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/cmis/studentportal/internal/pkg/listfield"
)

// RegisterStudentRequest is the multipart registration form. List fields arrive
// as JSON array strings (comma-separated text is accepted too).
type RegisterStudentRequest struct {
	Name              string `form:"name" validate:"required"`
	FullName          string `form:"fullName"`
	UIN               string `form:"uin" validate:"required"`
	Email             string `form:"email" validate:"required"`
	DegreeType        string `form:"degreeType" validate:"required"`
	AcademicLevel     string `form:"academicLevel" validate:"required"`
	GraduationYear    string `form:"graduationYear" validate:"required"`
	ProgramOfStudy    string `form:"programOfStudy"`
	NeedsMentor       string `form:"needsMentor"`
	DomainsOfInterest string `form:"domainsOfInterest"`
	TargetIndustries  string `form:"targetIndustries"`
	Skills            string `form:"skills"`
	Password          string `form:"password"`
	ProfileSummary    string `form:"profileSummary"`
	LinkedinURL       string `form:"linkedinUrl"`
	GPA               string `form:"gpa"`
}

// Normalize applies the fullName fallback and trims identity fields
func (r *RegisterStudentRequest) Normalize() {
	if strings.TrimSpace(r.Name) == "" {
		r.Name = r.FullName
	}
	r.Name = strings.TrimSpace(r.Name)
	r.UIN = strings.TrimSpace(r.UIN)
	r.Email = NormalizeEmail(r.Email)
	r.GraduationYear = strings.TrimSpace(r.GraduationYear)
}

// NormalizeEmail lowercases and trims an address before it is stored or compared
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UpdateStudentRequest holds the fields present in a partial update. A nil
// pointer means "not sent"; a pointer to an empty value clears a nullable column.
type UpdateStudentRequest struct {
	Name              *string
	UIN               *string
	Email             *string
	DegreeType        *string
	AcademicLevel     *string
	ProgramOfStudy    *string
	GraduationYear    *int
	NeedsMentor       *bool
	DomainsOfInterest *[]string
	TargetIndustries  *[]string
	Skills            *[]string
	Password          *string
	ProfileSummary    *string
	LinkedinURL       *string
	GPA               *float64
	ClearGPA          bool
	ReplaceResume     bool
}

// ParseUpdateStudentRequest reads the update fields from decoded JSON or from
// multipart form values. Only keys present in values are set.
func ParseUpdateStudentRequest(values map[string]interface{}) (*UpdateStudentRequest, error) {
	req := &UpdateStudentRequest{}

	str := func(key string) *string {
		v, ok := values[key]
		if !ok {
			return nil
		}
		s := FormString(v)
		return &s
	}
	list := func(key string) *[]string {
		v, ok := values[key]
		if !ok {
			return nil
		}
		l := listfield.Normalize(v)
		return &l
	}

	// NOT NULL columns may be changed but never blanked
	var blank []string
	required := func(key string, v *string) *string {
		if v == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" {
			blank = append(blank, key)
			return nil
		}
		return &trimmed
	}

	name := str("name")
	if name == nil || strings.TrimSpace(*name) == "" {
		if fullName := str("fullName"); fullName != nil {
			name = fullName
		}
	}
	req.Name = required("name", name)
	req.UIN = required("uin", str("uin"))
	if email := required("email", str("email")); email != nil {
		normalized := NormalizeEmail(*email)
		req.Email = &normalized
	}
	req.DegreeType = required("degreeType", str("degreeType"))
	req.AcademicLevel = required("academicLevel", str("academicLevel"))
	if len(blank) > 0 {
		return nil, apperrors.NewValidationError("Fields cannot be empty: " + strings.Join(blank, ", "))
	}

	req.ProgramOfStudy = str("programOfStudy")
	req.ProfileSummary = str("profileSummary")
	req.LinkedinURL = str("linkedinUrl")
	req.DomainsOfInterest = list("domainsOfInterest")
	req.TargetIndustries = list("targetIndustries")
	req.Skills = list("skills")

	if password := str("password"); password != nil && *password != "" {
		req.Password = password
	}

	if v, ok := values["graduationYear"]; ok {
		year, err := FormInt(v)
		if err != nil {
			return nil, apperrors.NewValidationError("graduationYear must be an integer")
		}
		req.GraduationYear = &year
	}

	if v, ok := values["needsMentor"]; ok {
		needsMentor := FormBool(v)
		req.NeedsMentor = &needsMentor
	}

	if v, ok := values["gpa"]; ok {
		gpa, present, err := FormFloat(v)
		if err != nil {
			return nil, apperrors.NewValidationError("gpa must be a number")
		}
		if present {
			req.GPA = &gpa
		} else {
			req.ClearGPA = true
		}
	}

	if v, ok := values["replaceResume"]; ok {
		req.ReplaceResume = FormBool(v)
	}

	return req, nil
}

// StudentResponse is the public shape of a student. The password hash is never part of it.
type StudentResponse struct {
	ID                int64      `json:"id" example:"1"`
	UIN               string     `json:"uin" example:"111111111"`
	Name              string     `json:"name" example:"Ada Lovelace"`
	Email             string     `json:"email" example:"ada@tamu.edu"`
	DegreeType        string     `json:"degreeType" example:"Masters"`
	AcademicLevel     string     `json:"academicLevel" example:"Graduate"`
	ProgramOfStudy    *string    `json:"programOfStudy"`
	GraduationYear    int        `json:"graduationYear" example:"2026"`
	NeedsMentor       bool       `json:"needsMentor"`
	DomainsOfInterest []string   `json:"domainsOfInterest"`
	TargetIndustries  []string   `json:"targetIndustries"`
	ResumeURL         string     `json:"resumeUrl"`
	ResumePathKey     string     `json:"resumePathKey"`
	ProfileSummary    string     `json:"profileSummary"`
	LinkedinURL       string     `json:"linkedinUrl"`
	GPA               *float64   `json:"gpa"`
	Skills            []string   `json:"skills"`
	IsRegistered      bool       `json:"isRegistered"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

// StudentProfileResponse is returned by login, session and lookup by id, where
// the UI models resumes as a list.
type StudentProfileResponse struct {
	StudentResponse
	ResumeURL []string `json:"resumeUrl"`
}

// StudentDetailResponse adds the audit actors for GET /students/:id
type StudentDetailResponse struct {
	StudentResponse
	CreatedBy *string `json:"createdBy"`
	UpdatedBy *string `json:"updatedBy"`
}

// StudentEnvelope wraps a single student
type StudentEnvelope struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message,omitempty"`
	Student interface{} `json:"student"`
}

// StudentListResponse is returned by the unfiltered GET /students
type StudentListResponse struct {
	Success    bool              `json:"success" example:"true"`
	Students   []StudentResponse `json:"students"`
	Pagination PaginationInfo    `json:"pagination"`
}

// NewStudentResponse shapes a stored student. List columns are assumed to be
// normalized already; resumeURL is the freshly derived (or fallback) URL.
func NewStudentResponse(s *models.Student, resumeURL string) StudentResponse {
	resp := StudentResponse{
		ID:                s.ID,
		UIN:               s.UIN,
		Name:              s.Name,
		Email:             s.Email,
		DegreeType:        s.DegreeType,
		AcademicLevel:     s.AcademicLevel,
		ProgramOfStudy:    s.ProgramOfStudy,
		GraduationYear:    s.GraduationYear,
		NeedsMentor:       s.NeedsMentor,
		DomainsOfInterest: listfield.Normalize(s.DomainsOfInterest),
		TargetIndustries:  listfield.Normalize(s.TargetIndustries),
		ResumeURL:         resumeURL,
		ResumePathKey:     s.ResumeObjectKey(),
		GPA:               s.GPA,
		Skills:            listfield.Normalize(s.Skills),
		IsRegistered:      s.IsRegistered,
	}
	if s.ProfileSummary != nil {
		resp.ProfileSummary = *s.ProfileSummary
	}
	if s.LinkedinURL != nil {
		resp.LinkedinURL = *s.LinkedinURL
	}
	if !s.CreatedAt.IsZero() {
		createdAt, updatedAt := s.CreatedAt, s.UpdatedAt
		resp.CreatedAt = &createdAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

// NewStudentProfileResponse shapes a student with the resume URL as a list
func NewStudentProfileResponse(s *models.Student, resumeURL string) StudentProfileResponse {
	urls := []string{}
	if resumeURL != "" {
		urls = append(urls, resumeURL)
	}
	return StudentProfileResponse{
		StudentResponse: NewStudentResponse(s, resumeURL),
		ResumeURL:       urls,
	}
}

// NewStudentDetailResponse shapes a student with audit actors
func NewStudentDetailResponse(s *models.Student, resumeURL string) StudentDetailResponse {
	return StudentDetailResponse{
		StudentResponse: NewStudentResponse(s, resumeURL),
		CreatedBy:       s.CreatedBy,
		UpdatedBy:       s.UpdatedBy,
	}
}
