package models

import "time"

// Student defines the student model based on the 'students' table
type Student struct {
	ID                int64     `json:"id" db:"student_id" example:"1"`
	UIN               string    `json:"uin" db:"uin" example:"111111111"`
	Name              string    `json:"name" db:"name" example:"Ada Lovelace"`
	Email             string    `json:"email" db:"email" example:"ada@tamu.edu"`
	DegreeType        string    `json:"degreeType" db:"degree_type" example:"Masters"`
	AcademicLevel     string    `json:"academicLevel" db:"academic_level" example:"Graduate"`
	ProgramOfStudy    *string   `json:"programOfStudy" db:"program_of_study"`
	GraduationYear    int       `json:"graduationYear" db:"graduation_year" example:"2026"`
	NeedsMentor       bool      `json:"needsMentor" db:"need_mentorship"`
	DomainsOfInterest []string  `json:"domainsOfInterest" db:"domain_interests"`
	TargetIndustries  []string  `json:"targetIndustries" db:"target_industries"`
	Skills            []string  `json:"skills" db:"skills"`
	ResumePath        *string   `json:"resumePath" db:"resume_path"`       // URL returned at upload, used as presign fallback
	ResumeKey         *string   `json:"resumePathKey" db:"resume_path_key"` // object key in the resumes folder
	PasswordHash      *string   `json:"-" db:"password"`
	ProfileSummary    *string   `json:"profileSummary" db:"profile_summary"`
	LinkedinURL       *string   `json:"linkedinUrl" db:"linkedin_url"`
	GPA               *float64  `json:"gpa" db:"gpa"`
	IsRegistered      bool      `json:"isRegistered" db:"is_registrered"`
	CreatedBy         *string   `json:"createdBy" db:"created_by"`
	UpdatedBy         *string   `json:"updatedBy" db:"updated_by"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

// HasPassword reports whether the account can log in
func (s *Student) HasPassword() bool {
	return s.PasswordHash != nil && *s.PasswordHash != ""
}

// ResumeObjectKey returns the stored object key, or "" when none is attached
func (s *Student) ResumeObjectKey() string {
	if s.ResumeKey == nil {
		return ""
	}
	return *s.ResumeKey
}

// ResumeFallbackURL returns the last-known resume URL, or "" when none is stored
func (s *Student) ResumeFallbackURL() string {
	if s.ResumePath == nil {
		return ""
	}
	return *s.ResumePath
}
