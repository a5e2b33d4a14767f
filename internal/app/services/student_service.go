package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cmis/studentportal/internal/app/models"
	"github.com/cmis/studentportal/internal/app/models/dto"
	"github.com/cmis/studentportal/internal/app/repositories"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/cmis/studentportal/internal/pkg/auth"
	"github.com/cmis/studentportal/internal/pkg/filestorage"
	"github.com/cmis/studentportal/internal/pkg/helpers"
	"github.com/cmis/studentportal/internal/pkg/resume"
	"github.com/rs/zerolog"
)

// StudentService reads and updates student profiles
type StudentService struct {
	students      StudentStore
	storage       filestorage.ObjectStorage
	resumes       *resume.Validator
	resumesFolder string
	readURLTTL    time.Duration
	logger        zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	students StudentStore,
	storage filestorage.ObjectStorage,
	resumes *resume.Validator,
	resumesFolder string,
	readURLTTL time.Duration,
	logger zerolog.Logger,
) *StudentService {
	if resumesFolder == "" {
		resumesFolder = "resumes"
	}
	return &StudentService{
		students:      students,
		storage:       storage,
		resumes:       resumes,
		resumesFolder: resumesFolder,
		readURLTTL:    readURLTTL,
		logger:        logger,
	}
}

// resumeURL presigns the student's resume, falling back to the stored URL
func (s *StudentService) resumeURL(ctx context.Context, student *models.Student) string {
	return s.storage.PresignOrFallback(ctx, student.ResumeObjectKey(), student.ResumeFallbackURL(), s.readURLTTL)
}

// GetProfile returns a student by id with the resume URL as a list
func (s *StudentService) GetProfile(ctx context.Context, id int64) (*dto.StudentProfileResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewStudentProfileResponse(student, s.resumeURL(ctx, student))
	return &resp, nil
}

// GetDetail returns a student by id including audit actors
func (s *StudentService) GetDetail(ctx context.Context, id int64) (*dto.StudentDetailResponse, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewStudentDetailResponse(student, s.resumeURL(ctx, student))
	return &resp, nil
}

// GetByEmail looks a student up by email, ignoring case
func (s *StudentService) GetByEmail(ctx context.Context, email string) (*dto.StudentResponse, error) {
	student, err := s.students.GetByEmail(ctx, dto.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	resp := dto.NewStudentResponse(student, s.resumeURL(ctx, student))
	return &resp, nil
}

// GetByUIN looks a student up by UIN
func (s *StudentService) GetByUIN(ctx context.Context, uin string) (*dto.StudentResponse, error) {
	student, err := s.students.GetByUIN(ctx, strings.TrimSpace(uin))
	if err != nil {
		return nil, err
	}
	resp := dto.NewStudentResponse(student, s.resumeURL(ctx, student))
	return &resp, nil
}

// List returns one page of students, newest first
func (s *StudentService) List(ctx context.Context, page, limit int) (*dto.StudentListResponse, error) {
	students, total, err := s.students.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		items = append(items, dto.NewStudentResponse(&students[i], s.resumeURL(ctx, &students[i])))
	}

	return &dto.StudentListResponse{
		Success:    true,
		Students:   items,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// Update applies a partial profile update. upload may be nil.
func (s *StudentService) Update(ctx context.Context, id int64, req *dto.UpdateStudentRequest, upload *resume.Upload) (*dto.StudentResponse, error) {
	existing, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.UIN != nil && *req.UIN != existing.UIN {
		taken, err := s.students.UINTakenByOther(ctx, *req.UIN, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, repositories.ErrUINTakenByOther
		}
	}

	if req.Email != nil && !strings.EqualFold(*req.Email, existing.Email) {
		taken, err := s.students.EmailTakenByOther(ctx, *req.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, repositories.ErrEmailTakenByOther
		}
	}

	update := &repositories.StudentUpdate{
		UIN:               req.UIN,
		Name:              req.Name,
		Email:             req.Email,
		DegreeType:        req.DegreeType,
		AcademicLevel:     req.AcademicLevel,
		ProgramOfStudy:    req.ProgramOfStudy,
		GraduationYear:    req.GraduationYear,
		NeedsMentor:       req.NeedsMentor,
		DomainsOfInterest: req.DomainsOfInterest,
		TargetIndustries:  req.TargetIndustries,
		Skills:            req.Skills,
		ProfileSummary:    req.ProfileSummary,
		LinkedinURL:       req.LinkedinURL,
		GPA:               req.GPA,
		ClearGPA:          req.ClearGPA,
		UpdatedBy:         existing.Email,
	}
	if req.Email != nil && *req.Email != "" {
		update.UpdatedBy = *req.Email
	}

	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperrors.NewValidationError("Password must be at most 72 bytes")
		}
		if err != nil {
			return nil, apperrors.NewInternalError("Failed to process password", err)
		}
		update.PasswordHash = &hash
	}

	if !upload.Empty() {
		contentType, _, err := s.resumes.Validate(upload)
		if err != nil {
			return nil, err
		}
		if req.ReplaceResume && existing.ResumeObjectKey() != "" {
			if err := s.storage.Delete(ctx, existing.ResumeObjectKey()); err != nil {
				s.logger.Warn().Err(err).Str("key", existing.ResumeObjectKey()).Msg("Failed to delete replaced resume")
			}
		}

		stored, err := s.storage.Store(ctx, upload.Data, upload.Filename, s.resumesFolder, contentType)
		if err != nil {
			s.logger.Error().Err(err).Int64("student_id", id).Msg("Resume upload failed")
			return nil, ErrResumeUploadFailed.WithCause(err)
		}
		update.ResumePath = &stored.URL
		update.ResumeKey = &stored.Key
	}

	updated, err := s.students.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("student_id", id).Str("updated_by", update.UpdatedBy).Msg("Student updated")

	resp := dto.NewStudentResponse(updated, s.resumeURL(ctx, updated))
	return &resp, nil
}
