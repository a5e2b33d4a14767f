package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/cmis/studentportal/internal/app/models"
	"github.com/cmis/studentportal/internal/app/models/dto"
	"github.com/cmis/studentportal/internal/app/repositories"
	"github.com/cmis/studentportal/internal/config"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/cmis/studentportal/internal/pkg/auth"
	"github.com/cmis/studentportal/internal/pkg/filestorage"
	"github.com/cmis/studentportal/internal/pkg/helpers"
	"github.com/cmis/studentportal/internal/pkg/listfield"
	"github.com/cmis/studentportal/internal/pkg/resume"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Registration errors with their client messages
var (
	ErrMissingRegistrationFields = apperrors.NewCustomError(apperrors.ErrValidation,
		"Missing required fields: name, uin, email, degreeType, academicLevel, graduationYear")
	ErrGraduationYearNotInteger = apperrors.NewCustomError(apperrors.ErrValidation, "graduationYear must be an integer")
	ErrGPANotNumber             = apperrors.NewCustomError(apperrors.ErrValidation, "gpa must be a number")
	ErrStudentNotProvisioned    = apperrors.NewCustomError(apperrors.ErrResourceNotFound,
		"Student record not found. Please contact administrator.")
	ErrResumeUploadFailed = apperrors.NewCustomError(apperrors.ErrUpstreamStorage, "Failed to upload resume. Please try again.")
)

// RegistrationConfig holds the settings of the registration workflow
type RegistrationConfig struct {
	// Mode is config.RegistrationModeSelf or config.RegistrationModePreprovision
	Mode             string
	ResumesFolder    string
	ReadURLTTL       time.Duration
	NotifyOnRegister bool
	NotifyTimeout    time.Duration
}

// RegistrationService runs the student registration workflow
type RegistrationService struct {
	students  StudentStore
	storage   filestorage.ObjectStorage
	resumes   *resume.Validator
	notifier  Notifier
	validate  *validator.Validate
	config    RegistrationConfig
	logger    zerolog.Logger

	notifyMu  sync.Mutex
	draining  bool
	notifying sync.WaitGroup
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(
	students StudentStore,
	storage filestorage.ObjectStorage,
	resumes *resume.Validator,
	notifier Notifier,
	cfg RegistrationConfig,
	logger zerolog.Logger,
) *RegistrationService {
	if cfg.Mode == "" {
		cfg.Mode = config.RegistrationModeSelf
	}
	if cfg.ResumesFolder == "" {
		cfg.ResumesFolder = "resumes"
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 10 * time.Second
	}
	return &RegistrationService{
		students: students,
		storage:  storage,
		resumes:  resumes,
		notifier: notifier,
		validate: validator.New(),
		config:   cfg,
		logger:   logger,
	}
}

// Register validates the form, stores the resume and creates or completes the
// student record. upload may be nil.
func (s *RegistrationService) Register(ctx context.Context, req *dto.RegisterStudentRequest, upload *resume.Upload) (*dto.StudentResponse, error) {
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return nil, ErrMissingRegistrationFields
		}
		return nil, apperrors.NewInternalError("Failed to validate registration", err)
	}

	graduationYear, err := strconv.Atoi(req.GraduationYear)
	if err != nil {
		return nil, ErrGraduationYearNotInteger
	}

	gpa, hasGPA, err := dto.FormFloat(req.GPA)
	if err != nil {
		return nil, ErrGPANotNumber
	}

	existing, err := s.students.FindByEmailOrUIN(ctx, req.Email, req.UIN)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}
	if errors.Is(err, apperrors.ErrResourceNotFound) {
		existing = nil
	}

	switch s.config.Mode {
	case config.RegistrationModePreprovision:
		if existing == nil {
			return nil, ErrStudentNotProvisioned
		}
	default:
		if existing != nil {
			return nil, repositories.ErrStudentExists
		}
	}

	var stored *filestorage.StoredObject
	if !upload.Empty() {
		contentType, _, err := s.resumes.Validate(upload)
		if err != nil {
			return nil, err
		}

		if existing != nil && existing.ResumeObjectKey() != "" {
			if err := s.storage.Delete(ctx, existing.ResumeObjectKey()); err != nil {
				s.logger.Warn().Err(err).Str("key", existing.ResumeObjectKey()).Msg("Failed to delete previous resume")
			}
		}

		stored, err = s.storage.Store(ctx, upload.Data, upload.Filename, s.config.ResumesFolder, contentType)
		if err != nil {
			s.logger.Error().Err(err).Str("uin", req.UIN).Msg("Resume upload failed")
			return nil, ErrResumeUploadFailed.WithCause(err)
		}
	}

	domains := listfield.Normalize(req.DomainsOfInterest)
	industries := listfield.Normalize(req.TargetIndustries)
	skills := listfield.Normalize(req.Skills)

	var passwordHash *string
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, apperrors.NewValidationError("Password must be at most 72 bytes")
		}
		if err != nil {
			return nil, apperrors.NewInternalError("Failed to process password", err)
		}
		passwordHash = &hash
	}

	var student *models.Student
	if existing == nil {
		student, err = s.students.Create(ctx, s.newStudent(req, graduationYear, gpa, hasGPA, domains, industries, skills, stored, passwordHash))
	} else {
		student, err = s.students.Update(ctx, existing.ID, s.completion(req, graduationYear, gpa, hasGPA, domains, industries, skills, stored, passwordHash))
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("student_id", student.ID).Str("mode", s.config.Mode).Msg("Student registered")

	var resumeURL string
	if stored != nil {
		resumeURL = stored.URL
	} else {
		resumeURL = s.storage.PresignOrFallback(ctx, student.ResumeObjectKey(), student.ResumeFallbackURL(), s.config.ReadURLTTL)
	}

	s.notify(student.ID)

	resp := dto.NewStudentResponse(student, resumeURL)
	return &resp, nil
}

func (s *RegistrationService) newStudent(
	req *dto.RegisterStudentRequest,
	graduationYear int,
	gpa float64, hasGPA bool,
	domains, industries, skills []string,
	stored *filestorage.StoredObject,
	passwordHash *string,
) *models.Student {
	student := &models.Student{
		UIN:               req.UIN,
		Name:              req.Name,
		Email:             req.Email,
		DegreeType:        req.DegreeType,
		AcademicLevel:     req.AcademicLevel,
		ProgramOfStudy:    helpers.NullIfEmpty(req.ProgramOfStudy),
		GraduationYear:    graduationYear,
		NeedsMentor:       dto.FormBool(req.NeedsMentor),
		DomainsOfInterest: domains,
		TargetIndustries:  industries,
		Skills:            skills,
		PasswordHash:      passwordHash,
		ProfileSummary:    helpers.NullIfEmpty(req.ProfileSummary),
		LinkedinURL:       helpers.NullIfEmpty(req.LinkedinURL),
		IsRegistered:      true,
		CreatedBy:         &req.Email,
		UpdatedBy:         &req.Email,
	}
	if hasGPA {
		student.GPA = &gpa
	}
	if stored != nil {
		student.ResumePath = &stored.URL
		student.ResumeKey = &stored.Key
	}
	return student
}

func (s *RegistrationService) completion(
	req *dto.RegisterStudentRequest,
	graduationYear int,
	gpa float64, hasGPA bool,
	domains, industries, skills []string,
	stored *filestorage.StoredObject,
	passwordHash *string,
) *repositories.StudentUpdate {
	registered := true
	needsMentor := dto.FormBool(req.NeedsMentor)
	update := &repositories.StudentUpdate{
		UIN:               &req.UIN,
		Name:              &req.Name,
		Email:             &req.Email,
		DegreeType:        &req.DegreeType,
		AcademicLevel:     &req.AcademicLevel,
		ProgramOfStudy:    &req.ProgramOfStudy,
		GraduationYear:    &graduationYear,
		NeedsMentor:       &needsMentor,
		DomainsOfInterest: &domains,
		TargetIndustries:  &industries,
		Skills:            &skills,
		PasswordHash:      passwordHash,
		ProfileSummary:    &req.ProfileSummary,
		LinkedinURL:       &req.LinkedinURL,
		IsRegistered:      &registered,
		UpdatedBy:         req.Email,
	}
	if hasGPA {
		update.GPA = &gpa
	}
	if stored != nil {
		update.ResumePath = &stored.URL
		update.ResumeKey = &stored.Key
	}
	return update
}

// notify triggers the automation pipeline in the background. Failures are only logged.
func (s *RegistrationService) notify(studentID int64) {
	if !s.config.NotifyOnRegister || s.notifier == nil || !s.notifier.Configured() {
		return
	}

	s.notifyMu.Lock()
	if s.draining {
		s.notifyMu.Unlock()
		s.logger.Warn().Int64("student_id", studentID).Msg("Shutting down, post-registration webhook skipped")
		return
	}
	s.notifying.Add(1)
	s.notifyMu.Unlock()

	go func() {
		defer s.notifying.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.config.NotifyTimeout)
		defer cancel()

		if _, err := s.notifier.Trigger(ctx, studentID); err != nil {
			s.logger.Warn().Err(err).Int64("student_id", studentID).Msg("Post-registration webhook failed")
		}
	}()
}

// DrainNotifications stops new background webhook calls and blocks until the
// ones already started have finished. Registrations keep working afterwards.
func (s *RegistrationService) DrainNotifications() {
	s.notifyMu.Lock()
	s.draining = true
	s.notifyMu.Unlock()

	s.notifying.Wait()
}
