package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/cmis/studentportal/internal/app/models/dto"
	"github.com/cmis/studentportal/internal/middleware"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/cmis/studentportal/internal/pkg/helpers"
	"github.com/cmis/studentportal/internal/pkg/resume"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RegistrationService is the registration surface used by StudentController
type RegistrationService interface {
	Register(ctx context.Context, req *dto.RegisterStudentRequest, upload *resume.Upload) (*dto.StudentResponse, error)
}

// StudentService is the profile surface used by StudentController
type StudentService interface {
	GetProfile(ctx context.Context, id int64) (*dto.StudentProfileResponse, error)
	GetDetail(ctx context.Context, id int64) (*dto.StudentDetailResponse, error)
	GetByEmail(ctx context.Context, email string) (*dto.StudentResponse, error)
	GetByUIN(ctx context.Context, uin string) (*dto.StudentResponse, error)
	List(ctx context.Context, page, limit int) (*dto.StudentListResponse, error)
	Update(ctx context.Context, id int64, req *dto.UpdateStudentRequest, upload *resume.Upload) (*dto.StudentResponse, error)
}

var (
	errInvalidStudentID = apperrors.NewCustomError(apperrors.ErrValidation, "Invalid student ID")
	errInvalidForm      = apperrors.NewCustomError(apperrors.ErrValidation, "Invalid form data")
	errInvalidJSON      = apperrors.NewCustomError(apperrors.ErrValidation, "Invalid JSON body")
	errNotOwnProfile    = apperrors.NewCustomError(apperrors.ErrPermissionDenied, "You can only update your own profile")
)

// resumeField is the multipart part carrying the resume
const resumeField = "resume"

// StudentController handles registration and profile endpoints
type StudentController struct {
	registrationService RegistrationService
	studentService      StudentService
	maxResumeBytes      int64
	logger              zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(registrationService RegistrationService, studentService StudentService, maxResumeBytes int64, logger zerolog.Logger) *StudentController {
	if maxResumeBytes <= 0 {
		maxResumeBytes = resume.DefaultMaxBytes
	}
	return &StudentController{
		registrationService: registrationService,
		studentService:      studentService,
		maxResumeBytes:      maxResumeBytes,
		logger:              logger,
	}
}

// readResume returns the uploaded resume, or nil when none was sent. Files over
// the size limit are not read; the validator rejects them by declared size.
func (c *StudentController) readResume(ctx *gin.Context) (*resume.Upload, error) {
	header, err := ctx.FormFile(resumeField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, errInvalidForm.WithCause(err)
	}

	upload := &resume.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	if header.Size == 0 || header.Size > c.maxResumeBytes {
		return upload, nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, errInvalidForm.WithCause(err)
	}
	defer file.Close()

	upload.Data, err = io.ReadAll(io.LimitReader(file, c.maxResumeBytes+1))
	if err != nil {
		return nil, errInvalidForm.WithCause(err)
	}
	return upload, nil
}

// Register handles student registration
// @Summary Register a student
// @Description Creates (or, in preprovision mode, completes) a student record. Accepts an optional PDF or DOCX resume.
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Full name (fullName is accepted as an alias)"
// @Param uin formData string true "University identification number"
// @Param email formData string true "Email"
// @Param degreeType formData string true "Degree type" Enums(Bachelors, Masters, MS, PhD, MBA, BS)
// @Param academicLevel formData string true "Academic level"
// @Param graduationYear formData int true "Graduation year"
// @Param programOfStudy formData string false "Program of study"
// @Param needsMentor formData bool false "Wants a mentor"
// @Param domainsOfInterest formData string false "JSON array or comma-separated list"
// @Param targetIndustries formData string false "JSON array or comma-separated list"
// @Param skills formData string false "JSON array or comma-separated list"
// @Param password formData string false "Password"
// @Param profileSummary formData string false "Profile summary"
// @Param linkedinUrl formData string false "LinkedIn URL"
// @Param gpa formData number false "GPA"
// @Param resume formData file false "Resume (PDF or DOCX, max 10MB)"
// @Success 201 {object} dto.StudentEnvelope{student=dto.StudentResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing required fields or invalid resume"
// @Failure 404 {object} dto.ErrorResponse "Student record not found"
// @Failure 409 {object} dto.ErrorResponse "Student with this email or UIN already exists"
// @Failure 500 {object} dto.ErrorResponse "Failed to upload resume"
// @Router /students/register [post]
func (c *StudentController) Register(ctx *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration form")
		middleware.HandleAPIError(ctx, errInvalidForm.WithCause(err))
		return
	}

	upload, err := c.readResume(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.registrationService.Register(ctx.Request.Context(), &req, upload)
	if err != nil {
		c.logger.Warn().Err(err).Str("uin", req.UIN).Msg("Registration failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.StudentEnvelope{
		Success: true,
		Message: "Student registered successfully",
		Student: student,
	})
}

// ListStudents handles GET /students
// @Summary Find or list students
// @Description With id, email or uin returns one student; otherwise a page of students, newest first
// @Tags students
// @Produce json
// @Param id query int false "Student ID"
// @Param email query string false "Email"
// @Param uin query string false "UIN"
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} dto.StudentListResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	reqCtx := ctx.Request.Context()

	var (
		student interface{}
		err     error
	)
	switch {
	case ctx.Query("id") != "":
		id, parseErr := strconv.ParseInt(ctx.Query("id"), 10, 64)
		if parseErr != nil || id <= 0 {
			middleware.HandleAPIError(ctx, errInvalidStudentID)
			return
		}
		student, err = c.studentService.GetProfile(reqCtx, id)
	case ctx.Query("email") != "":
		student, err = c.studentService.GetByEmail(reqCtx, ctx.Query("email"))
	case ctx.Query("uin") != "":
		student, err = c.studentService.GetByUIN(reqCtx, ctx.Query("uin"))
	default:
		page, limit := helpers.ParsePaginationParams(ctx)
		resp, listErr := c.studentService.List(reqCtx, page, limit)
		if listErr != nil {
			middleware.HandleAPIError(ctx, listErr)
			return
		}
		ctx.JSON(http.StatusOK, resp)
		return
	}

	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.StudentEnvelope{Success: true, Student: student})
}

func parseStudentID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, errInvalidStudentID)
		return 0, false
	}
	return id, true
}

// GetStudent handles GET /students/:id
// @Summary Get student
// @Tags students
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} dto.StudentEnvelope{student=dto.StudentDetailResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	id, ok := parseStudentID(ctx)
	if !ok {
		return
	}

	student, err := c.studentService.GetDetail(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.StudentEnvelope{Success: true, Student: student})
}

// updateValues reads the submitted fields from a JSON body or a form
func (c *StudentController) updateValues(ctx *gin.Context) (map[string]interface{}, error) {
	if strings.HasPrefix(ctx.ContentType(), gin.MIMEJSON) {
		values := map[string]interface{}{}
		if err := json.NewDecoder(ctx.Request.Body).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
			return nil, errInvalidJSON.WithCause(err)
		}
		return values, nil
	}

	if err := ctx.Request.ParseMultipartForm(c.maxResumeBytes + (1 << 20)); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, errInvalidForm.WithCause(err)
	}
	if err := ctx.Request.ParseForm(); err != nil {
		return nil, errInvalidForm.WithCause(err)
	}

	values := map[string]interface{}{}
	for key, submitted := range ctx.Request.PostForm {
		if len(submitted) > 0 {
			values[key] = submitted[0]
		}
	}
	return values, nil
}

// UpdateStudent handles PUT and PATCH /students/:id
// @Summary Update student
// @Description Partially updates the caller's own profile. Accepts JSON or multipart (with an optional resume).
// @Tags students
// @Accept json,multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param replaceResume formData bool false "Delete the previous resume object"
// @Param resume formData file false "New resume (PDF or DOCX, max 10MB)"
// @Success 200 {object} dto.StudentEnvelope{student=dto.StudentResponse}
// @Failure 400 {object} dto.ErrorResponse "No fields to update"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not your profile"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "UIN or email already exists for another student"
// @Router /students/{id} [put]
// @Router /students/{id} [patch]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := parseStudentID(ctx)
	if !ok {
		return
	}

	if callerID, ok := middleware.StudentIDFromContext(ctx); !ok || callerID != id {
		middleware.HandleAPIError(ctx, errNotOwnProfile)
		return
	}

	values, err := c.updateValues(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	req, err := dto.ParseUpdateStudentRequest(values)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	upload, err := c.readResume(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.studentService.Update(ctx.Request.Context(), id, req, upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.StudentEnvelope{
		Success: true,
		Message: "Student updated successfully",
		Student: student,
	})
}
