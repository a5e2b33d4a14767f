package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/cmis/studentportal/internal/app/models"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/cmis/studentportal/internal/pkg/dberrors"
	"github.com/cmis/studentportal/internal/pkg/helpers"
	"github.com/cmis/studentportal/internal/pkg/listfield"
	"github.com/cmis/studentportal/internal/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Student error types
var (
	ErrStudentExists         = apperrors.NewCustomError(apperrors.ErrConflict, "Student with this email or UIN already exists")
	ErrUINTakenByOther       = apperrors.NewCustomError(apperrors.ErrConflict, "UIN already exists for another student")
	ErrEmailTakenByOther     = apperrors.NewCustomError(apperrors.ErrConflict, "Email already exists for another student")
	ErrNoStudentFieldsToSave = apperrors.NewCustomError(apperrors.ErrNoFieldsToUpdate, "No fields to update")
)

// studentColumns is the fixed column enumeration used by every student statement
var studentColumns = []string{
	"student_id", "uin", "name", "email", "degree_type", "academic_level",
	"program_of_study", "graduation_year", "need_mentorship",
	"domain_interests", "target_industries", "skills",
	"resume_path", "resume_path_key", "password", "profile_summary", "linkedin_url",
	"gpa", "is_registrered", "created_by", "updated_by", "created_at", "updated_at",
}

var returningStudent = "RETURNING " + strings.Join(studentColumns, ", ")

// StudentRepository handles database operations for students
type StudentRepository struct {
	DB *pgxpool.Pool
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{DB: db}
}

func selectStudents() squirrel.SelectBuilder {
	return squirrel.Select(studentColumns...).From("students").PlaceholderFormat(squirrel.Dollar)
}

// scanStudent scans one row selected with studentColumns
func scanStudent(row pgx.Row) (*models.Student, error) {
	var (
		s                           models.Student
		domains, industries, skills []byte
	)
	err := row.Scan(
		&s.ID, &s.UIN, &s.Name, &s.Email, &s.DegreeType, &s.AcademicLevel,
		&s.ProgramOfStudy, &s.GraduationYear, &s.NeedsMentor,
		&domains, &industries, &skills,
		&s.ResumePath, &s.ResumeKey, &s.PasswordHash, &s.ProfileSummary, &s.LinkedinURL,
		&s.GPA, &s.IsRegistered, &s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.DomainsOfInterest = listfield.FromJSONB(domains)
	s.TargetIndustries = listfield.FromJSONB(industries)
	s.Skills = listfield.FromJSONB(skills)
	return &s, nil
}

func jsonList(values []string) squirrel.Sqlizer {
	return squirrel.Expr("?::jsonb", listfield.Encode(values))
}

func (r *StudentRepository) getOne(ctx context.Context, builder squirrel.SelectBuilder, op string) (*models.Student, error) {
	sql, args, err := builder.Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error building student query SQL")
		return nil, err
	}

	student, err := scanStudent(r.DB.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Str("op", op).Msg("Error executing student query")
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

// FindByEmailOrUIN returns the student matching either identifier
func (r *StudentRepository) FindByEmailOrUIN(ctx context.Context, email, uin string) (*models.Student, error) {
	builder := selectStudents().Where(squirrel.Or{
		squirrel.Expr("LOWER(email) = LOWER(?)", email),
		squirrel.Eq{"uin": uin},
	})
	return r.getOne(ctx, builder, "find_by_email_or_uin")
}

// GetByID retrieves a student by numeric id
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getOne(ctx, selectStudents().Where(squirrel.Eq{"student_id": id}), "get_by_id")
}

// GetByEmail retrieves a student by email, ignoring case
func (r *StudentRepository) GetByEmail(ctx context.Context, email string) (*models.Student, error) {
	return r.getOne(ctx, selectStudents().Where(squirrel.Expr("LOWER(email) = LOWER(?)", email)), "get_by_email")
}

// GetByUIN retrieves a student by UIN
func (r *StudentRepository) GetByUIN(ctx context.Context, uin string) (*models.Student, error) {
	return r.getOne(ctx, selectStudents().Where(squirrel.Eq{"uin": uin}), "get_by_uin")
}

// Create inserts a student and returns the stored row
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) (*models.Student, error) {
	sql, args, err := squirrel.Insert("students").
		Columns(
			"uin", "name", "email", "degree_type", "academic_level", "program_of_study",
			"graduation_year", "need_mentorship", "domain_interests", "target_industries", "skills",
			"resume_path", "resume_path_key", "password", "profile_summary", "linkedin_url",
			"gpa", "is_registrered", "created_by", "updated_by",
		).
		Values(
			s.UIN, s.Name, s.Email, s.DegreeType, s.AcademicLevel, s.ProgramOfStudy,
			s.GraduationYear, s.NeedsMentor, jsonList(s.DomainsOfInterest), jsonList(s.TargetIndustries), jsonList(s.Skills),
			s.ResumePath, s.ResumeKey, s.PasswordHash, s.ProfileSummary, s.LinkedinURL,
			s.GPA, s.IsRegistered, s.CreatedBy, s.UpdatedBy,
		).
		Suffix(returningStudent).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return nil, err
	}

	created, err := scanStudent(r.DB.QueryRow(ctx, sql, args...))
	if err != nil {
		logger.Error().Err(err).Str("uin", s.UIN).Msg("Error executing create student query")
		return nil, dberrors.Translate(err, ErrStudentExists.Message)
	}
	return created, nil
}

// Update applies a partial update and returns the stored row
func (r *StudentRepository) Update(ctx context.Context, id int64, update *StudentUpdate) (*models.Student, error) {
	if !update.HasChanges() {
		return nil, ErrNoStudentFieldsToSave
	}

	sql, args, err := update.Build(id)
	if err != nil {
		logger.Error().Err(err).Int64("student_id", id).Msg("Error building update student SQL")
		return nil, err
	}

	updated, err := scanStudent(r.DB.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("student_id", id).Msg("Error executing update student query")
		switch {
		case dberrors.IsDuplicateConstraintError(err, "students_uin_key"):
			return nil, ErrUINTakenByOther.WithCause(err)
		case dberrors.IsDuplicateConstraintError(err, "students_email_lower_key"):
			return nil, ErrEmailTakenByOther.WithCause(err)
		}
		return nil, dberrors.Translate(err, "")
	}
	return updated, nil
}

func (r *StudentRepository) takenByOther(ctx context.Context, condition squirrel.Sqlizer, id int64) (bool, error) {
	sql, args, err := squirrel.Select("1").From("students").
		Where(condition).
		Where(squirrel.NotEq{"student_id": id}).
		Prefix("SELECT EXISTS (").Suffix(")").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building uniqueness check SQL")
		return false, err
	}

	var exists bool
	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Msg("Error executing uniqueness check")
		return false, fmt.Errorf("error checking student uniqueness: %w", err)
	}
	return exists, nil
}

// UINTakenByOther reports whether another student already holds uin
func (r *StudentRepository) UINTakenByOther(ctx context.Context, uin string, id int64) (bool, error) {
	return r.takenByOther(ctx, squirrel.Eq{"uin": uin}, id)
}

// EmailTakenByOther reports whether another student already holds email, ignoring case
func (r *StudentRepository) EmailTakenByOther(ctx context.Context, email string, id int64) (bool, error) {
	return r.takenByOther(ctx, squirrel.Expr("LOWER(email) = LOWER(?)", email), id)
}

// List returns one page of students, newest first, with the total count
func (r *StudentRepository) List(ctx context.Context, page, limit int) ([]models.Student, int64, error) {
	countSQL, countArgs, err := squirrel.Select("count(*)").From("students").PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count students SQL")
		return nil, 0, err
	}

	var total int64
	if err := r.DB.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count students query")
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}
	if total == 0 {
		return []models.Student{}, 0, nil
	}

	offset, size := helpers.CalculateOffsetLimit(page, limit)
	sql, args, err := selectStudents().OrderBy("student_id DESC").Limit(size).Offset(offset).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, 0, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, 0, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]models.Student, 0, size)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning student row")
			return nil, 0, err
		}
		students = append(students, *student)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating student rows")
		return nil, 0, err
	}

	return students, total, nil
}
