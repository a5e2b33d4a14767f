package dberrors

import (
	"errors"
	"strings"

	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes handled by the application
const (
	UniqueViolation  = "23505"
	CheckViolation   = "23514"
	NotNullViolation = "23502"
)

// constraintFields maps known constraint names to the API field they guard
var constraintFields = map[string]string{
	"students_uin_key":               "uin",
	"students_email_lower_key":       "email",
	"students_degree_type_check":     "degreeType",
	"students_academic_level_check":  "academicLevel",
	"students_graduation_year_check": "graduationYear",
	"students_gpa_check":             "gpa",
}

// fieldLabels holds human-readable names for API fields
var fieldLabels = map[string]string{
	"uin":            "UIN",
	"email":          "email",
	"degreeType":     "degree type",
	"academicLevel":  "academic level",
	"graduationYear": "graduation year",
	"gpa":            "GPA",
}

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == UniqueViolation && pgErr.ConstraintName == constraintName
}

// FieldForConstraint returns the API field guarded by a constraint, falling back to
// a best-effort guess from the constraint name (table_column_suffix).
func FieldForConstraint(constraintName string) string {
	if field, ok := constraintFields[constraintName]; ok {
		return field
	}
	name := constraintName
	for _, suffix := range []string{"_key", "_check", "_fkey", "_not_null"} {
		name = strings.TrimSuffix(name, suffix)
	}
	if i := strings.Index(name, "_"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// fieldLabel returns the label used in client messages
func fieldLabel(field string) string {
	if label, ok := fieldLabels[field]; ok {
		return label
	}
	return strings.ReplaceAll(field, "_", " ")
}

// Translate converts constraint violations into taxonomy errors. Errors that are not
// constraint violations are returned unchanged.
func Translate(err error, conflictMessage string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case UniqueViolation:
		message := conflictMessage
		if message == "" {
			message = "A record with this " + fieldLabel(FieldForConstraint(pgErr.ConstraintName)) + " already exists"
		}
		return apperrors.NewCustomError(apperrors.ErrConflict, message).WithCause(err)
	case CheckViolation:
		field := FieldForConstraint(pgErr.ConstraintName)
		return apperrors.NewCustomError(apperrors.ErrPersistence, "Invalid value for "+fieldLabel(field)).
			WithCause(err).
			WithDetails(map[string]interface{}{"field": field})
	case NotNullViolation:
		field := pgErr.ColumnName
		return apperrors.NewCustomError(apperrors.ErrPersistence, "Missing value for "+fieldLabel(field)).
			WithCause(err).
			WithDetails(map[string]interface{}{"field": field})
	}

	return err
}
