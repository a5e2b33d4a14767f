package services

import (
	"context"
	"errors"
	"time"

	"github.com/cmis/studentportal/internal/app/models/dto"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/cmis/studentportal/internal/pkg/auth"
	"github.com/cmis/studentportal/internal/pkg/filestorage"
	"github.com/rs/zerolog"
)

// Auth errors with their client messages
var (
	ErrCredentialsRequired = apperrors.NewCustomError(apperrors.ErrValidation, "Email and password are required")
	ErrInvalidLogin        = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password")
	ErrAccountNotSetUp     = apperrors.NewCustomError(apperrors.ErrUnauthorized, "Account not properly set up. Please contact administrator.")
	ErrTokenExpired        = apperrors.NewCustomError(apperrors.ErrTokenExpired, "Token has expired")
	ErrTokenInvalid        = apperrors.NewCustomError(apperrors.ErrTokenInvalid, "Invalid token")
	ErrSessionEnded        = apperrors.NewCustomError(apperrors.ErrSessionRevoked, "Session has ended. Please log in again.")
)

// AuthService handles login and server-side sessions
type AuthService struct {
	students   StudentStore
	jwtService *auth.JWTService
	sessions   auth.SessionStore
	storage    filestorage.ObjectStorage
	readURLTTL time.Duration
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService. sessions may be nil, in which case
// tokens are validated by signature only.
func NewAuthService(
	students StudentStore,
	jwtService *auth.JWTService,
	sessions auth.SessionStore,
	storage filestorage.ObjectStorage,
	readURLTTL time.Duration,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		students:   students,
		jwtService: jwtService,
		sessions:   sessions,
		storage:    storage,
		readURLTTL: readURLTTL,
		logger:     logger,
	}
}

// SessionBackend names the session validation mode for health reporting
func (s *AuthService) SessionBackend() string {
	if s.sessions == nil {
		return "stateless"
	}
	return "redis"
}

// Login verifies credentials and opens a session
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	email := dto.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrCredentialsRequired
	}

	student, err := s.students.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			s.logger.Info().Str("email", email).Msg("Login attempt for unknown email")
			return nil, ErrInvalidLogin
		}
		return nil, err
	}

	if !student.HasPassword() {
		s.logger.Warn().Int64("student_id", student.ID).Msg("Login attempt for account without password")
		return nil, ErrAccountNotSetUp
	}

	if !auth.CheckPassword(*student.PasswordHash, req.Password) {
		s.logger.Info().Int64("student_id", student.ID).Msg("Login attempt with wrong password")
		return nil, ErrInvalidLogin
	}

	token, err := s.jwtService.GenerateToken(student.ID, student.Email)
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to create session", err)
	}

	if s.sessions != nil {
		if err := s.sessions.Create(ctx, token.SessionID, student.ID, time.Until(token.ExpiresAt)); err != nil {
			return nil, apperrors.NewInternalError("Failed to create session", err)
		}
	}

	s.logger.Info().Int64("student_id", student.ID).Msg("Student logged in")

	resumeURL := s.storage.PresignOrFallback(ctx, student.ResumeObjectKey(), student.ResumeFallbackURL(), s.readURLTTL)
	return &dto.LoginResponse{
		Success:   true,
		Token:     token.Token,
		TokenType: "Bearer",
		ExpiresIn: token.ExpiresIn,
		Student:   dto.NewStudentProfileResponse(student, resumeURL),
	}, nil
}

// Authenticate validates a bearer token and, when a session store is
// configured, that its session is still live.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid.WithCause(err)
	}

	if s.sessions == nil {
		return claims, nil
	}

	studentID, err := s.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return nil, ErrSessionEnded
		}
		return nil, apperrors.NewInternalError("Failed to verify session", err)
	}
	if studentID != claims.StudentID {
		s.logger.Warn().Str("session_id", claims.ID).Msg("Session belongs to a different student")
		return nil, ErrSessionEnded
	}

	return claims, nil
}

// Session returns the caller's profile
func (s *AuthService) Session(ctx context.Context, claims *auth.Claims) (*dto.SessionResponse, error) {
	student, err := s.students.GetByID(ctx, claims.StudentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, ErrSessionEnded
		}
		return nil, err
	}

	resumeURL := s.storage.PresignOrFallback(ctx, student.ResumeObjectKey(), student.ResumeFallbackURL(), s.readURLTTL)
	resp := &dto.SessionResponse{
		Success: true,
		Student: dto.NewStudentProfileResponse(student, resumeURL),
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}
	return resp, nil
}

// Logout revokes the caller's session
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.sessions == nil {
		return nil
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return apperrors.NewInternalError("Failed to end session", err)
	}
	s.logger.Info().Int64("student_id", claims.StudentID).Msg("Student logged out")
	return nil
}
