package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cmis/studentportal/internal/app/models"
	"github.com/cmis/studentportal/internal/app/models/dto"
	"github.com/cmis/studentportal/internal/config"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/cmis/studentportal/internal/pkg/auth"
	"github.com/cmis/studentportal/internal/pkg/resume"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adaRequest() *dto.RegisterStudentRequest {
	return &dto.RegisterStudentRequest{
		Name:              "Ada Lovelace",
		UIN:               "111111111",
		Email:             " Ada@TAMU.edu ",
		DegreeType:        "Masters",
		AcademicLevel:     "Graduate",
		GraduationYear:    "2026",
		NeedsMentor:       "true",
		DomainsOfInterest: `["Data Analytics","Cybersecurity"]`,
		TargetIndustries:  "Technology, Consulting",
		Skills:            "",
		Password:          "s3cret-pass",
	}
}

func pdfUpload(size int) *resume.Upload {
	data := bytes.Repeat([]byte(" "), size)
	copy(data, "%PDF-1.4\n")
	return &resume.Upload{Filename: "cv.pdf", ContentType: resume.MIMEPDF, Size: int64(size), Data: data}
}

type registrationFixture struct {
	store    *fakeStudentStore
	storage  *fakeStorage
	notifier *fakeNotifier
	svc      *RegistrationService
}

func newRegistrationFixture(mode string, seed ...*models.Student) *registrationFixture {
	f := &registrationFixture{
		store:    newFakeStudentStore(seed...),
		storage:  &fakeStorage{},
		notifier: &fakeNotifier{configured: true},
	}
	f.svc = NewRegistrationService(f.store, f.storage, resume.NewValidator(resume.DefaultMaxBytes, false), f.notifier,
		RegistrationConfig{Mode: mode, NotifyOnRegister: true, NotifyTimeout: time.Second, ReadURLTTL: time.Hour},
		zerolog.Nop())
	return f
}

func TestRegisterCreatesStudent(t *testing.T) {
	f := newRegistrationFixture(config.RegistrationModeSelf)

	resp, err := f.svc.Register(context.Background(), adaRequest(), nil)
	require.NoError(t, err)
	f.svc.DrainNotifications()

	assert.True(t, resp.IsRegistered)
	assert.Equal(t, "", resp.ResumeURL)
	assert.Equal(t, "ada@tamu.edu", resp.Email)
	assert.Equal(t, 2026, resp.GraduationYear)
	assert.True(t, resp.NeedsMentor)
	assert.Equal(t, []string{"Data Analytics", "Cybersecurity"}, resp.DomainsOfInterest)
	assert.Equal(t, []string{"Technology", "Consulting"}, resp.TargetIndustries)
	assert.Equal(t, []string{}, resp.Skills)
	assert.Equal(t, []int64{resp.ID}, f.notifier.Calls())

	stored := f.store.students[resp.ID]
	require.NotNil(t, stored.PasswordHash)
	assert.True(t, auth.CheckPassword(*stored.PasswordHash, "s3cret-pass"))
	assert.Equal(t, "ada@tamu.edu", *stored.CreatedBy)
	assert.Empty(t, f.storage.stored)
}

func TestRegisterTwiceConflicts(t *testing.T) {
	f := newRegistrationFixture(config.RegistrationModeSelf)

	_, err := f.svc.Register(context.Background(), adaRequest(), nil)
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), adaRequest(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, "Student with this email or UIN already exists", apperrors.Message(err, ""))
	assert.Equal(t, 1, f.store.createCalls)
}

func TestRegisterMissingFields(t *testing.T) {
	f := newRegistrationFixture(config.RegistrationModeSelf)

	req := adaRequest()
	req.DegreeType = ""
	_, err := f.svc.Register(context.Background(), req, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "Missing required fields: name, uin, email, degreeType, academicLevel, graduationYear", apperrors.Message(err, ""))

	req = adaRequest()
	req.GraduationYear = "20x6"
	_, err = f.svc.Register(context.Background(), req, nil)
	assert.Equal(t, ErrGraduationYearNotInteger, err)

	assert.Zero(t, f.store.createCalls)
}

func TestRegisterAcceptsFullNameFallback(t *testing.T) {
	f := newRegistrationFixture(config.RegistrationModeSelf)

	req := adaRequest()
	req.Name = ""
	req.FullName = "Ada King"
	resp, err := f.svc.Register(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada King", resp.Name)
}

func TestRegisterRejectsOversizedResumeBeforeStorage(t *testing.T) {
	f := newRegistrationFixture(config.RegistrationModeSelf)

	_, err := f.svc.Register(context.Background(), adaRequest(), pdfUpload(12*1024*1024))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "File size exceeds 10MB limit.", apperrors.Message(err, ""))
	assert.Empty(t, f.storage.stored)
	assert.Zero(t, f.store.createCalls)
}

func TestRegisterRejectsWrongType(t *testing.T) {
	f := newRegistrationFixture(config.RegistrationModeSelf)

	upload := &resume.Upload{Filename: "me.png", ContentType: "image/png", Size: 4, Data: []byte("\x89PNG")}
	_, err := f.svc.Register(context.Background(), adaRequest(), upload)
	assert.Equal(t, "Invalid file type. Only PDF and DOCX files are allowed.", apperrors.Message(err, ""))
	assert.Empty(t, f.storage.stored)
	assert.Zero(t, f.store.createCalls)
}

func TestRegisterStoresResume(t *testing.T) {
	f := newRegistrationFixture(config.RegistrationModeSelf)

	resp, err := f.svc.Register(context.Background(), adaRequest(), pdfUpload(2048))
	require.NoError(t, err)

	require.Len(t, f.storage.stored, 1)
	assert.Equal(t, "resumes/1-cv.pdf", resp.ResumePathKey)
	assert.Equal(t, "https://bucket.example/resumes/1-cv.pdf?upload", resp.ResumeURL)
}

func TestRegisterUploadFailure(t *testing.T) {
	f := newRegistrationFixture(config.RegistrationModeSelf)
	f.storage.storeErr = errBoom

	_, err := f.svc.Register(context.Background(), adaRequest(), pdfUpload(2048))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamStorage)
	assert.Equal(t, "Failed to upload resume. Please try again.", apperrors.Message(err, ""))
	assert.Zero(t, f.store.createCalls)
}

func TestRegisterPreprovisionRequiresRecord(t *testing.T) {
	f := newRegistrationFixture(config.RegistrationModePreprovision)

	_, err := f.svc.Register(context.Background(), adaRequest(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Equal(t, "Student record not found. Please contact administrator.", apperrors.Message(err, ""))
}

func TestRegisterPreprovisionCompletesRecord(t *testing.T) {
	oldKey := "resumes/old.pdf"
	existing := &models.Student{ID: 9, UIN: "111111111", Email: "ada@tamu.edu", Name: "A. Lovelace", ResumeKey: &oldKey}
	f := newRegistrationFixture(config.RegistrationModePreprovision, existing)

	resp, err := f.svc.Register(context.Background(), adaRequest(), pdfUpload(2048))
	require.NoError(t, err)
	f.svc.DrainNotifications()

	assert.Equal(t, int64(9), resp.ID)
	assert.Equal(t, "Ada Lovelace", resp.Name)
	assert.True(t, resp.IsRegistered)
	assert.Equal(t, []string{oldKey}, f.storage.deleted)
	assert.Equal(t, 1, f.store.updateCalls)
	assert.Zero(t, f.store.createCalls)
	assert.Equal(t, "ada@tamu.edu", f.store.lastUpdate.UpdatedBy)
}

func TestRegisterSkipsNotifyWhenUnconfigured(t *testing.T) {
	f := newRegistrationFixture(config.RegistrationModeSelf)
	f.notifier.configured = false

	_, err := f.svc.Register(context.Background(), adaRequest(), nil)
	require.NoError(t, err)
	f.svc.DrainNotifications()
	assert.Empty(t, f.notifier.Calls())
}

func TestDrainNotificationsStopsNewWebhookCalls(t *testing.T) {
	f := newRegistrationFixture(config.RegistrationModeSelf)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, adaRequest(), nil)
	require.NoError(t, err)
	f.svc.DrainNotifications()
	require.Len(t, f.notifier.Calls(), 1)

	grace := adaRequest()
	grace.UIN = "222222222"
	grace.Email = "grace@tamu.edu"
	_, err = f.svc.Register(ctx, grace, nil)
	require.NoError(t, err)

	f.svc.DrainNotifications()
	assert.Len(t, f.notifier.Calls(), 1)
}
