package services

import (
	"context"
	"testing"
	"time"

	"github.com/cmis/studentportal/internal/app/models"
	"github.com/cmis/studentportal/internal/app/models/dto"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/cmis/studentportal/internal/pkg/resume"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStudentFixture(seed ...*models.Student) (*StudentService, *fakeStudentStore, *fakeStorage) {
	store := newFakeStudentStore(seed...)
	storage := &fakeStorage{}
	svc := NewStudentService(store, storage, resume.NewValidator(0, false), "resumes", time.Hour, zerolog.Nop())
	return svc, store, storage
}

func seededStudents() []*models.Student {
	key := "resumes/ada.pdf"
	return []*models.Student{
		{ID: 1, UIN: "111111111", Name: "Ada", Email: "ada@tamu.edu", ResumeKey: &key, Skills: []string{"Go"}},
		{ID: 2, UIN: "222222222", Name: "Grace", Email: "grace@tamu.edu"},
	}
}

func TestGetStudentShapes(t *testing.T) {
	svc, _, _ := newStudentFixture(seededStudents()...)
	ctx := context.Background()

	profile, err := svc.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://signed.example/resumes/ada.pdf"}, profile.ResumeURL)

	byEmail, err := svc.GetByEmail(ctx, "ADA@tamu.edu")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/resumes/ada.pdf", byEmail.ResumeURL)

	byUIN, err := svc.GetByUIN(ctx, "222222222")
	require.NoError(t, err)
	assert.Equal(t, "", byUIN.ResumeURL)
	assert.Equal(t, []string{}, byUIN.Skills)

	_, err = svc.GetDetail(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.Equal(t, "Student not found", apperrors.Message(err, ""))
}

func TestListStudentsPaginates(t *testing.T) {
	svc, _, _ := newStudentFixture(seededStudents()...)

	resp, err := svc.List(context.Background(), 1, 1)
	require.NoError(t, err)

	require.Len(t, resp.Students, 1)
	assert.Equal(t, int64(2), resp.Students[0].ID)
	assert.Equal(t, dto.PaginationInfo{Page: 1, Limit: 1, Total: 2, TotalPages: 2}, resp.Pagination)
}

func TestUpdateStudentFields(t *testing.T) {
	svc, store, _ := newStudentFixture(seededStudents()...)

	name := "Ada King"
	skills := []string{"Go", "SQL"}
	resp, err := svc.Update(context.Background(), 1, &dto.UpdateStudentRequest{Name: &name, Skills: &skills}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Ada King", resp.Name)
	assert.Equal(t, []string{"Go", "SQL"}, resp.Skills)
	assert.Equal(t, "ada@tamu.edu", store.lastUpdate.UpdatedBy)
}

func TestUpdateStudentStampsNewEmail(t *testing.T) {
	svc, store, _ := newStudentFixture(seededStudents()...)

	email := "ada.king@tamu.edu"
	_, err := svc.Update(context.Background(), 1, &dto.UpdateStudentRequest{Email: &email}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ada.king@tamu.edu", store.lastUpdate.UpdatedBy)
}

func TestUpdateStudentConflicts(t *testing.T) {
	svc, store, _ := newStudentFixture(seededStudents()...)
	ctx := context.Background()

	uin := "222222222"
	_, err := svc.Update(ctx, 1, &dto.UpdateStudentRequest{UIN: &uin}, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, "UIN already exists for another student", apperrors.Message(err, ""))

	email := "GRACE@tamu.edu"
	_, err = svc.Update(ctx, 1, &dto.UpdateStudentRequest{Email: &email}, nil)
	assert.Equal(t, "Email already exists for another student", apperrors.Message(err, ""))

	own := "111111111"
	_, err = svc.Update(ctx, 1, &dto.UpdateStudentRequest{UIN: &own}, nil)
	assert.NoError(t, err)

	assert.Equal(t, 1, store.updateCalls)
}

func TestUpdateStudentErrors(t *testing.T) {
	svc, _, _ := newStudentFixture(seededStudents()...)
	ctx := context.Background()

	name := "Nobody"
	_, err := svc.Update(ctx, 42, &dto.UpdateStudentRequest{Name: &name}, nil)
	assert.Equal(t, "Student not found", apperrors.Message(err, ""))

	_, err = svc.Update(ctx, 1, &dto.UpdateStudentRequest{}, nil)
	assert.ErrorIs(t, err, apperrors.ErrNoFieldsToUpdate)
	assert.Equal(t, "No fields to update", apperrors.Message(err, ""))
}

func TestUpdateStudentReplacesResume(t *testing.T) {
	svc, _, storage := newStudentFixture(seededStudents()...)

	resp, err := svc.Update(context.Background(), 1, &dto.UpdateStudentRequest{ReplaceResume: true}, pdfUpload(1024))
	require.NoError(t, err)

	assert.Equal(t, []string{"resumes/ada.pdf"}, storage.deleted)
	assert.Equal(t, []string{"resumes/1-cv.pdf"}, storage.stored)
	assert.Equal(t, "resumes/1-cv.pdf", resp.ResumePathKey)
}

func TestUpdateStudentKeepsOldResumeWithoutReplaceFlag(t *testing.T) {
	svc, _, storage := newStudentFixture(seededStudents()...)

	_, err := svc.Update(context.Background(), 1, &dto.UpdateStudentRequest{}, pdfUpload(1024))
	require.NoError(t, err)
	assert.Empty(t, storage.deleted)
	assert.Len(t, storage.stored, 1)
}

func TestUpdateStudentRejectsBadResume(t *testing.T) {
	svc, store, storage := newStudentFixture(seededStudents()...)

	_, err := svc.Update(context.Background(), 1, &dto.UpdateStudentRequest{}, pdfUpload(11*1024*1024))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, storage.stored)
	assert.Zero(t, store.updateCalls)
}
