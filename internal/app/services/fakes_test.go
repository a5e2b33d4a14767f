package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cmis/studentportal/internal/app/models"
	"github.com/cmis/studentportal/internal/app/repositories"
	"github.com/cmis/studentportal/internal/pkg/apperrors"
	"github.com/cmis/studentportal/internal/pkg/auth"
	"github.com/cmis/studentportal/internal/pkg/filestorage"
	"github.com/cmis/studentportal/internal/pkg/webhook"
)

type fakeStudentStore struct {
	students    map[int64]*models.Student
	nextID      int64
	createCalls int
	updateCalls int
	lastUpdate  *repositories.StudentUpdate
}

func newFakeStudentStore(seed ...*models.Student) *fakeStudentStore {
	store := &fakeStudentStore{students: map[int64]*models.Student{}, nextID: 1}
	for _, s := range seed {
		if s.ID == 0 {
			s.ID = store.nextID
		}
		if s.ID >= store.nextID {
			store.nextID = s.ID + 1
		}
		store.students[s.ID] = s
	}
	return store
}

func (f *fakeStudentStore) copyOf(s *models.Student) *models.Student {
	clone := *s
	return &clone
}

func (f *fakeStudentStore) FindByEmailOrUIN(_ context.Context, email, uin string) (*models.Student, error) {
	for _, s := range f.students {
		if strings.EqualFold(s.Email, email) || s.UIN == uin {
			return f.copyOf(s), nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) GetByID(_ context.Context, id int64) (*models.Student, error) {
	if s, ok := f.students[id]; ok {
		return f.copyOf(s), nil
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) GetByEmail(_ context.Context, email string) (*models.Student, error) {
	for _, s := range f.students {
		if strings.EqualFold(s.Email, email) {
			return f.copyOf(s), nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) GetByUIN(_ context.Context, uin string) (*models.Student, error) {
	for _, s := range f.students {
		if s.UIN == uin {
			return f.copyOf(s), nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentStore) Create(_ context.Context, student *models.Student) (*models.Student, error) {
	f.createCalls++
	for _, s := range f.students {
		if strings.EqualFold(s.Email, student.Email) || s.UIN == student.UIN {
			return nil, repositories.ErrStudentExists
		}
	}
	stored := f.copyOf(student)
	stored.ID = f.nextID
	f.nextID++
	stored.CreatedAt = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	stored.UpdatedAt = stored.CreatedAt
	f.students[stored.ID] = stored
	return f.copyOf(stored), nil
}

func (f *fakeStudentStore) Update(_ context.Context, id int64, u *repositories.StudentUpdate) (*models.Student, error) {
	f.updateCalls++
	f.lastUpdate = u
	if !u.HasChanges() {
		return nil, repositories.ErrNoStudentFieldsToSave
	}
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}

	text := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	nullable := func(dst **string, v *string) {
		if v != nil {
			if *v == "" {
				*dst = nil
			} else {
				value := *v
				*dst = &value
			}
		}
	}
	text(&s.UIN, u.UIN)
	text(&s.Name, u.Name)
	text(&s.Email, u.Email)
	text(&s.DegreeType, u.DegreeType)
	text(&s.AcademicLevel, u.AcademicLevel)
	nullable(&s.ProgramOfStudy, u.ProgramOfStudy)
	nullable(&s.ResumePath, u.ResumePath)
	nullable(&s.ResumeKey, u.ResumeKey)
	nullable(&s.PasswordHash, u.PasswordHash)
	nullable(&s.ProfileSummary, u.ProfileSummary)
	nullable(&s.LinkedinURL, u.LinkedinURL)
	if u.GraduationYear != nil {
		s.GraduationYear = *u.GraduationYear
	}
	if u.NeedsMentor != nil {
		s.NeedsMentor = *u.NeedsMentor
	}
	if u.DomainsOfInterest != nil {
		s.DomainsOfInterest = *u.DomainsOfInterest
	}
	if u.TargetIndustries != nil {
		s.TargetIndustries = *u.TargetIndustries
	}
	if u.Skills != nil {
		s.Skills = *u.Skills
	}
	if u.GPA != nil {
		gpa := *u.GPA
		s.GPA = &gpa
	} else if u.ClearGPA {
		s.GPA = nil
	}
	if u.IsRegistered != nil {
		s.IsRegistered = *u.IsRegistered
	}
	updatedBy := u.UpdatedBy
	s.UpdatedBy = &updatedBy
	return f.copyOf(s), nil
}

func (f *fakeStudentStore) UINTakenByOther(_ context.Context, uin string, id int64) (bool, error) {
	for _, s := range f.students {
		if s.ID != id && s.UIN == uin {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentStore) EmailTakenByOther(_ context.Context, email string, id int64) (bool, error) {
	for _, s := range f.students {
		if s.ID != id && strings.EqualFold(s.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStudentStore) List(_ context.Context, page, limit int) ([]models.Student, int64, error) {
	all := make([]models.Student, 0, len(f.students))
	for _, s := range f.students {
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return paginate(all, page, limit), int64(len(all)), nil
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type fakeEventStore struct {
	events []models.Event
}

func (f *fakeEventStore) List(_ context.Context, filter repositories.EventFilter) ([]models.Event, int64, error) {
	var matched []models.Event
	from := ""
	if !filter.UpcomingFrom.IsZero() {
		from = filter.UpcomingFrom.UTC().Format("2006-01-02")
	}
	for _, e := range f.events {
		if from == "" || e.EventDate >= from {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].EventDate != matched[j].EventDate {
			return matched[i].EventDate > matched[j].EventDate
		}
		return deref(matched[i].StartTime) > deref(matched[j].StartTime)
	})
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (f *fakeEventStore) GetByID(_ context.Context, id int64) (*models.Event, error) {
	for i := range f.events {
		if f.events[i].ID == id {
			e := f.events[i]
			return &e, nil
		}
	}
	return nil, apperrors.ErrEventNotFound
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type fakeStorage struct {
	mu        sync.Mutex
	stored    []string
	deleted   []string
	storeErr  error
	deleteErr error
	presigned int
}

func (f *fakeStorage) Store(_ context.Context, data []byte, originalName, folder, contentType string) (*filestorage.StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	key := fmt.Sprintf("%s/%d-%s", folder, len(f.stored)+1, originalName)
	f.stored = append(f.stored, key)
	return &filestorage.StoredObject{Key: key, URL: "https://bucket.example/" + key + "?upload"}, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

func (f *fakeStorage) Presign(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://signed.example/" + key, nil
}

func (f *fakeStorage) PresignOrFallback(ctx context.Context, key, fallback string, ttl time.Duration) string {
	if key == "" {
		return fallback
	}
	f.mu.Lock()
	f.presigned++
	f.mu.Unlock()
	url, _ := f.Presign(ctx, key, ttl)
	return url
}

func (f *fakeStorage) Stats() filestorage.Stats {
	return filestorage.Stats{Configured: true}
}

type fakeNotifier struct {
	mu         sync.Mutex
	configured bool
	calls      []int64
	reply      interface{}
	err        error
}

func (f *fakeNotifier) Configured() bool { return f.configured }

func (f *fakeNotifier) Trigger(_ context.Context, studentID int64) (interface{}, error) {
	if !f.configured {
		return nil, webhook.ErrNotConfigured
	}
	f.mu.Lock()
	f.calls = append(f.calls, studentID)
	f.mu.Unlock()
	return f.reply, f.err
}

func (f *fakeNotifier) Calls() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.calls...)
}

type fakeSessions struct {
	sessions map[string]int64
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]int64{}}
}

func (f *fakeSessions) Create(_ context.Context, sessionID string, studentID int64, _ time.Duration) error {
	f.sessions[sessionID] = studentID
	return nil
}

func (f *fakeSessions) Lookup(_ context.Context, sessionID string) (int64, error) {
	id, ok := f.sessions[sessionID]
	if !ok {
		return 0, auth.ErrSessionNotFound
	}
	return id, nil
}

func (f *fakeSessions) Revoke(_ context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

var errBoom = errors.New("boom")
