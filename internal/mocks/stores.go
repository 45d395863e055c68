// Package mocks provides testify mocks for the model interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/hiready/hiready-server/internal/model"
)

type cleanupT interface {
	mock.TestingT
	Cleanup(func())
}

// UserStore mocks model.UserStore.
type UserStore struct {
	mock.Mock
}

func NewUserStore(t cleanupT) *UserStore {
	m := &UserStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *UserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *UserStore) UpdateProfile(ctx context.Context, id uuid.UUID, upd model.ProfileUpdate) (model.User, error) {
	args := m.Called(ctx, id, upd)
	return args.Get(0).(model.User), args.Error(1)
}

// ResumeStore mocks model.ResumeStore.
type ResumeStore struct {
	mock.Mock
}

func NewResumeStore(t cleanupT) *ResumeStore {
	m := &ResumeStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ResumeStore) Create(ctx context.Context, resume model.Resume) (model.Resume, error) {
	args := m.Called(ctx, resume)
	return args.Get(0).(model.Resume), args.Error(1)
}

func (m *ResumeStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Resume, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.Resume), args.Error(1)
}

func (m *ResumeStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (model.Resume, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(model.Resume), args.Error(1)
}

func (m *ResumeStore) Update(ctx context.Context, ownerID, id uuid.UUID, upd model.ResumeUpdate) (model.Resume, error) {
	args := m.Called(ctx, ownerID, id, upd)
	return args.Get(0).(model.Resume), args.Error(1)
}

func (m *ResumeStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// InterviewStore mocks model.InterviewStore.
type InterviewStore struct {
	mock.Mock
}

func NewInterviewStore(t cleanupT) *InterviewStore {
	m := &InterviewStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *InterviewStore) Create(ctx context.Context, interview model.Interview) (model.Interview, error) {
	args := m.Called(ctx, interview)
	return args.Get(0).(model.Interview), args.Error(1)
}

func (m *InterviewStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.InterviewSummary, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.InterviewSummary), args.Error(1)
}

func (m *InterviewStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (model.Interview, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(model.Interview), args.Error(1)
}

func (m *InterviewStore) Update(ctx context.Context, ownerID, id uuid.UUID, upd model.InterviewUpdate) (model.Interview, error) {
	args := m.Called(ctx, ownerID, id, upd)
	return args.Get(0).(model.Interview), args.Error(1)
}

func (m *InterviewStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

// AptitudeStore mocks model.AptitudeStore.
type AptitudeStore struct {
	mock.Mock
}

func NewAptitudeStore(t cleanupT) *AptitudeStore {
	m := &AptitudeStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *AptitudeStore) Create(ctx context.Context, test model.AptitudeTest) (model.AptitudeTest, error) {
	args := m.Called(ctx, test)
	return args.Get(0).(model.AptitudeTest), args.Error(1)
}

func (m *AptitudeStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.AptitudeTest, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.AptitudeTest), args.Error(1)
}

func (m *AptitudeStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (model.AptitudeTest, error) {
	args := m.Called(ctx, ownerID, id)
	return args.Get(0).(model.AptitudeTest), args.Error(1)
}

func (m *AptitudeStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *AptitudeStore) BestByOwner(ctx context.Context, ownerID uuid.UUID) (model.AptitudeTest, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(model.AptitudeTest), args.Error(1)
}
