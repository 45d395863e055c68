// Package memory keeps every record in process memory. It backs local runs
// without a database and the HTTP end-to-end tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hiready/hiready-server/internal/model"
)

var (
	_ model.UserStore      = (*UserStore)(nil)
	_ model.ResumeStore    = (*ResumeStore)(nil)
	_ model.InterviewStore = (*InterviewStore)(nil)
	_ model.AptitudeStore  = (*AptitudeStore)(nil)
)

// Store holds all collections behind one lock.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	users      map[uuid.UUID]model.User
	resumes    map[uuid.UUID]model.Resume
	interviews map[uuid.UUID]model.Interview
	aptitude   map[uuid.UUID]model.AptitudeTest
}

func NewStore() *Store {
	return &Store{
		now:        time.Now,
		users:      make(map[uuid.UUID]model.User),
		resumes:    make(map[uuid.UUID]model.Resume),
		interviews: make(map[uuid.UUID]model.Interview),
		aptitude:   make(map[uuid.UUID]model.AptitudeTest),
	}
}

func (s *Store) Users() *UserStore           { return &UserStore{s} }
func (s *Store) Resumes() *ResumeStore       { return &ResumeStore{s} }
func (s *Store) Interviews() *InterviewStore { return &InterviewStore{s} }
func (s *Store) Aptitude() *AptitudeStore    { return &AptitudeStore{s} }

type UserStore struct{ s *Store }

func (u *UserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	for _, user := range u.s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (u *UserStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()
	user, ok := u.s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return user, nil
}

func (u *UserStore) Create(_ context.Context, user model.User) (model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, existing := range u.s.users {
		if existing.Email == user.Email {
			return model.User{}, model.ErrAlreadyExists
		}
	}
	if _, ok := u.s.users[user.ID]; ok {
		return model.User{}, model.ErrAlreadyExists
	}
	u.s.users[user.ID] = user
	return user, nil
}

func (u *UserStore) UpdateProfile(_ context.Context, id uuid.UUID, upd model.ProfileUpdate) (model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	user.Profile.Apply(upd)
	user.UpdatedAt = u.s.now().UTC()
	u.s.users[id] = user
	return user, nil
}

type ResumeStore struct{ s *Store }

func (r *ResumeStore) Create(_ context.Context, resume model.Resume) (model.Resume, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.resumes[resume.ID]; ok {
		return model.Resume{}, model.ErrAlreadyExists
	}
	resume = cloneResume(resume)
	resume.Normalize()
	r.s.resumes[resume.ID] = resume
	return cloneResume(resume), nil
}

func (r *ResumeStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Resume, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []model.Resume{}
	for _, resume := range r.s.resumes {
		if resume.OwnerID == ownerID {
			out = append(out, cloneResume(resume))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ResumeStore) GetByID(_ context.Context, ownerID, id uuid.UUID) (model.Resume, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	resume, ok := r.s.resumes[id]
	if !ok || resume.OwnerID != ownerID {
		return model.Resume{}, model.ErrNotFound
	}
	return cloneResume(resume), nil
}

func (r *ResumeStore) Update(_ context.Context, ownerID, id uuid.UUID, upd model.ResumeUpdate) (model.Resume, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resume, ok := r.s.resumes[id]
	if !ok || resume.OwnerID != ownerID {
		return model.Resume{}, model.ErrNotFound
	}
	resume = cloneResume(resume)
	resume.Apply(upd)
	resume.UpdatedAt = r.s.now().UTC()
	r.s.resumes[id] = resume
	return cloneResume(resume), nil
}

func (r *ResumeStore) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resume, ok := r.s.resumes[id]
	if !ok || resume.OwnerID != ownerID {
		return model.ErrNotFound
	}
	delete(r.s.resumes, id)
	return nil
}

type InterviewStore struct{ s *Store }

func (i *InterviewStore) Create(_ context.Context, interview model.Interview) (model.Interview, error) {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	if _, ok := i.s.interviews[interview.ID]; ok {
		return model.Interview{}, model.ErrAlreadyExists
	}
	interview = cloneInterview(interview)
	interview.Normalize()
	i.s.interviews[interview.ID] = interview
	return cloneInterview(interview), nil
}

func (i *InterviewStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.InterviewSummary, error) {
	i.s.mu.RLock()
	defer i.s.mu.RUnlock()
	out := []model.InterviewSummary{}
	for _, interview := range i.s.interviews {
		if interview.OwnerID == ownerID {
			out = append(out, cloneInterview(interview).InterviewSummary)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (i *InterviewStore) GetByID(_ context.Context, ownerID, id uuid.UUID) (model.Interview, error) {
	i.s.mu.RLock()
	defer i.s.mu.RUnlock()
	interview, ok := i.s.interviews[id]
	if !ok || interview.OwnerID != ownerID {
		return model.Interview{}, model.ErrNotFound
	}
	return cloneInterview(interview), nil
}

func (i *InterviewStore) Update(_ context.Context, ownerID, id uuid.UUID, upd model.InterviewUpdate) (model.Interview, error) {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	interview, ok := i.s.interviews[id]
	if !ok || interview.OwnerID != ownerID {
		return model.Interview{}, model.ErrNotFound
	}
	interview = cloneInterview(interview)
	interview.Apply(upd)
	interview.UpdatedAt = i.s.now().UTC()
	i.s.interviews[id] = interview
	return cloneInterview(interview), nil
}

func (i *InterviewStore) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	interview, ok := i.s.interviews[id]
	if !ok || interview.OwnerID != ownerID {
		return model.ErrNotFound
	}
	delete(i.s.interviews, id)
	return nil
}

type AptitudeStore struct{ s *Store }

func (a *AptitudeStore) Create(_ context.Context, test model.AptitudeTest) (model.AptitudeTest, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.aptitude[test.ID]; ok {
		return model.AptitudeTest{}, model.ErrAlreadyExists
	}
	test = cloneAptitude(test)
	a.s.aptitude[test.ID] = test
	return cloneAptitude(test), nil
}

func (a *AptitudeStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.AptitudeTest, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	out := []model.AptitudeTest{}
	for _, test := range a.s.aptitude {
		if test.OwnerID == ownerID {
			out = append(out, cloneAptitude(test))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (a *AptitudeStore) GetByID(_ context.Context, ownerID, id uuid.UUID) (model.AptitudeTest, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	test, ok := a.s.aptitude[id]
	if !ok || test.OwnerID != ownerID {
		return model.AptitudeTest{}, model.ErrNotFound
	}
	return cloneAptitude(test), nil
}

func (a *AptitudeStore) Delete(_ context.Context, ownerID, id uuid.UUID) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	test, ok := a.s.aptitude[id]
	if !ok || test.OwnerID != ownerID {
		return model.ErrNotFound
	}
	delete(a.s.aptitude, id)
	return nil
}

// BestByOwner picks the highest score; ties go to the earliest attempt.
func (a *AptitudeStore) BestByOwner(_ context.Context, ownerID uuid.UUID) (model.AptitudeTest, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	var (
		best  model.AptitudeTest
		found bool
	)
	for _, test := range a.s.aptitude {
		if test.OwnerID != ownerID {
			continue
		}
		if !found || test.Score > best.Score || (test.Score == best.Score && test.CreatedAt.Before(best.CreatedAt)) {
			best, found = test, true
		}
	}
	if !found {
		return model.AptitudeTest{}, model.ErrNotFound
	}
	return cloneAptitude(best), nil
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

func cloneResume(r model.Resume) model.Resume {
	r.Strengths = cloneStrings(r.Strengths)
	r.Improvements = cloneStrings(r.Improvements)
	r.Keywords = cloneStrings(r.Keywords)
	return r
}

func cloneInterview(i model.Interview) model.Interview {
	i.Strengths = cloneStrings(i.Strengths)
	i.Improvements = cloneStrings(i.Improvements)
	i.RejectionReasons = cloneStrings(i.RejectionReasons)
	if i.Transcript != nil {
		i.Transcript = append([]model.ConversationTurn{}, i.Transcript...)
	}
	return i
}

func cloneAptitude(t model.AptitudeTest) model.AptitudeTest {
	if t.Answers == nil {
		t.Answers = []model.AnswerResult{}
	} else {
		t.Answers = append([]model.AnswerResult{}, t.Answers...)
	}
	return t
}
