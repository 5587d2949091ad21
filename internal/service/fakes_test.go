package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/motionhq/motion-go/internal/model"
	"github.com/motionhq/motion-go/internal/repository"
)

// In-memory stores mirroring the repository contracts, including their
// sentinel errors and soft-delete filtering.

type memUserStore struct {
	users map[string]*model.User // by ID
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*model.User)}
}

func (s *memUserStore) Create(_ context.Context, user *model.User) error {
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = uuid.NewString()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memUserStore) GetActiveByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email && u.DeletedAt == nil {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) GetActiveByID(_ context.Context, id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) softDelete(id string) {
	if u, ok := s.users[id]; ok {
		now := time.Now()
		u.DeletedAt = &now
	}
}

type memTokenStore struct {
	users   *memUserStore
	refresh map[string]*model.RefreshToken       // by ID
	reset   map[string]*model.PasswordResetToken // by ID
}

func newMemTokenStore(users *memUserStore) *memTokenStore {
	return &memTokenStore{
		users:   users,
		refresh: make(map[string]*model.RefreshToken),
		reset:   make(map[string]*model.PasswordResetToken),
	}
}

func (s *memTokenStore) CreateRefresh(_ context.Context, token *model.RefreshToken) error {
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	cp := *token
	s.refresh[token.ID] = &cp
	return nil
}

func (s *memTokenStore) GetRefreshByHash(_ context.Context, hash string) (*model.RefreshToken, error) {
	for _, t := range s.refresh {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrRefreshTokenNotFound
}

func (s *memTokenStore) Rotate(_ context.Context, oldID string, next *model.RefreshToken) error {
	old, ok := s.refresh[oldID]
	if !ok || old.Revoked {
		return repository.ErrAlreadyRevoked
	}
	old.Revoked = true

	next.ID = uuid.NewString()
	next.CreatedAt = time.Now()
	cp := *next
	s.refresh[next.ID] = &cp
	return nil
}

func (s *memTokenStore) RevokeByHash(_ context.Context, hash string) error {
	for _, t := range s.refresh {
		if t.TokenHash == hash {
			t.Revoked = true
		}
	}
	return nil
}

func (s *memTokenStore) CreateReset(_ context.Context, token *model.PasswordResetToken) error {
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now()
	cp := *token
	s.reset[token.ID] = &cp
	return nil
}

func (s *memTokenStore) GetResetByHash(_ context.Context, hash string) (*model.PasswordResetToken, error) {
	for _, t := range s.reset {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrResetTokenNotFound
}

func (s *memTokenStore) ConsumeReset(_ context.Context, tokenID, userID, passwordHash string) error {
	t, ok := s.reset[tokenID]
	if !ok || t.Used {
		return repository.ErrResetTokenNotFound
	}
	t.Used = true
	if u, found := s.users.users[userID]; found && u.DeletedAt == nil {
		u.PasswordHash = passwordHash
		u.UpdatedAt = time.Now()
	}
	return nil
}

// expireRefresh backdates the stored row for a raw-token fingerprint.
func (s *memTokenStore) expireRefreshByHash(hash string) {
	for _, t := range s.refresh {
		if t.TokenHash == hash {
			t.ExpiresAt = time.Now().Add(-time.Minute)
		}
	}
}

// expireReset backdates a reset row past the given age.
func (s *memTokenStore) expireResetByHash(hash string, age time.Duration) {
	for _, t := range s.reset {
		if t.TokenHash == hash {
			t.ExpiresAt = time.Now().Add(-age)
		}
	}
}

type memProjectStore struct {
	projects map[string]*model.Project // by ID
	tasks    *memTaskStore
}

func newMemProjectStore() *memProjectStore {
	return &memProjectStore{projects: make(map[string]*model.Project)}
}

func (s *memProjectStore) Create(_ context.Context, project *model.Project) error {
	project.ID = uuid.NewString()
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	cp := *project
	s.projects[project.ID] = &cp
	return nil
}

func (s *memProjectStore) ListByOwner(_ context.Context, userID string) ([]model.Project, error) {
	var out []model.Project
	for _, p := range s.projects {
		if p.UserID == userID && p.DeletedAt == nil {
			cp := *p
			cp.TaskCount = s.liveTaskCount(p.ID)
			out = append(out, cp)
		}
	}
	return out, nil
}

func (s *memProjectStore) GetForOwner(_ context.Context, projectID, userID string) (*model.Project, error) {
	p, ok := s.projects[projectID]
	if !ok || p.UserID != userID || p.DeletedAt != nil {
		return nil, repository.ErrProjectNotFound
	}
	cp := *p
	cp.TaskCount = s.liveTaskCount(p.ID)
	return &cp, nil
}

func (s *memProjectStore) Update(_ context.Context, project *model.Project) error {
	p, ok := s.projects[project.ID]
	if !ok || p.UserID != project.UserID || p.DeletedAt != nil {
		return repository.ErrProjectNotFound
	}
	p.Name = project.Name
	p.Description = project.Description
	p.UpdatedAt = time.Now()
	return nil
}

func (s *memProjectStore) SoftDeleteCascade(_ context.Context, projectID, userID string) error {
	p, ok := s.projects[projectID]
	if !ok || p.UserID != userID || p.DeletedAt != nil {
		return repository.ErrProjectNotFound
	}
	now := time.Now()
	p.DeletedAt = &now
	if s.tasks != nil {
		for _, t := range s.tasks.tasks {
			if t.ProjectID == projectID && t.DeletedAt == nil {
				t.DeletedAt = &now
			}
		}
	}
	return nil
}

func (s *memProjectStore) liveTaskCount(projectID string) int {
	if s.tasks == nil {
		return 0
	}
	n := 0
	for _, t := range s.tasks.tasks {
		if t.ProjectID == projectID && t.DeletedAt == nil {
			n++
		}
	}
	return n
}

type memTaskStore struct {
	tasks    map[string]*model.Task // by ID
	projects *memProjectStore
}

func newMemTaskStore(projects *memProjectStore) *memTaskStore {
	s := &memTaskStore{tasks: make(map[string]*model.Task), projects: projects}
	projects.tasks = s
	return s
}

func (s *memTaskStore) ownedLive(taskID, userID string) *model.Task {
	t, ok := s.tasks[taskID]
	if !ok || t.DeletedAt != nil {
		return nil
	}
	p, ok := s.projects.projects[t.ProjectID]
	if !ok || p.DeletedAt != nil || p.UserID != userID {
		return nil
	}
	return t
}

func (s *memTaskStore) Create(_ context.Context, task *model.Task) error {
	task.ID = uuid.NewString()
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	cp := *task
	s.tasks[task.ID] = &cp
	return nil
}

func (s *memTaskStore) ListByProject(_ context.Context, projectID, userID string, status model.TaskStatus) ([]model.Task, error) {
	var out []model.Task
	for _, t := range s.tasks {
		if t.ProjectID != projectID || t.DeletedAt != nil {
			continue
		}
		if s.ownedLive(t.ID, userID) == nil {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		cp := *t
		out = append(out, cp)
	}
	return out, nil
}

func (s *memTaskStore) GetForOwner(_ context.Context, taskID, userID string) (*model.Task, error) {
	t := s.ownedLive(taskID, userID)
	if t == nil {
		return nil, repository.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *memTaskStore) Update(_ context.Context, task *model.Task, userID string) error {
	t := s.ownedLive(task.ID, userID)
	if t == nil {
		return repository.ErrTaskNotFound
	}
	t.Title = task.Title
	t.Description = task.Description
	t.Status = task.Status
	t.UpdatedAt = time.Now()
	return nil
}

func (s *memTaskStore) SoftDelete(_ context.Context, taskID, userID string) error {
	t := s.ownedLive(taskID, userID)
	if t == nil {
		return repository.ErrTaskNotFound
	}
	now := time.Now()
	t.DeletedAt = &now
	return nil
}

// captureSender records reset deliveries instead of sending anything.
type captureSender struct {
	emails []string
	tokens []string
}

func (s *captureSender) SendPasswordReset(_ context.Context, email, token string) error {
	s.emails = append(s.emails, email)
	s.tokens = append(s.tokens, token)
	return nil
}
