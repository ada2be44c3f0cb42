package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-progress-api/internal/database"
	"github.com/yukikurage/project-progress-api/internal/models"
	"github.com/yukikurage/project-progress-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

type testRepos struct {
	users      repository.UserRepository
	customers  repository.CustomerRepository
	projects   repository.ProjectRepository
	milestones repository.MilestoneRepository
	tasks      repository.TaskRepository
	updates    repository.TaskUpdateRepository
}

func newTestRepos(db *gorm.DB) testRepos {
	return testRepos{
		users:      repository.NewUserRepository(db),
		customers:  repository.NewCustomerRepository(db),
		projects:   repository.NewProjectRepository(db),
		milestones: repository.NewMilestoneRepository(db),
		tasks:      repository.NewTaskRepository(db),
		updates:    repository.NewTaskUpdateRepository(db),
	}
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, DisplayName: username, PasswordHash: "hashed"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createProject(t *testing.T, repos testRepos, name string, ownerID uint64) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, InviteCode: name + "-CODE"}
	owner := &models.ProjectMember{UserID: ownerID, Role: models.RoleOwner, JoinedAt: time.Now()}
	require.NoError(t, repos.projects.CreateWithOwner(project, owner))
	return project
}

func timePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

type publishedEvent struct {
	routingKey string
	payload    any
}

// recordingPublisher captures events instead of sending them to a broker
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{routingKey: routingKey, payload: payload})
	return p.err
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.events))
	for i, e := range p.events {
		keys[i] = e.routingKey
	}
	return keys
}

// memoryDedupStore keeps dedup keys in process, ignoring expiry
type memoryDedupStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemoryDeduper() (*UpdateDeduper, *memoryDedupStore) {
	store := &memoryDedupStore{keys: map[string]bool{}}
	return &UpdateDeduper{store: store, ttl: time.Minute, logger: zap.NewNop()}, store
}

func (m *memoryDedupStore) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	m.keys[key] = true
	return redis.NewBoolResult(true, nil)
}

func (m *memoryDedupStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, key := range keys {
		if m.keys[key] {
			delete(m.keys, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *memoryDedupStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

// flakyUpdateRepo fails the first failures calls to Create
type flakyUpdateRepo struct {
	repository.TaskUpdateRepository
	failures int
}

func (r *flakyUpdateRepo) Create(update *models.TaskUpdate) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("connection reset")
	}
	return r.TaskUpdateRepository.Create(update)
}
