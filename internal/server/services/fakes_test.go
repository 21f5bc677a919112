package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/audit"
	"github.com/dmitrijs2005/credvault/internal/server/auth"
	"github.com/dmitrijs2005/credvault/internal/server/models"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/credentials"
	"github.com/stretchr/testify/require"
)

// --- in-memory repositories ---

type memAccounts struct {
	mu      sync.Mutex
	rows    map[string]*models.Account
	findErr error
	addErr  error
}

func (m *memAccounts) Create(_ context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	if _, ok := m.rows[a.Username]; ok {
		return common.ErrDuplicateUser
	}
	cp := *a
	m.rows[a.Username] = &cp
	return nil
}

func (m *memAccounts) FindByUsername(_ context.Context, username string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	a, ok := m.rows[username]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

type credKey struct{ user, service string }

type memCredentials struct {
	mu   sync.Mutex
	rows map[credKey]*models.Credential
	err  error
}

func (m *memCredentials) Upsert(_ context.Context, username, service, hash string) (models.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	k := credKey{username, service}
	if c, ok := m.rows[k]; ok {
		now := time.Now()
		c.SecretHash, c.UpdatedAt = hash, &now
		return models.UpsertUpdated, nil
	}
	m.rows[k] = &models.Credential{Username: username, Service: service, SecretHash: hash, CreatedAt: time.Now()}
	return models.UpsertCreated, nil
}

func (m *memCredentials) Update(_ context.Context, username, service, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	c, ok := m.rows[credKey{username, service}]
	if !ok {
		return false, nil
	}
	c.SecretHash = hash
	return true, nil
}

func (m *memCredentials) Get(_ context.Context, username, service string) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.rows[credKey{username, service}]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memCredentials) Delete(_ context.Context, username, service string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	k := credKey{username, service}
	if _, ok := m.rows[k]; !ok {
		return false, nil
	}
	delete(m.rows, k)
	return true, nil
}

func (m *memCredentials) ListServices(_ context.Context, username string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []string{}
	for k := range m.rows {
		if k.user == username {
			out = append(out, k.service)
		}
	}
	sort.Strings(out)
	return out, nil
}

type memAudit struct {
	mu        sync.Mutex
	entries   []*models.AuditEntry
	insertErr error
	listErr   error
}

func (m *memAudit) Insert(_ context.Context, e *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memAudit) ListByUser(_ context.Context, username string, limit int) ([]*models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []*models.AuditEntry{}
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.entries[i].Username == username {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func (m *memAudit) all() []*models.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.AuditEntry(nil), m.entries...)
}

func (m *memAudit) last() *models.AuditEntry {
	all := m.all()
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

type fakeRepoManager struct {
	accounts    *memAccounts
	credentials *memCredentials
	audit       *memAudit
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (f *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository       { return f.accounts }
func (f *fakeRepoManager) Credentials(dbx.DBTX) credentials.Repository { return f.credentials }
func (f *fakeRepoManager) AuditLog(dbx.DBTX) auditlog.Repository       { return f.audit }

// --- engine fixture ---

type fixture struct {
	engine *AuthEngine
	repos  *fakeRepoManager
	tokens *auth.TokenService
	hasher *cryptox.Argon2Hasher
	meta   RequestMeta
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	repos := &fakeRepoManager{
		accounts:    &memAccounts{rows: map[string]*models.Account{}},
		credentials: &memCredentials{rows: map[credKey]*models.Credential{}},
		audit:       &memAudit{},
	}
	hasher, err := cryptox.NewArgon2Hasher(cryptox.Params{MemoryKiB: 8 * 1024, Time: 1, Threads: 1, KeyLength: 16})
	require.NoError(t, err)
	tokens, err := auth.NewTokenService([]byte("test-secret"), time.Hour, 24*time.Hour)
	require.NoError(t, err)

	logger := logging.NewNop()
	engine, err := NewAuthEngine(nil, repos, hasher, tokens, audit.NewLog(repos.audit, logger), logger, opts...)
	require.NoError(t, err)

	return &fixture{
		engine: engine,
		repos:  repos,
		tokens: tokens,
		hasher: hasher,
		meta:   RequestMeta{SourceAddress: "10.0.0.1", ClientAgent: "test-agent"},
	}
}

// auditCount runs fn and returns how many audit entries it produced.
func (f *fixture) auditCount(fn func()) int {
	before := len(f.repos.audit.all())
	fn()
	return len(f.repos.audit.all()) - before
}

type failingHasher struct {
	hashErr   error
	verifyErr error
	inner     Hasher
	failHash  bool
}

func (h *failingHasher) Hash(p string) (string, error) {
	if h.failHash {
		return "", h.hashErr
	}
	return h.inner.Hash(p)
}

func (h *failingHasher) Verify(hashed, p string) (bool, error) {
	if h.verifyErr != nil {
		return false, h.verifyErr
	}
	return h.inner.Verify(hashed, p)
}
