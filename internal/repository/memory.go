package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/identity-service/internal/domain"
)

// MemoryStore keeps accounts, roles and confirmations in process memory.
// It backs local runs without POSTGRES_DSN and the workflow tests.
type MemoryStore struct {
	mu            sync.RWMutex
	accounts      map[string]*domain.Account // by id
	usernames     map[string]string          // normalized username -> id
	roles         map[string]*domain.Role    // by normalized name
	memberships   map[string]map[string]struct{}
	confirmations map[string]*EmailConfirmation // by token
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:      make(map[string]*domain.Account),
		usernames:     make(map[string]string),
		roles:         make(map[string]*domain.Role),
		memberships:   make(map[string]map[string]struct{}),
		confirmations: make(map[string]*EmailConfirmation),
	}
}

// Accounts returns the account view of the store.
func (s *MemoryStore) Accounts() AccountRepository { return memoryAccounts{s} }

// Roles returns the role view of the store.
func (s *MemoryStore) Roles() RoleRepository { return memoryRoles{s} }

// Confirmations returns the confirmation view of the store.
func (s *MemoryStore) Confirmations() ConfirmationRepository { return memoryConfirmations{s} }

type memoryAccounts struct{ s *MemoryStore }

func (m memoryAccounts) Create(_ context.Context, account *domain.Account) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	key := domain.NormalizeName(account.Username)
	if _, exists := m.s.usernames[key]; exists {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	account.ID = uuid.NewString()
	account.NormalizedUsername = key
	account.NormalizedEmail = domain.NormalizeName(account.Email)
	account.CreatedAt = now
	account.UpdatedAt = now

	stored := *account
	m.s.accounts[account.ID] = &stored
	m.s.usernames[key] = account.ID
	return nil
}

func (m memoryAccounts) Update(_ context.Context, account *domain.Account) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	existing, ok := m.s.accounts[account.ID]
	if !ok {
		return ErrNotFound
	}
	account.NormalizedEmail = domain.NormalizeName(account.Email)
	account.UpdatedAt = time.Now().UTC()
	// Username is immutable once created.
	account.Username = existing.Username
	account.NormalizedUsername = existing.NormalizedUsername
	account.CreatedAt = existing.CreatedAt

	stored := *account
	m.s.accounts[account.ID] = &stored
	return nil
}

func (m memoryAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	account, ok := m.s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *account
	return &out, nil
}

func (m memoryAccounts) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	m.s.mu.RLock()
	id, ok := m.s.usernames[domain.NormalizeName(username)]
	m.s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.GetByID(ctx, id)
}

type memoryRoles struct{ s *MemoryStore }

func (m memoryRoles) Exists(_ context.Context, name string) (bool, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	_, ok := m.s.roles[domain.NormalizeName(name)]
	return ok, nil
}

func (m memoryRoles) Create(_ context.Context, name string) (*domain.Role, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	key := domain.NormalizeName(name)
	if _, ok := m.s.roles[key]; ok {
		return nil, ErrDuplicate
	}
	role := &domain.Role{
		ID:             uuid.NewString(),
		Name:           name,
		NormalizedName: key,
		CreatedAt:      time.Now().UTC(),
	}
	m.s.roles[key] = role
	out := *role
	return &out, nil
}

func (m memoryRoles) AddToAccount(_ context.Context, accountID, roleName string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.accounts[accountID]; !ok {
		return ErrNotFound
	}
	key := domain.NormalizeName(roleName)
	if _, ok := m.s.roles[key]; !ok {
		return ErrNotFound
	}
	held, ok := m.s.memberships[accountID]
	if !ok {
		held = make(map[string]struct{})
		m.s.memberships[accountID] = held
	}
	held[key] = struct{}{}
	return nil
}

func (m memoryRoles) ListForAccount(_ context.Context, accountID string) ([]string, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	names := make([]string, 0, len(m.s.memberships[accountID]))
	for key := range m.s.memberships[accountID] {
		names = append(names, m.s.roles[key].Name)
	}
	sort.Strings(names)
	return names, nil
}

type memoryConfirmations struct{ s *MemoryStore }

func (m memoryConfirmations) Create(_ context.Context, confirmation *EmailConfirmation) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.accounts[confirmation.AccountID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.s.confirmations[confirmation.Token]; ok {
		return ErrDuplicate
	}
	confirmation.ID = uuid.NewString()
	confirmation.CreatedAt = time.Now().UTC()
	stored := *confirmation
	m.s.confirmations[confirmation.Token] = &stored
	return nil
}

func (m memoryConfirmations) GetByToken(_ context.Context, token string) (*EmailConfirmation, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	confirmation, ok := m.s.confirmations[token]
	if !ok {
		return nil, ErrNotFound
	}
	out := *confirmation
	return &out, nil
}

func (m memoryConfirmations) MarkUsed(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, confirmation := range m.s.confirmations {
		if confirmation.ID != id {
			continue
		}
		if confirmation.UsedAt != nil {
			return ErrNotFound
		}
		now := time.Now().UTC()
		confirmation.UsedAt = &now
		return nil
	}
	return ErrNotFound
}
