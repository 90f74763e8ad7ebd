package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alekreuaya/lucky-naga/model"
)

// Memory is an in-process Store used by tests. It honors the same
// conditional-update semantics as the Postgres implementation.
type Memory struct {
	mu     sync.Mutex
	codes  map[string]*model.RedeemCode
	prizes []model.Prize
	draws  []model.DrawRecord
	admins map[string]*model.AdminAccount
}

func NewMemory() *Memory {
	return &Memory{
		codes:  make(map[string]*model.RedeemCode),
		admins: make(map[string]*model.AdminAccount),
	}
}

func (m *Memory) FindCode(ctx context.Context, username, code string) (*model.RedeemCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.codes[username]
	if !ok || rec.Code != code {
		return nil, ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (m *Memory) InsertCode(ctx context.Context, rec *model.RedeemCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[rec.Username]; ok {
		return ErrUsernameTaken
	}
	copied := *rec
	m.codes[rec.Username] = &copied
	return nil
}

func (m *Memory) ConsumeCode(ctx context.Context, username, code string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.codes[username]
	if !ok || rec.Code != code || rec.Consumed {
		return false, nil
	}
	rec.Consumed = true
	consumedAt := at
	rec.ConsumedAt = &consumedAt
	return true, nil
}

func (m *Memory) ListCodes(ctx context.Context, filter CodeFilter) ([]model.RedeemCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	codes := []model.RedeemCode{}
	for _, rec := range m.codes {
		if filter == CodeFilterUsed && !rec.Consumed {
			continue
		}
		if filter == CodeFilterUnused && rec.Consumed {
			continue
		}
		codes = append(codes, *rec)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i].IssuedAt.After(codes[j].IssuedAt) })
	return codes, nil
}

func (m *Memory) CountCodes(ctx context.Context) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var used int64
	for _, rec := range m.codes {
		if rec.Consumed {
			used++
		}
	}
	return int64(len(m.codes)), used, nil
}

func (m *Memory) GetPrizes(ctx context.Context) ([]model.Prize, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Prize{}, m.prizes...), nil
}

func (m *Memory) ReplacePrizes(ctx context.Context, prizes []model.Prize) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prizes = append([]model.Prize{}, prizes...)
	return nil
}

func (m *Memory) AppendDraw(ctx context.Context, rec *model.DrawRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draws = append(m.draws, *rec)
	return nil
}

func (m *Memory) ListDraws(ctx context.Context, limit int) ([]model.DrawRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	draws := []model.DrawRecord{}
	for i := len(m.draws) - 1; i >= 0 && len(draws) < limit; i-- {
		draws = append(draws, m.draws[i])
	}
	return draws, nil
}

func (m *Memory) CountDraws(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.draws)), nil
}

func (m *Memory) DrawTotals(ctx context.Context) ([]LabelCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int64{}
	for _, rec := range m.draws {
		counts[rec.PrizeLabel]++
	}
	totals := []LabelCount{}
	for label, count := range counts {
		totals = append(totals, LabelCount{Label: label, Count: count})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Count > totals[j].Count })
	return totals, nil
}

func (m *Memory) FindAdmin(ctx context.Context, username string) (*model.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.admins[username]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (m *Memory) InsertAdmin(ctx context.Context, account *model.AdminAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.admins[account.Username]; ok {
		return ErrUsernameTaken
	}
	copied := *account
	m.admins[account.Username] = &copied
	return nil
}

func (m *Memory) ListAdmins(ctx context.Context) ([]model.AdminAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	accounts := []model.AdminAccount{}
	for _, account := range m.admins {
		accounts = append(accounts, *account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].CreatedAt.Before(accounts[j].CreatedAt) })
	return accounts, nil
}

func (m *Memory) DeleteAdmin(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.admins[username]
	if !ok {
		return ErrNotFound
	}
	if account.Role == model.RoleMaster {
		return ErrCannotDeleteMaster
	}
	delete(m.admins, username)
	return nil
}

func (m *Memory) UpdateAdminPassword(ctx context.Context, username, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.admins[username]
	if !ok {
		return ErrNotFound
	}
	account.PasswordHash = passwordHash
	return nil
}
