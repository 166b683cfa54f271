package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"classroom-timetable/internal/model"
	"classroom-timetable/internal/repository"
)

// ── Mock Repositories ──
// 存取都做值拷贝，未调用 Update 的修改不会落库

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User // key: id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user.Normalize()
	for _, u := range m.users {
		if u.UserID == user.UserID {
			return &repository.DuplicateError{Constraint: repository.ConstraintUserID}
		}
		if u.Email == user.Email {
			return &repository.DuplicateError{Constraint: repository.ConstraintUserEmail}
		}
	}
	if user.ID == "" {
		user.ID = newID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) find(match func(u *model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.DeletedAt == nil && match(&u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.ID == id })
}

func (m *mockUserRepo) GetByUserID(_ context.Context, userID string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.UserID == userID })
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Email == email })
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.Normalize()
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) HardDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) filter(f repository.UserListFilter) []model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for _, u := range m.users {
		if u.DeletedAt != nil {
			continue
		}
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		if f.IsApproved != nil && u.IsApproved != *f.IsApproved {
			continue
		}
		if f.IsActive != nil && u.IsActive != *f.IsActive {
			continue
		}
		if f.ExcludeSuperAdmin && u.Role.IsSuperAdmin() {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockUserRepo) List(_ context.Context, f repository.UserListFilter, offset, limit int) ([]model.User, int64, error) {
	all := m.filter(f)
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockUserRepo) Count(_ context.Context, f repository.UserListFilter) (int64, error) {
	return int64(len(m.filter(f))), nil
}

// raw 直接读取（含软删除），用于断言
func (m *mockUserRepo) raw(id string) (model.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	return u, ok
}

type mockTimetableRepo struct {
	mu         sync.Mutex
	timetables map[string]model.Timetable
	users      *mockUserRepo
	failCreate error
	failDelete error
}

func newMockTimetableRepo(users *mockUserRepo) *mockTimetableRepo {
	return &mockTimetableRepo{timetables: make(map[string]model.Timetable), users: users}
}

func (m *mockTimetableRepo) Create(_ context.Context, t *model.Timetable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	for _, existing := range m.timetables {
		if existing.RoomName == t.RoomName && existing.ClassName == t.ClassName {
			return &repository.DuplicateError{Constraint: repository.ConstraintTimetableSlot}
		}
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	cp := *t
	cp.Creator = nil
	m.timetables[t.ID] = cp
	return nil
}

func (m *mockTimetableRepo) withCreator(t model.Timetable) *model.Timetable {
	if u, ok := m.users.raw(t.CreatedBy); ok {
		t.Creator = &u
	}
	return &t
}

func (m *mockTimetableRepo) GetByID(_ context.Context, id string) (*model.Timetable, error) {
	m.mu.Lock()
	t, ok := m.timetables[id]
	m.mu.Unlock()
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m.withCreator(t), nil
}

func (m *mockTimetableRepo) GetByRoomAndClass(_ context.Context, roomName, className string) (*model.Timetable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.timetables {
		if t.RoomName == roomName && t.ClassName == className {
			cp := t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimetableRepo) List(_ context.Context, offset, limit int) ([]model.Timetable, int64, error) {
	m.mu.Lock()
	all := make([]model.Timetable, 0, len(m.timetables))
	for _, t := range m.timetables {
		all = append(all, t)
	}
	m.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	page := paginate(all, offset, limit)
	for i := range page {
		page[i] = *m.withCreator(page[i])
	}
	return page, int64(len(all)), nil
}

func (m *mockTimetableRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.timetables)), nil
}

func (m *mockTimetableRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete != nil {
		return m.failDelete
	}
	if _, ok := m.timetables[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.timetables, id)
	return nil
}

type mockCellRepo struct {
	mu    sync.Mutex
	cells map[string]model.Cell
}

func newMockCellRepo() *mockCellRepo {
	return &mockCellRepo{cells: make(map[string]model.Cell)}
}

func (m *mockCellRepo) BatchCreate(_ context.Context, cells []model.Cell) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cells {
		for _, existing := range m.cells {
			if existing.TimetableID == c.TimetableID && existing.Day == c.Day && existing.Period == c.Period {
				return &repository.DuplicateError{Constraint: repository.ConstraintCellSlot}
			}
		}
		m.cells[c.ID] = c
	}
	return nil
}

func (m *mockCellRepo) GetByID(_ context.Context, id string) (*model.Cell, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cells[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (m *mockCellRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Cell, error) {
	return m.GetByID(ctx, id)
}

func (m *mockCellRepo) ListByTimetable(_ context.Context, timetableID string) ([]model.Cell, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Cell
	for _, c := range m.cells {
		if c.TimetableID == timetableID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCellRepo) Update(_ context.Context, cell *model.Cell) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cells[cell.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.cells[cell.ID] = *cell
	return nil
}

func (m *mockCellRepo) DeleteByTimetable(_ context.Context, timetableID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.cells {
		if c.TimetableID == timetableID {
			delete(m.cells, id)
		}
	}
	return nil
}

// find 按 (day, period) 查找单元格
func (m *mockCellRepo) find(timetableID, day string, period int) (model.Cell, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cells {
		if c.TimetableID == timetableID && c.Day == day && c.Period == period {
			return c, true
		}
	}
	return model.Cell{}, false
}

// ── Mock Blacklist ──

type mockBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.revoked[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── 组装 ──

type testRepos struct {
	repo       *repository.Repository
	users      *mockUserRepo
	timetables *mockTimetableRepo
	cells      *mockCellRepo
}

func newTestRepos() *testRepos {
	users := newMockUserRepo()
	timetables := newMockTimetableRepo(users)
	cells := newMockCellRepo()
	return &testRepos{
		repo: &repository.Repository{
			User:      users,
			Timetable: timetables,
			Cell:      cells,
		},
		users:      users,
		timetables: timetables,
		cells:      cells,
	}
}

var errDBDown = errors.New("connection refused")

func newID() string { return uuid.New().String() }

func paginate[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return append([]T(nil), all[offset:end]...)
}
