package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/parkinglot/internal/domain"
)

// MemoryStore keeps every table in process memory behind one mutex. It backs
// the "memory" storage driver and the service tests.
type MemoryStore struct {
	mu sync.Mutex

	now func() time.Time

	spaces       map[int64]domain.ParkingSpace
	sessions     map[int64]domain.Session
	transactions map[int64]domain.Transaction
	vehicles     map[string]domain.Vehicle
	users        map[int64]domain.User

	nextSpaceID   int64
	nextSessionID int64
	nextTxnID     int64
	nextUserID    int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:          time.Now,
		spaces:       make(map[int64]domain.ParkingSpace),
		sessions:     make(map[int64]domain.Session),
		transactions: make(map[int64]domain.Transaction),
		vehicles:     make(map[string]domain.Vehicle),
		users:        make(map[int64]domain.User),
	}
}

// Store exposes the memory tables through the repository interfaces.
func (m *MemoryStore) Store() *Store {
	return &Store{
		Spaces:       memSpaces{m},
		Sessions:     memSessions{m},
		Transactions: memTransactions{m},
		Vehicles:     memVehicles{m},
		Users:        memUsers{m},
	}
}

type memSpaces struct{ m *MemoryStore }

func (r memSpaces) List(_ context.Context, filter domain.SpaceFilter) ([]domain.ParkingSpace, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	spaces := make([]domain.ParkingSpace, 0, len(r.m.spaces))
	for _, s := range r.m.spaces {
		if filter.Match(s) {
			spaces = append(spaces, s)
		}
	}
	sort.Slice(spaces, func(i, j int) bool { return spaces[i].Number < spaces[j].Number })
	return spaces, nil
}

func (r memSpaces) GetByID(_ context.Context, id int64) (*domain.ParkingSpace, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	s, ok := r.m.spaces[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r memSpaces) Create(_ context.Context, space *domain.ParkingSpace) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if r.m.numberTaken(space.Number, 0) {
		return domain.Conflictf("space %s already exists", space.Number)
	}
	r.m.nextSpaceID++
	space.ID = r.m.nextSpaceID
	space.CreatedAt = r.m.now()
	space.UpdatedAt = space.CreatedAt
	r.m.spaces[space.ID] = *space
	return nil
}

func (r memSpaces) Update(_ context.Context, space *domain.ParkingSpace) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	current, ok := r.m.spaces[space.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if r.m.numberTaken(space.Number, space.ID) {
		return domain.Conflictf("space %s already exists", space.Number)
	}
	if current.State == domain.SpaceOccupied && current.Type != space.Type {
		return domain.Conflictf("cannot change the type of occupied space %d", space.ID)
	}
	space.State = current.State
	space.CreatedAt = current.CreatedAt
	space.UpdatedAt = r.m.now()
	r.m.spaces[space.ID] = *space
	return nil
}

func (r memSpaces) SetState(_ context.Context, id int64, from, to domain.SpaceState) (*domain.ParkingSpace, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	s, ok := r.m.spaces[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.State != from {
		return nil, domain.Conflictf("space %s is %s, not %s", s.Number, s.State, from)
	}
	s.State = to
	s.UpdatedAt = r.m.now()
	r.m.spaces[id] = s
	return &s, nil
}

func (r memSpaces) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	s, ok := r.m.spaces[id]
	if !ok {
		return domain.ErrNotFound
	}
	if s.State == domain.SpaceOccupied {
		return domain.Conflictf("space %d is occupied", id)
	}
	delete(r.m.spaces, id)
	return nil
}

// numberTaken must be called with mu held.
func (m *MemoryStore) numberTaken(number string, except int64) bool {
	for id, s := range m.spaces {
		if id != except && s.Number == number {
			return true
		}
	}
	return false
}

type memSessions struct{ m *MemoryStore }

func (r memSessions) Enter(_ context.Context, plate string, vehicleType domain.VehicleType, entryTime time.Time) (*domain.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, s := range r.m.sessions {
		if s.Status == domain.SessionActive && s.Plate == plate {
			return nil, domain.Conflictf("vehicle %s is already parked", plate)
		}
	}

	var chosen *domain.ParkingSpace
	for _, s := range r.m.spaces {
		if s.State != domain.SpaceAvailable || s.Type != vehicleType {
			continue
		}
		if chosen == nil || s.Number < chosen.Number {
			s := s
			chosen = &s
		}
	}
	if chosen == nil {
		return nil, domain.ErrNoCapacity
	}

	chosen.State = domain.SpaceOccupied
	chosen.UpdatedAt = r.m.now()
	r.m.spaces[chosen.ID] = *chosen

	if _, ok := r.m.vehicles[plate]; !ok {
		r.m.vehicles[plate] = domain.Vehicle{
			Plate:     plate,
			Category:  domain.CategoryOther,
			CreatedAt: r.m.now(),
			UpdatedAt: r.m.now(),
		}
	}

	r.m.nextSessionID++
	session := domain.Session{
		ID:          r.m.nextSessionID,
		Plate:       plate,
		VehicleType: vehicleType,
		SpaceID:     chosen.ID,
		SpaceNumber: chosen.Number,
		EntryTime:   entryTime,
		Status:      domain.SessionActive,
	}
	r.m.sessions[session.ID] = session
	return &session, nil
}

func (r memSessions) Close(_ context.Context, txn *domain.Transaction) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	s, ok := r.m.sessions[txn.SessionID]
	if !ok || s.Status != domain.SessionActive {
		return domain.NotFoundf("no active session %d", txn.SessionID)
	}
	s.Status = domain.SessionClosed
	r.m.sessions[s.ID] = s

	r.m.nextTxnID++
	txn.ID = r.m.nextTxnID
	txn.SpaceID = s.SpaceID
	r.m.transactions[txn.ID] = *txn

	if space, ok := r.m.spaces[s.SpaceID]; ok {
		space.State = domain.SpaceAvailable
		space.UpdatedAt = r.m.now()
		r.m.spaces[space.ID] = space
	}
	return nil
}

func (r memSessions) GetByID(_ context.Context, id int64) (*domain.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	s, ok := r.m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r memSessions) ListActive(_ context.Context) ([]domain.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	sessions := make([]domain.Session, 0)
	for _, s := range r.m.sessions {
		if s.Status == domain.SessionActive {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].EntryTime.Before(sessions[j].EntryTime) })
	return sessions, nil
}

func (r memSessions) ListRecent(_ context.Context, limit int) ([]domain.Session, error) {
	if limit <= 0 || limit > 200 {
		limit = 10
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	sessions := make([]domain.Session, 0, len(r.m.sessions))
	for _, s := range r.m.sessions {
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].EntryTime.Equal(sessions[j].EntryTime) {
			return sessions[i].ID > sessions[j].ID
		}
		return sessions[i].EntryTime.After(sessions[j].EntryTime)
	})
	if len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

type memTransactions struct{ m *MemoryStore }

func (r memTransactions) List(_ context.Context, since time.Time) ([]domain.Transaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	txns := make([]domain.Transaction, 0)
	for _, t := range r.m.transactions {
		if !t.ExitTime.Before(since) {
			txns = append(txns, t)
		}
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].ExitTime.After(txns[j].ExitTime) })
	return txns, nil
}

func (r memTransactions) GetBySessionID(_ context.Context, sessionID int64) (*domain.Transaction, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, t := range r.m.transactions {
		if t.SessionID == sessionID {
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memVehicles struct{ m *MemoryStore }

func (r memVehicles) List(_ context.Context, filter domain.VehicleFilter) ([]domain.Vehicle, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	vehicles := make([]domain.Vehicle, 0)
	for _, v := range r.m.vehicles {
		if filter.Match(v) {
			vehicles = append(vehicles, v)
		}
	}
	sort.Slice(vehicles, func(i, j int) bool { return strings.Compare(vehicles[i].Plate, vehicles[j].Plate) < 0 })
	return vehicles, nil
}

func (r memVehicles) GetByPlate(_ context.Context, plate string) (*domain.Vehicle, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	v, ok := r.m.vehicles[plate]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (r memVehicles) Create(_ context.Context, v *domain.Vehicle) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.vehicles[v.Plate]; ok {
		return domain.Conflictf("vehicle %s already exists", v.Plate)
	}
	v.CreatedAt = r.m.now()
	v.UpdatedAt = v.CreatedAt
	r.m.vehicles[v.Plate] = *v
	return nil
}

func (r memVehicles) Update(_ context.Context, v *domain.Vehicle) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	current, ok := r.m.vehicles[v.Plate]
	if !ok {
		return domain.ErrNotFound
	}
	v.CreatedAt = current.CreatedAt
	v.UpdatedAt = r.m.now()
	r.m.vehicles[v.Plate] = *v
	return nil
}

func (r memVehicles) Delete(_ context.Context, plate string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.vehicles[plate]; !ok {
		return domain.ErrNotFound
	}
	delete(r.m.vehicles, plate)
	return nil
}

func (r memVehicles) Count(_ context.Context) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return len(r.m.vehicles), nil
}

type memUsers struct{ m *MemoryStore }

func (r memUsers) List(_ context.Context) ([]domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	users := make([]domain.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r memUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memUsers) Create(_ context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Username == user.Username {
			return domain.Conflictf("user %s already exists", user.Username)
		}
	}
	r.m.nextUserID++
	user.ID = r.m.nextUserID
	r.m.users[user.ID] = *user
	return nil
}

func (r memUsers) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.m.users, id)
	return nil
}

func (r memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	return r.update(id, func(u *domain.User) { u.PasswordHash = hash })
}

func (r memUsers) UpdateRole(_ context.Context, id int64, role domain.Role) error {
	return r.update(id, func(u *domain.User) { u.Role = role })
}

func (r memUsers) update(id int64, fn func(*domain.User)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(&u)
	r.m.users[id] = u
	return nil
}

func (r memUsers) CountByRole(_ context.Context, role domain.Role) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	n := 0
	for _, u := range r.m.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

var (
	_ SpaceRepository       = memSpaces{}
	_ SessionRepository     = memSessions{}
	_ TransactionRepository = memTransactions{}
	_ VehicleRepository     = memVehicles{}
	_ UserRepository        = memUsers{}
)
