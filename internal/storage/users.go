package storage

import (
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/hidalgo-logistics/tracking/internal/model"
)

var ErrUserNotFound = errors.New("user not found")

// UserDirectory holds the preloaded user list. Roles are immutable here;
// user administration is a peripheral feature handled elsewhere.
type UserDirectory struct {
	mu        sync.RWMutex
	users     map[string]*model.User
	order     []string
	persister Persister
	logger    *zap.Logger
}

func NewUserDirectory(logger *zap.Logger) *UserDirectory {
	return &UserDirectory{
		users:  make(map[string]*model.User),
		logger: logger,
	}
}

func (d *UserDirectory) Restore(p Persister) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.persister = p

	data, found, err := p.Load(KeyUsers)
	if err != nil {
		return err
	}

	var users []model.User
	if found {
		if err := json.Unmarshal(data, &users); err != nil {
			return err
		}
	} else {
		users = SeedUsers()
		d.logger.Info("No persisted users found, seeding demo accounts",
			zap.Int("count", len(users)))
	}

	for i := range users {
		u := users[i]
		d.users[u.ID] = &u
		d.order = append(d.order, u.ID)
	}
	return nil
}

func (d *UserDirectory) Get(id string) (*model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (d *UserDirectory) List() []model.User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]model.User, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, *d.users[id])
	}
	return out
}

func (d *UserDirectory) ListDrivers() []model.User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []model.User
	for _, id := range d.order {
		if u := d.users[id]; u.Role == model.RoleDriver {
			out = append(out, *u)
		}
	}
	return out
}

// FindByEmail resolves the login handle. Inactive accounts are invisible.
func (d *UserDirectory) FindByEmail(email string) (*model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.findByEmailLocked(email)
}

func (d *UserDirectory) findByEmailLocked(email string) (*model.User, error) {
	for _, id := range d.order {
		if u := d.users[id]; u.Email == email && u.Active {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

// Authenticate performs the legacy plaintext credential equality check
// against the preloaded list. Kept for compatibility with current behavior;
// the durable user repository hashes credentials properly.
func (d *UserDirectory) Authenticate(email, password string) (*model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, err := d.findByEmailLocked(email)
	if err != nil {
		return nil, err
	}
	if u.Password != password {
		return nil, ErrUserNotFound
	}
	return u, nil
}
