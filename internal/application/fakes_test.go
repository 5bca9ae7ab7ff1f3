package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-gis-markers/internal/domain/apperror"
	"github.com/oksasatya/go-gis-markers/internal/domain/entity"
	"github.com/oksasatya/go-gis-markers/internal/domain/repository"
)

// fakeUserRepo mimics the store: case-insensitive unique username and email.
type fakeUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]entity.User
	calls   int
	failErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]entity.User{}}
}

func (r *fakeUserRepo) conflict(id int64, username string, email *string) error {
	for _, u := range r.users {
		if u.ID == id {
			continue
		}
		if strings.EqualFold(u.Username, username) {
			return apperror.Conflict("username", nil)
		}
		if email != nil && u.Email != nil && strings.EqualFold(*u.Email, *email) {
			return apperror.Conflict("email", nil)
		}
	}
	return nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failErr != nil {
		return r.failErr
	}
	if err := r.conflict(0, u.Username, u.Email); err != nil {
		return err
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Password = ""
	return &u, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failErr != nil {
		return nil, r.failErr
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, id int64, p entity.UserPatch) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if p.Empty() {
		return nil, errors.New("empty patch reached the store")
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	username := u.Username
	if p.Username != nil {
		username = *p.Username
	}
	email := u.Email
	if p.Email != nil {
		email = p.Email
	}
	if err := r.conflict(id, username, email); err != nil {
		return nil, err
	}
	u.Username = username
	u.Email = email
	if p.PasswordHash != nil {
		u.Password = *p.PasswordHash
	}
	u.UpdatedAt = time.Now()
	r.users[id] = u
	out := u
	out.Password = ""
	return &out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) stored(id int64) entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

type fakeMarkerRepo struct {
	mu      sync.Mutex
	markers []entity.Marker
	calls   int
	failErr error
}

func (r *fakeMarkerRepo) List(context.Context) ([]entity.Marker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failErr != nil {
		return nil, r.failErr
	}
	return append([]entity.Marker{}, r.markers...), nil
}

func (r *fakeMarkerRepo) Create(_ context.Context, m *entity.Marker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failErr != nil {
		return r.failErr
	}
	m.ID = int64(len(r.markers) + 1)
	m.CreatedAt = time.Now()
	r.markers = append(r.markers, *m)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeHealth struct{ err error }

func (f fakeHealth) Ping(context.Context) error { return f.err }
