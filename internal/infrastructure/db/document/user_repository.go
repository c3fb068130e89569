package document

import (
	"context"
	"sync"
	"time"

	"github.com/dreamscape/identity-system/internal/core/domain"
)

// userRecord is the on-disk shape of a user. It is separate from the domain
// type because the password hash is serialized here and nowhere else.
type userRecord struct {
	Username     string            `json:"username"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"password_hash"`
	CreatedAt    time.Time         `json:"created_at"`
	LastLogin    *time.Time        `json:"last_login"`
	Preferences  map[string]string `json:"preferences"`
	Statistics   domain.Statistics `json:"statistics"`
}

type usersDocument struct {
	Version int                   `json:"version"`
	Users   map[string]userRecord `json:"users"`
}

// UserRepository implements ports.UserRepository over the users document.
// The mutex serializes every read-modify-write cycle on the collection;
// read-only operations share the read lock.
type UserRepository struct {
	mu   sync.RWMutex
	path string
}

func (r *UserRepository) load() (*usersDocument, error) {
	doc := &usersDocument{Version: schemaVersion, Users: make(map[string]userRecord)}
	if err := readDocument(r.path, doc); err != nil {
		return nil, err
	}
	if err := checkVersion(usersFile, doc.Version); err != nil {
		return nil, err
	}
	if doc.Users == nil {
		doc.Users = make(map[string]userRecord)
	}
	return doc, nil
}

func (r *UserRepository) save(doc *usersDocument) error {
	doc.Version = schemaVersion
	return writeDocument(r.path, doc)
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	if _, exists := doc.Users[user.Username]; exists {
		return domain.ErrUserExists
	}
	for _, rec := range doc.Users {
		if rec.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}

	doc.Users[user.Username] = toRecord(user)
	return r.save(doc)
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	rec, ok := doc.Users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return fromRecord(rec), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range doc.Users {
		if rec.Email == email {
			return fromRecord(rec), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, username string, at time.Time) error {
	return r.mutate(username, func(rec *userRecord) {
		rec.LastLogin = &at
	})
}

func (r *UserRepository) UpdatePreferences(_ context.Context, username string, prefs map[string]string) error {
	return r.mutate(username, func(rec *userRecord) {
		if rec.Preferences == nil {
			rec.Preferences = make(map[string]string, len(prefs))
		}
		for k, v := range prefs {
			rec.Preferences[k] = v
		}
	})
}

func (r *UserRepository) IncrementStatistic(_ context.Context, username, kind string, delta int64) error {
	return r.mutate(username, func(rec *userRecord) {
		switch kind {
		case domain.StatStoriesCreated:
			rec.Statistics.StoriesCreated += delta
		case domain.StatStoriesCompleted:
			rec.Statistics.StoriesCompleted += delta
		case domain.StatDiscussionRounds:
			rec.Statistics.DiscussionRounds += delta
		case domain.StatTotalTimeSpent:
			rec.Statistics.TotalTimeSpent += delta
		}
	})
}

// mutate applies fn to one record under the write lock and persists the
// whole document.
func (r *UserRepository) mutate(username string, fn func(*userRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	rec, ok := doc.Users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(&rec)
	doc.Users[username] = rec
	return r.save(doc)
}

func toRecord(u *domain.User) userRecord {
	return userRecord{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		LastLogin:    u.LastLogin,
		Preferences:  u.Preferences,
		Statistics:   u.Statistics,
	}
}

func fromRecord(rec userRecord) *domain.User {
	return &domain.User{
		Username:     rec.Username,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
		LastLogin:    rec.LastLogin,
		Preferences:  rec.Preferences,
		Statistics:   rec.Statistics,
	}
}
