package document

import (
	"context"
	"sync"
	"time"

	"github.com/dreamscape/identity-system/internal/core/domain"
)

type sessionRecord struct {
	Username   string    `json:"username"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type sessionsDocument struct {
	Version  int                      `json:"version"`
	Sessions map[string]sessionRecord `json:"sessions"`
}

// SessionRepository implements ports.SessionRepository over the sessions
// document, keyed by token.
type SessionRepository struct {
	mu   sync.RWMutex
	path string
}

func (r *SessionRepository) load() (*sessionsDocument, error) {
	doc := &sessionsDocument{Version: schemaVersion, Sessions: make(map[string]sessionRecord)}
	if err := readDocument(r.path, doc); err != nil {
		return nil, err
	}
	if err := checkVersion(sessionsFile, doc.Version); err != nil {
		return nil, err
	}
	if doc.Sessions == nil {
		doc.Sessions = make(map[string]sessionRecord)
	}
	return doc, nil
}

func (r *SessionRepository) save(doc *sessionsDocument) error {
	doc.Version = schemaVersion
	return writeDocument(r.path, doc)
}

func (r *SessionRepository) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	if _, exists := doc.Sessions[session.Token]; exists {
		return domain.ErrTokenCollision
	}

	doc.Sessions[session.Token] = sessionRecord{
		Username:   session.Username,
		CreatedAt:  session.CreatedAt,
		LastActive: session.LastActive,
		ExpiresAt:  session.ExpiresAt,
	}
	return r.save(doc)
}

func (r *SessionRepository) Find(_ context.Context, token string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	rec, ok := doc.Sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &domain.Session{
		Token:      token,
		Username:   rec.Username,
		CreatedAt:  rec.CreatedAt,
		LastActive: rec.LastActive,
		ExpiresAt:  rec.ExpiresAt,
	}, nil
}

func (r *SessionRepository) Update(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Sessions[session.Token]; !ok {
		return domain.ErrSessionNotFound
	}

	doc.Sessions[session.Token] = sessionRecord{
		Username:   session.Username,
		CreatedAt:  session.CreatedAt,
		LastActive: session.LastActive,
		ExpiresAt:  session.ExpiresAt,
	}
	return r.save(doc)
}

func (r *SessionRepository) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Sessions[token]; !ok {
		return nil
	}
	delete(doc.Sessions, token)
	return r.save(doc)
}
