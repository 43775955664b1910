package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SJJP-F-2025/requests-service/internal/cache"
	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/store"
)

const sessionKeyPrefix = "session:"

// authService authenticates against the users collection and keeps sessions
// in Redis when available, falling back to an in-memory table otherwise.
// Credentials are compared in plaintext; the storage format is inherited and
// part of the observable contract.
type authService struct {
	local  *store.JSONStore
	cache  *cache.CacheHelper
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]memorySession
}

type memorySession struct {
	session   Session
	expiresAt time.Time
}

func NewAuthService(local *store.JSONStore, cacheHelper *cache.CacheHelper, ttl time.Duration, logger *slog.Logger) AuthService {
	return &authService{
		local:    local,
		cache:    cacheHelper,
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]memorySession),
	}
}

func (s *authService) Login(ctx context.Context, psNumber, password string) (*Session, error) {
	ps := strings.ToUpper(strings.TrimSpace(psNumber))
	if ps == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var account *models.User
	for _, u := range store.Load[models.User](s.local, store.Users) {
		if strings.ToUpper(strings.TrimSpace(u.PSNumber)) == ps {
			account = &u
			break
		}
	}
	if account == nil || account.Password != password {
		s.logger.Warn("login rejected", "ps_number", ps)
		return nil, ErrInvalidCredentials
	}

	credential := account.Credential
	if !credential.Valid() {
		credential = models.CredentialCoach
	}

	session := Session{
		Token: uuid.NewString(),
		Identity: models.Identity{
			PSNumber:   account.PSNumber,
			Credential: credential,
			Name:       account.Name,
		},
	}
	if err := s.put(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("login succeeded", "ps_number", session.Identity.PSNumber, "credential", credential)
	return &session, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if s.cache.Available() {
		return s.cache.Delete(ctx, sessionKeyPrefix+token)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *authService) Session(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	if s.cache.Available() {
		var session Session
		err := s.cache.Get(ctx, sessionKeyPrefix+token, &session)
		switch {
		case errors.Is(err, cache.ErrCacheNotFound):
			return nil, ErrSessionNotFound
		case err != nil:
			return nil, err
		}
		return &session, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[token]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.sessions, token)
		return nil, ErrSessionNotFound
	}
	session := entry.session
	return &session, nil
}

// MarkUnsynced records request IDs that were saved locally but did not reach
// the remote store, so the UI can show them as pending sync until a later
// persist or data sync clears them.
func (s *authService) MarkUnsynced(ctx context.Context, token string, ids ...string) error {
	return s.updateUnsynced(ctx, token, func(set map[string]bool) {
		for _, id := range ids {
			if id != "" {
				set[id] = true
			}
		}
	})
}

func (s *authService) ClearUnsynced(ctx context.Context, token string, ids ...string) error {
	return s.updateUnsynced(ctx, token, func(set map[string]bool) {
		if len(ids) == 0 {
			for id := range set {
				delete(set, id)
			}
			return
		}
		for _, id := range ids {
			delete(set, id)
		}
	})
}

func (s *authService) updateUnsynced(ctx context.Context, token string, apply func(map[string]bool)) error {
	session, err := s.Session(ctx, token)
	if err != nil {
		return err
	}

	set := make(map[string]bool, len(session.UnsyncedRequestIDs))
	for _, id := range session.UnsyncedRequestIDs {
		set[id] = true
	}
	apply(set)

	session.UnsyncedRequestIDs = session.UnsyncedRequestIDs[:0]
	for id := range set {
		session.UnsyncedRequestIDs = append(session.UnsyncedRequestIDs, id)
	}
	return s.put(ctx, *session)
}

func (s *authService) put(ctx context.Context, session Session) error {
	if s.cache.Available() {
		return s.cache.Set(ctx, sessionKeyPrefix+session.Token, session, s.ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = memorySession{session: session, expiresAt: time.Now().Add(s.ttl)}
	return nil
}
