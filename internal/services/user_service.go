package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SJJP-F-2025/requests-service/internal/models"
	"github.com/SJJP-F-2025/requests-service/internal/remote"
	"github.com/SJJP-F-2025/requests-service/internal/store"
	"github.com/SJJP-F-2025/requests-service/internal/validator"
)

// userService manages the accounts collection. All mutations are admin-only.
// Saves mirror the reduced coach shape into the remote coaches table the same
// way the sync engine does, so the mirror stays fresh between full syncs.
type userService struct {
	local  *store.JSONStore
	remote remote.Store
	logger *slog.Logger
}

func NewUserService(local *store.JSONStore, rs remote.Store, logger *slog.Logger) UserService {
	return &userService{local: local, remote: rs, logger: logger}
}

func (s *userService) List(ctx context.Context, id models.Identity) ([]models.User, error) {
	if !id.IsAdmin() {
		return nil, NewPermissionError(id.PSNumber, "users", "list")
	}
	return store.Load[models.User](s.local, store.Users), nil
}

func (s *userService) Save(ctx context.Context, id models.Identity, rows []validator.UserRow) (*UserSaveResult, error) {
	if !id.IsAdmin() {
		return nil, NewPermissionError(id.PSNumber, "users", "edit")
	}
	if len(rows) == 0 {
		return nil, ErrNoRowsSelected
	}

	seen := make(map[string]bool, len(rows))
	incoming := make([]models.User, 0, len(rows))
	for i, r := range rows {
		ps := strings.ToUpper(strings.TrimSpace(r.PSNumber))
		if !validator.ValidPSNumber(ps) {
			return nil, fmt.Errorf("row %d: %q is not a valid PS number", i+1, r.PSNumber)
		}
		if seen[ps] {
			return nil, fmt.Errorf("row %d: duplicate PS number %s in batch", i+1, ps)
		}
		seen[ps] = true

		credential := models.Credential(strings.TrimSpace(r.Credential))
		if !credential.Valid() {
			credential = models.CredentialCoach
		}
		password := r.Password
		if password == "" {
			// A blank password defaults to the PS number, matching the
			// bootstrap seed convention.
			password = ps
		}
		incoming = append(incoming, models.User{
			PSNumber:   ps,
			Password:   password,
			Credential: credential,
			Name:       strings.TrimSpace(r.Name),
		})
	}

	current := store.Load[models.User](s.local, store.Users)
	byPS := make(map[string]int, len(current))
	for i, u := range current {
		byPS[u.PSNumber] = i
	}
	for _, u := range incoming {
		if i, ok := byPS[u.PSNumber]; ok {
			current[i] = u
		} else {
			byPS[u.PSNumber] = len(current)
			current = append(current, u)
		}
	}
	if err := store.Save(s.local, store.Users, current); err != nil {
		return nil, fmt.Errorf("local save failed: %w", err)
	}

	result := &UserSaveResult{Saved: len(incoming)}
	if s.remote == nil {
		return result, nil
	}

	userRows := make([]remote.Row, 0, len(incoming))
	coachRows := make([]remote.Row, 0, len(incoming))
	for _, u := range incoming {
		userRows = append(userRows, u.Row())
		coachRows = append(coachRows, remote.Row{
			"ps_number":  u.PSNumber,
			"password":   u.Password,
			"credential": string(u.Credential),
		})
	}
	if err := s.remote.Upsert(ctx, remote.UsersTable, remote.UsersTable.Shape(userRows)); err != nil {
		s.logger.Warn("user sync failed, rows saved locally", "error", err)
		result.Warning = fmt.Sprintf("saved locally, remote sync failed: %v", err)
		return result, nil
	}
	result.Synced = len(incoming)

	if err := s.remote.Upsert(ctx, remote.CoachesTable, coachRows); err != nil {
		s.logger.Warn("coaches mirror failed", "error", err)
		result.Warning = fmt.Sprintf("coaches mirror failed: %v", err)
	} else {
		result.Mirrored = len(coachRows)
	}
	return result, nil
}

func (s *userService) Delete(ctx context.Context, id models.Identity, psNumbers []string) (*DeleteResult, error) {
	if !id.IsAdmin() {
		return nil, NewPermissionError(id.PSNumber, "users", "delete")
	}
	if len(psNumbers) == 0 {
		return nil, ErrNoRowsSelected
	}

	wanted := make(map[string]bool, len(psNumbers))
	for _, ps := range psNumbers {
		wanted[strings.ToUpper(strings.TrimSpace(ps))] = true
	}
	if wanted[id.PSNumber] {
		return nil, fmt.Errorf("cannot delete the account you are logged in with")
	}

	current := store.Load[models.User](s.local, store.Users)
	kept := make([]models.User, 0, len(current))
	deleted := make([]string, 0, len(psNumbers))
	for _, u := range current {
		if wanted[u.PSNumber] {
			deleted = append(deleted, u.PSNumber)
		} else {
			kept = append(kept, u)
		}
	}
	if len(deleted) == 0 {
		return nil, ErrNoRowsSelected
	}
	if err := store.Save(s.local, store.Users, kept); err != nil {
		return nil, fmt.Errorf("local save failed: %w", err)
	}

	res := &DeleteResult{Deleted: len(deleted)}
	if s.remote != nil {
		err := s.remote.Delete(ctx, remote.UsersTable.Name, remote.UsersTable.ConflictKey, deleted)
		if err == nil {
			err = s.remote.Delete(ctx, remote.CoachesTable.Name, remote.CoachesTable.ConflictKey, deleted)
		}
		if err != nil {
			s.logger.Warn("remote user delete failed", "error", err)
			res.Warning = fmt.Sprintf("deleted locally, remote delete failed: %v", err)
		}
	}
	return res, nil
}

func (s *userService) Lookup(ctx context.Context) map[string]string {
	users := store.Load[models.User](s.local, store.Users)
	names := make(map[string]string, len(users))
	for _, u := range users {
		if u.Name != "" {
			names[u.PSNumber] = u.Name
		}
	}
	return names
}
