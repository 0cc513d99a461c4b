package auth

import (
	"fmt"
	"sync"

	"github.com/petcare-labs/petcare/internal/errors"
)

// Action is what a request does to a record kind.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// Built-in roles.
const (
	// RoleCaretaker may read and change every record.
	RoleCaretaker = "caretaker"

	// RoleViewer may only read, e.g. a pet sitter checking the schedule.
	RoleViewer = "viewer"
)

// AnyKind grants an action on every record kind.
const AnyKind = "*"

// AuthorizationService manages role → record kind → action grants.
// Absence of a grant is denial.
type AuthorizationService struct {
	mu     sync.RWMutex
	grants map[string]map[string]map[Action]bool // role → kind → action
}

// NewAuthorizationService creates a deny-by-default authorization service.
func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{
		grants: make(map[string]map[string]map[Action]bool),
	}
}

// NewDefaultAuthorizationService grants caretakers read/write and viewers
// read on every kind.
func NewDefaultAuthorizationService() *AuthorizationService {
	s := NewAuthorizationService()
	s.GrantAccess(RoleCaretaker, AnyKind, ActionRead)
	s.GrantAccess(RoleCaretaker, AnyKind, ActionWrite)
	s.GrantAccess(RoleViewer, AnyKind, ActionRead)
	return s
}

// GrantAccess grants action on kind to role. Use AnyKind for all kinds.
func (s *AuthorizationService) GrantAccess(role, kind string, action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grants[role] == nil {
		s.grants[role] = make(map[string]map[Action]bool)
	}
	if s.grants[role][kind] == nil {
		s.grants[role][kind] = make(map[Action]bool)
	}
	s.grants[role][kind][action] = true
}

// RevokeAccess removes a grant.
func (s *AuthorizationService) RevokeAccess(role, kind string, action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.grants[role] != nil && s.grants[role][kind] != nil {
		delete(s.grants[role][kind], action)
	}
}

// Authorize checks whether any of the user's roles grants action on kind.
func (s *AuthorizationService) Authorize(user *User, kind string, action Action) error {
	if user == nil {
		return errors.NewAuthFailed("no authenticated user")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, role := range user.Roles {
		kinds := s.grants[role]
		if kinds == nil {
			continue
		}
		if kinds[kind][action] || kinds[AnyKind][action] {
			return nil
		}
	}
	return errors.NewAccessDenied(user.Name, fmt.Sprintf("%s %s", action, kind))
}
