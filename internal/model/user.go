package model

import "github.com/Y0hy0h/uxac-lean-coffee/internal/remote"

// User is a tagged union over the two identity variants: Anonymous and
// Authenticated. Sites that need an identity or an admin check switch
// exhaustively over the concrete types; there is no inheritance and no
// nullable admin field.
type User interface {
	// UserID returns the opaque identity for vote and topic ownership.
	UserID() UserID

	isUser()
}

// Anonymous is a visitor with an opaque identity and no capabilities.
type Anonymous struct {
	ID UserID
}

func (a Anonymous) UserID() UserID { return a.ID }
func (Anonymous) isUser()          {}

// Authenticated is a signed-in user. AdminGranted is asserted by the
// store/auth collaborator and arrives asynchronously; AdminModeEnabled is
// the purely local toggle for whether granted rights are active.
type Authenticated struct {
	ID               UserID
	Email            string
	AdminGranted     remote.Value[bool]
	AdminModeEnabled bool
}

func (a Authenticated) UserID() UserID { return a.ID }
func (Authenticated) isUser()          {}

// IsEffectiveAdmin reports whether u may issue admin-gated commands:
// authenticated, granted by the store, and locally toggled on.
//
// This gates the UI only. Real access control lives in the store.
func IsEffectiveAdmin(u User) bool {
	switch u := u.(type) {
	case Anonymous:
		return false
	case Authenticated:
		granted, ok := u.AdminGranted.Get()
		return ok && granted && u.AdminModeEnabled
	default:
		return false
	}
}
