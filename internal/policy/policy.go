// Package policy holds the authorization decision consulted by every file operation.
package policy

import "fileshare/internal/model"

// Action is the kind of operation requested on a file.
type Action int

const (
	// Read covers download and presigned links.
	Read Action = iota
	// Write covers rename, delete, grant and revoke.
	Write
)

func (a Action) String() string {
	switch a {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "unknown"
	}
}

// CanAccess reports whether actor may perform action on file.
//
// Only the owner may read or write. Grants are deliberately not consulted:
// a co-author grant does not unlock download.
func CanAccess(actor *model.User, file *model.File, action Action) bool {
	if actor == nil || file == nil || actor.ID == "" {
		return false
	}
	switch action {
	case Read, Write:
		return actor.ID == file.OwnerID
	default:
		return false
	}
}
