package model

import "time"

// File is the metadata record of an uploaded blob.
// OwnerID is set once at upload and never changes.
type File struct {
	ID          string    `json:"id"`
	FileID      string    `json:"file_id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	BlobKey     string    `json:"-"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// DefaultAccessType is the role tag given to grants when none is supplied.
const DefaultAccessType = "co-author"

// Access is a grant of a file to a user other than its owner.
// Email and names are denormalized from the grantee for responses.
type Access struct {
	ID        string    `json:"id"`
	FileID    string    `json:"file_id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}
