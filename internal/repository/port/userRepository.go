package repository

import "context"

// User is the minimal profile the chat surfaces need: an id to route by and a
// name to render with.
type User struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// UserDirectory resolves identities for chat display and peer search.
// Account creation and auth live outside this service.
type UserDirectory interface {
	// FindByIDs returns the users matching the given ids; unknown ids are
	// silently omitted from the result.
	FindByIDs(ctx context.Context, ids []string) ([]User, error)
	// Search matches name or email by case-insensitive substring, excluding
	// the requesting user, capped at limit (<=0 uses a default).
	Search(ctx context.Context, query string, excludeUserID string, limit int) ([]User, error)
}
