package notion

import "context"

// User is a read-only snapshot of a workspace member or bot. Mentions and
// people properties frequently carry partial user objects; fields default to
// empty rather than failing.
type User struct {
	id        string
	name      string
	avatarURL string
	email     string
	userType  string
}

// NewUser wraps a user payload.
func NewUser(ctx context.Context, c *Converter, data map[string]any) (*User, error) {
	user := &User{
		id:        getString(data, "id"),
		name:      getString(data, "name"),
		avatarURL: getString(data, "avatar_url"),
		userType:  getString(data, "type"),
	}
	if person := getMap(data, "person"); person != nil {
		user.email = getString(person, "email")
	}
	return user, nil
}

// NotionID returns the user id.
func (u *User) NotionID() string { return u.id }

// Name returns the display name, which may be empty on partial payloads.
func (u *User) Name() string { return u.name }

// AvatarURL returns the avatar location.
func (u *User) AvatarURL() string { return u.avatarURL }

// Email returns the person email when the integration may see it.
func (u *User) Email() string { return u.email }

// IsBot reports whether the user is an integration.
func (u *User) IsBot() bool { return u.userType == "bot" }

// Label returns the best human readable identifier available.
func (u *User) Label() string {
	if u.name != "" {
		return u.name
	}
	return u.id
}

// Value projects the user for property value serialization.
func (u *User) Value() any {
	return map[string]any{
		"id":   u.id,
		"name": u.name,
	}
}
