// internal/domain/user.go
package domain

// DefaultColor is assigned to a user who has not picked a color yet.
const DefaultColor = "#0079ff"

// User represents a member of a household group.
type User struct {
	Username  string `db:"username" json:"username"`    // Primary key, slug-normalized
	FirstName string `db:"first_name" json:"firstName"` // Display name parts; may be empty
	LastName  string `db:"last_name" json:"lastName"`
	GroupID   string `db:"group_id" json:"groupId"` // Slug of the joined group, empty until the user joins one
	Color     string `db:"color" json:"color"`      // Hex color tagging the user's requests in the group cart
}

// NewUser creates a User with a normalized username and the default color.
func NewUser(username, firstName, lastName string) *User {
	return &User{
		Username:  Slugify(username),
		FirstName: firstName,
		LastName:  lastName,
		Color:     DefaultColor,
	}
}

// DisplayName returns the user's full name, falling back to the username
// when no name parts are set.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Username
	}
}
