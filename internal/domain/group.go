// internal/domain/group.go
package domain

// Group is a household group with per-member colors for UI identification.
//
// UserColors should hold an entry for every member in Users, but there is a
// window between "user joined" and "color map updated" where an entry may be
// missing. Readers resolve colors through aggregator.ResolveColor, which
// falls back instead of failing.
type Group struct {
	ID         string            `json:"id"` // Slug-normalized, unique
	Name       string            `json:"name"`
	Users      []string          `json:"users"`      // Member usernames in join order
	UserColors map[string]string `json:"userColors"` // username -> hex color
}

// NewGroup creates a Group with normalized ID and member usernames,
// seeding every member with the default color.
func NewGroup(id, name string, usernames []string) *Group {
	members := make([]string, len(usernames))
	colors := make(map[string]string, len(usernames))
	for i, username := range usernames {
		members[i] = Slugify(username)
		colors[members[i]] = DefaultColor
	}
	return &Group{
		ID:         Slugify(id),
		Name:       name,
		Users:      members,
		UserColors: colors,
	}
}
