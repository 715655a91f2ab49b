package export

import (
	"fmt"
	"strings"
)

// EntityType tags the business dataset being exported.
type EntityType string

const (
	EntityDonations     EntityType = "donations"
	EntityVolunteers    EntityType = "volunteers"
	EntityBeneficiaries EntityType = "beneficiaries"
	EntityProjects      EntityType = "projects"
	EntityBlogPosts     EntityType = "blog_posts"
)

// EntityTypes lists every exportable entity type.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityDonations,
		EntityVolunteers,
		EntityBeneficiaries,
		EntityProjects,
		EntityBlogPosts,
	}
}

// EntityTypeNames returns the accepted entity names, for error payloads.
func EntityTypeNames() []string {
	types := EntityTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

// ParseEntityType normalizes raw and rejects unknown entity types.
func ParseEntityType(raw string) (EntityType, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if normalized == "blogposts" || normalized == "blog" || normalized == "posts" {
		normalized = string(EntityBlogPosts)
	}
	entity := EntityType(normalized)
	if entity.Valid() {
		return entity, nil
	}
	return "", NewError(KindValidation, fmt.Sprintf("invalid export type %q", raw), nil).
		WithAllowed("type", EntityTypeNames())
}

// Valid reports whether e is an enumerated entity type.
func (e EntityType) Valid() bool {
	switch e {
	case EntityDonations, EntityVolunteers, EntityBeneficiaries, EntityProjects, EntityBlogPosts:
		return true
	default:
		return false
	}
}

// Label returns a human-readable name.
func (e EntityType) Label() string {
	switch e {
	case EntityBlogPosts:
		return "Blog Posts"
	case "":
		return "Records"
	default:
		s := string(e)
		return strings.ToUpper(s[:1]) + s[1:]
	}
}
