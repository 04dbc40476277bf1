package domain

import (
	"slices"
	"strings"
	"time"
)

// ContactCategory tags a team contact for picker filtering.
type ContactCategory string

// ContactCategory values.
const (
	ContactCategoryCrew           ContactCategory = "crew"
	ContactCategoryPostProduction ContactCategory = "post_production"
)

var validContactCategories = []ContactCategory{ContactCategoryCrew, ContactCategoryPostProduction}

// ParseContactCategory canonicalizes one category tag.
func ParseContactCategory(raw string) (ContactCategory, error) {
	category := ContactCategory(strings.ReplaceAll(strings.TrimSpace(strings.ToLower(raw)), "-", "_"))
	if !slices.Contains(validContactCategories, category) {
		return "", ErrInvalidCategory
	}
	return category, nil
}

// TeamContact represents one crew or post-production team member.
type TeamContact struct {
	ID         string
	Name       string
	Role       string
	Phone      string
	WhatsApp   string
	Email      string
	Categories []ContactCategory
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TeamContactInput holds write-time values for creating one contact.
type TeamContactInput struct {
	ID         string
	Name       string
	Role       string
	Phone      string
	WhatsApp   string
	Email      string
	Categories []ContactCategory
}

// NewTeamContact validates one contact create request.
func NewTeamContact(in TeamContactInput, now time.Time) (TeamContact, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	if in.ID == "" {
		return TeamContact{}, ErrInvalidID
	}
	if in.Name == "" {
		return TeamContact{}, ErrInvalidName
	}
	categories, err := normalizeContactCategories(in.Categories)
	if err != nil {
		return TeamContact{}, err
	}
	return TeamContact{
		ID:         in.ID,
		Name:       in.Name,
		Role:       strings.TrimSpace(in.Role),
		Phone:      strings.TrimSpace(in.Phone),
		WhatsApp:   strings.TrimSpace(in.WhatsApp),
		Email:      strings.TrimSpace(in.Email),
		Categories: categories,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}, nil
}

// HasCategory reports whether the contact carries one tag.
func (c TeamContact) HasCategory(category ContactCategory) bool {
	return slices.Contains(c.Categories, category)
}

// SetCategories replaces the contact's tags.
func (c *TeamContact) SetCategories(categories []ContactCategory, now time.Time) error {
	normalized, err := normalizeContactCategories(categories)
	if err != nil {
		return err
	}
	c.Categories = normalized
	c.UpdatedAt = now.UTC()
	return nil
}

// Roster resolves display names to contacts through the name join.
type Roster struct {
	byKey map[string]TeamContact
}

// NewRoster indexes contacts by PersonKey. The first contact wins on key collisions.
func NewRoster(contacts []TeamContact) Roster {
	byKey := make(map[string]TeamContact, len(contacts))
	for _, contact := range contacts {
		key := PersonKey(contact.Name)
		if key == "" {
			continue
		}
		if _, ok := byKey[key]; ok {
			continue
		}
		byKey[key] = contact
	}
	return Roster{byKey: byKey}
}

// Lookup resolves one display name. Unknown names return false, not an error.
func (r Roster) Lookup(name string) (TeamContact, bool) {
	contact, ok := r.byKey[PersonKey(name)]
	return contact, ok
}

// AssigneeCandidates returns contacts eligible for task assignment, in input order.
func AssigneeCandidates(contacts []TeamContact) []TeamContact {
	out := []TeamContact{}
	for _, contact := range contacts {
		if contact.HasCategory(ContactCategoryPostProduction) {
			out = append(out, contact)
		}
	}
	return out
}

func normalizeContactCategories(categories []ContactCategory) ([]ContactCategory, error) {
	out := make([]ContactCategory, 0, len(categories))
	for _, raw := range categories {
		category, err := ParseContactCategory(string(raw))
		if err != nil {
			return nil, err
		}
		if slices.Contains(out, category) {
			continue
		}
		out = append(out, category)
	}
	slices.Sort(out)
	return out, nil
}
