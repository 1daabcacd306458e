package models

import "strings"

// Contact is one entry of the contact book.
type Contact struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Normalize returns a copy with surrounding whitespace trimmed from every field.
func (c Contact) Normalize() Contact {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	return c
}

// Validate checks that the contact has valid field values.
func (c *Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "name is required")
	}
	return nil
}

// Matches reports whether name or phone contains query, ignoring case.
func (c *Contact) Matches(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Phone), q)
}
