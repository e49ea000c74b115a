// Package contacts provides read access to the CRM's contacts for the
// analysis pipeline: display names, phone channels, tags, and custom fields.
// Contact writes belong to the CRUD subsystem and are not exposed here.
package contacts

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact is the analysis view of a CRM contact.
type Contact struct {
	ID           uuid.UUID    `json:"id"`
	FirstName    string       `json:"firstName"`
	LastName     *string      `json:"lastName"`
	Notes        *string      `json:"notes"`
	PhoneNumber  *string      `json:"phoneNumber"`
	Tags         []string     `json:"tags"`
	CustomFields []FieldValue `json:"customFields"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// DisplayName joins first and last name.
func (c *Contact) DisplayName() string {
	if c.LastName == nil || strings.TrimSpace(*c.LastName) == "" {
		return c.FirstName
	}
	return c.FirstName + " " + *c.LastName
}

// HasTag reports whether the contact carries tag, compared case-insensitively.
func (c *Contact) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// FieldValue is a contact's value for one custom field definition.
type FieldValue struct {
	FieldID   string `json:"fieldId"`
	FieldName string `json:"fieldName"`
	Value     string `json:"value"`
}

// FieldDefinition describes a custom field the analysis may suggest values for.
type FieldDefinition struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FieldType string `json:"fieldType"`
}
