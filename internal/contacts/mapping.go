package contacts

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/outreach/pkg/query"
	"github.com/JaimeStill/outreach/pkg/repository"
)

const phoneExpr = `(SELECT ch.identifier FROM public.contact_channels ch
	WHERE ch.contact_id = c.id AND ch.type = 'phone'
	ORDER BY ch.is_primary DESC, ch.created_at LIMIT 1)`

const tagsExpr = `(SELECT COALESCE(json_agg(t.name ORDER BY t.name), '[]'::json)
	FROM public.contact_tags ct JOIN public.tags t ON t.id = ct.tag_id
	WHERE ct.contact_id = c.id)`

const fieldsExpr = `(SELECT COALESCE(json_agg(json_build_object(
		'fieldId', d.id, 'fieldName', d.name, 'value', f.value
	) ORDER BY d.sort_order), '[]'::json)
	FROM public.contact_custom_fields f JOIN public.custom_field_definitions d ON d.id = f.field_id
	WHERE f.contact_id = c.id)`

var projection = query.
	NewProjectionMap("public", "contacts", "c").
	Project("id", "ID").
	Project("first_name", "FirstName").
	Project("last_name", "LastName").
	Project("notes", "Notes").
	ProjectExpr(phoneExpr, "PhoneNumber").
	ProjectExpr(tagsExpr, "Tags").
	ProjectExpr(fieldsExpr, "CustomFields").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = []query.SortField{
	{Field: "FirstName"},
	{Field: "LastName"},
}

// Filters contains optional filtering criteria for contact queries.
type Filters struct {
	Name *string `json:"name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	if f.Name == nil {
		return b
	}
	return b.WhereSearch(f.Name, "FirstName", "LastName")
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters
	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	return f
}

func scanContact(s repository.Scanner) (Contact, error) {
	var (
		c         Contact
		tagsRaw   []byte
		fieldsRaw []byte
	)

	err := s.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Notes,
		&c.PhoneNumber,
		&tagsRaw,
		&fieldsRaw,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}

	if err := json.Unmarshal(tagsRaw, &c.Tags); err != nil {
		return c, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal(fieldsRaw, &c.CustomFields); err != nil {
		return c, fmt.Errorf("decode custom fields: %w", err)
	}

	return c, nil
}

func scanFieldDefinition(s repository.Scanner) (FieldDefinition, error) {
	var d FieldDefinition
	err := s.Scan(&d.ID, &d.Name, &d.FieldType)
	return d, err
}
