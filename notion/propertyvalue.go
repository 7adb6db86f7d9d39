package notion

import (
	"context"
	"fmt"
	"time"
)

// PropertyValue is one page property. Value projects the property into a
// plain Go value suitable for YAML or front matter serialization; title and
// rich_text properties render through the converter's inline renderer so
// formatting survives as markup.
type PropertyValue interface {
	ID() string
	Name() string
	Type() string
	Value(ctx context.Context) (any, error)
}

type basePropertyValue struct {
	c        *Converter
	id       string
	name     string
	typeName string
}

func newBasePropertyValue(c *Converter, name string, data map[string]any) basePropertyValue {
	return basePropertyValue{
		c:        c,
		id:       getString(data, "id"),
		name:     name,
		typeName: getString(data, "type"),
	}
}

func (p basePropertyValue) ID() string   { return p.id }
func (p basePropertyValue) Name() string { return p.name }
func (p basePropertyValue) Type() string { return p.typeName }

// TitlePropertyValue is the page title property.
type TitlePropertyValue struct {
	basePropertyValue
	texts RichTexts
}

// NewTitlePropertyValue wraps a "title" property value.
func NewTitlePropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	texts, err := c.wrapRichTexts(ctx, getMapSlice(data, "title"), nil)
	if err != nil {
		return nil, err
	}
	return &TitlePropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		texts:             texts,
	}, nil
}

// RichTexts returns the title runs.
func (p *TitlePropertyValue) RichTexts() RichTexts { return p.texts }

func (p *TitlePropertyValue) Value(ctx context.Context) (any, error) {
	return p.c.renderInlineString(ctx, p.texts)
}

// RichTextPropertyValue is a styled text property.
type RichTextPropertyValue struct {
	basePropertyValue
	texts RichTexts
}

// NewRichTextPropertyValue wraps a "rich_text" property value.
func NewRichTextPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	texts, err := c.wrapRichTexts(ctx, getMapSlice(data, "rich_text"), nil)
	if err != nil {
		return nil, err
	}
	return &RichTextPropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		texts:             texts,
	}, nil
}

// RichTexts returns the property runs.
func (p *RichTextPropertyValue) RichTexts() RichTexts { return p.texts }

func (p *RichTextPropertyValue) Value(ctx context.Context) (any, error) {
	return p.c.renderInlineString(ctx, p.texts)
}

// NumberPropertyValue is a number property.
type NumberPropertyValue struct {
	basePropertyValue
	number *float64
}

// NewNumberPropertyValue wraps a "number" property value.
func NewNumberPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	value := &NumberPropertyValue{basePropertyValue: newBasePropertyValue(c, name, data)}
	if number, ok := getFloat(data, "number"); ok {
		value.number = &number
	}
	return value, nil
}

func (p *NumberPropertyValue) Value(ctx context.Context) (any, error) {
	if p.number == nil {
		return nil, nil
	}
	return *p.number, nil
}

// SelectPropertyValue is a single-choice property.
type SelectPropertyValue struct {
	basePropertyValue
	option *SelectOption
}

// NewSelectPropertyValue wraps a "select" property value.
func NewSelectPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	value := &SelectPropertyValue{basePropertyValue: newBasePropertyValue(c, name, data)}
	if selected := getMap(data, "select"); selected != nil {
		value.option = &SelectOption{
			ID:    getString(selected, "id"),
			Name:  getString(selected, "name"),
			Color: getString(selected, "color"),
		}
	}
	return value, nil
}

func (p *SelectPropertyValue) Value(ctx context.Context) (any, error) {
	if p.option == nil {
		return nil, nil
	}
	return p.option.Name, nil
}

// StatusPropertyValue is a status property.
type StatusPropertyValue struct {
	basePropertyValue
	option *SelectOption
}

// NewStatusPropertyValue wraps a "status" property value.
func NewStatusPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	value := &StatusPropertyValue{basePropertyValue: newBasePropertyValue(c, name, data)}
	if status := getMap(data, "status"); status != nil {
		value.option = &SelectOption{
			ID:    getString(status, "id"),
			Name:  getString(status, "name"),
			Color: getString(status, "color"),
		}
	}
	return value, nil
}

func (p *StatusPropertyValue) Value(ctx context.Context) (any, error) {
	if p.option == nil {
		return nil, nil
	}
	return p.option.Name, nil
}

// MultiSelectPropertyValue is a multi-choice property.
type MultiSelectPropertyValue struct {
	basePropertyValue
	options []SelectOption
}

// NewMultiSelectPropertyValue wraps a "multi_select" property value.
func NewMultiSelectPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	raw := getMapSlice(data, "multi_select")
	options := make([]SelectOption, 0, len(raw))
	for _, item := range raw {
		options = append(options, SelectOption{
			ID:    getString(item, "id"),
			Name:  getString(item, "name"),
			Color: getString(item, "color"),
		})
	}
	return &MultiSelectPropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		options:           options,
	}, nil
}

func (p *MultiSelectPropertyValue) Value(ctx context.Context) (any, error) {
	names := make([]any, 0, len(p.options))
	for _, option := range p.options {
		names = append(names, option.Name)
	}
	return names, nil
}

// DatePropertyValue is a date or date range property.
type DatePropertyValue struct {
	basePropertyValue
	start    string
	end      string
	timeZone string
}

// NewDatePropertyValue wraps a "date" property value.
func NewDatePropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	value := &DatePropertyValue{basePropertyValue: newBasePropertyValue(c, name, data)}
	if date := getMap(data, "date"); date != nil {
		value.start = getString(date, "start")
		value.end = getString(date, "end")
		value.timeZone = getString(date, "time_zone")
	}
	return value, nil
}

// Start returns the range start, empty when the property is unset.
func (p *DatePropertyValue) Start() string { return p.start }

// End returns the range end, empty for single dates.
func (p *DatePropertyValue) End() string { return p.end }

func (p *DatePropertyValue) Value(ctx context.Context) (any, error) {
	if p.start == "" {
		return nil, nil
	}
	if p.end == "" {
		return p.start, nil
	}
	return map[string]any{"start": p.start, "end": p.end}, nil
}

// PeoplePropertyValue is a people property.
type PeoplePropertyValue struct {
	basePropertyValue
	users []*User
}

// NewPeoplePropertyValue wraps a "people" property value.
func NewPeoplePropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	raw := getMapSlice(data, "people")
	users := make([]*User, 0, len(raw))
	for _, item := range raw {
		user, err := c.wrapUser(ctx, item)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return &PeoplePropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		users:             users,
	}, nil
}

// Users returns the referenced users.
func (p *PeoplePropertyValue) Users() []*User { return p.users }

func (p *PeoplePropertyValue) Value(ctx context.Context) (any, error) {
	out := make([]any, 0, len(p.users))
	for _, user := range p.users {
		out = append(out, user.Value())
	}
	return out, nil
}

// FilesPropertyValue is a files property.
type FilesPropertyValue struct {
	basePropertyValue
	files []*File
}

// NewFilesPropertyValue wraps a "files" property value.
func NewFilesPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	raw := getMapSlice(data, "files")
	files := make([]*File, 0, len(raw))
	for _, item := range raw {
		file, err := c.wrapFile(ctx, item)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return &FilesPropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		files:             files,
	}, nil
}

// Files returns the attached files.
func (p *FilesPropertyValue) Files() []*File { return p.files }

func (p *FilesPropertyValue) Value(ctx context.Context) (any, error) {
	out := make([]any, 0, len(p.files))
	for _, file := range p.files {
		out = append(out, file.URL())
	}
	return out, nil
}

// CheckboxPropertyValue is a checkbox property.
type CheckboxPropertyValue struct {
	basePropertyValue
	checked bool
}

// NewCheckboxPropertyValue wraps a "checkbox" property value.
func NewCheckboxPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	return &CheckboxPropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		checked:           getBool(data, "checkbox"),
	}, nil
}

// Checked reports the checkbox state.
func (p *CheckboxPropertyValue) Checked() bool { return p.checked }

func (p *CheckboxPropertyValue) Value(ctx context.Context) (any, error) {
	return p.checked, nil
}

// URLPropertyValue is a url property.
type URLPropertyValue struct {
	basePropertyValue
	url string
}

// NewURLPropertyValue wraps a "url" property value.
func NewURLPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	return &URLPropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		url:               getString(data, "url"),
	}, nil
}

func (p *URLPropertyValue) Value(ctx context.Context) (any, error) {
	if p.url == "" {
		return nil, nil
	}
	return p.url, nil
}

// EmailPropertyValue is an email property.
type EmailPropertyValue struct {
	basePropertyValue
	email string
}

// NewEmailPropertyValue wraps an "email" property value.
func NewEmailPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	return &EmailPropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		email:             getString(data, "email"),
	}, nil
}

func (p *EmailPropertyValue) Value(ctx context.Context) (any, error) {
	if p.email == "" {
		return nil, nil
	}
	return p.email, nil
}

// PhoneNumberPropertyValue is a phone number property.
type PhoneNumberPropertyValue struct {
	basePropertyValue
	phoneNumber string
}

// NewPhoneNumberPropertyValue wraps a "phone_number" property value.
func NewPhoneNumberPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	return &PhoneNumberPropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		phoneNumber:       getString(data, "phone_number"),
	}, nil
}

func (p *PhoneNumberPropertyValue) Value(ctx context.Context) (any, error) {
	if p.phoneNumber == "" {
		return nil, nil
	}
	return p.phoneNumber, nil
}

// FormulaPropertyValue is a computed property. The payload carries the
// result, discriminated by its own type tag.
type FormulaPropertyValue struct {
	basePropertyValue
	formula map[string]any
}

// NewFormulaPropertyValue wraps a "formula" property value.
func NewFormulaPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	return &FormulaPropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		formula:           getMap(data, "formula"),
	}, nil
}

func (p *FormulaPropertyValue) Value(ctx context.Context) (any, error) {
	switch getString(p.formula, "type") {
	case "string":
		return getString(p.formula, "string"), nil
	case "number":
		if number, ok := getFloat(p.formula, "number"); ok {
			return number, nil
		}
		return nil, nil
	case "boolean":
		return getBool(p.formula, "boolean"), nil
	case "date":
		date := getMap(p.formula, "date")
		if date == nil {
			return nil, nil
		}
		if end := getString(date, "end"); end != "" {
			return map[string]any{"start": getString(date, "start"), "end": end}, nil
		}
		return getString(date, "start"), nil
	default:
		return nil, nil
	}
}

// RelationPropertyValue lists related page ids.
type RelationPropertyValue struct {
	basePropertyValue
	ids []string
}

// NewRelationPropertyValue wraps a "relation" property value.
func NewRelationPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	raw := getMapSlice(data, "relation")
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		ids = append(ids, getString(item, "id"))
	}
	return &RelationPropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		ids:               ids,
	}, nil
}

// PageIDs returns the related page ids.
func (p *RelationPropertyValue) PageIDs() []string { return p.ids }

func (p *RelationPropertyValue) Value(ctx context.Context) (any, error) {
	out := make([]any, 0, len(p.ids))
	for _, id := range p.ids {
		out = append(out, id)
	}
	return out, nil
}

// RollupPropertyValue is an aggregate over a relation. Array rollups wrap
// their items as property values recursively; the nesting is bounded by the
// database schema.
type RollupPropertyValue struct {
	basePropertyValue
	rollup map[string]any
	page   *Page
}

// NewRollupPropertyValue wraps a "rollup" property value.
func NewRollupPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	return &RollupPropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		rollup:            getMap(data, "rollup"),
		page:              page,
	}, nil
}

func (p *RollupPropertyValue) Value(ctx context.Context) (any, error) {
	switch getString(p.rollup, "type") {
	case "number":
		if number, ok := getFloat(p.rollup, "number"); ok {
			return number, nil
		}
		return nil, nil
	case "date":
		date := getMap(p.rollup, "date")
		if date == nil {
			return nil, nil
		}
		if end := getString(date, "end"); end != "" {
			return map[string]any{"start": getString(date, "start"), "end": end}, nil
		}
		return getString(date, "start"), nil
	case "array":
		items := getMapSlice(p.rollup, "array")
		out := make([]any, 0, len(items))
		for i, item := range items {
			wrapped, err := p.c.wrapPropertyValue(ctx, fmt.Sprintf("%s[%d]", p.name, i), item, p.page)
			if err != nil {
				return nil, err
			}
			value, err := wrapped.Value(ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil
	default:
		return nil, nil
	}
}

// CreatedTimePropertyValue reports when the page was created.
type CreatedTimePropertyValue struct {
	basePropertyValue
	value time.Time
}

// NewCreatedTimePropertyValue wraps a "created_time" property value.
func NewCreatedTimePropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	return &CreatedTimePropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		value:             getTime(data, "created_time"),
	}, nil
}

func (p *CreatedTimePropertyValue) Value(ctx context.Context) (any, error) {
	if p.value.IsZero() {
		return nil, nil
	}
	return p.value.Format(time.RFC3339), nil
}

// LastEditedTimePropertyValue reports the last edit timestamp.
type LastEditedTimePropertyValue struct {
	basePropertyValue
	value time.Time
}

// NewLastEditedTimePropertyValue wraps a "last_edited_time" property value.
func NewLastEditedTimePropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	return &LastEditedTimePropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		value:             getTime(data, "last_edited_time"),
	}, nil
}

func (p *LastEditedTimePropertyValue) Value(ctx context.Context) (any, error) {
	if p.value.IsZero() {
		return nil, nil
	}
	return p.value.Format(time.RFC3339), nil
}

// CreatedByPropertyValue reports the creating user.
type CreatedByPropertyValue struct {
	basePropertyValue
	user *User
}

// NewCreatedByPropertyValue wraps a "created_by" property value.
func NewCreatedByPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	user, err := c.wrapUser(ctx, getMap(data, "created_by"))
	if err != nil {
		return nil, err
	}
	return &CreatedByPropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		user:              user,
	}, nil
}

func (p *CreatedByPropertyValue) Value(ctx context.Context) (any, error) {
	if p.user == nil {
		return nil, nil
	}
	return p.user.Value(), nil
}

// LastEditedByPropertyValue reports the last editing user.
type LastEditedByPropertyValue struct {
	basePropertyValue
	user *User
}

// NewLastEditedByPropertyValue wraps a "last_edited_by" property value.
func NewLastEditedByPropertyValue(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error) {
	user, err := c.wrapUser(ctx, getMap(data, "last_edited_by"))
	if err != nil {
		return nil, err
	}
	return &LastEditedByPropertyValue{
		basePropertyValue: newBasePropertyValue(c, name, data),
		user:              user,
	}, nil
}

func (p *LastEditedByPropertyValue) Value(ctx context.Context) (any, error) {
	if p.user == nil {
		return nil, nil
	}
	return p.user.Value(), nil
}
