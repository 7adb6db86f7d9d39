package notion

import "context"

// Property is one database schema entry. Most kinds only need their
// identity; the typed variants below expose the configuration the export
// layer inspects.
type Property interface {
	ID() string
	Name() string
	Type() string
}

type baseProperty struct {
	id       string
	name     string
	typeName string
}

func newBaseProperty(name string, data map[string]any) baseProperty {
	if fromData := getString(data, "name"); fromData != "" {
		name = fromData
	}
	return baseProperty{
		id:       getString(data, "id"),
		name:     name,
		typeName: getString(data, "type"),
	}
}

func (p baseProperty) ID() string   { return p.id }
func (p baseProperty) Name() string { return p.name }
func (p baseProperty) Type() string { return p.typeName }

// GenericProperty covers schema kinds that carry no configuration the
// exporter needs (title, rich_text, date, people, files, checkbox, url,
// email, phone_number, created_time, created_by, last_edited_time,
// last_edited_by).
type GenericProperty struct {
	baseProperty
}

// NewGenericProperty wraps a schema entry without extra configuration.
func NewGenericProperty(ctx context.Context, c *Converter, name string, data map[string]any) (Property, error) {
	return &GenericProperty{baseProperty: newBaseProperty(name, data)}, nil
}

// SelectOption is one choice of a select, multi_select, or status schema.
type SelectOption struct {
	ID    string
	Name  string
	Color string
}

func parseSelectOptions(data map[string]any) []SelectOption {
	raw := getMapSlice(data, "options")
	options := make([]SelectOption, 0, len(raw))
	for _, item := range raw {
		options = append(options, SelectOption{
			ID:    getString(item, "id"),
			Name:  getString(item, "name"),
			Color: getString(item, "color"),
		})
	}
	return options
}

// SelectProperty is a single-choice schema entry.
type SelectProperty struct {
	baseProperty
	options []SelectOption
}

// NewSelectProperty wraps a "select" schema entry.
func NewSelectProperty(ctx context.Context, c *Converter, name string, data map[string]any) (Property, error) {
	return &SelectProperty{
		baseProperty: newBaseProperty(name, data),
		options:      parseSelectOptions(getMap(data, "select")),
	}, nil
}

// Options lists the configured choices.
func (p *SelectProperty) Options() []SelectOption { return p.options }

// MultiSelectProperty is a multi-choice schema entry.
type MultiSelectProperty struct {
	baseProperty
	options []SelectOption
}

// NewMultiSelectProperty wraps a "multi_select" schema entry.
func NewMultiSelectProperty(ctx context.Context, c *Converter, name string, data map[string]any) (Property, error) {
	return &MultiSelectProperty{
		baseProperty: newBaseProperty(name, data),
		options:      parseSelectOptions(getMap(data, "multi_select")),
	}, nil
}

// Options lists the configured choices.
func (p *MultiSelectProperty) Options() []SelectOption { return p.options }

// StatusProperty is a status schema entry.
type StatusProperty struct {
	baseProperty
	options []SelectOption
}

// NewStatusProperty wraps a "status" schema entry.
func NewStatusProperty(ctx context.Context, c *Converter, name string, data map[string]any) (Property, error) {
	return &StatusProperty{
		baseProperty: newBaseProperty(name, data),
		options:      parseSelectOptions(getMap(data, "status")),
	}, nil
}

// Options lists the configured statuses.
func (p *StatusProperty) Options() []SelectOption { return p.options }

// NumberProperty is a number schema entry with a display format.
type NumberProperty struct {
	baseProperty
	format string
}

// NewNumberProperty wraps a "number" schema entry.
func NewNumberProperty(ctx context.Context, c *Converter, name string, data map[string]any) (Property, error) {
	number := getMap(data, "number")
	return &NumberProperty{
		baseProperty: newBaseProperty(name, data),
		format:       getString(number, "format"),
	}, nil
}

// Format returns the configured display format.
func (p *NumberProperty) Format() string { return p.format }

// FormulaProperty is a formula schema entry.
type FormulaProperty struct {
	baseProperty
	expression string
}

// NewFormulaProperty wraps a "formula" schema entry.
func NewFormulaProperty(ctx context.Context, c *Converter, name string, data map[string]any) (Property, error) {
	formula := getMap(data, "formula")
	return &FormulaProperty{
		baseProperty: newBaseProperty(name, data),
		expression:   getString(formula, "expression"),
	}, nil
}

// Expression returns the formula source.
func (p *FormulaProperty) Expression() string { return p.expression }

// RelationProperty is a relation schema entry.
type RelationProperty struct {
	baseProperty
	databaseID string
}

// NewRelationProperty wraps a "relation" schema entry.
func NewRelationProperty(ctx context.Context, c *Converter, name string, data map[string]any) (Property, error) {
	relation := getMap(data, "relation")
	return &RelationProperty{
		baseProperty: newBaseProperty(name, data),
		databaseID:   getString(relation, "database_id"),
	}, nil
}

// DatabaseID returns the related database.
func (p *RelationProperty) DatabaseID() string { return p.databaseID }

// RollupProperty is a rollup schema entry.
type RollupProperty struct {
	baseProperty
	relationPropertyName string
	rollupPropertyName   string
	function             string
}

// NewRollupProperty wraps a "rollup" schema entry.
func NewRollupProperty(ctx context.Context, c *Converter, name string, data map[string]any) (Property, error) {
	rollup := getMap(data, "rollup")
	return &RollupProperty{
		baseProperty:         newBaseProperty(name, data),
		relationPropertyName: getString(rollup, "relation_property_name"),
		rollupPropertyName:   getString(rollup, "rollup_property_name"),
		function:             getString(rollup, "function"),
	}, nil
}

// Function returns the aggregation applied by the rollup.
func (p *RollupProperty) Function() string { return p.function }

// RelationPropertyName returns the relation the rollup traverses.
func (p *RollupProperty) RelationPropertyName() string { return p.relationPropertyName }

// RollupPropertyName returns the property aggregated on the far side.
func (p *RollupProperty) RollupPropertyName() string { return p.rollupPropertyName }
