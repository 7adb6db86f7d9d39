package notion

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidPlugin reports a plugin module that names an object kind or type
// the registry does not know.
var ErrInvalidPlugin = errors.New("notion: invalid plugin module")

// Factory signatures, one per object kind. A factory may return ErrDefer to
// pass the object to the next candidate in the chain.
type (
	BlockFactory         func(ctx context.Context, c *Converter, data map[string]any, page *Page, fetchChildren bool) (Block, error)
	RichTextFactory      func(ctx context.Context, c *Converter, data map[string]any, block Block) (RichText, error)
	MentionFactory       func(ctx context.Context, c *Converter, data map[string]any, plainText string, block Block) (Mention, error)
	PropertyFactory      func(ctx context.Context, c *Converter, name string, data map[string]any) (Property, error)
	PropertyValueFactory func(ctx context.Context, c *Converter, name string, data map[string]any, page *Page) (PropertyValue, error)
	PageFactory          func(ctx context.Context, c *Converter, data map[string]any) (*Page, error)
	DatabaseFactory      func(ctx context.Context, c *Converter, data map[string]any) (*Database, error)
	UserFactory          func(ctx context.Context, c *Converter, data map[string]any) (*User, error)
	FileFactory          func(ctx context.Context, c *Converter, data map[string]any) (*File, error)
	EmojiFactory         func(ctx context.Context, c *Converter, data map[string]any) (*Emoji, error)
)

// Object kind names, used in resolution errors and diagnostics.
const (
	kindBlocks         = "blocks"
	kindRichTexts      = "rich_texts"
	kindMentions       = "mentions"
	kindProperties     = "properties"
	kindPropertyValues = "property_values"
	kindPage           = "page"
	kindDatabase       = "database"
	kindUser           = "user"
	kindFile           = "file"
	kindEmoji          = "emoji"
)

// Module bundles the overrides one plugin contributes. Only the populated
// fields register; type-keyed maps may override any subset of a kind.
type Module struct {
	Name           string
	Blocks         map[string]BlockFactory
	RichTexts      map[string]RichTextFactory
	Mentions       map[string]MentionFactory
	Properties     map[string]PropertyFactory
	PropertyValues map[string]PropertyValueFactory
	Page           PageFactory
	Database       DatabaseFactory
	User           UserFactory
	File           FileFactory
	Emoji          EmojiFactory
}

// Registry holds the factory chains for every object kind. Each chain starts
// with the builtin factory; Use appends overrides, and resolution walks the
// chain newest first. Registration happens before conversion runs start;
// reads afterwards are lock-protected and cheap.
type Registry struct {
	mu      sync.RWMutex
	modules []string

	blocks         map[string][]BlockFactory
	richTexts      map[string][]RichTextFactory
	mentions       map[string][]MentionFactory
	properties     map[string][]PropertyFactory
	propertyValues map[string][]PropertyValueFactory
	pages          []PageFactory
	databases      []DatabaseFactory
	users          []UserFactory
	files          []FileFactory
	emojis         []EmojiFactory
}

// NewRegistry builds a registry seeded with the builtin factories.
func NewRegistry() *Registry {
	r := &Registry{
		blocks:         make(map[string][]BlockFactory),
		richTexts:      make(map[string][]RichTextFactory),
		mentions:       make(map[string][]MentionFactory),
		properties:     make(map[string][]PropertyFactory),
		propertyValues: make(map[string][]PropertyValueFactory),
		pages:          []PageFactory{NewPage},
		databases:      []DatabaseFactory{NewDatabase},
		users:          []UserFactory{NewUser},
		files:          []FileFactory{NewFile},
		emojis:         []EmojiFactory{NewEmoji},
	}
	for name, factory := range defaultBlocks() {
		r.blocks[name] = []BlockFactory{factory}
	}
	for name, factory := range defaultRichTexts() {
		r.richTexts[name] = []RichTextFactory{factory}
	}
	for name, factory := range defaultMentions() {
		r.mentions[name] = []MentionFactory{factory}
	}
	for name, factory := range defaultProperties() {
		r.properties[name] = []PropertyFactory{factory}
	}
	for name, factory := range defaultPropertyValues() {
		r.propertyValues[name] = []PropertyValueFactory{factory}
	}
	return r
}

// Use registers every override a module carries. Overrides are rejected for
// type names the builtin tables do not know, so a typo fails at load time
// instead of silently never matching.
func (r *Registry) Use(module Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, factory := range module.Blocks {
		if _, ok := r.blocks[name]; !ok {
			return fmt.Errorf("%w: %s: unknown block type %q", ErrInvalidPlugin, module.Name, name)
		}
		r.blocks[name] = append(r.blocks[name], factory)
	}
	for name, factory := range module.RichTexts {
		if _, ok := r.richTexts[name]; !ok {
			return fmt.Errorf("%w: %s: unknown rich text type %q", ErrInvalidPlugin, module.Name, name)
		}
		r.richTexts[name] = append(r.richTexts[name], factory)
	}
	for name, factory := range module.Mentions {
		if _, ok := r.mentions[name]; !ok {
			return fmt.Errorf("%w: %s: unknown mention type %q", ErrInvalidPlugin, module.Name, name)
		}
		r.mentions[name] = append(r.mentions[name], factory)
	}
	for name, factory := range module.Properties {
		if _, ok := r.properties[name]; !ok {
			return fmt.Errorf("%w: %s: unknown property type %q", ErrInvalidPlugin, module.Name, name)
		}
		r.properties[name] = append(r.properties[name], factory)
	}
	for name, factory := range module.PropertyValues {
		if _, ok := r.propertyValues[name]; !ok {
			return fmt.Errorf("%w: %s: unknown property value type %q", ErrInvalidPlugin, module.Name, name)
		}
		r.propertyValues[name] = append(r.propertyValues[name], factory)
	}

	if module.Page != nil {
		r.pages = append(r.pages, module.Page)
	}
	if module.Database != nil {
		r.databases = append(r.databases, module.Database)
	}
	if module.User != nil {
		r.users = append(r.users, module.User)
	}
	if module.File != nil {
		r.files = append(r.files, module.File)
	}
	if module.Emoji != nil {
		r.emojis = append(r.emojis, module.Emoji)
	}

	r.modules = append(r.modules, module.Name)
	return nil
}

// RegisterBlock appends one block factory outside of a module bundle.
func (r *Registry) RegisterBlock(typeName string, factory BlockFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blocks[typeName]; !ok {
		return fmt.Errorf("%w: unknown block type %q", ErrInvalidPlugin, typeName)
	}
	r.blocks[typeName] = append(r.blocks[typeName], factory)
	return nil
}

// RegisterRichText appends one rich text factory.
func (r *Registry) RegisterRichText(typeName string, factory RichTextFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.richTexts[typeName]; !ok {
		return fmt.Errorf("%w: unknown rich text type %q", ErrInvalidPlugin, typeName)
	}
	r.richTexts[typeName] = append(r.richTexts[typeName], factory)
	return nil
}

// Modules lists the registered module names in load order.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.modules))
	copy(out, r.modules)
	return out
}

func (r *Registry) blockChain(typeName string) []BlockFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.blocks[typeName]
}

func (r *Registry) richTextChain(typeName string) []RichTextFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.richTexts[typeName]
}

func (r *Registry) mentionChain(typeName string) []MentionFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mentions[typeName]
}

func (r *Registry) propertyChain(typeName string) []PropertyFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.properties[typeName]
}

func (r *Registry) propertyValueChain(typeName string) []PropertyValueFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.propertyValues[typeName]
}

func (r *Registry) pageChain() []PageFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pages
}

func (r *Registry) databaseChain() []DatabaseFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.databases
}

func (r *Registry) userChain() []UserFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users
}

func (r *Registry) fileChain() []FileFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.files
}

func (r *Registry) emojiChain() []EmojiFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emojis
}
