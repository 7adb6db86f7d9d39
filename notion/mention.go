package notion

import (
	"context"

	"github.com/goliatone/go-notion-export/ast"
)

// Mention is an inline reference to another Notion entity. The API sets the
// surrounding run's plain_text to a human readable label, which mentions use
// when the target itself offers nothing better.
type Mention interface {
	Type() string
	ToAST(ctx context.Context) ([]ast.Inline, error)
}

// UserMention references a workspace member.
type UserMention struct {
	user      *User
	plainText string
}

// NewUserMention wraps a "user" mention payload.
func NewUserMention(ctx context.Context, c *Converter, data map[string]any, plainText string, block Block) (Mention, error) {
	user, err := c.wrapUser(ctx, getMap(data, "user"))
	if err != nil {
		return nil, err
	}
	return &UserMention{user: user, plainText: plainText}, nil
}

// User returns the mentioned user.
func (m *UserMention) User() *User { return m.user }

func (m *UserMention) Type() string { return "user" }

func (m *UserMention) ToAST(ctx context.Context) ([]ast.Inline, error) {
	label := m.plainText
	if m.user != nil && m.user.Name() != "" {
		label = m.user.Name()
	}
	return ast.Str(label), nil
}

// PageMention references another page. The run's plain_text carries the
// target page title.
type PageMention struct {
	pageID    string
	plainText string
}

// NewPageMention wraps a "page" mention payload.
func NewPageMention(ctx context.Context, c *Converter, data map[string]any, plainText string, block Block) (Mention, error) {
	page := getMap(data, "page")
	return &PageMention{pageID: getString(page, "id"), plainText: plainText}, nil
}

// PageID returns the referenced page id.
func (m *PageMention) PageID() string { return m.pageID }

func (m *PageMention) Type() string { return "page" }

func (m *PageMention) ToAST(ctx context.Context) ([]ast.Inline, error) {
	label := m.plainText
	if label == "" {
		label = "Untitled"
	}
	return []ast.Inline{&ast.Link{Children: ast.Str(label), Target: ObjectURL(m.pageID)}}, nil
}

// DatabaseMention references a database.
type DatabaseMention struct {
	databaseID string
	plainText  string
}

// NewDatabaseMention wraps a "database" mention payload.
func NewDatabaseMention(ctx context.Context, c *Converter, data map[string]any, plainText string, block Block) (Mention, error) {
	database := getMap(data, "database")
	return &DatabaseMention{databaseID: getString(database, "id"), plainText: plainText}, nil
}

// DatabaseID returns the referenced database id.
func (m *DatabaseMention) DatabaseID() string { return m.databaseID }

func (m *DatabaseMention) Type() string { return "database" }

func (m *DatabaseMention) ToAST(ctx context.Context) ([]ast.Inline, error) {
	label := m.plainText
	if label == "" {
		label = "Untitled"
	}
	return []ast.Inline{&ast.Link{Children: ast.Str(label), Target: ObjectURL(m.databaseID)}}, nil
}

// DateMention references a date or date range.
type DateMention struct {
	start     string
	end       string
	plainText string
}

// NewDateMention wraps a "date" mention payload.
func NewDateMention(ctx context.Context, c *Converter, data map[string]any, plainText string, block Block) (Mention, error) {
	date := getMap(data, "date")
	return &DateMention{
		start:     getString(date, "start"),
		end:       getString(date, "end"),
		plainText: plainText,
	}, nil
}

func (m *DateMention) Type() string { return "date" }

func (m *DateMention) ToAST(ctx context.Context) ([]ast.Inline, error) {
	if m.plainText != "" {
		return ast.Str(m.plainText), nil
	}
	label := m.start
	if m.end != "" {
		label = m.start + " to " + m.end
	}
	return ast.Str(label), nil
}

// LinkPreviewMention references an external resource rendered by Notion as
// a preview card.
type LinkPreviewMention struct {
	url string
}

// NewLinkPreviewMention wraps a "link_preview" mention payload.
func NewLinkPreviewMention(ctx context.Context, c *Converter, data map[string]any, plainText string, block Block) (Mention, error) {
	preview := getMap(data, "link_preview")
	return &LinkPreviewMention{url: getString(preview, "url")}, nil
}

func (m *LinkPreviewMention) Type() string { return "link_preview" }

func (m *LinkPreviewMention) ToAST(ctx context.Context) ([]ast.Inline, error) {
	return []ast.Inline{&ast.Link{Children: ast.Str(m.url), Target: m.url}}, nil
}
