package notion

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-notion-export/ast"
	"github.com/goliatone/go-notion-export/internal/logging"
	"github.com/goliatone/go-notion-export/pkg/interfaces"
)

// Converter drives one conversion run: it wraps raw payloads into typed
// objects through the registry, walks block trees into ast fragments, and
// resolves cross-references in a second pass. A Converter is not safe for
// concurrent use; independent export targets get independent Converters
// sharing one Registry and Source.
type Converter struct {
	source         Source
	registry       *Registry
	logger         interfaces.Logger
	downloadMedia  bool
	inlineRenderer func(ctx context.Context, inlines []ast.Inline) (string, error)

	pages       map[string]*Page
	databases   map[string]*Database
	resolutions map[resolutionKey]int
	visiting    map[string]bool

	anchors      map[string]string
	anchorCounts map[string]int
	headings     []headingRef
	footnotes    map[string]bool

	pluginData  map[string]any
	diagnostics []Diagnostic
}

// resolutionKey identifies one chain resolution for the run cache. Objects
// without identifiers are resolved fresh on every visit.
type resolutionKey struct {
	kind     string
	typeName string
	id       string
}

type headingRef struct {
	level  int
	anchor string
	text   string
}

// Option configures a Converter.
type Option func(*Converter)

// WithRegistry shares a prepared registry with the run. Without it the run
// uses a registry holding only the builtin factories.
func WithRegistry(registry *Registry) Option {
	return func(c *Converter) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithLogger attaches a run logger. Diagnostics mirror to it as warnings.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLoggerProvider scopes a module logger for the run from a provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Converter) {
		c.logger = logging.ConvertLogger(provider)
	}
}

// WithMediaDownloads downloads Notion-hosted assets through the Source and
// rewrites media URLs to the local paths. Without it, output carries the
// expiring hosted URLs.
func WithMediaDownloads(enabled bool) Option {
	return func(c *Converter) {
		c.downloadMedia = enabled
	}
}

// WithInlineRenderer sets how rich text renders when a plain string is
// needed, such as property values bound for front matter. The default is
// the plain text projection.
func WithInlineRenderer(render func(ctx context.Context, inlines []ast.Inline) (string, error)) Option {
	return func(c *Converter) {
		c.inlineRenderer = render
	}
}

// NewConverter builds a converter for one run against a source.
func NewConverter(source Source, opts ...Option) *Converter {
	c := &Converter{
		source:       source,
		registry:     NewRegistry(),
		logger:       logging.NoOp(),
		pages:        make(map[string]*Page),
		databases:    make(map[string]*Database),
		resolutions:  make(map[resolutionKey]int),
		visiting:     make(map[string]bool),
		anchors:      make(map[string]string),
		anchorCounts: make(map[string]int),
		footnotes:    make(map[string]bool),
		pluginData:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns the run's payload source.
func (c *Converter) Source() Source { return c.source }

// PluginData returns the run-scoped scratch map plugins share state in,
// conventionally keyed by plugin name.
func (c *Converter) PluginData() map[string]any { return c.pluginData }

// Diagnostics returns the non-fatal anomalies recorded so far, in order.
func (c *Converter) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// Warnf records a warning diagnostic and mirrors it to the run logger.
func (c *Converter) Warnf(notionID string, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	c.diagnostics = append(c.diagnostics, Diagnostic{
		Severity: SeverityWarning,
		NotionID: notionID,
		Message:  message,
	})
	c.logger.Warn(message, "notion_id", notionID)
}

// reportNodeError records a node-local failure that degraded to a
// placeholder.
func (c *Converter) reportNodeError(notionID string, err error) {
	c.diagnostics = append(c.diagnostics, Diagnostic{
		Severity: SeverityError,
		NotionID: notionID,
		Message:  err.Error(),
	})
	c.logger.Error("node conversion degraded", "notion_id", notionID, "error", err)
}

// Page fetches and wraps a page, reusing the run's materialization when the
// identifier was seen before.
func (c *Converter) Page(ctx context.Context, pageID string) (*Page, error) {
	if page, ok := c.pages[DashlessID(pageID)]; ok {
		return page, nil
	}
	data, err := c.source.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return c.wrapPage(ctx, data)
}

// Database fetches and wraps a database, reusing the run's materialization
// when the identifier was seen before.
func (c *Converter) Database(ctx context.Context, databaseID string) (*Database, error) {
	if db, ok := c.databases[DashlessID(databaseID)]; ok {
		return db, nil
	}
	data, err := c.source.GetDatabase(ctx, databaseID)
	if err != nil {
		return nil, err
	}
	return c.wrapDatabase(ctx, data)
}

// Document converts one page into a finished document: block conversion
// first, then reference resolution. Heading anchors, footnotes, and tables
// of contents are scoped to the document. The page itself counts as visited
// while converting, so a transclusion chain that loops back to it stubs at
// the second occurrence.
func (c *Converter) Document(ctx context.Context, page *Page) (*ast.Document, error) {
	c.resetDocumentState()
	if release, ok := c.enterTransclusion(page.ID()); ok {
		defer release()
	}
	content, err := page.Content(ctx)
	if err != nil {
		return nil, err
	}
	blocks, err := c.BlocksToAST(ctx, content)
	if err != nil {
		return nil, err
	}
	return &ast.Document{Blocks: c.ResolveReferences(blocks)}, nil
}

func (c *Converter) resetDocumentState() {
	c.anchors = make(map[string]string)
	c.anchorCounts = make(map[string]int)
	c.headings = nil
	c.footnotes = make(map[string]bool)
}

// BlocksToAST converts a sibling sequence into ast blocks. Maximal runs of
// same-variant list items collapse into one enclosing list node; a failing
// node degrades to a placeholder in its position and traversal continues.
func (c *Converter) BlocksToAST(ctx context.Context, blocks []Block) ([]ast.Block, error) {
	out := make([]ast.Block, 0, len(blocks))
	for i := 0; i < len(blocks); {
		item, ok := blocks[i].(ListItem)
		if !ok {
			fragment, err := blocks[i].ToAST(ctx)
			if err != nil {
				if isFatal(err) {
					return nil, err
				}
				c.reportNodeError(blocks[i].ID(), err)
				out = append(out, placeholderFor(blocks[i].Type()))
				i++
				continue
			}
			out = append(out, fragment...)
			i++
			continue
		}

		j := i + 1
		for j < len(blocks) {
			next, ok := blocks[j].(ListItem)
			if !ok || next.ListGroup() != item.ListGroup() {
				break
			}
			j++
		}
		list, err := item.AssembleList(ctx, blocks[i:j])
		if err != nil {
			if isFatal(err) {
				return nil, err
			}
			c.reportNodeError(item.ID(), err)
			out = append(out, placeholderFor(item.Type()))
		} else if list != nil {
			out = append(out, list)
		}
		i = j
	}
	return out, nil
}

// listItems converts each block of one list run into that item's content.
// A failing item degrades to a placeholder item.
func (c *Converter) listItems(ctx context.Context, run []Block) ([][]ast.Block, error) {
	items := make([][]ast.Block, 0, len(run))
	for _, block := range run {
		item, ok := block.(ListItem)
		if !ok {
			continue
		}
		content, err := item.ItemAST(ctx)
		if err != nil {
			if isFatal(err) {
				return nil, err
			}
			c.reportNodeError(block.ID(), err)
			content = []ast.Block{placeholderFor(block.Type())}
		}
		items = append(items, content)
	}
	return items, nil
}

func placeholderFor(typeName string) *ast.Placeholder {
	return &ast.Placeholder{Reason: fmt.Sprintf("could not convert %s block", typeName)}
}

// childBlocks fetches and wraps the children of a block or page. A child
// whose factory fails becomes a placeholder block so sibling count and
// order survive.
func (c *Converter) childBlocks(ctx context.Context, parentID string, page *Page) ([]Block, error) {
	payloads, err := c.source.GetChildBlocks(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return c.wrapBlocks(ctx, payloads, page)
}

func (c *Converter) wrapBlocks(ctx context.Context, payloads []map[string]any, page *Page) ([]Block, error) {
	out := make([]Block, 0, len(payloads))
	for _, payload := range payloads {
		block, err := c.wrapBlock(ctx, payload, page, true)
		if err != nil {
			if isFatal(err) {
				return nil, err
			}
			c.reportNodeError(getString(payload, "id"), err)
			block = newPlaceholderBlock(c, payload, page)
		}
		out = append(out, block)
	}
	return out, nil
}

func (c *Converter) wrapBlock(ctx context.Context, data map[string]any, page *Page, fetchChildren bool) (Block, error) {
	typeName := getString(data, "type")
	return resolveChain(c, kindBlocks, typeName, getString(data, "id"),
		c.registry.blockChain(typeName),
		func(f BlockFactory) (Block, error) { return f(ctx, c, data, page, fetchChildren) })
}

func (c *Converter) wrapRichTexts(ctx context.Context, payloads []map[string]any, block Block) (RichTexts, error) {
	out := make(RichTexts, 0, len(payloads))
	for _, payload := range payloads {
		text, err := c.wrapRichText(ctx, payload, block)
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

// wrapRichText resolves a rich text run. Runs carry no identifier, so every
// visit walks the chain; factories that defer based on content keep working
// across runs.
func (c *Converter) wrapRichText(ctx context.Context, data map[string]any, block Block) (RichText, error) {
	typeName := getString(data, "type")
	return resolveChain(c, kindRichTexts, typeName, "",
		c.registry.richTextChain(typeName),
		func(f RichTextFactory) (RichText, error) { return f(ctx, c, data, block) })
}

func (c *Converter) wrapMention(ctx context.Context, data map[string]any, plainText string, block Block) (Mention, error) {
	typeName := getString(data, "type")
	return resolveChain(c, kindMentions, typeName, "",
		c.registry.mentionChain(typeName),
		func(f MentionFactory) (Mention, error) { return f(ctx, c, data, plainText, block) })
}

func (c *Converter) wrapProperty(ctx context.Context, name string, data map[string]any) (Property, error) {
	typeName := getString(data, "type")
	return resolveChain(c, kindProperties, typeName, getString(data, "id"),
		c.registry.propertyChain(typeName),
		func(f PropertyFactory) (Property, error) { return f(ctx, c, name, data) })
}

func (c *Converter) wrapPropertyValue(ctx context.Context, name string, data map[string]any, page *Page) (PropertyValue, error) {
	typeName := getString(data, "type")
	return resolveChain(c, kindPropertyValues, typeName, getString(data, "id"),
		c.registry.propertyValueChain(typeName),
		func(f PropertyValueFactory) (PropertyValue, error) { return f(ctx, c, name, data, page) })
}

func (c *Converter) wrapPage(ctx context.Context, data map[string]any) (*Page, error) {
	id := DashlessID(getString(data, "id"))
	if page, ok := c.pages[id]; ok {
		return page, nil
	}
	page, err := resolveChain(c, kindPage, "", id,
		c.registry.pageChain(),
		func(f PageFactory) (*Page, error) { return f(ctx, c, data) })
	if err != nil {
		return nil, err
	}
	c.pages[id] = page
	return page, nil
}

func (c *Converter) wrapDatabase(ctx context.Context, data map[string]any) (*Database, error) {
	id := DashlessID(getString(data, "id"))
	if db, ok := c.databases[id]; ok {
		return db, nil
	}
	db, err := resolveChain(c, kindDatabase, "", id,
		c.registry.databaseChain(),
		func(f DatabaseFactory) (*Database, error) { return f(ctx, c, data) })
	if err != nil {
		return nil, err
	}
	c.databases[id] = db
	return db, nil
}

func (c *Converter) wrapUser(ctx context.Context, data map[string]any) (*User, error) {
	if data == nil {
		return nil, nil
	}
	return resolveChain(c, kindUser, "", getString(data, "id"),
		c.registry.userChain(),
		func(f UserFactory) (*User, error) { return f(ctx, c, data) })
}

func (c *Converter) wrapFile(ctx context.Context, data map[string]any) (*File, error) {
	if data == nil {
		return nil, nil
	}
	return resolveChain(c, kindFile, "", "",
		c.registry.fileChain(),
		func(f FileFactory) (*File, error) { return f(ctx, c, data) })
}

func (c *Converter) wrapEmoji(ctx context.Context, data map[string]any) (*Emoji, error) {
	if data == nil {
		return nil, nil
	}
	return resolveChain(c, kindEmoji, "", "",
		c.registry.emojiChain(),
		func(f EmojiFactory) (*Emoji, error) { return f(ctx, c, data) })
}

// wrapIcon wraps the icon field, which is the one payload that may be
// either an emoji or a file.
func (c *Converter) wrapIcon(ctx context.Context, data map[string]any) (any, error) {
	if data == nil {
		return nil, nil
	}
	if getString(data, "type") == "emoji" {
		return c.wrapEmoji(ctx, data)
	}
	return c.wrapFile(ctx, data)
}

// resolveChain walks a factory chain newest first, honoring ErrDefer. The
// chosen candidate is remembered per object for the run, so revisiting a
// shared node dispatches the same way every time.
func resolveChain[F any, T any](c *Converter, kind, typeName, id string, chain []F, invoke func(F) (T, error)) (T, error) {
	var zero T
	if len(chain) == 0 {
		return zero, unknownTypeError(kind, typeName)
	}

	key := resolutionKey{kind: kind, typeName: typeName, id: id}
	start := len(chain) - 1
	if id != "" {
		if idx, ok := c.resolutions[key]; ok && idx < len(chain) {
			start = idx
		}
	}

	for i := start; i >= 0; i-- {
		out, err := invoke(chain[i])
		if err == nil {
			if id != "" {
				c.resolutions[key] = i
			}
			return out, nil
		}
		if !errors.Is(err, ErrDefer) {
			return zero, err
		}
	}
	return zero, noImplementationError(kind, typeName)
}

// enterTransclusion marks a transclusion target as active on the current
// expansion path. It reports false when the target is already being
// expanded, which means following it again would recurse.
func (c *Converter) enterTransclusion(id string) (func(), bool) {
	key := DashlessID(id)
	if c.visiting[key] {
		return nil, false
	}
	c.visiting[key] = true
	return func() { delete(c.visiting, key) }, true
}

// stubReference renders the stand-in for a transclusion cycle: a link to
// the target instead of its content, plus a diagnostic.
func (c *Converter) stubReference(id string) []ast.Block {
	url := ObjectURL(id)
	c.Warnf(id, "transclusion cycle detected; linking %s instead of expanding it", url)
	return []ast.Block{&ast.Paragraph{Children: []ast.Inline{&ast.Link{
		Children: ast.Str(url),
		Target:   url,
	}}}}
}

// expandSyncedBlock expands the original subtree a synced duplicate points
// at.
func (c *Converter) expandSyncedBlock(ctx context.Context, originalID string, page *Page) ([]ast.Block, error) {
	release, ok := c.enterTransclusion(originalID)
	if !ok {
		return c.stubReference(originalID), nil
	}
	defer release()
	blocks, err := c.childBlocks(ctx, originalID, page)
	if err != nil {
		return nil, err
	}
	return c.BlocksToAST(ctx, blocks)
}

// ExpandPage converts another page's content for inlining at the point of
// reference. Cycles degrade to a reference stub.
func (c *Converter) ExpandPage(ctx context.Context, pageID string) ([]ast.Block, error) {
	release, ok := c.enterTransclusion(pageID)
	if !ok {
		return c.stubReference(pageID), nil
	}
	defer release()
	page, err := c.Page(ctx, pageID)
	if err != nil {
		return nil, err
	}
	content, err := page.Content(ctx)
	if err != nil {
		return nil, err
	}
	return c.BlocksToAST(ctx, content)
}

// RegisterHeading assigns the heading's anchor, records it for tables of
// contents and same-document links, and returns the heading node.
func (c *Converter) RegisterHeading(id string, level int, children []ast.Inline) *ast.Heading {
	text := ast.PlainText(children)
	anchor := c.anchorFor(text)
	if id != "" {
		c.anchors[DashlessID(id)] = anchor
	}
	c.headings = append(c.headings, headingRef{level: level, anchor: anchor, text: text})
	return &ast.Heading{Level: level, Anchor: anchor, Children: children}
}

func (c *Converter) anchorFor(text string) string {
	base := slugify(text)
	if base == "" {
		base = "section"
	}
	count := c.anchorCounts[base]
	c.anchorCounts[base]++
	if count == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, count)
}

// DefineFootnote records that a footnote body with the label exists in the
// document, making references to it resolvable in the second pass.
func (c *Converter) DefineFootnote(label string) {
	c.footnotes[label] = true
}

// ResolveReferences is the second conversion pass: tables of contents
// become heading outlines, anchor references become links, and footnote
// references become markers. Unresolved references degrade to their literal
// content with a diagnostic. Running the pass again leaves the tree
// unchanged.
func (c *Converter) ResolveReferences(blocks []ast.Block) []ast.Block {
	blocks = ast.RewriteBlocks(blocks, func(b ast.Block) ([]ast.Block, bool) {
		if _, ok := b.(*ast.TOC); ok {
			return c.tocBlocks(), true
		}
		return nil, false
	})
	return ast.RewriteInlines(blocks, func(in ast.Inline) ([]ast.Inline, bool) {
		ref, ok := in.(*ast.RefLink)
		if !ok {
			return nil, false
		}
		switch ref.Kind {
		case ast.RefAnchor:
			if anchor, ok := c.anchors[DashlessID(ref.Key)]; ok {
				return []ast.Inline{&ast.Link{Children: ref.Children, Target: "#" + anchor}}, true
			}
		case ast.RefFootnote:
			if c.footnotes[ref.Key] {
				return []ast.Inline{&ast.FootnoteRef{Label: ref.Key}}, true
			}
		}
		c.Warnf("", "unresolved %s reference %q rendered as plain text", string(ref.Kind), ref.Key)
		return ref.Children, true
	})
}

// tocBlocks builds the nested outline a table_of_contents block resolves
// to, from the headings recorded during the first pass.
func (c *Converter) tocBlocks() []ast.Block {
	if len(c.headings) == 0 {
		return nil
	}
	min := c.headings[0].level
	for _, h := range c.headings {
		if h.level < min {
			min = h.level
		}
	}
	list, _ := c.tocList(0, min)
	return []ast.Block{list}
}

// tocList consumes headings from start while their level stays at or below
// the given depth, nesting deeper runs under the preceding item.
func (c *Converter) tocList(start, level int) (ast.Block, int) {
	var items [][]ast.Block
	i := start
	for i < len(c.headings) {
		h := c.headings[i]
		if h.level < level {
			break
		}
		if h.level > level {
			sub, next := c.tocList(i, h.level)
			if len(items) == 0 {
				items = append(items, []ast.Block{sub})
			} else {
				items[len(items)-1] = append(items[len(items)-1], sub)
			}
			i = next
			continue
		}
		items = append(items, []ast.Block{&ast.Paragraph{Children: []ast.Inline{&ast.Link{
			Children: ast.Str(h.text),
			Target:   "#" + h.anchor,
		}}}})
		i++
	}
	return &ast.BulletList{Items: items}, i
}

// renderInlineString renders rich text to the plain string form property
// projections use.
func (c *Converter) renderInlineString(ctx context.Context, texts RichTexts) (string, error) {
	if c.inlineRenderer == nil {
		return texts.PlainText(), nil
	}
	inlines, err := texts.ToAST(ctx)
	if err != nil {
		return "", err
	}
	return c.inlineRenderer(ctx, inlines)
}

// mediaURL resolves the URL output should carry for an asset. Hosted assets
// download through the source when enabled; a failed download degrades to
// the hosted URL with a diagnostic.
func (c *Converter) mediaURL(ctx context.Context, file *File, blockID string) string {
	if file == nil {
		return ""
	}
	if !c.downloadMedia || !file.IsHosted() {
		return file.URL()
	}
	path, err := c.source.DownloadFile(ctx, file.URL(), blockID)
	if err != nil {
		c.Warnf(blockID, "media download failed, keeping hosted url: %v", err)
		return file.URL()
	}
	return path
}

// placeholderBlock stands in for a block whose factory failed, keeping the
// sibling count and order intact.
type placeholderBlock struct {
	BaseBlock
}

func newPlaceholderBlock(c *Converter, data map[string]any, page *Page) *placeholderBlock {
	return &placeholderBlock{BaseBlock: BaseBlock{
		conv:     c,
		id:       getString(data, "id"),
		typeName: getString(data, "type"),
		page:     page,
		raw:      data,
	}}
}

func (b *placeholderBlock) ToAST(ctx context.Context) ([]ast.Block, error) {
	return []ast.Block{placeholderFor(b.typeName)}, nil
}
