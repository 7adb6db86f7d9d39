package export

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-notion-export/notion"
)

// errUnknownTemplateProperty marks a placeholder the row's property values
// cannot fill.
var errUnknownTemplateProperty = errors.New("export: filename template references unknown property")

// ExpandTemplate fills {Property} placeholders with the named property's
// value. Unknown properties and unclosed placeholders are configuration
// errors.
func ExpandTemplate(template string, values map[string]any) (string, error) {
	var sb strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			sb.WriteString(rest)
			return sb.String(), nil
		}
		sb.WriteString(rest[:open])
		length := strings.IndexByte(rest[open:], '}')
		if length < 0 {
			return "", fmt.Errorf("export: unclosed placeholder in filename template %q", template)
		}
		key := rest[open+1 : open+length]
		value, ok := values[key]
		if !ok {
			return "", fmt.Errorf("%w %q", errUnknownTemplateProperty, key)
		}
		sb.WriteString(valueString(value))
		rest = rest[open+length+1:]
	}
}

func valueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case []string:
		return strings.Join(v, ", ")
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", v)
	}
}

var reservedFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeFilename strips characters that are not portable in filenames.
func SanitizeFilename(name string) string {
	cleaned := reservedFilenameChars.ReplaceAllString(name, "")
	cleaned = strings.TrimSpace(cleaned)
	return strings.TrimRight(cleaned, ".")
}

// rowFilename names one database row's file: the template evaluated against
// the row's property values, or a slug of the row title plus the sink
// extension when no template is configured. A template naming a property
// the row does not have degrades to the title slug; warn carries the
// message in that case. An empty name marks the row unnamed.
func rowFilename(template string, values map[string]any, page *notion.Page, extension string) (name string, warn string, err error) {
	if template == "" {
		return titleFilename(page, extension), "", nil
	}
	name, err = ExpandTemplate(template, values)
	if err != nil {
		if errors.Is(err, errUnknownTemplateProperty) {
			warn = fmt.Sprintf("filename template %q names a property this row does not have, using the title instead", template)
			return titleFilename(page, extension), warn, nil
		}
		return "", "", err
	}
	return SanitizeFilename(name), "", nil
}

func titleFilename(page *notion.Page, extension string) string {
	slug := page.Filename()
	if slug == "" {
		return ""
	}
	return slug + extension
}
