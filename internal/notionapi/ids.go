package notionapi

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ParseID extracts a Notion object id from user input: a share link, a
// dashed UUID, or a bare 32 character hex id. Share links may carry the page
// title in the final path segment; the id is its trailing hex run. The
// returned id has dashes removed.
func ParseID(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.ReplaceAll(s, "-", "")
	if len(s) > 32 {
		s = s[len(s)-32:]
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("notionapi: %q is not a notion id or share link", raw)
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}
