package notionapi

import (
	urlkit "github.com/goliatone/go-urlkit"
)

// DefaultBaseURL is the production Notion API root.
const DefaultBaseURL = "https://api.notion.com/v1"

const apiGroup = "notion"

// newRouteManager builds the endpoint table the client resolves requests
// against. Keeping it in a RouteManager lets tests and self-hosted proxies
// swap the base URL without touching call sites.
func newRouteManager(baseURL string) *urlkit.RouteManager {
	return urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    apiGroup,
				BaseURL: baseURL,
				Paths: map[string]string{
					"page":           "/pages/:id",
					"database":       "/databases/:id",
					"database_query": "/databases/:id/query",
					"block":          "/blocks/:id",
					"block_children": "/blocks/:id/children",
				},
			},
		},
	})
}

type routeParams map[string]any

type routeQuery map[string]string

// buildURL resolves a named route with parameters and query values.
func (c *Client) buildURL(route string, params routeParams, query routeQuery) (string, error) {
	builder := c.routes.Group(apiGroup).Builder(route)
	for key, value := range params {
		builder.WithParam(key, value)
	}
	for key, value := range query {
		builder.WithQuery(key, value)
	}
	return builder.Build()
}
