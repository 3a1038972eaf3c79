package tools

import (
	"context"
	"fmt"
	"strings"

	"haru/app/client/ddg"
)

const maxSearchResults = 5

type SearchTool struct {
	client *ddg.Client
}

func (t *SearchTool) Name() string {
	return "SEARCH"
}

func (t *SearchTool) Description() string {
	return `- Search: When the user asks about recent events, current information, or anything requiring up-to-date data beyond your knowledge, output [SEARCH:query]
  - e.g. [SEARCH:비트코인 시세], [SEARCH:파이썬 3.13 새 기능]
  - Use only when your knowledge is insufficient or the user explicitly asks you to search the web`
}

func (t *SearchTool) UsageRules() string {
	return "- For search, use when the question requires current/recent information or the user explicitly asks to search. Extract the core search query from their question."
}

func (t *SearchTool) Handle(ctx context.Context, arg string, _ *Context) (string, error) {
	query := strings.TrimSpace(arg)
	if query == "" {
		return "", fmt.Errorf("no search query given")
	}

	results, err := t.client.Search(ctx, query, maxSearchResults)
	if err != nil {
		return "", fmt.Errorf("failed to search for %q: %w", query, err)
	}

	if len(results) == 0 {
		return fmt.Sprintf("No search results for %q.", query), nil
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Search results for %q:\n", query)
	for i, r := range results {
		fmt.Fprintf(&builder, "%d. %s\n   %s\n   %s\n", i+1, r.Title, r.Text, r.URL)
	}

	return strings.TrimSpace(builder.String()), nil
}
