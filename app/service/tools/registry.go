package tools

import (
	"fmt"
	"strings"

	"haru/app/client/ddg"
	"haru/app/client/exchange"
	"haru/app/client/openmeteo"
	"haru/app/store"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

// Registry maps tag names to handlers. It is built once at startup and never
// changes afterwards.
type Registry struct {
	handlers map[string]Handler
	order    []string
}

func NewRegistry(di *do.Injector) (*Registry, error) {
	st := do.MustInvoke[*store.Store](di)
	weatherClient := do.MustInvoke[*openmeteo.Client](di)
	exchangeClient := do.MustInvoke[*exchange.Client](di)
	searchClient := do.MustInvoke[*ddg.Client](di)

	return NewRegistryWith(
		&WeatherTool{client: weatherClient},
		&ExchangeTool{client: exchangeClient},
		&ReminderCreateTool{store: st},
		&ReminderListTool{store: st},
		&ReminderDeleteTool{store: st},
		&PersonaTool{store: st},
		&MemoSaveTool{store: st},
		&MemoListTool{store: st},
		&MemoSearchTool{store: st},
		&MemoDeleteTool{store: st},
		&SearchTool{client: searchClient},
		&BriefingSetTool{store: st},
		&BriefingGetTool{store: st},
	)
}

func NewRegistryWith(handlers ...Handler) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler)}

	for _, h := range handlers {
		if err := r.Register(h); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds a handler. Two handlers with the same name is a
// configuration bug, fatal at startup.
func (r *Registry) Register(h Handler) error {
	name := h.Name()
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("duplicate tool name %q", name)
	}

	r.handlers[name] = h
	r.order = append(r.order, name)

	return nil
}

func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Instructions synthesizes the tool section of the system prompt from every
// registered handler, in registration order.
func (r *Registry) Instructions() string {
	handlers := pie.Map(r.order, func(name string) Handler {
		return r.handlers[name]
	})

	descriptions := pie.Map(handlers, Handler.Description)

	rules := pie.Filter(pie.Map(handlers, Handler.UsageRules), func(s string) bool {
		return s != ""
	})

	return fmt.Sprintf(`You have access to the following tools. When you need real-time information or to perform an action, use them by outputting the exact tag format.
IMPORTANT: Output ONLY the tag with no other text when you use a tool.

Available tools:
%s

Rules:
- Use tools only when the user is clearly asking for real-time information or requesting an action.
%s
- For translation requests ("번역해줘", "영어로", "translate this"), directly translate without using any tool tag. You have built-in multilingual capabilities.
- Output ONLY the tool tag, nothing else. Do not add any explanation before or after the tag.`,
		strings.Join(descriptions, "\n"),
		strings.Join(rules, "\n"))
}
