// Package dispatch drives one conversation turn: call the LLM, parse its
// output for a tool tag, execute the tool, fold the result back in, repeat
// until the LLM answers in plain text or the round limit is hit.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"haru/app/client/ollama"
	"haru/app/config"
	"haru/app/service/tools"
	"haru/app/store"

	_ "embed"

	"github.com/google/uuid"
	"github.com/samber/do"
)

//go:embed system_prompt.txt
var systemPromptTemplate string

//go:embed summary_prompt.txt
var summaryPromptTemplate string

const summarySystemPrompt = "You are an assistant that compresses conversation history into short factual summaries."

// LLM is the opaque text-generation collaborator.
type LLM interface {
	Generate(ctx context.Context, systemPrompt string, history []store.Turn) (string, error)
	Model() string
}

type Service struct {
	cfg      *config.Config
	llm      LLM
	store    *store.Store
	registry *tools.Registry
	executor *Executor
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	registry := do.MustInvoke[*tools.Registry](di)

	return &Service{
		cfg:      cfg,
		llm:      do.MustInvoke[*ollama.Client](di),
		store:    do.MustInvoke[*store.Store](di),
		registry: registry,
		executor: NewExecutor(registry, cfg.Chat.ToolTimeoutOrDefault()),
	}, nil
}

// HandleTurn runs the full dispatch loop for one user message and returns
// the final assistant reply. An error means the turn failed terminally (LLM
// unreachable, persistence failure); history appended so far stays intact
// and the conversation remains usable.
//
// ctx cancellation is only honored between rounds: a round in flight always
// completes, so shutdown never leaves a half-executed tool call behind.
func (s *Service) HandleTurn(ctx context.Context, conversationID, text string) (string, error) {
	turnID := uuid.NewString()

	persona, err := s.store.Persona(ctx, conversationID)
	if err != nil {
		return "", fmt.Errorf("failed to load persona: %w", err)
	}

	if err = s.store.AppendTurn(ctx, conversationID, store.RoleUser, text); err != nil {
		return "", fmt.Errorf("failed to persist user turn: %w", err)
	}

	history, err := s.store.History(ctx, conversationID, s.cfg.Chat.HistoryLimit)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}

	summary, err := s.store.Summary(ctx, conversationID)
	if err != nil {
		return "", fmt.Errorf("failed to load summary: %w", err)
	}

	tc := &tools.Context{
		ConversationID: conversationID,
		Persona:        &persona,
	}

	// in-round I/O must survive shutdown; cancellation is checked at round
	// boundaries only
	runCtx := context.WithoutCancel(ctx)

	var lastReply string

	for round := 1; round <= s.cfg.Chat.MaxToolRounds; round++ {
		if ctx.Err() != nil && lastReply != "" {
			slog.Info("Turn interrupted by shutdown, returning last reply",
				"turn_id", turnID,
				"round", round)
			break
		}

		reply, err := s.llm.Generate(runCtx, s.buildSystemPrompt(persona, summary), history)
		if err != nil {
			return "", fmt.Errorf("llm call failed: %w", err)
		}
		lastReply = reply

		requests, _ := Parse(reply, s.registry.Has)
		if len(requests) == 0 {
			if err = s.store.AppendTurn(runCtx, conversationID, store.RoleAssistant, reply); err != nil {
				return "", fmt.Errorf("failed to persist assistant turn: %w", err)
			}

			s.maybeCompress(runCtx, conversationID)

			return reply, nil
		}

		// one tool call per round: the first marker wins, the rest get their
		// chance after the result is folded back in
		req := requests[0]

		slog.Info("Dispatching tool",
			"turn_id", turnID,
			"round", round,
			"tool", req.Tool,
			"arg", req.Arg)

		result := s.executor.Execute(runCtx, req, tc)
		if !result.OK {
			slog.Warn("Tool execution failed",
				"turn_id", turnID,
				"tool", req.Tool,
				"kind", result.Kind,
				"text", result.Text)
		}

		toolTurn := fmt.Sprintf("[Tool Result]\n%s\n\nBased on this data, answer the user's original question naturally.", result.Text)

		if err = s.store.AppendTurn(runCtx, conversationID, store.RoleAssistant, reply); err != nil {
			return "", fmt.Errorf("failed to persist assistant turn: %w", err)
		}
		if err = s.store.AppendTurn(runCtx, conversationID, store.RoleTool, toolTurn); err != nil {
			return "", fmt.Errorf("failed to persist tool turn: %w", err)
		}

		history = append(history,
			store.Turn{Role: store.RoleAssistant, Content: reply},
			store.Turn{Role: store.RoleTool, Content: toolTurn},
		)
	}

	// round limit hit: a possibly-incomplete answer beats an infinite loop
	slog.Warn("Tool round limit reached",
		"turn_id", turnID,
		"max_rounds", s.cfg.Chat.MaxToolRounds)

	if err = s.store.AppendTurn(runCtx, conversationID, store.RoleAssistant, lastReply); err != nil {
		return "", fmt.Errorf("failed to persist assistant turn: %w", err)
	}

	return lastReply, nil
}

func (s *Service) buildSystemPrompt(persona store.Persona, summary string) string {
	summarySection := ""
	if summary != "" {
		summarySection = "\nSummary of the earlier conversation:\n" + summary + "\n"
	}

	templateValues := map[string]string{
		"name":              persona.Name,
		"role":              persona.Role,
		"tone":              persona.Tone,
		"model":             s.llm.Model(),
		"summary":           summarySection,
		"tool_instructions": s.registry.Instructions(),
	}

	prompt := systemPromptTemplate
	for key, value := range templateValues {
		prompt = strings.ReplaceAll(prompt, "{"+key+"}", value)
	}

	return prompt
}

// maybeCompress folds old turns into a persisted summary once the stored
// history grows past the threshold. Best effort: failures are logged and the
// turn is not affected.
func (s *Service) maybeCompress(ctx context.Context, conversationID string) {
	count, err := s.store.CountTurns(ctx, conversationID)
	if err != nil {
		slog.Warn("Failed to count turns for compression", "error", err)
		return
	}

	if count <= s.cfg.Chat.SummaryThreshold {
		return
	}

	all, err := s.store.History(ctx, conversationID, count)
	if err != nil {
		slog.Warn("Failed to load history for compression", "error", err)
		return
	}

	keep := s.cfg.Chat.SummaryKeepRecent
	if len(all) <= keep {
		return
	}
	toSummarize := all[:len(all)-keep]

	var conversation strings.Builder
	for _, t := range toSummarize {
		fmt.Fprintf(&conversation, "[%s]: %s\n", strings.ToUpper(t.Role), t.Content)
	}

	existing, err := s.store.Summary(ctx, conversationID)
	if err != nil {
		slog.Warn("Failed to load summary for compression", "error", err)
		return
	}

	existingSection := ""
	if existing != "" {
		existingSection = "\n기존 요약:\n" + existing + "\n\n추가 대화:"
	}

	prompt := summaryPromptTemplate
	prompt = strings.ReplaceAll(prompt, "{existing_summary}", existingSection)
	prompt = strings.ReplaceAll(prompt, "{conversation}", conversation.String())

	newSummary, err := s.llm.Generate(ctx, summarySystemPrompt, []store.Turn{
		{Role: store.RoleUser, Content: prompt},
	})
	if err != nil {
		slog.Warn("Summary compression failed", "error", err)
		return
	}

	if err = s.store.SaveSummary(ctx, conversationID, newSummary, len(toSummarize)); err != nil {
		slog.Warn("Failed to save summary", "error", err)
		return
	}

	if err = s.store.DeleteOldTurns(ctx, conversationID, keep); err != nil {
		slog.Warn("Failed to delete compressed turns", "error", err)
		return
	}

	slog.Info("Compressed conversation history",
		"conversation_id", conversationID,
		"summarized", len(toSummarize),
		"kept", keep)
}
