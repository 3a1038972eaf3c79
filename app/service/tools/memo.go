package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"haru/app/store"

	"github.com/elliotchance/pie/v2"
)

const memoListLimit = 20

type MemoSaveTool struct {
	store *store.Store
}

func (t *MemoSaveTool) Name() string {
	return "MEMO_SAVE"
}

func (t *MemoSaveTool) Description() string {
	return "- Memo save: When the user wants to save a note, output [MEMO_SAVE:content] (e.g. [MEMO_SAVE:우유 사기], [MEMO_SAVE:프로젝트 마감일 금요일])"
}

func (t *MemoSaveTool) UsageRules() string {
	return `- For memo, detect when the user wants to save information for later ("메모해줘", "기억해줘", "저장해줘"), list memos ("메모 뭐 있었지", "메모 목록"), search ("메모 찾아줘"), or delete ("메모 삭제", "첫 번째 메모 삭제"). When deleting, extract the position number (1st=1, 2nd=2, 3rd=3, etc.).`
}

func (t *MemoSaveTool) Handle(ctx context.Context, arg string, tc *Context) (string, error) {
	content := strings.TrimSpace(arg)
	if content == "" {
		return "", fmt.Errorf("no memo content given")
	}

	id, err := t.store.AddMemo(ctx, tc.ConversationID, content)
	if err != nil {
		return "", fmt.Errorf("failed to save memo: %w", err)
	}

	return fmt.Sprintf("Memo saved:\n- ID: #%d\n- Content: %s", id, content), nil
}

type MemoListTool struct {
	store *store.Store
}

func (t *MemoListTool) Name() string {
	return "MEMO_LIST"
}

func (t *MemoListTool) Description() string {
	return "- Memo list: When the user asks what memos are saved, output [MEMO_LIST]"
}

func (t *MemoListTool) UsageRules() string {
	return ""
}

func (t *MemoListTool) Handle(ctx context.Context, _ string, tc *Context) (string, error) {
	memos, err := t.store.Memos(ctx, tc.ConversationID, memoListLimit)
	if err != nil {
		return "", fmt.Errorf("failed to list memos: %w", err)
	}

	if len(memos) == 0 {
		return "No memos are saved.", nil
	}

	return "Saved memos:\n" + formatMemos(memos), nil
}

type MemoSearchTool struct {
	store *store.Store
}

func (t *MemoSearchTool) Name() string {
	return "MEMO_SEARCH"
}

func (t *MemoSearchTool) Description() string {
	return "- Memo search: When the user looks for a saved memo, output [MEMO_SEARCH:keyword] (e.g. [MEMO_SEARCH:우유], [MEMO_SEARCH:회의])"
}

func (t *MemoSearchTool) UsageRules() string {
	return ""
}

func (t *MemoSearchTool) Handle(ctx context.Context, arg string, tc *Context) (string, error) {
	query := strings.TrimSpace(arg)
	if query == "" {
		return "", fmt.Errorf("no search keyword given")
	}

	memos, err := t.store.SearchMemos(ctx, tc.ConversationID, query)
	if err != nil {
		return "", fmt.Errorf("failed to search memos: %w", err)
	}

	if len(memos) == 0 {
		return fmt.Sprintf("No memos matched %q.", query), nil
	}

	return fmt.Sprintf("Memos matching %q:\n%s", query, formatMemos(memos)), nil
}

type MemoDeleteTool struct {
	store *store.Store
}

func (t *MemoDeleteTool) Name() string {
	return "MEMO_DEL"
}

func (t *MemoDeleteTool) Description() string {
	return `- Memo delete: When the user wants to delete a memo, output [MEMO_DEL:position] with its position in the list (e.g. [MEMO_DEL:1] for first, [MEMO_DEL:2] for second)
    IMPORTANT: Use the position number (1st, 2nd, 3rd...) from the list, NOT the database ID`
}

func (t *MemoDeleteTool) UsageRules() string {
	return ""
}

func (t *MemoDeleteTool) Handle(ctx context.Context, arg string, tc *Context) (string, error) {
	position, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return "", fmt.Errorf("invalid memo position %q", arg)
	}

	// The LLM speaks in list positions, the store in row ids; resolve via the
	// same newest-first ordering MEMO_LIST shows.
	memos, err := t.store.Memos(ctx, tc.ConversationID, memoListLimit)
	if err != nil {
		return "", fmt.Errorf("failed to list memos: %w", err)
	}

	if position < 1 || position > len(memos) {
		return fmt.Sprintf("There are only %d memos; memo %d was not found.", len(memos), position), nil
	}

	target := memos[position-1]

	deleted, err := t.store.DeleteMemo(ctx, tc.ConversationID, target.ID)
	if err != nil {
		return "", fmt.Errorf("failed to delete memo: %w", err)
	}
	if !deleted {
		return fmt.Sprintf("Memo #%d was not found.", target.ID), nil
	}

	return fmt.Sprintf("Memo deleted:\n- #%d: %s", target.ID, target.Content), nil
}

func formatMemos(memos []store.Memo) string {
	return strings.Join(pie.Map(memos, func(m store.Memo) string {
		return fmt.Sprintf("- #%d: %s (saved %s)", m.ID, m.Content, m.CreatedAt.Format("2006-01-02 15:04"))
	}), "\n")
}
