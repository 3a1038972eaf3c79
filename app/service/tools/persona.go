package tools

import (
	"context"
	"fmt"
	"strings"

	"haru/app/store"
)

const keepField = "_"

type PersonaTool struct {
	store *store.Store
}

func (t *PersonaTool) Name() string {
	return "PERSONA"
}

func (t *PersonaTool) Description() string {
	return `- Persona: When the user wants to change your name, role, or speaking style, output [PERSONA:name,role,tone]
  - name: new name (use _ to keep current)
  - role: new role description (use _ to keep current)
  - tone: new speaking style (use _ to keep current)
  - e.g. [PERSONA:뽀삐,_,_] (change name only), [PERSONA:_,_,반말] (change tone only), [PERSONA:제이,비서,존댓말] (change all)`
}

func (t *PersonaTool) UsageRules() string {
	return "- For persona, only use when the user explicitly asks to change your name, role, or tone. Use _ for fields that should stay the same."
}

func (t *PersonaTool) Handle(ctx context.Context, arg string, tc *Context) (string, error) {
	fields := strings.Split(arg, ",")
	if len(fields) != 3 {
		return "", fmt.Errorf("cannot parse persona request %q, expected name,role,tone", arg)
	}

	newName := strings.TrimSpace(fields[0])
	newRole := strings.TrimSpace(fields[1])
	newTone := strings.TrimSpace(fields[2])

	p := *tc.Persona
	if newName != keepField {
		p.Name = newName
	}
	if newRole != keepField {
		p.Role = newRole
	}
	if newTone != keepField {
		p.Tone = newTone
	}

	if err := t.store.SetPersona(ctx, tc.ConversationID, p); err != nil {
		return "", fmt.Errorf("failed to save persona: %w", err)
	}

	// visible to the next round's system prompt
	*tc.Persona = p

	var changes []string
	if newName != keepField {
		changes = append(changes, "- Name: "+p.Name)
	}
	if newRole != keepField {
		changes = append(changes, "- Role: "+p.Role)
	}
	if newTone != keepField {
		changes = append(changes, "- Tone: "+p.Tone)
	}
	if len(changes) == 0 {
		return "Persona unchanged.", nil
	}

	return "Persona updated successfully:\n" + strings.Join(changes, "\n"), nil
}
