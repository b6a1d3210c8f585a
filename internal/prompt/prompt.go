// Package prompt renders the generation instruction for a discussion.
package prompt

import (
	"fmt"
	"strings"

	"symposium/internal/selection"
)

// JoinNames joins names as "A", "A and B" or "A, B and C".
func JoinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

// Build renders the instruction sent to the text generation service. The
// output depends only on the snapshot, so equal selections give equal prompts.
func Build(snap selection.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a discussion between %s about the topic: %q.\n",
		JoinNames(snap.Names()), snap.Topic)

	if snap.Moderator != nil {
		fmt.Fprintf(&b, "%s is the moderator and guides the discussion: opening it, "+
			"asking follow-up questions and keeping it on topic.\n", snap.Moderator.DisplayName)
	}
	b.WriteString("Each participant speaks in their own historically grounded voice, " +
		"reflecting the views, knowledge and manner of speaking of their era.\n")

	var ctx []string
	for _, p := range snap.Participants {
		if p.Role == "" && p.Description == "" {
			continue
		}
		line := "- " + p.DisplayName
		if p.Role != "" {
			line += " (" + p.Role + ")"
		}
		if p.Description != "" {
			line += ": " + p.Description
		}
		ctx = append(ctx, line)
	}
	if len(ctx) > 0 {
		b.WriteString("About the participants:\n")
		b.WriteString(strings.Join(ctx, "\n"))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Write one line per turn, in this speaking order: %s, repeating the order as needed. "+
		"Do not include blank commentary, stage directions or a title.", strings.Join(snap.Names(), ", "))
	return b.String()
}
