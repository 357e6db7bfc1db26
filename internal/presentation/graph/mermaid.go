package graph

import (
	"fmt"
	"strings"

	"github.com/meridian-tools/meridian/pkg/catalog"
	"github.com/meridian-tools/meridian/pkg/domain"
)

// CatalogOverlay contains session data to visualize on the catalog.
type CatalogOverlay struct {
	// DispatchedOps marks operations the session already ran.
	DispatchedOps []domain.OpID
}

// GenerateMermaid produces a Mermaid flowchart of the action catalog.
// It applies semantic styling:
// - Menu: ((Circle))
// - Bounds action: [/Parallelogram/] (collects input)
// - Statistic action: [[Subroutine]]
// - Season action: [Rectangle]
// Overlay styles highlight operations the session dispatched.
func GenerateMermaid(menus []catalog.Menu, overlay *CatalogOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, m := range menus {
		writeMenu(&sb, m, "")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef dispatched fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")

		seen := make(map[string]bool)
		for _, op := range overlay.DispatchedOps {
			safeID := sanitizeMermaidID(string(op))
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s dispatched;\n", safeID))
		}
	}

	return sb.String()
}

func writeMenu(sb *strings.Builder, m catalog.Menu, parentID string) {
	menuID := sanitizeMermaidID(m.Title)
	fmt.Fprintf(sb, "    %s((\"%s\"))\n", menuID, m.Title)
	if parentID != "" {
		fmt.Fprintf(sb, "    %s --> %s\n", parentID, menuID)
	}

	for _, a := range m.Actions {
		actionID := sanitizeMermaidID(string(a.Op))

		// Node shape based on action kind
		opener, closer := "[", "]"
		switch a.Kind {
		case domain.ActionBounds:
			if a.PromptFreq {
				opener, closer = "[/", "/]" // collects input
			}
		case domain.ActionStatistic:
			opener, closer = "[[", "]]"
		}

		fmt.Fprintf(sb, "    %s%s\"%s\"%s\n", actionID, opener, a.Label, closer)
		fmt.Fprintf(sb, "    %s --> %s\n", menuID, actionID)
	}

	for _, sub := range m.Submenus {
		writeMenu(sb, sub, menuID)
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")
	s = strings.ReplaceAll(s, "%", "pct")
	return s
}
