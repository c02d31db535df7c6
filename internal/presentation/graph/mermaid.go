package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/graph"
)

// DecisionOverlay highlights decisions involved in the last rollback.
type DecisionOverlay struct {
	Failing uint64
	Culprit uint64
}

// LayerMermaid produces a Mermaid flowchart of one captured layer. Nodes
// carry their type and chosen values; edges are labelled with their name.
// Node shapes follow the object type:
// - proxy: [[Subroutine]]
// - anything else: [Rectangle]
func LayerMermaid(l *domain.LayerSnapshot) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	fmt.Fprintf(&sb, "    %%%% layer %s\n", l.Name)

	values := chosen(l)
	for _, obj := range l.Objects {
		if obj.IsEdge() {
			continue
		}
		opener, closer := "[", "]"
		if obj.Type == "proxy" {
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", objectID(obj.ID), opener, label(obj, values[obj.ID]), closer)
	}
	for _, obj := range l.Objects {
		if !obj.IsEdge() {
			continue
		}
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", objectID(obj.Source), label(obj, values[obj.ID]), objectID(obj.Target))
	}
	return sb.String()
}

func chosen(l *domain.LayerSnapshot) map[graph.ID][]string {
	out := make(map[graph.ID][]string)
	for _, s := range l.Slots {
		if s.HasValue {
			out[s.Object] = append(out[s.Object], fmt.Sprintf("%s=%v", s.Param, s.Value))
		}
	}
	for _, v := range out {
		sort.Strings(v)
	}
	return out
}

func label(obj graph.Object, values []string) string {
	text := obj.Name
	if text == "" {
		text = fmt.Sprintf("#%d", obj.ID)
	}
	if !obj.IsEdge() {
		text += ": " + obj.Type
	}
	for _, v := range values {
		text += "<br/>" + v
	}
	return escape(text)
}

// DecisionMermaid produces a Mermaid flowchart of a decision graph. Shapes
// follow the operation:
// - root: ((Circle))
// - narrow: [/Parallelogram/]
// - choose: {{Hexagon}}
// - translate: [[Subroutine]]
// - validate: {Rhombus}
func DecisionMermaid(decisions []domain.DecisionSnapshot, overlay *DecisionOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    d0((\"root\"))\n")

	for _, d := range decisions {
		opener, closer := "[", "]"
		switch d.Kind {
		case domain.OpNarrow:
			opener, closer = "[/", "/]"
		case domain.OpChoose:
			opener, closer = "{{", "}}"
		case domain.OpTranslate:
			opener, closer = "[[", "]]"
		case domain.OpValidate:
			opener, closer = "{", "}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", decisionID(d.Seq), opener, escape(decisionLabel(d)), closer)

		if len(d.Parents) == 0 {
			fmt.Fprintf(&sb, "    d0 --> %s\n", decisionID(d.Seq))
		}
		for _, p := range d.Parents {
			fmt.Fprintf(&sb, "    %s --> %s\n", decisionID(p), decisionID(d.Seq))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on both light and dark themes.
		sb.WriteString("    classDef failing fill:#ffcdd2,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef culprit fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		if overlay.Failing != 0 {
			fmt.Fprintf(&sb, "    class %s failing;\n", decisionID(overlay.Failing))
		}
		if overlay.Culprit != 0 {
			fmt.Fprintf(&sb, "    class %s culprit;\n", decisionID(overlay.Culprit))
		}
	}
	return sb.String()
}

func decisionLabel(d domain.DecisionSnapshot) string {
	text := fmt.Sprintf("%d %s", d.Seq, d.Kind)
	if d.Engine != "" {
		text += " " + d.Engine
	}
	text += "<br/>" + d.Layer
	if d.Param != "" {
		text += "." + d.Param
	}
	if len(d.Objects) > 0 {
		ids := make([]string, len(d.Objects))
		for i, id := range d.Objects {
			ids[i] = fmt.Sprint(id)
		}
		text += " [" + strings.Join(ids, ",") + "]"
	}
	switch {
	case d.Kind == domain.OpChoose:
		text += fmt.Sprintf("<br/>= %v", d.Value)
	case d.Candidates != nil:
		text += "<br/>" + d.Candidates.String()
	case d.Target != "":
		text += fmt.Sprintf("<br/>to %s: %d", d.Target, len(d.Produced))
	}
	return text
}

func objectID(id graph.ID) string { return fmt.Sprintf("o%d", id) }

func decisionID(seq uint64) string { return fmt.Sprintf("d%d", seq) }

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
