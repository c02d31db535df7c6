package tui

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/aretw0/archsynth/pkg/domain"
)

// ReportMarkdown formats a run report as Markdown.
func ReportMarkdown(r domain.Report) string {
	var sb strings.Builder
	sb.WriteString("# archsynth report\n\n")
	fmt.Fprintf(&sb, "**Outcome:** %s  \n", r.Outcome)
	fmt.Fprintf(&sb, "**Backend:** %s\n\n", r.Backend)
	if r.Error != "" {
		fmt.Fprintf(&sb, "> %s\n\n", r.Error)
	}

	s := r.Stats
	sb.WriteString("## Search\n\n")
	sb.WriteString("| Metric | Value |\n|---|---|\n")
	rows := [][2]string{
		{"Attempts", fmt.Sprint(s.Attempts)},
		{"Rollbacks", fmt.Sprint(s.Rollbacks)},
		{"Decisions rolled back", fmt.Sprint(s.RolledBack)},
		{"Live decisions", fmt.Sprint(s.Decisions)},
		{"Peak live choices", fmt.Sprint(s.PeakChoices)},
		{"Search space", bigString(s.SearchSpace)},
		{"Cut off", bigString(s.CutOff)},
		{"Duration", s.Duration.String()},
	}
	for _, row := range rows {
		fmt.Fprintf(&sb, "| %s | %s |\n", row[0], row[1])
	}

	for _, l := range r.Layers {
		fmt.Fprintf(&sb, "\n## Layer %s\n\n", l.Name)
		fmt.Fprintf(&sb, "%d nodes, %d edges.\n", l.Nodes, l.Edges)
		if len(l.Values) == 0 {
			continue
		}
		sb.WriteString("\n| Object | Parameter | Value |\n|---|---|---|\n")
		objs := make([]string, 0, len(l.Values))
		for o := range l.Values {
			objs = append(objs, o)
		}
		sort.Strings(objs)
		for _, o := range objs {
			params := make([]string, 0, len(l.Values[o]))
			for p := range l.Values[o] {
				params = append(params, p)
			}
			sort.Strings(params)
			for _, p := range params {
				fmt.Fprintf(&sb, "| %s | %s | %v |\n", o, p, l.Values[o][p])
			}
		}
	}
	return sb.String()
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
