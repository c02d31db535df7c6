package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/archsynth/internal/presentation/graph"
	"github.com/aretw0/archsynth/pkg/domain"
	pg "github.com/aretw0/archsynth/pkg/graph"
)

func TestLayerMermaid(t *testing.T) {
	l := &domain.LayerSnapshot{
		Name: "communication",
		Objects: []pg.Object{
			{ID: 1, Kind: pg.KindNode, Type: "component", Name: "a"},
			{ID: 2, Kind: pg.KindNode, Type: "proxy", Name: "p-e"},
			{ID: 3, Kind: pg.KindEdge, Type: "flow", Name: "e-in", Source: 1, Target: 2},
		},
		Slots: []domain.SlotSnapshot{
			{Object: 1, Param: "platform", Value: "linux", HasValue: true},
			{Object: 1, Param: "zone", Candidates: domain.NewSet("eu", "us")},
		},
	}

	got := graph.LayerMermaid(l)
	for _, want := range []string{
		"graph LR\n",
		`o1["a: component<br/>platform=linux"]`,
		`o2[["p-e: proxy"]]`,
		`o1 -- "e-in" --> o2`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("LayerMermaid() = \n%v\nWant substring: %v", got, want)
		}
	}
	if strings.Contains(got, "zone") {
		t.Errorf("unchosen slot rendered:\n%v", got)
	}
}

func TestDecisionMermaid(t *testing.T) {
	cands := domain.NewSet("A", "B")
	decisions := []domain.DecisionSnapshot{
		{DecisionRef: domain.DecisionRef{Seq: 1, Kind: domain.OpNarrow, Engine: "static", Layer: "functional", Param: "platform", Objects: []pg.ID{1}}, Candidates: &cands},
		{DecisionRef: domain.DecisionRef{Seq: 2, Kind: domain.OpChoose, Engine: "first", Layer: "functional", Param: "platform", Objects: []pg.ID{1}}, Parents: []uint64{1}, Value: "B"},
		{DecisionRef: domain.DecisionRef{Seq: 3, Kind: domain.OpValidate, Engine: "forbid", Layer: "functional", Objects: []pg.ID{1}}, Parents: []uint64{2}},
	}

	tests := []struct {
		name     string
		overlay  *graph.DecisionOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Shapes And Links",
			contains: []string{
				`d0(("root"))`,
				`d1[/"1 narrow static<br/>functional.platform [1]<br/>{A, B}"/]`,
				`d2{{"2 choose first<br/>functional.platform [1]<br/>= B"}}`,
				`d3{"3 validate forbid<br/>functional [1]"}`,
				"d0 --> d1",
				"d1 --> d2",
				"d2 --> d3",
			},
			excludes: []string{"classDef"},
		},
		{
			name:    "Overlay",
			overlay: &graph.DecisionOverlay{Failing: 3, Culprit: 2},
			contains: []string{
				"class d3 failing;",
				"class d2 culprit;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.DecisionMermaid(decisions, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("DecisionMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("DecisionMermaid() = \n%v\nUnexpected substring: %v", got, bad)
				}
			}
		})
	}
}
