package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/archsynth/pkg/domain"
	"github.com/aretw0/archsynth/pkg/ports"
)

const masked = "***"

type piiMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks sensitive data before it
// is stored: object params whose key matches one of the patterns, and the
// values and candidates of matching parameter slots.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, id string, snap *domain.Snapshot) error {
	// The snapshot may still be in use by the caller.
	cloned := *snap
	cloned.Layers = make([]domain.LayerSnapshot, len(snap.Layers))
	for i, l := range snap.Layers {
		cloned.Layers[i] = m.mask(l)
	}
	return m.next.Save(ctx, id, &cloned)
}

func (m *piiMiddleware) mask(l domain.LayerSnapshot) domain.LayerSnapshot {
	out := l
	out.Objects = append(out.Objects[:0:0], l.Objects...)
	for i := range out.Objects {
		params := deepCopyMap(out.Objects[i].Params)
		maskMap(params, m.patterns)
		out.Objects[i].Params = params
	}
	out.Slots = append(out.Slots[:0:0], l.Slots...)
	for i, s := range out.Slots {
		if !m.sensitive(s.Param) {
			continue
		}
		if s.HasValue {
			out.Slots[i].Value = masked
		}
		out.Slots[i].Candidates = domain.NewSet()
		out.Slots[i].Failed = domain.NewSet()
	}
	return out
}

func (m *piiMiddleware) sensitive(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

func (m *piiMiddleware) Load(ctx context.Context, id string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, id)
}

func (m *piiMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = masked
				break
			}
		}
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
