package launchpad

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"launchpad/internal/intent"
	"launchpad/internal/site"
	"launchpad/pkg/domain"
)

type fakeAccessor struct {
	doc      *domain.Site
	original *domain.Site
	gets     atomic.Int32
	saves    atomic.Int32
	gate     chan struct{}
	getErr   error
	saveErr  error
}

func (f *fakeAccessor) GetSite(context.Context) (*domain.Site, error) {
	f.gets.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.doc, nil
}

func (f *fakeAccessor) Save(context.Context) error {
	f.saves.Add(1)
	return f.saveErr
}

func (f *fakeAccessor) GroupFromOriginalSite(_ context.Context, id string) (domain.Group, error) {
	if f.original == nil {
		return domain.Group{}, site.ErrGroupNotFound
	}
	g, ok := f.original.Groups[id]
	if !ok {
		return domain.Group{}, site.ErrGroupNotFound
	}
	return g.Clone(), nil
}

// echoService resolves every well-formed hash to a URL application.
type echoService struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (s *echoService) ResolveTileIntent(_ context.Context, hash string) (domain.ResolutionResult, error) {
	s.calls.Add(1)
	if s.fail[hash] {
		return domain.ResolutionResult{}, intent.ErrNoMatchingInbound
	}
	return domain.ResolutionResult{Title: "Resolved " + hash, ApplicationType: domain.ApplicationTypeURL, URL: "https://apps.example.com"}, nil
}

func (s *echoService) Links(context.Context, string, string) ([]intent.Link, error) { return nil, nil }
func (s *echoService) PrimaryIntent(context.Context, string) (intent.Link, error) {
	return intent.Link{}, errors.New("no primary intent")
}
func (s *echoService) ParseShellHash(hash string) (domain.Target, bool) {
	return intent.ParseShellHash(hash)
}
func (s *echoService) ConstructShellHash(t domain.Target) string { return intent.ConstructShellHash(t) }

type recordingMetrics struct {
	mu  sync.Mutex
	ops map[string][]bool
}

func (m *recordingMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ops == nil {
		m.ops = make(map[string][]bool)
	}
	m.ops[op] = append(m.ops[op], success)
}

func (m *recordingMetrics) outcomes(op string) []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.ops[op]...)
}

type fakeView struct {
	refreshed int
	visible   []bool
	props     []domain.TileProperties
}

func (v *fakeView) Refresh()                                  { v.refreshed++ }
func (v *fakeView) SetVisible(visible bool)                   { v.visible = append(v.visible, visible) }
func (v *fakeView) SetProperties(props domain.TileProperties) { v.props = append(v.props, props) }

func fixtureSite() *domain.Site {
	return &domain.Site{
		Version:     "3.1.0",
		GroupsOrder: []string{"home", "sales"},
		Groups: map[string]domain.Group{
			"home": {
				ID: "home", Title: "Home", Default: true, Preset: true,
				Payload: domain.GroupPayload{
					Tiles: []domain.Tile{{ID: "t-orders", AppID: "orders"}},
					Links: []domain.Tile{{ID: "l-web", URL: "https://example.com"}},
				},
			},
			"sales": {
				ID: "sales", Title: "Sales",
				Payload: domain.GroupPayload{
					Tiles: []domain.Tile{{ID: "t-leads", AppID: "leads"}},
					Links: []domain.Tile{},
				},
			},
		},
		Applications: map[string]domain.AppDescriptor{
			"orders": {
				ID: "orders", Title: "Orders",
				Inbounds: map[string]domain.Inbound{
					"display": {SemanticObject: "SalesOrder", Action: "display", Title: "Display Orders"},
				},
			},
			"leads": {
				ID: "leads", Title: "Leads", Icon: "sap-icon://lead",
				Inbounds: map[string]domain.Inbound{
					"manage": {SemanticObject: "Lead", Action: "manage"},
				},
			},
			"broken": {ID: "broken", Title: "Broken"},
		},
		Catalogs: map[string]domain.Catalog{
			"sales":   {ID: "sales", Title: "Sales", Payload: domain.CatalogPayload{AppIDs: []string{"orders", "leads", "missing", "broken"}}},
			"finance": {ID: "finance", Title: "Finance", Payload: domain.CatalogPayload{AppIDs: []string{"orders"}}},
		},
	}
}

type harness struct {
	adapter  *Adapter
	accessor *fakeAccessor
	service  *echoService
	metrics  *recordingMetrics
	logs     *bytes.Buffer
}

func newHarness(t *testing.T, doc *domain.Site, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		accessor: &fakeAccessor{doc: doc, original: doc.Clone()},
		service:  &echoService{},
		metrics:  &recordingMetrics{},
		logs:     &bytes.Buffer{},
	}
	logger := slog.New(slog.NewJSONHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]Option{WithLogger(logger), WithMetrics(h.metrics)}, opts...)
	h.adapter = New(h.accessor, h.service, opts...)
	return h
}

func (h *harness) groups(t *testing.T) []domain.Group {
	t.Helper()
	groups, err := h.adapter.Groups(context.Background())
	if err != nil {
		t.Fatalf("groups: %v", err)
	}
	return groups
}

func findGroup(groups []domain.Group, id string) (domain.Group, bool) {
	for _, g := range groups {
		if g.ID == id {
			return g, true
		}
	}
	return domain.Group{}, false
}

func tileIDs(tiles []domain.Tile) []string {
	out := make([]string, len(tiles))
	for i, t := range tiles {
		out[i] = t.ID
	}
	return out
}

func logRecords(t *testing.T, buf *bytes.Buffer, msg string) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	for dec.More() {
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			t.Fatalf("decode log record: %v", err)
		}
		if rec["msg"] == msg {
			out = append(out, rec)
		}
	}
	return out
}
