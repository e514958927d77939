package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeProvider is a scriptable Provider for registry tests.
type fakeProvider struct {
	name    string
	descs   []Descriptor
	listErr error
	calls   []string
	reply   string
	callErr error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ListTools(context.Context) ([]Descriptor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.descs, nil
}

func (f *fakeProvider) CallTool(_ context.Context, name string, _ map[string]any) (string, error) {
	f.calls = append(f.calls, name)
	if f.callErr != nil {
		return "", f.callErr
	}
	return f.reply, nil
}

func desc(name string) Descriptor {
	return Descriptor{Name: name, Description: "tool " + name}
}

func TestBuildLaterProviderWins(t *testing.T) {
	a := &fakeProvider{name: "a", descs: []Descriptor{{Name: "x", Description: "from a"}}}
	b := &fakeProvider{name: "b", descs: []Descriptor{{Name: "x", Description: "from b"}}, reply: "b says hi"}

	r := Build(context.Background(), []Provider{a, b}, nil, nil)

	d, ok := r.Lookup("x")
	if !ok {
		t.Fatal("lookup(x) failed after build")
	}
	if d.Description != "from b" {
		t.Errorf("descriptor = %q, want the later provider's", d.Description)
	}

	out, err := r.Invoke(context.Background(), "x", nil)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if out != "b says hi" {
		t.Errorf("invoke routed to %q, want provider b", out)
	}
	if len(a.calls) != 0 {
		t.Error("provider a should not have been called")
	}
}

func TestBuildLocalWinsOverRemote(t *testing.T) {
	remote := &fakeProvider{name: "remote", descs: []Descriptor{desc("render_chart")}, reply: "remote"}
	local := LocalTool{
		Descriptor: desc("render_chart"),
		Run: func(context.Context, map[string]any) (string, error) {
			return "local", nil
		},
	}

	r := Build(context.Background(), []Provider{remote}, []LocalTool{local}, nil)

	out, err := r.Invoke(context.Background(), "render_chart", nil)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if out != "local" {
		t.Errorf("invoke = %q, want the local binding to win", out)
	}
}

func TestBuildPartialProviderFailure(t *testing.T) {
	broken := &fakeProvider{name: "broken", listErr: errors.New("connection refused")}
	healthy := &fakeProvider{name: "healthy", descs: []Descriptor{desc("t1"), desc("t2")}}

	r := Build(context.Background(), []Provider{broken, healthy}, nil, nil)

	if r.Len() != 2 {
		t.Fatalf("registry has %d tools, want 2", r.Len())
	}
	for _, name := range []string{"t1", "t2"} {
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("lookup(%s) failed", name)
		}
	}
}

func TestInvokeToolNotFound(t *testing.T) {
	r := Build(context.Background(), nil, nil, nil)

	_, err := r.Invoke(context.Background(), "missing", nil)
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("error = %v, want ErrToolNotFound", err)
	}
}

func TestOwner(t *testing.T) {
	p := &fakeProvider{name: "websearch", descs: []Descriptor{desc("search")}}
	r := Build(context.Background(), []Provider{p}, []LocalTool{ChartTool()}, nil)

	if owner, _ := r.Owner("search"); owner != "websearch" {
		t.Errorf("Owner(search) = %q, want websearch", owner)
	}
	if owner, _ := r.Owner("render_chart"); owner != "local" {
		t.Errorf("Owner(render_chart) = %q, want local", owner)
	}
	if _, ok := r.Owner("nope"); ok {
		t.Error("Owner(nope) should report not found")
	}
}

func TestDefinitionsOrder(t *testing.T) {
	a := &fakeProvider{name: "a", descs: []Descriptor{desc("one"), desc("two")}}
	r := Build(context.Background(), []Provider{a}, []LocalTool{ChartTool()}, nil)

	defs := r.Definitions()
	want := []string{"one", "two", "render_chart"}
	if len(defs) != len(want) {
		t.Fatalf("got %d definitions, want %d", len(defs), len(want))
	}
	for i, name := range want {
		if defs[i].Name != name {
			t.Errorf("defs[%d] = %q, want %q", i, defs[i].Name, name)
		}
	}
}

// --- chart tool ---

func TestRenderChart(t *testing.T) {
	out, err := renderChart(context.Background(), map[string]any{
		"type":   "line",
		"title":  "AAPL close",
		"labels": []any{"Mon", "Tue"},
		"values": []any{187.4, 189.2},
	})
	if err != nil {
		t.Fatalf("renderChart: %v", err)
	}
	if !strings.HasPrefix(out, "![AAPL close](https://quickchart.io/chart?c=") {
		t.Errorf("output %q is not a Markdown image link to quickchart", out)
	}
}

func TestRenderChartBadInput(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{"unsupported type", map[string]any{"type": "radar", "values": []any{1}}},
		{"missing values", map[string]any{"type": "bar"}},
		{"empty values", map[string]any{"type": "pie", "values": []any{}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := renderChart(context.Background(), tc.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}
