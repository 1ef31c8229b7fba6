package navgraph

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorustyt/gonavgraph/common"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func cacheFixture() []nodeSpec {
	return []nodeSpec{
		{"A", common.Vec3{0, 0, 0}},
		{"B", common.Vec3{2, 0, 0}},
		{"C", common.Vec3{3, 0.5, 1}},
		{"D", common.Vec3{1.25, 0, 2.75}},
		{"far", common.Vec3{80, 0, 80}},
		{"far2", common.Vec3{81.5, 0, 79}},
	}
}

func register(t *testing.T, g *Graph, nodes []nodeSpec) {
	t.Helper()
	if err := g.Reserve(len(nodes)); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	for i, n := range nodes {
		if _, err := g.Register(n.name, i+1, n.pos, nil); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
}

func TestCacheRoundTrip(t *testing.T) {
	p := Params{MaxEdges: 2, MinEdges: 1, MaxEdgeDistance: 3, MaxHeight: 2, NodesPerCell: 2}
	for _, file := range []string{"ainodes.xml", "ainodes.bin"} {
		t.Run(file, func(t *testing.T) {
			src := buildGraph(t, p, clearRays, cacheFixture()...)
			path := filepath.Join(t.TempDir(), file)
			if err := src.SaveToFile(path); err != nil {
				t.Fatalf("save: %v", err)
			}

			// no ray caster: loading must not depend on line of sight
			dst := New(WithParams(p))
			register(t, dst, cacheFixture())
			if err := dst.LoadFromFile(path); err != nil {
				t.Fatalf("load: %v", err)
			}
			if !dst.Compiled() || dst.Components() != src.Components() {
				t.Fatalf("components %d, want %d", dst.Components(), src.Components())
			}
			for i := 0; i < src.Len(); i++ {
				a, b := src.Node(i), dst.NodeByName(src.Node(i).Name)
				if a.ListID != b.ListID {
					t.Fatalf("%s list id %d, want %d", a.Name, b.ListID, a.ListID)
				}
				if len(a.Edges) != len(b.Edges) {
					t.Fatalf("%s has %d edges, want %d", a.Name, len(b.Edges), len(a.Edges))
				}
				for j := range a.Edges {
					if a.Edges[j].To.Name != b.Edges[j].To.Name || a.Edges[j].Distance != b.Edges[j].Distance {
						t.Fatalf("%s edge %d: got %s/%v want %s/%v", a.Name, j,
							b.Edges[j].To.Name, b.Edges[j].Distance, a.Edges[j].To.Name, a.Edges[j].Distance)
					}
					if b.Edges[j].To != dst.NodeByName(a.Edges[j].To.Name) {
						t.Fatalf("edge target not resolved into the loading graph")
					}
				}
			}
			if got := len(dst.NodesNear(common.Vec3{0, 0, 0}, 4).Collect()); got != 4 {
				t.Fatalf("grid not rebuilt on load: %d nodes near origin", got)
			}
		})
	}
}

func TestCacheXMLFormat(t *testing.T) {
	p := Params{MaxEdges: 1, MinEdges: 1, MaxEdgeDistance: 5, MaxHeight: 2, NodesPerCell: 4}
	g := buildGraph(t, p, clearRays, nodeSpec{"A", common.Vec3{0, 0, 0}}, nodeSpec{"B", common.Vec3{2, 0, 0}})
	path := filepath.Join(t.TempDir(), "nodes.xml")
	if err := g.SaveToFile(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`<AINodes ListNum="1">`, `<Node Name="A" ID="1" ListID="0">`, `<Edge Node="B" Distance="2">`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("cache missing %s:\n%s", want, data)
		}
	}
}

func TestCacheUnresolvedReferences(t *testing.T) {
	const doc = `<AINodes ListNum="1">
  <Node Name="A" ID="1" ListID="0">
    <Edge Node="B" Distance="2"/>
    <Edge Node="ghost" Distance="4"/>
  </Node>
  <Node Name="renamed" ID="2" ListID="0">
    <Edge Node="A" Distance="2"/>
  </Node>
  <Node Name="missing" ID="77" ListID="0"/>
</AINodes>`
	path := filepath.Join(t.TempDir(), "cache.xml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	core, logs := observer.New(zapcore.WarnLevel)
	g := New(WithLogger(zap.New(core)))
	register(t, g, []nodeSpec{{"A", common.Vec3{}}, {"B", common.Vec3{2, 0, 0}}, {"C", common.Vec3{9, 0, 9}}})
	if err := g.LoadFromFile(path); err != nil {
		t.Fatalf("unresolved references must not fail the load: %v", err)
	}
	a, b, c := g.NodeByName("A"), g.NodeByName("B"), g.NodeByName("C")
	if len(a.Edges) != 1 || a.Edges[0].To != b {
		t.Fatalf("A edges = %v", edgeNames(a))
	}
	// "renamed" resolves by id to B
	if !b.HasEdgeTo(a) {
		t.Fatalf("id fallback did not restore B's edges")
	}
	if c.ListID != 1 || g.Components() != 2 {
		t.Fatalf("uncached node should get its own component, got %d of %d", c.ListID, g.Components())
	}
	if logs.Len() != 3 {
		for _, e := range logs.All() {
			t.Logf("%s", e.Message)
		}
		t.Fatalf("expected 3 warnings, got %d", logs.Len())
	}
}

func TestCacheComponentIDsBounded(t *testing.T) {
	const doc = `<AINodes ListNum="2000000000">
  <Node Name="A" ID="1" ListID="100000000"/>
  <Node Name="B" ID="2" ListID="-3"/>
  <Node Name="C" ID="3" ListID="1"/>
</AINodes>`
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "cache.xml")
	if err := os.WriteFile(xmlPath, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	binPath := filepath.Join(dir, "cache.bin")
	bin := encodeBinary(&cacheDoc{
		ListNum: 1 << 40,
		Nodes: []cacheNode{
			{Name: "A", ID: 1, ListID: 100000000},
			{Name: "B", ID: 2, ListID: -3},
			{Name: "C", ID: 3, ListID: 1},
		},
	})
	if err := os.WriteFile(binPath, bin, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{xmlPath, binPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			g := New(WithLogger(zap.New(core)))
			register(t, g, []nodeSpec{{"A", common.Vec3{}}, {"B", common.Vec3{2, 0, 0}}, {"C", common.Vec3{4, 0, 0}}})
			if err := g.LoadFromFile(path); err != nil {
				t.Fatalf("load: %v", err)
			}
			if g.Components() > g.Len()*2 {
				t.Fatalf("components = %d for %d nodes", g.Components(), g.Len())
			}
			seen := map[int32]string{}
			for _, name := range []string{"A", "B", "C"} {
				n := g.NodeByName(name)
				if n.ListID < 0 || int(n.ListID) >= g.Components() {
					t.Fatalf("%s list id %d outside 0..%d", name, n.ListID, g.Components())
				}
				if other, dup := seen[n.ListID]; dup {
					t.Fatalf("%s shares component %d with %s", name, n.ListID, other)
				}
				seen[n.ListID] = name
			}
			if g.NodeByName("C").ListID != 1 {
				t.Fatalf("in-range id not kept: %d", g.NodeByName("C").ListID)
			}
			var rejected int
			for _, e := range logs.All() {
				if strings.Contains(e.Message, "out of range") {
					rejected++
				}
			}
			if rejected != 2 {
				t.Fatalf("out of range warnings = %d, want 2", rejected)
			}
		})
	}
}

func TestCacheErrors(t *testing.T) {
	g := New()
	register(t, g, cacheFixture())
	dir := t.TempDir()
	if err := g.SaveToFile(filepath.Join(dir, "x.xml")); !errors.Is(err, ErrNotCompiled) {
		t.Fatalf("save before compile: %v", err)
	}
	bad := filepath.Join(dir, "bad.bin")
	if err := os.WriteFile(bad, []byte{0xff, 0xff, 0xff}, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := g.LoadFromFile(bad); !errors.Is(err, ErrBadCache) {
		t.Fatalf("garbage binary cache: %v", err)
	}
	badXML := filepath.Join(dir, "bad.xml")
	if err := os.WriteFile(badXML, []byte("<Other/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := g.LoadFromFile(badXML); !errors.Is(err, ErrBadCache) {
		t.Fatalf("wrong root element: %v", err)
	}
	if err := g.LoadFromFile(filepath.Join(dir, "absent.xml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: %v", err)
	}
	if err := New().LoadFromFile(bad); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCacheWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "level.xml")
	if err := os.WriteFile(path, []byte("<AINodes/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewCacheWatcher(path)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.xml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`<AINodes ListNum="0"/>`), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-w.Events:
		if filepath.Base(got) != "level.xml" {
			t.Fatalf("event for %s", got)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatalf("no event for cache write")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestCacheWatcherWaitsForLastWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "level.xml")
	const full = `<AINodes ListNum="0"></AINodes>`
	if err := os.WriteFile(path, []byte("<AINodes/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewCacheWatcher(path)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	defer w.Close()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(full[:8]); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := f.WriteString(full[8:]); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		data, err := os.ReadFile(got)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != full {
			t.Fatalf("event delivered with contents %q", data)
		}
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatalf("no event for cache write")
	}
	select {
	case got := <-w.Events:
		t.Fatalf("second event for %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}
