package drawio

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"encoding/xml"
	"io"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/harishkotra/SketchStack/pkg/diagram"
	"github.com/harishkotra/SketchStack/pkg/layout"
	"github.com/harishkotra/SketchStack/pkg/plan"
)

type geometryXML struct {
	X        string `xml:"x,attr"`
	Y        string `xml:"y,attr"`
	Width    string `xml:"width,attr"`
	Height   string `xml:"height,attr"`
	Relative string `xml:"relative,attr"`
}

type cellXML struct {
	ID       string       `xml:"id,attr"`
	Value    string       `xml:"value,attr"`
	Style    string       `xml:"style,attr"`
	Vertex   string       `xml:"vertex,attr"`
	Edge     string       `xml:"edge,attr"`
	Parent   string       `xml:"parent,attr"`
	Source   string       `xml:"source,attr"`
	Target   string       `xml:"target,attr"`
	Geometry *geometryXML `xml:"mxGeometry"`
}

type modelXML struct {
	XMLName xml.Name  `xml:"mxGraphModel"`
	Cells   []cellXML `xml:"root>mxCell"`
}

func parse(t *testing.T, doc string) modelXML {
	t.Helper()
	var m modelXML
	if err := xml.Unmarshal([]byte(doc), &m); err != nil {
		t.Fatalf("document is not well-formed XML: %v\n%s", err, doc)
	}
	return m
}

func (m modelXML) lanes() []cellXML {
	var out []cellXML
	for _, c := range m.Cells {
		if strings.HasPrefix(c.Style, "swimlane;") {
			out = append(out, c)
		}
	}
	return out
}

func (m modelXML) connectors() []cellXML {
	var out []cellXML
	for _, c := range m.Cells {
		if c.Edge == "1" {
			out = append(out, c)
		}
	}
	return out
}

func (m modelXML) byValue(v string) []cellXML {
	var out []cellXML
	for _, c := range m.Cells {
		if c.Value == v {
			out = append(out, c)
		}
	}
	return out
}

func positioned(nodes []diagram.Node, edges []diagram.Edge) []diagram.PositionedNode {
	return layout.Layout(nodes, edges, layout.DefaultOptions())
}

func scenarioPlan(to string) diagram.Plan {
	return diagram.Derive(plan.ArchitecturePlan{
		Components: []plan.Component{
			{ID: "a", Name: "Web", Type: plan.ComponentFrontend},
			{ID: "b", Name: "DB", Type: plan.ComponentDatabase},
		},
		Relationships: []plan.Relationship{{From: "a", To: to, Protocol: "REST"}},
	})
}

func TestRenderTwoLayersOneConnector(t *testing.T) {
	d := scenarioPlan("b")
	doc := Render(positioned(d.Nodes, d.Edges), d.Edges, Options{})
	m := parse(t, doc)

	lanes := m.lanes()
	if len(lanes) != 2 {
		t.Fatalf("lanes = %d, want 2", len(lanes))
	}
	if lanes[0].Value != "Application Layer" || lanes[1].Value != "Data Layer" {
		t.Errorf("lane titles = %q, %q", lanes[0].Value, lanes[1].Value)
	}

	conns := m.connectors()
	if len(conns) != 1 {
		t.Fatalf("connectors = %d, want 1", len(conns))
	}
	web, db := m.byValue("Web"), m.byValue("DB")
	if len(web) != 1 || len(db) != 1 {
		t.Fatalf("node cells: Web=%d DB=%d, want 1 each", len(web), len(db))
	}
	if conns[0].Source != web[0].ID || conns[0].Target != db[0].ID {
		t.Errorf("connector %s -> %s, want %s -> %s", conns[0].Source, conns[0].Target, web[0].ID, db[0].ID)
	}
	if conns[0].Value != "[REST]" {
		t.Errorf("connector value = %q, want %q", conns[0].Value, "[REST]")
	}
	if !strings.HasSuffix(conns[0].Style, "exitX=0.5;exitY=1;entryX=0.5;entryY=0;") {
		t.Errorf("connector style = %q, want downward routing", conns[0].Style)
	}
}

func TestRenderDropsDanglingEdges(t *testing.T) {
	d := scenarioPlan("missing")
	if len(d.Edges) != 1 {
		t.Fatalf("derived edges = %d, want 1", len(d.Edges))
	}
	m := parse(t, Render(positioned(d.Nodes, d.Edges), d.Edges, Options{}))
	if n := len(m.connectors()); n != 0 {
		t.Errorf("connectors = %d, want 0", n)
	}
	if n := len(m.lanes()); n != 2 {
		t.Errorf("lanes = %d, want 2", n)
	}
}

func TestRenderIDsMonotonic(t *testing.T) {
	nodes := []diagram.Node{
		{ID: "lb", Label: "LB", Type: plan.ComponentLoadBalancer},
		{ID: "api", Label: "API", Type: plan.ComponentBackend},
		{ID: "db", Label: "DB", Type: plan.ComponentDatabase},
		{ID: "logs", Label: "Logs", Type: plan.ComponentLogging},
	}
	edges := []diagram.Edge{
		{From: "lb", To: "api"},
		{From: "api", To: "ghost"},
		{From: "api", To: "db"},
		{From: "api", To: "logs"},
	}
	m := parse(t, Render(positioned(nodes, edges), edges, Options{Provider: plan.ProviderAWS}))

	for i, c := range m.Cells {
		if c.ID != strconv.Itoa(i) {
			t.Fatalf("cell %d has id %q, want %d", i, c.ID, i)
		}
	}
	if n := len(m.connectors()); n != 3 {
		t.Errorf("connectors = %d, want 3", n)
	}
}

func TestRenderNodeRelativeToLane(t *testing.T) {
	d := scenarioPlan("b")
	m := parse(t, Render(positioned(d.Nodes, d.Edges), d.Edges, Options{}))

	lane := m.lanes()[0]
	if g := lane.Geometry; g.X != "40" || g.Y != "30" || g.Width != "200" || g.Height != "130" {
		t.Errorf("lane geometry = %+v, want 40,30 200x130", *g)
	}
	web := m.byValue("Web")[0]
	if web.Parent != lane.ID {
		t.Errorf("Web parent = %s, want %s", web.Parent, lane.ID)
	}
	if g := web.Geometry; g.X != "20" || g.Y != "30" || g.Width != "160" || g.Height != "80" {
		t.Errorf("Web geometry = %+v, want 20,30 160x80", *g)
	}
}

func TestRenderCloudIconCaption(t *testing.T) {
	nodes := []diagram.Node{
		{ID: "fe", Label: "Site", Type: plan.ComponentFrontend},
		{ID: "db", Label: "Table", Type: plan.ComponentDatabase},
	}
	m := parse(t, Render(positioned(nodes, nil), nil, Options{Provider: plan.ProviderAWS}))

	table := m.byValue("Table")
	if len(table) != 2 {
		t.Fatalf("Table cells = %d, want icon + caption", len(table))
	}
	icon, caption := table[0], table[1]
	if !strings.HasPrefix(icon.Style, "shape=mxgraph.aws4.dynamodb;aspect=fixed;") {
		t.Errorf("icon style = %q", icon.Style)
	}
	if icon.Geometry.Width != "60" || icon.Geometry.Height != "60" {
		t.Errorf("icon size = %sx%s, want 60x60", icon.Geometry.Width, icon.Geometry.Height)
	}
	if !strings.HasPrefix(caption.Style, "text;") || caption.Geometry.Width != "80" {
		t.Errorf("caption = %+v", caption)
	}
	if n := len(m.byValue("Site")); n != 1 {
		t.Errorf("Site cells = %d, want 1 (no aws icon for frontend)", n)
	}
}

func TestRenderNeutralIgnoresProviderTables(t *testing.T) {
	nodes := []diagram.Node{{ID: "db", Label: "Table", Type: plan.ComponentDatabase}}
	m := parse(t, Render(positioned(nodes, nil), nil, Options{Provider: plan.ProviderNeutral}))
	cells := m.byValue("Table")
	if len(cells) != 1 {
		t.Fatalf("Table cells = %d, want 1", len(cells))
	}
	if !strings.HasPrefix(cells[0].Style, "shape=cylinder3;") {
		t.Errorf("style = %q, want neutral cylinder", cells[0].Style)
	}
	if !strings.Contains(cells[0].Style, "fillColor=#ffffff;") {
		t.Errorf("style = %q, want crisp box overrides", cells[0].Style)
	}
}

func TestRenderEscapesText(t *testing.T) {
	label := `Tom & Jerry's <"API">`
	nodes := []diagram.Node{{ID: "x", Label: label, Type: plan.ComponentBackend}}
	doc := Render(positioned(nodes, nil), nil, Options{})
	if !strings.Contains(doc, `value="Tom &amp; Jerry&apos;s &lt;&quot;API&quot;&gt;"`) {
		t.Errorf("label not escaped:\n%s", doc)
	}
	if n := len(parse(t, doc).byValue(label)); n != 1 {
		t.Errorf("cells with label = %d, want 1", n)
	}
}

func TestRouting(t *testing.T) {
	row := func(id string, rank, order int) diagram.PositionedNode {
		return diagram.PositionedNode{ID: id, Label: id, Type: plan.ComponentBackend,
			Layer: diagram.LayerApplication, Width: 160, Height: 80, Rank: rank, Order: order,
			X: float64(order) * 300, Y: float64(rank) * 220}
	}
	nodes := []diagram.PositionedNode{row("a", 0, 0), row("b", 0, 1), row("c", 0, 2), row("d", 1, 0)}
	nodes[3].Layer = diagram.LayerData

	tests := []struct {
		from, to string
		want     string
	}{
		{"a", "b", "exitX=1;exitY=0.5;entryX=0;entryY=0.5;"},
		{"c", "b", "exitX=0;exitY=0.5;entryX=1;entryY=0.5;"},
		{"a", "c", "exitX=0.5;exitY=1;entryX=0.5;entryY=1;"},
		{"c", "a", "exitX=0.5;exitY=0;entryX=0.5;entryY=0;"},
		{"a", "d", "exitX=0.5;exitY=1;entryX=0.5;entryY=0;"},
		{"d", "b", "exitX=0.5;exitY=0;entryX=0.5;entryY=1;"},
		{"b", "b", "exitX=0;exitY=0.5;entryX=1;entryY=0.5;"},
	}
	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			edges := []diagram.Edge{{From: tt.from, To: tt.to}}
			conns := parse(t, Render(nodes, edges, Options{})).connectors()
			if len(conns) != 1 {
				t.Fatalf("connectors = %d, want 1", len(conns))
			}
			if got := strings.TrimPrefix(conns[0].Style, edgeStyle); got != tt.want {
				t.Errorf("routing = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("left to right", func(t *testing.T) {
		edges := []diagram.Edge{{From: "a", To: "d"}}
		conns := parse(t, Render(nodes, edges, Options{Orientation: layout.LeftToRight})).connectors()
		if got := strings.TrimPrefix(conns[0].Style, edgeStyle); got != leftToRightRoutes.rankForward {
			t.Errorf("routing = %q, want %q", got, leftToRightRoutes.rankForward)
		}
	})
}

func TestRenderFlowRankingKeepsLanesApart(t *testing.T) {
	d := diagram.Derive(plan.ArchitecturePlan{
		Components: []plan.Component{
			{ID: "web", Name: "Web", Type: plan.ComponentFrontend},
			{ID: "db", Name: "DB", Type: plan.ComponentDatabase},
			{ID: "worker", Name: "Worker", Type: plan.ComponentBackend},
			{ID: "auth", Name: "Auth", Type: plan.ComponentAuth},
			{ID: "api", Name: "API", Type: plan.ComponentBackend},
		},
		Relationships: []plan.Relationship{
			{From: "web", To: "db"},
			{From: "db", To: "worker"},
			{From: "web", To: "auth"},
			{From: "web", To: "api"},
		},
	})
	opts := layout.DefaultOptions()
	opts.Ranking = layout.RankFlow

	for _, orient := range []layout.Orientation{layout.TopToBottom, layout.LeftToRight} {
		t.Run(string(orient), func(t *testing.T) {
			opts.Orientation = orient
			m := parse(t, Render(layout.Layout(d.Nodes, d.Edges, opts), d.Edges, Options{Orientation: orient}))

			type rect struct{ x, y, w, h float64 }
			var boxes []rect
			var titles []string
			for _, l := range m.lanes() {
				g := l.Geometry
				f := func(s string) float64 {
					v, err := strconv.ParseFloat(s, 64)
					if err != nil {
						t.Fatalf("lane %q geometry %q: %v", l.Value, s, err)
					}
					return v
				}
				boxes = append(boxes, rect{f(g.X), f(g.Y), f(g.Width), f(g.Height)})
				titles = append(titles, l.Value)
			}
			want := []string{"Security Layer", "Application Layer", "Data Layer"}
			if strings.Join(titles, ",") != strings.Join(want, ",") {
				t.Fatalf("lanes = %v, want %v", titles, want)
			}
			for i := range boxes {
				for j := i + 1; j < len(boxes); j++ {
					a, b := boxes[i], boxes[j]
					if a.x < b.x+b.w && b.x < a.x+a.w && a.y < b.y+b.h && b.y < a.y+a.h {
						t.Errorf("lane %q %+v intersects lane %q %+v", titles[i], a, titles[j], b)
					}
				}
			}
			// earlier layers come first along the rank axis
			for i := 1; i < len(boxes); i++ {
				prev, cur := boxes[i-1].y, boxes[i].y
				if orient == layout.LeftToRight {
					prev, cur = boxes[i-1].x, boxes[i].x
				}
				if cur <= prev {
					t.Errorf("lane %q starts at %v, not after %q at %v", titles[i], cur, titles[i-1], prev)
				}
			}

			routes := topToBottomRoutes
			if orient == layout.LeftToRight {
				routes = leftToRightRoutes
			}
			for _, c := range m.connectors() {
				got := strings.TrimPrefix(c.Style, edgeStyle)
				if got != routes.rankForward && got != routes.rankBackward {
					t.Errorf("connector %s -> %s routing %q, want straight across ranks", c.Source, c.Target, got)
				}
			}
		})
	}
}

func TestRenderEmpty(t *testing.T) {
	m := parse(t, Render(nil, []diagram.Edge{{From: "a", To: "b"}}, Options{}))
	if len(m.Cells) != 2 {
		t.Errorf("cells = %d, want only the reserved 0 and 1", len(m.Cells))
	}
}

func TestIconStyle(t *testing.T) {
	tests := []struct {
		typ       plan.ComponentType
		provider  plan.Provider
		prefix    string
		wantCloud bool
	}{
		{plan.ComponentQueue, plan.ProviderAWS, "shape=mxgraph.aws4.sqs;aspect=fixed;resizable=0;fontStyle=1;", true},
		{plan.ComponentQueue, plan.ProviderGCP, "shape=mxgraph.gcp2.cloud_pubsub;", true},
		{plan.ComponentQueue, plan.ProviderAzure, "shape=mxgraph.azure.service_bus;", true},
		{plan.ComponentQueue, plan.ProviderNeutral, "shape=mxgraph.basic.rect;rounded=1;fillColor=#FFF2CC;", false},
		{plan.ComponentDNS, plan.ProviderGCP, "shape=mxgraph.basic.rect;rounded=1;fillColor=#D5E8D4;", false},
		{plan.ComponentMLModel, plan.ProviderAWS, "shape=hexagon;", false},
		{plan.ComponentUnknown, plan.ProviderAWS, "shape=mxgraph.basic.rect;rounded=1;fillColor=#F5F5F5;", false},
		{plan.ComponentType("bogus"), plan.Provider("oracle"), "shape=mxgraph.basic.rect;rounded=1;fillColor=#F5F5F5;", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider)+"/"+string(tt.typ), func(t *testing.T) {
			style, cloud := IconStyle(tt.typ, tt.provider)
			if !strings.HasPrefix(style, tt.prefix) || cloud != tt.wantCloud {
				t.Errorf("IconStyle() = %q, %v; want prefix %q, %v", style, cloud, tt.prefix, tt.wantCloud)
			}
		})
	}
}

func TestIconStyleTotal(t *testing.T) {
	for _, p := range plan.Providers {
		for _, typ := range append(plan.ComponentTypes, plan.ComponentUnknown) {
			if style, _ := IconStyle(typ, p); style == "" {
				t.Errorf("IconStyle(%s, %s) is empty", typ, p)
			}
		}
	}
}

func decode(t *testing.T, fragment string) string {
	t.Helper()
	unescaped, err := url.QueryUnescape(fragment)
	if err != nil {
		t.Fatalf("unescape: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(unescaped)
	if err != nil {
		t.Fatalf("base64: %v", err)
	}
	out, err := io.ReadAll(flate.NewReader(bytes.NewReader(raw)))
	if err != nil {
		t.Fatalf("inflate: %v", err)
	}
	return string(out)
}

func TestShareURLs(t *testing.T) {
	d := scenarioPlan("b")
	doc := Render(positioned(d.Nodes, d.Edges), d.Edges, Options{})

	tests := []struct {
		name   string
		url    string
		prefix string
	}{
		{"editor", EditorURL(doc, LinkOptions{}), "https://app.diagrams.net/#R"},
		{"editor auto", EditorURL(doc, LinkOptions{Dark: "auto"}), "https://app.diagrams.net/#R"},
		{"lightbox dark", EditorURL(doc, LinkOptions{Lightbox: true, Dark: "true"}), "https://app.diagrams.net/?lightbox=1&dark=true#R"},
		{"viewer", ViewerURL(doc), "https://viewer.diagrams.net/?highlight=0000ff&edit=_blank&layers=1&nav=1#R"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.url, tt.prefix) {
				t.Fatalf("url = %q, want prefix %q", tt.url, tt.prefix)
			}
			fragment := strings.TrimPrefix(tt.url, tt.prefix)
			if strings.ContainsAny(fragment, "+/=") {
				t.Errorf("fragment is not percent-encoded: %q", fragment)
			}
			if got := decode(t, fragment); got != doc {
				t.Errorf("round trip mismatch")
			}
		})
	}
}
