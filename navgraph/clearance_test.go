package navgraph

import (
	"testing"

	"github.com/gorustyt/gonavgraph/common"
)

type probe struct{ a, b common.Vec3 }

// recorder remembers every probe and answers with fixed hits.
type recorder struct {
	probes []probe
	hits   []Hit
}

func (r *recorder) CastRay(a, b common.Vec3, skip SkipFlags) []Hit {
	r.probes = append(r.probes, probe{a, b})
	return r.hits
}

func TestClearanceRayCount(t *testing.T) {
	cases := []struct {
		name    string
		profile int
		rays    int
		want    int
	}{
		{"explicit", 5, 3, 3},
		{"profile_default", 5, 0, 5},
		{"above_max", 5, MaxRays + 1, 5},
		{"max", 5, MaxRays, MaxRays},
		{"bad_profile", 42, -1, DefaultRays},
		{"single", 9, 1, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := &recorder{}
			cl := NewClearance(r, Profile{Width: 1, Height: 2, Rays: c.profile}, nil)
			if !cl.Check(common.Vec3{0, 0, 0}, common.Vec3{10, 0, 0}, c.rays, 0) {
				t.Fatalf("no hits must be clear")
			}
			if len(r.probes) != c.want {
				t.Fatalf("cast %d probes, want %d", len(r.probes), c.want)
			}
		})
	}
}

func TestClearanceProbePattern(t *testing.T) {
	r := &recorder{}
	cl := NewClearance(r, Profile{Width: 2, Height: 4, Rays: MaxRays}, nil)
	cl.Check(common.Vec3{0, 0, 0}, common.Vec3{10, 0, 0}, MaxRays, 0)
	if len(r.probes) != MaxRays {
		t.Fatalf("cast %d probes", len(r.probes))
	}
	center := r.probes[0]
	if !common.Vequal(center.a, common.Vec3{0, 2, 0}) || !common.Vequal(center.b, common.Vec3{10, 2, 0}) {
		t.Fatalf("center probe %v, want lifted by half height", center)
	}
	for i, p := range r.probes {
		d := p.b.Sub(p.a)
		if !common.Vequal(d, common.Vec3{10, 0, 0}) {
			t.Fatalf("probe %d not parallel: %v", i, d)
		}
		if common.Abs(p.a[2]) > 1+1e-5 || p.a[1] < -1e-5 || p.a[1] > 4+1e-5 {
			t.Fatalf("probe %d outside agent box: %v", i, p.a)
		}
	}
	// right then left probe along the horizontal perpendicular
	if common.Abs(common.Abs(r.probes[1].a[2])-1) > 1e-5 || r.probes[1].a[2] != -r.probes[2].a[2] {
		t.Fatalf("side probes %v %v", r.probes[1].a, r.probes[2].a)
	}
}

func TestClearanceHitFiltering(t *testing.T) {
	cases := []struct {
		name   string
		hits   []Hit
		skip   SkipFlags
		decide HitDecider
		clear  bool
	}{
		{"no_hits", nil, 0, nil, true},
		{"static_character", []Hit{{Kind: BodyStatic, Character: true}}, 0, nil, false},
		{"non_character", []Hit{{Kind: BodyStatic, Character: false}}, 0, nil, true},
		{"skipped_dynamic", []Hit{{Kind: BodyDynamic, Character: true}}, SkipMovable, nil, true},
		{"skipped_volatile", []Hit{{Kind: BodyVolatile, Character: true}}, SkipVolatile, nil, true},
		{"dynamic_not_skipped", []Hit{{Kind: BodyDynamic, Character: true}}, SkipStatic, nil, false},
		{"decider_allows", []Hit{{Kind: BodyStatic, Character: true}}, 0, func(Hit) bool { return false }, true},
		{"decider_blocks", []Hit{{Kind: BodyStatic, Character: false}}, 0, func(Hit) bool { return true }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cl := NewClearance(&recorder{hits: c.hits}, DefaultProfile(), nil)
			cl.SetHitDecider(c.decide)
			if got := cl.Check(common.Vec3{}, common.Vec3{0, 0, 5}, 0, c.skip); got != c.clear {
				t.Fatalf("clear = %v, want %v", got, c.clear)
			}
		})
	}
}

func TestClearanceWithoutCollaborator(t *testing.T) {
	cl := NewClearance(nil, DefaultProfile(), nil)
	for i := 0; i < 2; i++ {
		if !cl.Check(common.Vec3{}, common.Vec3{5, 0, 0}, 0, 0) {
			t.Fatalf("missing collaborator must report clear")
		}
	}
	g := New()
	if !g.FreeLineOfSight(common.Vec3{}, common.Vec3{1, 1, 1}, SkipMovable) {
		t.Fatalf("graph without ray caster must report clear")
	}
}

func TestClearanceVerticalAndDegenerate(t *testing.T) {
	r := &recorder{hits: []Hit{{Character: true}}}
	cl := NewClearance(r, DefaultProfile(), nil)
	if !cl.Check(common.Vec3{1, 1, 1}, common.Vec3{1, 1, 1}, 0, 0) {
		t.Fatalf("zero length move is clear")
	}
	if len(r.probes) != 0 {
		t.Fatalf("zero length move cast %d probes", len(r.probes))
	}
	if cl.Check(common.Vec3{0, 0, 0}, common.Vec3{0, 3, 0}, 0, 0) {
		t.Fatalf("vertical move through a hit must be blocked")
	}
}

func TestSkipFlags(t *testing.T) {
	if !SkipMovable.Skips(BodyDynamic) || !SkipMovable.Skips(BodyVolatile) || SkipMovable.Skips(BodyStatic) {
		t.Fatalf("SkipMovable mismatch")
	}
	if BodyVolatile.String() != "volatile" {
		t.Fatalf("kind string %q", BodyVolatile.String())
	}
}
