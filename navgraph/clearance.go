package navgraph

import (
	"sync"

	"github.com/gorustyt/gonavgraph/common"
	"go.uber.org/zap"
)

type BodyKind uint8

const (
	BodyStatic BodyKind = iota
	BodyDynamic
	BodyVolatile
)

func (k BodyKind) String() string {
	switch k {
	case BodyStatic:
		return "static"
	case BodyDynamic:
		return "dynamic"
	case BodyVolatile:
		return "volatile"
	}
	return "unknown"
}

// SkipFlags exclude whole body kinds from a ray query.
type SkipFlags uint8

const (
	SkipStatic SkipFlags = 1 << iota
	SkipDynamic
	SkipVolatile

	SkipMovable = SkipDynamic | SkipVolatile
)

// Skips reports whether bodies of kind k are excluded by f.
func (f SkipFlags) Skips(k BodyKind) bool {
	switch k {
	case BodyStatic:
		return f&SkipStatic != 0
	case BodyDynamic:
		return f&SkipDynamic != 0
	case BodyVolatile:
		return f&SkipVolatile != 0
	}
	return false
}

// Hit is one body crossed by a probe segment.
type Hit struct {
	Point     common.Vec3
	Fraction  float32 // position along the segment in [0, 1]
	Kind      BodyKind
	Character bool // body takes part in character collision
	Body      any
}

// RayCaster is the collision collaborator. CastRay returns the bodies crossed
// by the segment start->end, nearest first, leaving out kinds excluded by skip.
type RayCaster interface {
	CastRay(start, end common.Vec3, skip SkipFlags) []Hit
}

// HitDecider overrides whether a hit blocks the probe.
type HitDecider func(h Hit) bool

const (
	MaxRays     = 9
	DefaultRays = 5
)

// probe offsets as (right, up) multiples of the agent half extents:
// center, plus pattern, then corners.
var probePattern = [MaxRays][2]float32{
	{0, 0},
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
}

// Profile is the box an agent occupies while moving.
type Profile struct {
	Width  float32
	Height float32
	Rays   int
}

func DefaultProfile() Profile {
	return Profile{Width: 0.6, Height: 1.8, Rays: DefaultRays}
}

func (p Profile) rayCount(n int) int {
	if n >= 1 && n <= MaxRays {
		return n
	}
	if p.Rays >= 1 && p.Rays <= MaxRays {
		return p.Rays
	}
	return DefaultRays
}

// Clearance decides whether a box shaped agent moves between two points
// without touching solid geometry, using a bundle of parallel probes.
type Clearance struct {
	caster  RayCaster
	profile Profile
	decide  HitDecider
	logger  *zap.Logger
	warn    sync.Once
}

func NewClearance(caster RayCaster, profile Profile, logger *zap.Logger) *Clearance {
	if logger == nil {
		logger = zap.L()
	}
	return &Clearance{caster: caster, profile: profile, logger: logger}
}

func (c *Clearance) Profile() Profile { return c.profile }

func (c *Clearance) SetHitDecider(d HitDecider) { c.decide = d }

// Check casts rays probes (out of range counts use the profile default) between
// start and end. A missing collaborator makes every check pass.
func (c *Clearance) Check(start, end common.Vec3, rays int, skip SkipFlags) bool {
	if c.caster == nil {
		c.warn.Do(func() {
			c.logger.Warn("clearance: no collision collaborator, line of sight checks always pass")
		})
		return true
	}
	dir := end.Sub(start)
	if dir.Len() < 1e-6 {
		return true
	}
	dir = common.Vnormalize(dir)
	right := dir.Cross(common.Up)
	if right.Len() < 1e-4 {
		right = common.Vec3{1, 0, 0}
	}
	right = common.Vnormalize(right)
	up := common.Vnormalize(right.Cross(dir))

	hw := c.profile.Width * 0.5
	hh := c.profile.Height * 0.5
	lift := common.Up.Mul(hh)
	n := c.profile.rayCount(rays)
	for i := 0; i < n; i++ {
		o := right.Mul(probePattern[i][0] * hw).Add(up.Mul(probePattern[i][1] * hh)).Add(lift)
		if c.blocked(start.Add(o), end.Add(o), skip) {
			return false
		}
	}
	return true
}

func (c *Clearance) blocked(a, b common.Vec3, skip SkipFlags) bool {
	for _, h := range c.caster.CastRay(a, b, skip) {
		if skip.Skips(h.Kind) {
			continue
		}
		if c.decide != nil {
			if c.decide(h) {
				return true
			}
			continue
		}
		if h.Character {
			return true
		}
	}
	return false
}
