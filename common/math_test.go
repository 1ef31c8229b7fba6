package common

import (
	"math"
	"testing"
)

func assertTrue(t *testing.T, value bool, msg string) {
	t.Helper()
	if !value {
		t.Error(msg)
	}
}

func TestClamp(t *testing.T) {
	assertTrue(t, Clamp(2, 0, 1) == 1, "Higher than range error")
	assertTrue(t, Clamp(1, 0, 2) == 1, "Within range error")
	assertTrue(t, Clamp(0, 1, 2) == 1, "Lower than range error")
}

func TestVdist2DIgnoresHeight(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{3, 100, 4}
	if d := Vdist2D(a, b); d != 5 {
		t.Errorf("Vdist2D = %v, want 5", d)
	}
	if d := Vdist(a, Vec3{3, 0, 4}); d != 5 {
		t.Errorf("Vdist = %v, want 5", d)
	}
	if h := HeightDelta(a, b); h != 100 {
		t.Errorf("HeightDelta = %v, want 100", h)
	}
}

func TestVnormalizeZero(t *testing.T) {
	if v := Vnormalize(Vec3{}); v != (Vec3{}) {
		t.Errorf("zero vector normalized to %v", v)
	}
	v := Vnormalize(Vec3{0, 0, 2})
	assertTrue(t, Vequal(v, Vec3{0, 0, 1}), "normalize length 2 vector")
}

func TestIsFinite(t *testing.T) {
	assertTrue(t, IsFinite(1), "1 is finite")
	assertTrue(t, !IsFinite(float32(math.Inf(1))), "inf is not finite")
	assertTrue(t, !IsFinite(float32(math.NaN())), "nan is not finite")
	assertTrue(t, !Visfinite(Vec3{0, float32(math.Inf(-1)), 0}), "vector with -inf")
}

func TestAngle2D(t *testing.T) {
	a := Angle2D(Vec3{0, 0, 0}, Vec3{0, 5, 1})
	if math.Abs(a-math.Pi/2) > 1e-9 {
		t.Errorf("Angle2D = %v, want pi/2", a)
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in      string
		wantErr bool
	}{
		{"", false},
		{"debug", false},
		{"WARN", false},
		{"error", false},
		{"loud", true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			_, err := ParseLogLevel(c.in)
			if (err != nil) != c.wantErr {
				t.Fatalf("ParseLogLevel(%q) err=%v", c.in, err)
			}
		})
	}
}
