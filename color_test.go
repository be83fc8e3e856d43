package flicker

import "testing"

func TestBlendEndpoints(t *testing.T) {
	a := RGB(0, 0, 0)
	b := RGB(255, 255, 255)
	if got := Blend(a, b, 0); !got.Equal(a) {
		t.Fatalf("expected a at t=0, got %+v", got)
	}
	if got := Blend(a, b, 1); !got.Equal(b) {
		t.Fatalf("expected b at t=1, got %+v", got)
	}
}

func TestBlendMidpointIsBetween(t *testing.T) {
	a := RGB(0, 0, 0)
	b := RGB(255, 255, 255)
	mid := Blend(a, b, 0.5)
	if mid.R == 0 || mid.R == 255 {
		t.Fatalf("expected a blended midpoint, got %+v", mid)
	}
}

func TestBlendNonRGBFallsBackToNearerEndpoint(t *testing.T) {
	a := Named(Red)
	b := RGB(0, 0, 255)
	if got := Blend(a, b, 0.2); !got.Equal(a) {
		t.Fatalf("expected fallback to a below 0.5, got %+v", got)
	}
	if got := Blend(a, b, 0.8); !got.Equal(b) {
		t.Fatalf("expected fallback to b above 0.5, got %+v", got)
	}
}
