package optim

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestNewGridSearch_Validation(t *testing.T) {
	if _, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1}}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if _, err := NewGridSearch([]string{"a"}, [][]float64{{}}); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestGridSearch_FindsMinimum(t *testing.T) {
	gs, err := NewGridSearch(
		[]string{"x", "y"},
		[][]float64{{-2, -1, 0, 1, 2}, {-1, 0, 1, 3}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if got := gs.Combinations(); got != 20 {
		t.Errorf("Combinations() = %d, want 20", got)
	}

	// Bowl with its minimum at x=1, y=-1.
	params, cost, err := gs.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		dx := p["x"] - 1
		dy := p["y"] + 1
		return dx*dx + dy*dy, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if params["x"] != 1 || params["y"] != -1 {
		t.Errorf("best params = %v, want x=1 y=-1", params)
	}
	if cost != 0 {
		t.Errorf("best cost = %g, want 0", cost)
	}
}

func TestGridSearch_SkipsFailedCombinations(t *testing.T) {
	gs, err := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}

	params, cost, err := gs.Search(context.Background(), func(_ context.Context, p map[string]float64) (float64, error) {
		if p["x"] == 1 {
			return 0, errors.New("diverged")
		}
		return p["x"], nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if params["x"] != 2 || cost != 2 {
		t.Errorf("best = %v cost %g, want x=2 cost 2", params, cost)
	}
}

func TestGridSearch_AllFailed(t *testing.T) {
	gs, err := NewGridSearch([]string{"x"}, [][]float64{{1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := gs.Search(context.Background(), func(_ context.Context, _ map[string]float64) (float64, error) {
		return math.Inf(1), errors.New("nope")
	}); err == nil {
		t.Error("expected error when every combination fails")
	}
}

func TestGridSearch_ContextCancel(t *testing.T) {
	gs, err := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := gs.Search(ctx, func(_ context.Context, _ map[string]float64) (float64, error) {
		return 0, nil
	}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
