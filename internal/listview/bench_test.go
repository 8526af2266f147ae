package listview_test

import (
	"testing"

	"github.com/rshade/virtlist/internal/layout"
	"github.com/rshade/virtlist/internal/listview"
	"github.com/rshade/virtlist/internal/render"
	"github.com/rshade/virtlist/internal/source"
)

func BenchmarkController_ScrollFixed(b *testing.B) {
	c, _, _ := newController(b, baseConfig(), 100_000)
	b.ResetTimer()
	for i := range b.N {
		c.SetScroll(0, float64((i*7)%1_000_000))
	}
}

func BenchmarkController_ScrollVariable(b *testing.B) {
	cfg := baseConfig()
	cfg.Rows = layout.VariableHeight(func(i int) float64 { return float64(10 + i%40) })
	src := source.NewSlice(labels(100_000)...)
	c, err := listview.New[string, *render.Unit[string]](cfg, src, render.NewRecorder[string]())
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := range b.N {
		c.SetScroll(0, float64((i*7)%1_000_000))
	}
}

func BenchmarkController_MutateAndFlush(b *testing.B) {
	c, src, _ := newController(b, baseConfig(), 10_000)
	cancel := listview.Watch(c, src)
	defer cancel()
	b.ResetTimer()
	for i := range b.N {
		_ = src.Replace(i%10, "x")
		c.Flush()
	}
}
