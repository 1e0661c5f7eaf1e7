// Package benchmarks provides memory footprint benchmarks.
package benchmarks

import (
	"fmt"
	"runtime"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/comalice/statekeep"
)

// BenchmarkMemoryInterned compares heap growth for n entities holding the
// same three fields, interned versus copied per entity.
func BenchmarkMemoryInterned(b *testing.B) {
	const numEntities = 10000
	fields := statekeep.Texts("Mercedes Benz", "C300", "black")

	measure := func(fn func() any) uint64 {
		var before, after runtime.MemStats
		runtime.GC()
		runtime.ReadMemStats(&before)
		keep := fn()
		runtime.GC()
		runtime.ReadMemStats(&after)
		runtime.KeepAlive(keep)
		return (after.TotalAlloc - before.TotalAlloc) / numEntities
	}

	interned := measure(func() any {
		in := statekeep.NewInterner()
		out := make([]*statekeep.SharedState, numEntities)
		for i := range out {
			out[i], _ = in.Intern(fields...)
		}
		return out
	})
	copied := measure(func() any {
		out := make([][]statekeep.Scalar, numEntities)
		for i := range out {
			out[i] = append([]statekeep.Scalar(nil), fields...)
		}
		return out
	})
	b.ReportMetric(float64(interned), "B/entity-interned")
	b.ReportMetric(float64(copied), "B/entity-copied")
}

func BenchmarkMemoryDeepClone(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("entities=%d", n), func(b *testing.B) {
			g := GenWideGraph(n)
			c := statekeep.NewCloner()
			ctx := b.Context()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := statekeep.Detach(ctx, c, g.Arena(), g.Root()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCopierStrategies(b *testing.B) {
	d := GenDoc(32)
	b.Run("clone-method", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = d.Clone()
		}
	})
	b.Run("yaml", func(b *testing.B) {
		data := GenDocYAML(32)
		b.SetBytes(int64(len(data)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var out Doc
			if err := yaml.Unmarshal(data, &out); err != nil {
				b.Fatal(err)
			}
		}
	})
}
