package template

import (
	"fmt"
	"testing"
)

// BenchmarkBuild benchmarks building templates with varying resource counts.
func BenchmarkBuild(b *testing.B) {
	sizes := []int{10, 50, 100, 200}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("resources_%d", size), func(b *testing.B) {
			builder := mockBuilder(b, size)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := builder.Build(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkToJSON benchmarks JSON serialization with varying resource counts.
func BenchmarkToJSON(b *testing.B) {
	sizes := []int{10, 50, 100}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("resources_%d", size), func(b *testing.B) {
			template, err := mockBuilder(b, size).Build()
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := ToJSON(template); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// mockBuilder returns a builder holding a chain of subnets, each depending
// on the previous one.
func mockBuilder(b *testing.B, count int) *Builder {
	b.Helper()
	builder := NewBuilder("benchmark")
	for i := 0; i < count; i++ {
		n := Node{
			LogicalID:  fmt.Sprintf("Subnet%d", i),
			Type:       "AWS::EC2::Subnet",
			Properties: map[string]any{"CidrBlock": fmt.Sprintf("10.100.%d.0/24", i%256)},
			Parent:     "network",
		}
		if i > 0 {
			n.Dependencies = []string{fmt.Sprintf("Subnet%d", i-1)}
		}
		if err := builder.Add(n); err != nil {
			b.Fatal(err)
		}
	}
	return builder
}
