package engine

import (
	"fmt"
	"testing"
)

// BenchmarkAdd measures per-document insert throughput.
func BenchmarkAdd(b *testing.B) {
	e := New[struct{}]()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := fmt.Sprintf("doc-%d", i)
		e.Add(id, "incremental search over chat messages files and articles", struct{}{})
	}
}

// BenchmarkSearch measures query latency over a 10 000 document corpus.
func BenchmarkSearch(b *testing.B) {
	e := New[struct{}]()
	for i := 0; i < 10000; i++ {
		id := fmt.Sprintf("doc-%d", i)
		e.Add(id, fmt.Sprintf("chat message %d about search quality and ranking", i), struct{}{})
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hits := e.Search("search ranking")
		_ = hits
	}
}

// BenchmarkSearchCJK measures query latency with bigram-expanded CJK terms.
func BenchmarkSearchCJK(b *testing.B) {
	e := New[struct{}]()
	for i := 0; i < 5000; i++ {
		id := fmt.Sprintf("doc-%d", i)
		e.Add(id, "今天北京天气很好适合出门散步", struct{}{})
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hits := e.Search("北京天气")
		_ = hits
	}
}
