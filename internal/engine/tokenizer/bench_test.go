package tokenizer

import "testing"

func BenchmarkTokenizeLatin(b *testing.B) {
	text := "The quick brown fox jumps over the lazy dog while indexing chat history"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Tokenize(text)
	}
}

func BenchmarkTokenizeMixed(b *testing.B) {
	text := "OpenAI发布Sora视频模型，引发广泛讨论 video generation"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Tokenize(text)
	}
}
