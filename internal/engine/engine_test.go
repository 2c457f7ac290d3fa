package engine

import (
	"testing"
)

type meta struct {
	kind string
}

func TestAddEmptyTextIsNoOp(t *testing.T) {
	e := New[meta]()
	e.Add("1", "", meta{kind: "agent"})
	e.Add("1", "   ", meta{kind: "agent"})
	e.Add("1", "\t\n", meta{kind: "agent"})

	if got := e.Len(); got != 0 {
		t.Fatalf("Len() = %d after empty adds, want 0", got)
	}
	if hits := e.Search("anything"); len(hits) != 0 {
		t.Errorf("Search returned %d hits from an empty index", len(hits))
	}
}

func TestSearchEmptyQueryReturnsNothing(t *testing.T) {
	e := New[meta]()
	e.Add("1", "apple pie", meta{})

	for _, query := range []string{"", "   ", "\t", "!!!"} {
		if hits := e.Search(query); len(hits) != 0 {
			t.Errorf("Search(%q) = %d hits, want 0", query, len(hits))
		}
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	e := New[meta]()
	if hits := e.Search("apple"); len(hits) != 0 {
		t.Errorf("Search on empty index returned %d hits", len(hits))
	}
}

func TestSearchMatchesOnlyContainingDocuments(t *testing.T) {
	e := New[meta]()
	e.Add("A", "apple pie", meta{})
	e.Add("B", "banana split", meta{})

	hits := e.Search("apple")
	if len(hits) != 1 {
		t.Fatalf("Search(apple) = %d hits, want 1", len(hits))
	}
	if hits[0].ID != "A" {
		t.Errorf("Search(apple) returned %q, want A", hits[0].ID)
	}
	if hits[0].Score <= 0 {
		t.Errorf("score = %v, want > 0", hits[0].Score)
	}
}

func TestScoreMonotonicInTermFrequency(t *testing.T) {
	e := New[meta]()
	// Equal length, the query term appearing twice vs once.
	e.Add("twice", "go go rust", meta{})
	e.Add("once", "go java rust", meta{})

	hits := e.Search("go")
	if len(hits) != 2 {
		t.Fatalf("Search(go) = %d hits, want 2", len(hits))
	}
	if hits[0].ID != "twice" {
		t.Fatalf("top hit = %q, want twice", hits[0].ID)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("score(tf=2) = %v < score(tf=1) = %v", hits[0].Score, hits[1].Score)
	}
}

func TestLengthNormalizationFavorsShortDocuments(t *testing.T) {
	e := New[meta]()
	long := "quantum"
	for i := 0; i < 30; i++ {
		long += " filler"
	}
	e.Add("long", long, meta{})
	e.Add("short", "quantum news", meta{})

	hits := e.Search("quantum")
	if len(hits) != 2 {
		t.Fatalf("Search(quantum) = %d hits, want 2", len(hits))
	}
	if hits[0].ID != "short" {
		t.Errorf("top hit = %q, want short (length-normalized)", hits[0].ID)
	}
}

func TestCJKBigramMatching(t *testing.T) {
	e := New[meta]()
	e.Add("weather", "北京天气", meta{})

	hits := e.Search("北京")
	if len(hits) != 1 {
		t.Fatalf("Search(北京) = %d hits, want 1", len(hits))
	}
	if hits[0].ID != "weather" || hits[0].Score <= 0 {
		t.Errorf("hit = %+v, want weather with positive score", hits[0])
	}
}

func TestOverwriteReplacesDocument(t *testing.T) {
	e := New[meta]()
	e.Add("1", "apple pie", meta{})
	e.Add("1", "banana split", meta{})

	if got := e.Len(); got != 1 {
		t.Fatalf("Len() = %d after overwrite, want 1", got)
	}
	if hits := e.Search("banana"); len(hits) != 1 || hits[0].ID != "1" {
		t.Errorf("Search(banana) = %v, want single hit for doc 1", hits)
	}
	// The old posting for "apple" is not retracted, but the term no longer
	// occurs in the stored document, so it contributes nothing.
	if hits := e.Search("apple"); len(hits) != 0 {
		t.Errorf("Search(apple) = %v after overwrite, want no hits", hits)
	}
}

func TestClearEmptiesIndex(t *testing.T) {
	e := New[meta]()
	e.Add("1", "apple pie", meta{})
	e.Clear()

	if got := e.Len(); got != 0 {
		t.Fatalf("Len() = %d after Clear, want 0", got)
	}
	if hits := e.Search("apple"); len(hits) != 0 {
		t.Errorf("Search(apple) = %d hits after Clear, want 0", len(hits))
	}

	// The engine is reusable after a Clear.
	e.Add("2", "apple tart", meta{})
	if hits := e.Search("apple"); len(hits) != 1 || hits[0].ID != "2" {
		t.Errorf("Search(apple) after repopulating = %v, want doc 2", hits)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	e := New[meta]()
	e.Add("1", "apple pie", meta{kind: "article"})

	hits := e.Search("apple")
	if len(hits) != 1 {
		t.Fatalf("Search(apple) = %d hits, want 1", len(hits))
	}
	if hits[0].Meta.kind != "article" {
		t.Errorf("Meta.kind = %q, want article", hits[0].Meta.kind)
	}
}

func TestMultiTermRanking(t *testing.T) {
	e := New[meta]()
	e.Add("1", "OpenAI releases Sora video model", meta{})
	e.Add("2", "React 19 ships a compiler", meta{})
	e.Add("3", "Sora and video generation trends", meta{})

	hits := e.Search("sora video")
	if len(hits) != 2 {
		t.Fatalf("Search(sora video) = %d hits, want 2", len(hits))
	}
	got := map[string]float64{}
	for _, h := range hits {
		got[h.ID] = h.Score
	}
	if _, ok := got["2"]; ok {
		t.Errorf("doc 2 matched %v despite containing neither term", got)
	}
	for _, id := range []string{"1", "3"} {
		if got[id] <= 0 {
			t.Errorf("score(doc %s) = %v, want > 0", id, got[id])
		}
	}
}

func TestScoresAccumulateAcrossTerms(t *testing.T) {
	e := New[meta]()
	e.Add("both", "sora video", meta{})
	e.Add("one", "sora audio", meta{})

	hits := e.Search("sora video")
	if len(hits) != 2 {
		t.Fatalf("Search = %d hits, want 2", len(hits))
	}
	if hits[0].ID != "both" {
		t.Errorf("top hit = %q, want the document matching both terms", hits[0].ID)
	}
}
