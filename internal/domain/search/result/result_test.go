package result

import "testing"

func TestNew(t *testing.T) {
	hits := []Hit{NewHit("books", "1", 1.5, []byte(`{"title":"Dune"}`))}
	r := New(42, "eq", 1.5, 3, hits)

	if r.Total() != 42 || r.Relation() != "eq" || r.MaxScore() != 1.5 || r.TookMS() != 3 {
		t.Errorf("unexpected result: %+v", r)
	}
	if len(r.Hits()) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(r.Hits()))
	}
	h := r.Hits()[0]
	if h.Index() != "books" || h.ID() != "1" || h.Score() != 1.5 || string(h.Source()) != `{"title":"Dune"}` {
		t.Errorf("unexpected hit: %+v", h)
	}
}
