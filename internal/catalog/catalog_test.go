package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/quartetgames/quartet/internal/game"
)

func date(t *testing.T, s string) game.Date {
	t.Helper()
	d, err := game.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func crypticRecord(d game.Date) game.PuzzleRecord {
	return game.PuzzleRecord{
		Kind:   game.Cryptic,
		Date:   d,
		Number: game.Cryptic.NumberFor(d),
		Cryptic: &game.CrypticPayload{
			Text:   "Odd gene arts rearranged a family rift (8)",
			Answer: "ESTRANGE",
			Hints:  []string{"Anagram", "Starts with E"},
		},
	}
}

// catalogServer fakes the remote catalog over a fixed puzzle set.
func catalogServer(t *testing.T, puzzles []game.PuzzleRecord, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/puzzles/", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		kind := r.URL.Path[len("/v1/puzzles/"):]

		if month := r.URL.Query().Get("month"); month != "" {
			var listing struct {
				Puzzles []game.PuzzleRecord `json:"puzzles"`
			}
			for _, p := range puzzles {
				if string(p.Kind) == kind && fmt.Sprintf("%04d-%02d", p.Date.Year, int(p.Date.Month)) == month {
					listing.Puzzles = append(listing.Puzzles, p)
				}
			}
			json.NewEncoder(w).Encode(listing)
			return
		}

		want := r.URL.Query().Get("date")
		for _, p := range puzzles {
			if string(p.Kind) == kind && p.Date.String() == want {
				json.NewEncoder(w).Encode(p)
				return
			}
		}
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestStoreReadThroughCache(t *testing.T) {
	ctx := context.Background()
	d := date(t, "2025-11-10")
	var hits atomic.Int64
	server := catalogServer(t, []game.PuzzleRecord{crypticRecord(d)}, &hits)

	store := NewStore(NewHTTPSource(server.URL))

	rec, err := store.ByDate(ctx, game.Cryptic, d)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.Cryptic == nil || rec.Cryptic.Answer != "ESTRANGE" {
		t.Fatalf("record = %+v", rec)
	}
	if _, err := store.ByDate(ctx, game.Cryptic, d); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Fatalf("remote hit %d times, want 1", hits.Load())
	}

	// Missing puzzles are (nil, nil) and are not negative-cached.
	missing := d.AddDays(1)
	for i := 0; i < 2; i++ {
		rec, err := store.ByDate(ctx, game.Cryptic, missing)
		if err != nil || rec != nil {
			t.Fatalf("missing puzzle = (%v, %v)", rec, err)
		}
	}
	if hits.Load() != 3 {
		t.Fatalf("remote hit %d times, want 3", hits.Load())
	}
}

func TestStoreNumberDateBijection(t *testing.T) {
	ctx := context.Background()
	d := date(t, "2025-11-10")
	var hits atomic.Int64
	server := catalogServer(t, []game.PuzzleRecord{crypticRecord(d)}, &hits)
	store := NewStore(NewHTTPSource(server.URL))

	byDate, err := store.ByDate(ctx, game.Cryptic, d)
	if err != nil {
		t.Fatal(err)
	}
	byNumber, err := store.ByNumber(ctx, game.Cryptic, byDate.Number)
	if err != nil {
		t.Fatal(err)
	}
	if byNumber != byDate {
		t.Fatalf("ByNumber(%d) returned a different record", byDate.Number)
	}
	if rec, err := store.ByNumber(ctx, game.Cryptic, 0); rec != nil || err != nil {
		t.Fatalf("ByNumber(0) = (%v, %v)", rec, err)
	}
}

func TestStoreRejectsMismatchedNumber(t *testing.T) {
	ctx := context.Background()
	d := date(t, "2025-11-10")
	bad := crypticRecord(d)
	bad.Number++
	var hits atomic.Int64
	server := catalogServer(t, []game.PuzzleRecord{bad}, &hits)
	store := NewStore(NewHTTPSource(server.URL))

	if _, err := store.ByDate(ctx, game.Cryptic, d); err == nil {
		t.Fatal("mismatched number accepted")
	}
}

func TestStoreCancelledFetchLeavesNoCacheState(t *testing.T) {
	d := date(t, "2025-11-10")
	var hits atomic.Int64
	server := catalogServer(t, []game.PuzzleRecord{crypticRecord(d)}, &hits)
	store := NewStore(NewHTTPSource(server.URL))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.ByDate(cancelled, game.Cryptic, d); err == nil {
		t.Fatal("cancelled fetch succeeded")
	}

	// A later fetch still goes to the remote: nothing was cached.
	before := hits.Load()
	rec, err := store.ByDate(context.Background(), game.Cryptic, d)
	if err != nil || rec == nil {
		t.Fatalf("fetch after cancel = (%v, %v)", rec, err)
	}
	if hits.Load() != before+1 {
		t.Fatal("cancelled fetch left cache state behind")
	}
}

func TestStoreMonthListingWarmsCache(t *testing.T) {
	ctx := context.Background()
	puzzles := []game.PuzzleRecord{
		crypticRecord(date(t, "2025-11-01")),
		crypticRecord(date(t, "2025-11-02")),
		crypticRecord(date(t, "2025-12-01")),
	}
	var hits atomic.Int64
	server := catalogServer(t, puzzles, &hits)
	store := NewStore(NewHTTPSource(server.URL))

	month, err := store.MonthOf(ctx, game.Cryptic, 2025, 11)
	if err != nil {
		t.Fatal(err)
	}
	if len(month) != 2 || !month[0].Date.Before(month[1].Date) {
		t.Fatalf("month listing = %+v", month)
	}

	// Both November records are now cached.
	if _, err := store.ByDate(ctx, game.Cryptic, date(t, "2025-11-01")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ByDate(ctx, game.Cryptic, date(t, "2025-11-02")); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Fatalf("remote hit %d times, want 1", hits.Load())
	}
}

func packYAML(d game.Date) string {
	return fmt.Sprintf(`puzzles:
  - kind: cryptic
    date: %s
    number: %d
    cryptic:
      text: "Odd gene arts rearranged a family rift (8)"
      answer: ESTRANGE
      hints:
        - Anagram
`, d, game.Cryptic.NumberFor(d))
}

func TestPackServesOffline(t *testing.T) {
	ctx := context.Background()
	d := date(t, "2025-11-10")
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(packYAML(d)), 0644); err != nil {
		t.Fatal(err)
	}

	pack, err := LoadPack(path)
	if err != nil {
		t.Fatal(err)
	}
	if pack.Len() != 1 {
		t.Fatalf("pack holds %d puzzles", pack.Len())
	}

	// The pack sits in front of an unreachable remote.
	store := NewStore(pack, NewHTTPSource("http://127.0.0.1:1"))
	rec, err := store.ByDate(ctx, game.Cryptic, d)
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.Cryptic == nil {
		t.Fatalf("record = %+v", rec)
	}
}

func TestLoadPackRejectsInvalidPuzzle(t *testing.T) {
	d := date(t, "2025-11-10")
	bad := fmt.Sprintf(`puzzles:
  - kind: cryptic
    date: %s
    number: 1
    cryptic:
      text: clue
      answer: ESTRANGE
`, d)
	path := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPack(path); err == nil {
		t.Fatal("pack with wrong number accepted")
	}
}
