package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/quartetgames/quartet/internal/game"
)

func date(s string) game.Date {
	d, err := game.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleResult(kind game.Kind, d game.Date, won bool) game.Result {
	return game.Result{
		Kind:      kind,
		Date:      d,
		Number:    kind.NumberFor(d),
		Won:       won,
		ElapsedMs: 83_000,
		Mistakes:  1,
		Timestamp: time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC),
	}
}

func sampleSnapshot(kind game.Kind, d game.Date) game.Snapshot {
	return game.Snapshot{
		Kind:          kind,
		Date:          d,
		Number:        kind.NumberFor(d),
		Status:        game.StatusPlaying,
		AccumulatedMs: 10_000,
		Attempts:      2,
		Cryptic:       &game.CrypticState{UserAnswer: "halfway"},
	}
}

// storeUnderTest runs the Store contract against a tier.
func storeUnderTest(t *testing.T, store Store) {
	ctx := context.Background()
	d := date("2025-11-01")

	// Unknown keys load as nil, nil.
	entry, err := store.Load(ctx, game.Cryptic, d)
	if err != nil || entry != nil {
		t.Fatalf("empty load = (%v, %v)", entry, err)
	}

	// Partials round-trip.
	if err := store.SavePartial(ctx, sampleSnapshot(game.Cryptic, d)); err != nil {
		t.Fatal(err)
	}
	entry, err = store.Load(ctx, game.Cryptic, d)
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || entry.Status != game.HistoryInProgress || entry.Partial == nil {
		t.Fatalf("after partial: %+v", entry)
	}
	if entry.Partial.Cryptic == nil || entry.Partial.Cryptic.UserAnswer != "halfway" {
		t.Fatalf("partial payload lost: %+v", entry.Partial)
	}

	// A result replaces the partial and is write-once.
	if err := store.SaveResult(ctx, sampleResult(game.Cryptic, d, true)); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveResult(ctx, sampleResult(game.Cryptic, d, false)); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("second SaveResult = %v, want ErrAlreadyCompleted", err)
	}
	entry, err = store.Load(ctx, game.Cryptic, d)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Status != game.HistoryCompleted || entry.Result == nil || !entry.Result.Won {
		t.Fatalf("after result: %+v", entry)
	}

	// A late partial cannot displace the result.
	if err := store.SavePartial(ctx, sampleSnapshot(game.Cryptic, d)); err != nil {
		t.Fatal(err)
	}
	entry, err = store.Load(ctx, game.Cryptic, d)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Result == nil || entry.Status != game.HistoryCompleted {
		t.Fatalf("late partial displaced result: %+v", entry)
	}

	// Range and ordered listings.
	d2 := date("2025-11-03")
	if err := store.SaveResult(ctx, sampleResult(game.Cryptic, d2, false)); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveResult(ctx, sampleResult(game.Tandem, d2, true)); err != nil {
		t.Fatal(err)
	}

	dates, err := store.CompletedDatesInRange(ctx, game.Cryptic, date("2025-11-01"), date("2025-11-30"))
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 2 || !dates[d] || !dates[d2] {
		t.Fatalf("completed dates = %v", dates)
	}
	dates, err = store.CompletedDatesInRange(ctx, game.Cryptic, date("2025-11-02"), date("2025-11-30"))
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 1 || !dates[d2] {
		t.Fatalf("bounded completed dates = %v", dates)
	}

	results, err := store.AllResults(ctx, game.Cryptic)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || !results[0].Date.Before(results[1].Date) {
		t.Fatalf("results = %+v, want two ordered by date", results)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	storeUnderTest(t, NewMemory())
}

func TestSQLiteStoreContract(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	storeUnderTest(t, store)
}

func TestSQLiteResultJSONStableAcrossReads(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	d := date("2025-11-05")
	if err := store.SaveResult(ctx, sampleResult(game.Mini, d, true)); err != nil {
		t.Fatal(err)
	}
	first, err := store.Load(ctx, game.Mini, d)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Load(ctx, game.Mini, d)
	if err != nil {
		t.Fatal(err)
	}
	firstJSON, err := json.Marshal(first.Result)
	if err != nil {
		t.Fatal(err)
	}
	secondJSON, err := json.Marshal(second.Result)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Fatalf("re-read result drifted: %s vs %s", firstJSON, secondJSON)
	}
}

func TestLayeredMergePrefersResultsAndNewest(t *testing.T) {
	ctx := context.Background()
	d := date("2025-11-07")

	local := NewMemory()
	cloud := NewMemory()

	// Cloud has a finished session, local only a stale partial: the result
	// wins even though the partial is newer.
	base := time.Date(2025, 11, 7, 10, 0, 0, 0, time.UTC)
	cloud.now = func() time.Time { return base }
	local.now = func() time.Time { return base.Add(time.Hour) }

	if err := cloud.SaveResult(ctx, sampleResult(game.Reel, d, true)); err != nil {
		t.Fatal(err)
	}
	if err := local.SavePartial(ctx, sampleSnapshot(game.Reel, d)); err != nil {
		t.Fatal(err)
	}

	layered := NewLayered(local, cloud)
	defer layered.Close()

	entry, err := layered.Load(ctx, game.Reel, d)
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || entry.Result == nil || !entry.Result.Won {
		t.Fatalf("merge lost the terminal result: %+v", entry)
	}

	// For two partials the strictly newer one wins; a tie keeps the
	// earlier tier.
	d2 := date("2025-11-08")
	local.now = func() time.Time { return base }
	cloud.now = func() time.Time { return base.Add(time.Minute) }
	if err := local.SavePartial(ctx, sampleSnapshot(game.Reel, d2)); err != nil {
		t.Fatal(err)
	}
	newer := sampleSnapshot(game.Reel, d2)
	newer.AccumulatedMs = 99_000
	if err := cloud.SavePartial(ctx, newer); err != nil {
		t.Fatal(err)
	}
	entry, err = layered.Load(ctx, game.Reel, d2)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Partial == nil || entry.Partial.AccumulatedMs != 99_000 {
		t.Fatalf("strictly newer cloud partial not preferred: %+v", entry.Partial)
	}
}

func TestLayeredWriteOrderingPerKey(t *testing.T) {
	ctx := context.Background()
	d := date("2025-11-09")

	mem := NewMemory()
	layered := NewLayered(mem)

	// Queue a burst of partials; the last one enqueued must be the one
	// that sticks.
	for i := 1; i <= 20; i++ {
		snap := sampleSnapshot(game.Tandem, d)
		snap.AccumulatedMs = int64(i * 1000)
		if err := layered.SavePartial(ctx, snap); err != nil {
			t.Fatal(err)
		}
	}
	// Close drains the queue.
	if err := layered.Close(); err != nil {
		t.Fatal(err)
	}

	entry, err := mem.Load(ctx, game.Tandem, d)
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || entry.Partial == nil || entry.Partial.AccumulatedMs != 20_000 {
		t.Fatalf("final partial = %+v, want the last write", entry)
	}
}

func TestLayeredSaveResultWaitsForQueue(t *testing.T) {
	ctx := context.Background()
	d := date("2025-11-11")

	mem := NewMemory()
	layered := NewLayered(mem)
	defer layered.Close()

	if err := layered.SavePartial(ctx, sampleSnapshot(game.Mini, d)); err != nil {
		t.Fatal(err)
	}
	if err := layered.SaveResult(ctx, sampleResult(game.Mini, d, true)); err != nil {
		t.Fatal(err)
	}

	// The result was durable before SaveResult returned.
	entry, err := mem.Load(ctx, game.Mini, d)
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil || entry.Result == nil {
		t.Fatalf("result not durable after SaveResult: %+v", entry)
	}

	if err := layered.SaveResult(ctx, sampleResult(game.Mini, d, false)); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("second result = %v, want ErrAlreadyCompleted", err)
	}
}
