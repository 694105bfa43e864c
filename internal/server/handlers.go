package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/quartetgames/quartet/internal/game"
	"github.com/quartetgames/quartet/internal/stats"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(w)
	json.NewEncoder(w).Encode(v)
}

// servePuzzle answers GET /v1/puzzles/:kind with ?date=, ?number= or
// ?month=, the same shapes the catalog HTTP source consumes, so one
// quartet instance can feed another.
func (s *Server) servePuzzle() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		start := time.Now()
		kind, ok := parseKind(w, p)
		if !ok {
			return
		}

		query := r.URL.Query()
		if month := query.Get("month"); month != "" {
			var year, m int
			if _, err := fmt.Sscanf(month, "%d-%d", &year, &m); err != nil {
				http.Error(w, "bad month", http.StatusBadRequest)
				return
			}
			records, err := s.catalog.MonthOf(r.Context(), kind, year, m)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			writeJSON(w, struct {
				Puzzles []game.PuzzleRecord `json:"puzzles"`
			}{Puzzles: records})
			s.logf("SERVE: %s month %s to %s in %s", kind, month, r.RemoteAddr, time.Since(start).Round(time.Microsecond))
			return
		}

		var rec *game.PuzzleRecord
		var err error
		if number := query.Get("number"); number != "" {
			var n int
			if _, convErr := fmt.Sscanf(number, "%d", &n); convErr != nil {
				http.Error(w, "bad number", http.StatusBadRequest)
				return
			}
			rec, err = s.catalog.ByNumber(r.Context(), kind, n)
		} else {
			date, parseErr := game.ParseDate(query.Get("date"))
			if parseErr != nil {
				http.Error(w, "bad date", http.StatusBadRequest)
				return
			}
			rec, err = s.catalog.ByDate(r.Context(), kind, date)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		if rec == nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, rec)
		s.logf("SERVE: %s #%d to %s in %s", kind, rec.Number, r.RemoteAddr, time.Since(start).Round(time.Microsecond))
	}
}

// serveArchive answers GET /v1/archive/:kind?from=&to= with the dates
// the local player has completed.
func (s *Server) serveArchive() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		kind, ok := parseKind(w, p)
		if !ok {
			return
		}

		query := r.URL.Query()
		from, err := game.ParseDate(query.Get("from"))
		if err != nil {
			from = kind.LaunchDate()
		}
		to, err := game.ParseDate(query.Get("to"))
		if err != nil {
			to = game.Today()
		}

		completed, err := s.progress.CompletedDatesInRange(r.Context(), kind, from, to)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		dates := make([]game.Date, 0, len(completed))
		for d := range completed {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		writeJSON(w, struct {
			Kind  game.Kind   `json:"kind"`
			Dates []game.Date `json:"dates"`
		}{Kind: kind, Dates: dates})
	}
}

// serveLeaderboard answers GET /v1/leaderboard/:kind with the local
// player's standing. Single-player today, but the shape is a ranked
// list so pooling instances needs no wire change.
func (s *Server) serveLeaderboard() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		kind, ok := parseKind(w, p)
		if !ok {
			return
		}

		results, err := s.progress.AllResults(r.Context(), kind)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		handle := s.cfg.Handle
		if handle == "" {
			handle = "local"
		}
		ranked := stats.Leaderboard([]stats.PlayerAggregate{
			{Handle: handle, Aggregate: stats.Compute(kind, results, game.Today())},
		})
		writeJSON(w, struct {
			Kind    game.Kind               `json:"kind"`
			Players []stats.PlayerAggregate `json:"players"`
		}{Kind: kind, Players: ranked})
	}
}
