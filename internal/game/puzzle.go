package game

import (
	"fmt"
	"strings"
)

// MiniSize is the fixed crossword grid dimension.
const MiniSize = 5

// Black marks a blocked crossword cell in a grid row string.
const Black = '#'

// Rating is an optional authored difficulty rating for a Tandem puzzle.
type Rating string

const (
	RatingEasy   Rating = "easy"
	RatingMedium Rating = "medium"
	RatingHard   Rating = "hard"
)

// Ratings lists the ratings in ascending difficulty.
var Ratings = []Rating{RatingEasy, RatingMedium, RatingHard}

// Pair is one emoji-emoji -> word unit of a Tandem puzzle.
type Pair struct {
	Emoji1 string   `yaml:"emoji1" json:"emoji1"`
	Emoji2 string   `yaml:"emoji2" json:"emoji2"`
	Answer string   `yaml:"answer" json:"answer"` // Uppercase letters only
	Hints  []string `yaml:"hints,omitempty" json:"hints,omitempty"`
}

// TandemPayload is the content of a Tandem puzzle.
type TandemPayload struct {
	Pairs  []Pair `yaml:"pairs" json:"pairs"` // Always exactly 4
	Theme  string `yaml:"theme" json:"theme"` // Revealed only on full solve
	Rating Rating `yaml:"rating,omitempty" json:"rating,omitempty"`
}

// Direction distinguishes across and down crossword words.
type Direction string

const (
	Across Direction = "across"
	Down   Direction = "down"
)

// Coord identifies a crossword cell.
type Coord struct {
	Row int `yaml:"row" json:"row"`
	Col int `yaml:"col" json:"col"`
}

// Clue is one crossword clue with the cells of its answer word.
type Clue struct {
	Number    int       `yaml:"number" json:"number"`
	Direction Direction `yaml:"direction" json:"direction"`
	Text      string    `yaml:"text" json:"text"`
	Cells     []Coord   `yaml:"cells" json:"cells"`
}

// MiniPayload is the content of a Mini crossword puzzle. Grid rows are
// 5-character strings of uppercase letters, with '#' for black cells.
type MiniPayload struct {
	Grid  [MiniSize]string `yaml:"grid" json:"grid"`
	Clues []Clue           `yaml:"clues" json:"clues"`
}

// Solution returns the solution letter at a cell, or 0 for a black cell.
func (p *MiniPayload) Solution(row, col int) byte {
	c := p.Grid[row][col]
	if c == Black {
		return 0
	}
	return c
}

// IsBlack reports whether the cell is blocked.
func (p *MiniPayload) IsBlack(row, col int) bool {
	return p.Grid[row][col] == Black
}

// Difficulty is the fixed tier of a Reel Connections group.
type Difficulty string

const (
	Easiest Difficulty = "easiest"
	Easy    Difficulty = "easy"
	Medium  Difficulty = "medium"
	Hardest Difficulty = "hardest"
)

// Rank orders difficulties from Easiest (0) to Hardest (3).
func (d Difficulty) Rank() int {
	switch d {
	case Easiest:
		return 0
	case Easy:
		return 1
	case Medium:
		return 2
	case Hardest:
		return 3
	}
	return -1
}

// Movie is one of the 16 movies in a Reel Connections puzzle.
type Movie struct {
	ID     string `yaml:"id" json:"id"`
	Title  string `yaml:"title" json:"title"`
	Poster string `yaml:"poster,omitempty" json:"poster,omitempty"`
	Year   int    `yaml:"year,omitempty" json:"year,omitempty"`
}

// Group is four movies sharing a connection.
type Group struct {
	ID         string     `yaml:"id" json:"id"`
	Connection string     `yaml:"connection" json:"connection"`
	Difficulty Difficulty `yaml:"difficulty" json:"difficulty"`
	MovieIDs   []string   `yaml:"movie_ids" json:"movie_ids"` // Always exactly 4
}

// ReelPayload is the content of a Reel Connections puzzle.
type ReelPayload struct {
	Movies []Movie `yaml:"movies" json:"movies"` // Always exactly 16
	Groups []Group `yaml:"groups" json:"groups"` // Always exactly 4
}

// GroupByID returns the group with the given id, or nil.
func (p *ReelPayload) GroupByID(id string) *Group {
	for i := range p.Groups {
		if p.Groups[i].ID == id {
			return &p.Groups[i]
		}
	}
	return nil
}

// GroupOf returns the group containing a movie id, or nil.
func (p *ReelPayload) GroupOf(movieID string) *Group {
	for i := range p.Groups {
		for _, id := range p.Groups[i].MovieIDs {
			if id == movieID {
				return &p.Groups[i]
			}
		}
	}
	return nil
}

// CrypticPayload is the content of a Cryptic puzzle: a single clue.
type CrypticPayload struct {
	Text   string   `yaml:"text" json:"text"`
	Answer string   `yaml:"answer" json:"answer"` // Uppercase letters only
	Hints  []string `yaml:"hints,omitempty" json:"hints,omitempty"`
}

// PuzzleRecord is one authored daily puzzle. Exactly one payload field is
// non-nil, matching Kind.
type PuzzleRecord struct {
	Kind   Kind `yaml:"kind" json:"kind"`
	Date   Date `yaml:"date" json:"date"`
	Number int  `yaml:"number" json:"number"`

	Tandem  *TandemPayload  `yaml:"tandem,omitempty" json:"tandem,omitempty"`
	Mini    *MiniPayload    `yaml:"mini,omitempty" json:"mini,omitempty"`
	Reel    *ReelPayload    `yaml:"reel,omitempty" json:"reel,omitempty"`
	Cryptic *CrypticPayload `yaml:"cryptic,omitempty" json:"cryptic,omitempty"`
}

// Normalize strips non-letter runes and uppercases, the canonical form for
// answer comparison in Tandem and Cryptic.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate checks the structural invariants of the record.
func (r *PuzzleRecord) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", r.Kind)
	}
	if r.Date.Before(r.Kind.LaunchDate()) {
		return fmt.Errorf("%s puzzle dated %s before launch %s", r.Kind, r.Date, r.Kind.LaunchDate())
	}
	if want := r.Kind.NumberFor(r.Date); r.Number != want {
		return fmt.Errorf("%s puzzle %s numbered %d, want %d", r.Kind, r.Date, r.Number, want)
	}
	switch r.Kind {
	case Tandem:
		return r.validateTandem()
	case Mini:
		return r.validateMini()
	case Reel:
		return r.validateReel()
	case Cryptic:
		return r.validateCryptic()
	}
	return nil
}

func (r *PuzzleRecord) validateTandem() error {
	p := r.Tandem
	if p == nil {
		return fmt.Errorf("tandem puzzle %s has no payload", r.Date)
	}
	if len(p.Pairs) != 4 {
		return fmt.Errorf("tandem puzzle %s has %d pairs, want 4", r.Date, len(p.Pairs))
	}
	for i, pair := range p.Pairs {
		if pair.Answer == "" || pair.Answer != Normalize(pair.Answer) {
			return fmt.Errorf("tandem pair %d answer %q is not an uppercase word", i, pair.Answer)
		}
	}
	return nil
}

func (r *PuzzleRecord) validateMini() error {
	p := r.Mini
	if p == nil {
		return fmt.Errorf("mini puzzle %s has no payload", r.Date)
	}
	for row, line := range p.Grid {
		if len(line) != MiniSize {
			return fmt.Errorf("mini grid row %d has %d cells, want %d", row, len(line), MiniSize)
		}
		for col := 0; col < MiniSize; col++ {
			if c := line[col]; c != Black && (c < 'A' || c > 'Z') {
				return fmt.Errorf("mini grid cell (%d,%d) is %q, want A-Z or '#'", row, col, string(c))
			}
		}
	}
	// Every editable cell belongs to exactly one across and one down word,
	// and no cell may sit at a single-letter crossing in both directions.
	for row := 0; row < MiniSize; row++ {
		for col := 0; col < MiniSize; col++ {
			if p.IsBlack(row, col) {
				continue
			}
			if p.wordLen(row, col, Across) == 1 && p.wordLen(row, col, Down) == 1 {
				return fmt.Errorf("mini cell (%d,%d) is isolated in both directions", row, col)
			}
		}
	}
	for _, clue := range p.Clues {
		if len(clue.Cells) == 0 {
			return fmt.Errorf("mini clue %d-%s has no cells", clue.Number, clue.Direction)
		}
		for _, c := range clue.Cells {
			if c.Row < 0 || c.Row >= MiniSize || c.Col < 0 || c.Col >= MiniSize || p.IsBlack(c.Row, c.Col) {
				return fmt.Errorf("mini clue %d-%s references invalid cell (%d,%d)", clue.Number, clue.Direction, c.Row, c.Col)
			}
		}
	}
	return nil
}

// wordLen returns the length of the word through a cell in a direction.
func (p *MiniPayload) wordLen(row, col int, dir Direction) int {
	dr, dc := 0, 1
	if dir == Down {
		dr, dc = 1, 0
	}
	n := 1
	for r, c := row-dr, col-dc; r >= 0 && c >= 0 && !p.IsBlack(r, c); r, c = r-dr, c-dc {
		n++
	}
	for r, c := row+dr, col+dc; r < MiniSize && c < MiniSize && !p.IsBlack(r, c); r, c = r+dr, c+dc {
		n++
	}
	return n
}

func (r *PuzzleRecord) validateReel() error {
	p := r.Reel
	if p == nil {
		return fmt.Errorf("reel puzzle %s has no payload", r.Date)
	}
	if len(p.Movies) != 16 {
		return fmt.Errorf("reel puzzle %s has %d movies, want 16", r.Date, len(p.Movies))
	}
	if len(p.Groups) != 4 {
		return fmt.Errorf("reel puzzle %s has %d groups, want 4", r.Date, len(p.Groups))
	}
	known := make(map[string]bool, 16)
	for _, m := range p.Movies {
		if known[m.ID] {
			return fmt.Errorf("reel movie id %q duplicated", m.ID)
		}
		known[m.ID] = true
	}
	grouped := make(map[string]bool, 16)
	for _, g := range p.Groups {
		if g.Difficulty.Rank() < 0 {
			return fmt.Errorf("reel group %q has unknown difficulty %q", g.ID, g.Difficulty)
		}
		if len(g.MovieIDs) != 4 {
			return fmt.Errorf("reel group %q has %d movies, want 4", g.ID, len(g.MovieIDs))
		}
		for _, id := range g.MovieIDs {
			if !known[id] {
				return fmt.Errorf("reel group %q references unknown movie %q", g.ID, id)
			}
			if grouped[id] {
				return fmt.Errorf("reel movie %q appears in more than one group", id)
			}
			grouped[id] = true
		}
	}
	return nil
}

func (r *PuzzleRecord) validateCryptic() error {
	p := r.Cryptic
	if p == nil {
		return fmt.Errorf("cryptic puzzle %s has no payload", r.Date)
	}
	if p.Answer == "" || p.Answer != Normalize(p.Answer) {
		return fmt.Errorf("cryptic answer %q is not an uppercase word", p.Answer)
	}
	return nil
}
