package game

import "time"

// Status is the lifecycle state of a puzzle session.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPlaying   Status = "playing"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusAbandoned Status = "abandoned"
)

// Terminal reports whether the status is one a session never leaves.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusAbandoned
}

// LossMode explains why a lost session ended.
type LossMode string

const (
	LossMaxMistakes     LossMode = "max_mistakes"
	LossHardModeTimeout LossMode = "hard_mode_timeout"
	LossRevealed        LossMode = "revealed" // Mini revealPuzzle on the whole grid
	LossAbandoned       LossMode = "abandoned"
)

// TandemPairState is the per-pair progress of a Tandem session.
type TandemPairState struct {
	Solved    bool   `json:"solved"`
	Locked    []bool `json:"locked"` // Per-letter smart-lock mask, append-only
	UserGuess string `json:"user_guess,omitempty"`
	HintIndex int    `json:"hint_index,omitempty"` // Next letter position to reveal
}

// MiniState is the Mini-specific portion of a session snapshot.
type MiniState struct {
	UserGrid      [MiniSize]string `json:"user_grid"` // '.' for empty, '#' for black
	CorrectCells  []Coord          `json:"correct_cells,omitempty"`
	RevealedCells []Coord          `json:"revealed_cells,omitempty"`
	SelectedCell  Coord            `json:"selected_cell"`
	Direction     Direction        `json:"direction"`
	ChecksUsed    int              `json:"checks_used,omitempty"`
	RevealsUsed   int              `json:"reveals_used,omitempty"`
	AutoCheck     bool             `json:"auto_check,omitempty"`
	HardMode      bool             `json:"hard_mode,omitempty"`
}

// ReelState is the Reel-specific portion of a session snapshot.
type ReelState struct {
	Selected     []string   `json:"selected,omitempty"`      // Insertion order
	SolvedGroups []string   `json:"solved_groups,omitempty"` // Order solved
	GuessHistory [][]string `json:"guess_history,omitempty"` // Canonical sorted id sets
	HintedGroup  string     `json:"hinted_group,omitempty"`
	Order        []string   `json:"order,omitempty"` // Presentation order after shuffles
}

// CrypticState is the Cryptic-specific portion of a session snapshot.
type CrypticState struct {
	UserAnswer    string `json:"user_answer,omitempty"`
	UnlockedHints int    `json:"unlocked_hints,omitempty"`
}

// Snapshot is the serializable state of an in-flight session. Exactly one
// per-kind field is non-nil, matching Kind.
type Snapshot struct {
	Kind          Kind     `json:"kind"`
	Date          Date     `json:"date"`
	Number        int      `json:"number"`
	Status        Status   `json:"status"`
	AccumulatedMs int64    `json:"accumulated_ms"`
	Paused        bool     `json:"paused,omitempty"`
	Mistakes      int      `json:"mistakes"`
	HintsUsed     int      `json:"hints_used"`
	HintedAt      []string `json:"hinted_at,omitempty"` // Kind-specific locators
	Attempts      int      `json:"attempts"`

	Tandem  []TandemPairState `json:"tandem,omitempty"`
	Mini    *MiniState        `json:"mini,omitempty"`
	Reel    *ReelState        `json:"reel,omitempty"`
	Cryptic *CrypticState     `json:"cryptic,omitempty"`
}

// Result is the immutable outcome of a finished session. Field order is
// load-bearing for persisted JSON: share strings depend on deterministic
// reads.
type Result struct {
	Kind         Kind      `json:"kind"`
	Date         Date      `json:"date"`
	Number       int       `json:"number"`
	Won          bool      `json:"won"`
	ElapsedMs    int64     `json:"elapsed_ms"`
	Mistakes     int       `json:"mistakes"`
	HintsUsed    int       `json:"hints_used"`
	HintedAt     []string  `json:"hinted_at,omitempty"`
	LossMode     LossMode  `json:"loss_mode,omitempty"`
	CorrectCount int       `json:"correct_count,omitempty"` // Tandem pairs / Reel groups solved
	Rating       Rating    `json:"rating,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// HistoryStatus summarizes a HistoryEntry for archive views.
type HistoryStatus string

const (
	HistoryNotPlayed  HistoryStatus = "not_played"
	HistoryInProgress HistoryStatus = "in_progress"
	HistoryCompleted  HistoryStatus = "completed"
	HistoryFailed     HistoryStatus = "failed"
)

// HistoryEntry is one progress-store row, keyed by (kind, date).
type HistoryEntry struct {
	Kind      Kind          `json:"kind"`
	Date      Date          `json:"date"`
	Status    HistoryStatus `json:"status"`
	Result    *Result       `json:"result,omitempty"`
	Partial   *Snapshot     `json:"partial,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}
