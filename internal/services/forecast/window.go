package forecast

import (
	"fmt"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	"github.com/AnshNarg/bit-coin/internal/services/features"
)

// DefaultSequenceLength matches the trained model's input length.
const DefaultSequenceLength = 60

// Reconstructor fills in the non-close columns of the row appended on each
// rollout step. The model only predicts a close, so the remaining 13 columns
// must come from somewhere.
type Reconstructor interface {
	NextRow(prev []float64, normalizedClose float64) []float64
}

// NaiveCarryForward copies the previous row and overwrites only the close
// column, leaving 13 stale features behind. This matches the trained model's
// reference behavior and must not be silently "fixed": downstream signal
// quality depends on parity with it.
type NaiveCarryForward struct{}

func (NaiveCarryForward) NextRow(prev []float64, normalizedClose float64) []float64 {
	row := make([]float64, len(prev))
	copy(row, prev)
	row[features.ColClose] = normalizedClose
	return row
}

// Window is a fixed-length sequence of normalized feature rows fed to the
// model. A Window is owned by exactly one in-flight forecast call.
type Window struct {
	rows  [][]float64
	recon Reconstructor
}

// NewWindow seeds a window from the last length rows of a normalized matrix.
func NewWindow(normalized [][]float64, length int, recon Reconstructor) (*Window, error) {
	if length <= 0 {
		return nil, fmt.Errorf("window length %d: %w", length, models.ErrInvalidRequest)
	}
	if len(normalized) < length {
		return nil, fmt.Errorf("window: have %d rows, need %d: %w",
			len(normalized), length, models.ErrInsufficientHistory)
	}
	if recon == nil {
		recon = NaiveCarryForward{}
	}
	rows := make([][]float64, length)
	for i, src := range normalized[len(normalized)-length:] {
		row := make([]float64, len(src))
		copy(row, src)
		rows[i] = row
	}
	return &Window{rows: rows, recon: recon}, nil
}

// Rows exposes the current window contents. Callers must not retain the slice
// across Advance calls.
func (w *Window) Rows() [][]float64 { return w.rows }

// Len returns the window length.
func (w *Window) Len() int { return len(w.rows) }

// Advance shifts out the oldest row and appends a row synthesized from the
// newest one with the predicted normalized close.
func (w *Window) Advance(normalizedClose float64) {
	next := w.recon.NextRow(w.rows[len(w.rows)-1], normalizedClose)
	copy(w.rows, w.rows[1:])
	w.rows[len(w.rows)-1] = next
}
