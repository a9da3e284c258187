package forecast

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AnshNarg/bit-coin/internal/services/features"
)

// ErrNotFitted is returned when a scaler is used before fitting.
var ErrNotFitted = errors.New("scaler not fitted")

// MinMaxScaler maps every feature column to [0,1] with an affine transform
// fitted over a reference matrix. The transform is column-independent, which
// the forecaster exploits to denormalize a single predicted close without
// reconstructing the other 13 columns.
type MinMaxScaler struct {
	min []float64
	max []float64
}

// scalerState is the on-disk form written by the offline trainer.
type scalerState struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

// NewMinMaxScaler returns an unfitted scaler.
func NewMinMaxScaler() *MinMaxScaler { return &MinMaxScaler{} }

// LoadScaler restores fitted state from trainer-emitted JSON.
func LoadScaler(b []byte) (*MinMaxScaler, error) {
	var st scalerState
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("parse scaler state: %w", err)
	}
	if len(st.Min) != features.Width || len(st.Max) != features.Width {
		return nil, fmt.Errorf("scaler state: want %d columns, got min=%d max=%d",
			features.Width, len(st.Min), len(st.Max))
	}
	return &MinMaxScaler{min: st.Min, max: st.Max}, nil
}

// MarshalJSON serializes the fitted state in the trainer's format.
func (s *MinMaxScaler) MarshalJSON() ([]byte, error) {
	if !s.Fitted() {
		return nil, ErrNotFitted
	}
	return json.Marshal(scalerState{Min: s.min, Max: s.max})
}

// Fitted reports whether per-column bounds are available.
func (s *MinMaxScaler) Fitted() bool { return len(s.min) == features.Width }

// Fit learns per-column min/max over the reference matrix.
func (s *MinMaxScaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return fmt.Errorf("fit scaler: empty matrix")
	}
	mn := make([]float64, features.Width)
	mx := make([]float64, features.Width)
	for j := 0; j < features.Width; j++ {
		mn[j], mx[j] = rows[0][j], rows[0][j]
	}
	for _, row := range rows {
		if len(row) != features.Width {
			return fmt.Errorf("fit scaler: want %d columns, got %d", features.Width, len(row))
		}
		for j, v := range row {
			if v < mn[j] {
				mn[j] = v
			}
			if v > mx[j] {
				mx[j] = v
			}
		}
	}
	s.min, s.max = mn, mx
	return nil
}

// Transform applies the fitted per-column map to every row, returning a new
// matrix. Constant columns map to 0.
func (s *MinMaxScaler) Transform(rows [][]float64) ([][]float64, error) {
	if !s.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != features.Width {
			return nil, fmt.Errorf("transform: want %d columns, got %d", features.Width, len(row))
		}
		scaled := make([]float64, features.Width)
		for j, v := range row {
			scaled[j] = s.scale(j, v)
		}
		out[i] = scaled
	}
	return out, nil
}

// InverseTransform applies the inverse affine map per column.
func (s *MinMaxScaler) InverseTransform(rows [][]float64) ([][]float64, error) {
	if !s.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != features.Width {
			return nil, fmt.Errorf("inverse transform: want %d columns, got %d", features.Width, len(row))
		}
		raw := make([]float64, features.Width)
		for j, v := range row {
			raw[j] = s.unscale(j, v)
		}
		out[i] = raw
	}
	return out, nil
}

// InverseColumn denormalizes a single column value. Column independence makes
// this exact regardless of what the other columns hold.
func (s *MinMaxScaler) InverseColumn(col int, v float64) (float64, error) {
	if !s.Fitted() {
		return 0, ErrNotFitted
	}
	if col < 0 || col >= features.Width {
		return 0, fmt.Errorf("inverse column: index %d out of range", col)
	}
	return s.unscale(col, v), nil
}

func (s *MinMaxScaler) scale(j int, v float64) float64 {
	span := s.max[j] - s.min[j]
	if span == 0 {
		return 0
	}
	return (v - s.min[j]) / span
}

func (s *MinMaxScaler) unscale(j int, v float64) float64 {
	return v*(s.max[j]-s.min[j]) + s.min[j]
}
