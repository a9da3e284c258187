package model

import (
	"context"
	"sort"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	"github.com/AnshNarg/bit-coin/internal/services/forecast"
	applogger "github.com/AnshNarg/bit-coin/pkg/logger"
)

// Binding holds everything needed to forecast one instrument: the opaque
// predictor, the fitted scaler, and trainer metadata.
type Binding struct {
	Symbol  string
	Name    string
	Predict forecast.PredictFunc
	Scaler  *forecast.MinMaxScaler
	Meta    models.ModelMetadata
}

// Registry is the per-instrument model/scaler lookup. It is populated once at
// startup and read-only thereafter, so concurrent forecast calls can share it
// without guarding.
type Registry struct {
	names    map[string]string
	bindings map[string]*Binding
}

// BuildRegistry loads fitted artifacts for every configured symbol and binds
// the serving-side predictor. Symbols without trained artifacts stay in the
// universe (for /symbols listing) but get no binding.
func BuildRegistry(universe map[string]string, store *FileStore, predictor *HTTPPredictor, l *applogger.Logger) *Registry {
	r := &Registry{
		names:    make(map[string]string, len(universe)),
		bindings: make(map[string]*Binding, len(universe)),
	}
	for symbol, name := range universe {
		r.names[symbol] = name
		if !store.HasModel(symbol) {
			if l != nil {
				l.Warn("model artifacts missing", applogger.String("symbol", symbol))
			}
			continue
		}
		scaler, err := store.LoadScaler(symbol)
		if err != nil {
			if l != nil {
				l.Error("scaler load failed", applogger.String("symbol", symbol), applogger.Error(err))
			}
			continue
		}
		meta, err := store.LoadMetadata(symbol)
		if err != nil {
			if l != nil {
				l.Warn("metadata load failed", applogger.String("symbol", symbol), applogger.Error(err))
			}
		}
		sym := symbol
		r.bindings[symbol] = &Binding{
			Symbol: symbol,
			Name:   name,
			Predict: func(ctx context.Context, window [][]float64) (float64, error) {
				return predictor.Predict(ctx, sym, window)
			},
			Scaler: scaler,
			Meta:   meta,
		}
		if l != nil {
			l.Info("model loaded", applogger.String("symbol", symbol))
		}
	}
	return r
}

// NewStubRegistry builds a registry from pre-made bindings. Used by tests to
// substitute deterministic predictors.
func NewStubRegistry(bindings ...*Binding) *Registry {
	r := &Registry{
		names:    make(map[string]string, len(bindings)),
		bindings: make(map[string]*Binding, len(bindings)),
	}
	for _, b := range bindings {
		r.names[b.Symbol] = b.Name
		r.bindings[b.Symbol] = b
	}
	return r
}

// Lookup returns the binding for a symbol, if one was loaded.
func (r *Registry) Lookup(symbol string) (*Binding, bool) {
	b, ok := r.bindings[symbol]
	return b, ok
}

// Known reports whether the symbol is part of the configured universe.
func (r *Registry) Known(symbol string) bool {
	_, ok := r.names[symbol]
	return ok
}

// Symbols lists the configured universe with model availability flags.
func (r *Registry) Symbols() []models.SymbolInfo {
	out := make([]models.SymbolInfo, 0, len(r.names))
	for symbol, name := range r.names {
		_, has := r.bindings[symbol]
		out = append(out, models.SymbolInfo{Symbol: symbol, Name: name, HasModel: has})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Loaded lists symbols that have a usable binding.
func (r *Registry) Loaded() []string {
	out := make([]string, 0, len(r.bindings))
	for symbol := range r.bindings {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}
