package model

import (
	"context"
	"fmt"
	"time"

	xhttp "github.com/AnshNarg/bit-coin/pkg/http"
)

// HTTPPredictor calls the external model-serving service that hosts the
// trained networks. One normalized window in, one normalized close out.
type HTTPPredictor struct {
	baseURL string
	client  *xhttp.Client
}

// NewHTTPPredictor builds a predictor client with timeout and base URL.
func NewHTTPPredictor(baseURL string, timeout time.Duration) *HTTPPredictor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPPredictor{
		baseURL: baseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type predictReq struct {
	Symbol string      `json:"symbol"`
	Window [][]float64 `json:"window"`
}

type predictResp struct {
	Prediction float64 `json:"prediction"`
	Model      string  `json:"model"`
}

// Predict posts a normalized window for one symbol and returns the normalized
// close scalar.
func (p *HTTPPredictor) Predict(ctx context.Context, symbol string, window [][]float64) (float64, error) {
	if p.client == nil || p.baseURL == "" {
		return 0, fmt.Errorf("model client not initialized")
	}
	var pr predictResp
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    fmt.Sprintf("%s/models/%s/predict", p.baseURL, symbol),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: predictReq{Symbol: symbol, Window: window},
	}, &pr)
	if err != nil {
		return 0, fmt.Errorf("predict %s: %w", symbol, err)
	}
	return pr.Prediction, nil
}
