package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	icache "github.com/AnshNarg/bit-coin/internal/service/cache"
	"github.com/AnshNarg/bit-coin/internal/services/forecast"
	svcmetrics "github.com/AnshNarg/bit-coin/internal/service/metrics"
	"github.com/AnshNarg/bit-coin/internal/service/ratelimit"
	"github.com/AnshNarg/bit-coin/internal/usecase"
	xhttp "github.com/AnshNarg/bit-coin/pkg/http"
	applogger "github.com/AnshNarg/bit-coin/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastHandler exposes the forecast API over Echo.
type ForecastHandler struct {
	forecasts *usecase.ForecastUseCase
	candles   *usecase.CandlesUseCase
	cache     icache.BytesCache
	cacheTTL  time.Duration
	rl        *ratelimit.Limiter
	l         *applogger.Logger

	streamConnected func() bool
}

func NewForecastHandler(forecasts *usecase.ForecastUseCase, candles *usecase.CandlesUseCase, l *applogger.Logger) *ForecastHandler {
	svcmetrics.Register()
	return &ForecastHandler{
		forecasts: forecasts,
		candles:   candles,
		cacheTTL:  60 * time.Second,
		rl:        ratelimit.New(),
		l:         l,
	}
}

// SetCache injects a response byte cache.
func (h *ForecastHandler) SetCache(c icache.BytesCache, ttl time.Duration) {
	h.cache = c
	if ttl > 0 {
		h.cacheTTL = ttl
	}
}

// SetStreamStatus injects a live-stream connectivity probe for /health.
func (h *ForecastHandler) SetStreamStatus(fn func() bool) { h.streamConnected = fn }

func (h *ForecastHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api")
	g.GET("/predictions/:symbol", h.Predict)
	g.POST("/predictions/batch", h.PredictBatch)
	g.GET("/symbols", h.Symbols)
	g.GET("/models/:symbol", h.ModelInfo)
	g.GET("/candles/:symbol", h.Candles)
}

func (h *ForecastHandler) Health(c echo.Context) error {
	body := map[string]interface{}{
		"status":        "healthy",
		"models_loaded": h.forecasts.LoadedModels(),
	}
	if h.streamConnected != nil {
		body["stream_connected"] = h.streamConnected()
	}
	return xhttp.SuccessResponse(c, body)
}

func (h *ForecastHandler) Predict(c echo.Context) error {
	start := time.Now()
	endpoint := "predict"
	defer func() { svcmetrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.rl.Allow(c.RealIP()+":predict", 10, 5) {
		if h.l != nil {
			h.l.Warn("predict rate_limited", applogger.String("remote", c.RealIP()))
		}
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	// Clamp before building the cache key so days=60 and days=30 share an entry.
	req.Days = forecast.ClampHorizon(req.Days)

	cacheKey := fmt.Sprintf("predict:%s:%d", req.Symbol, req.Days)
	if b, ok := h.cacheGet(cacheKey); ok {
		return c.JSONBlob(200, b)
	}

	res, err := h.forecasts.GetForecast(c.Request().Context(), req.Symbol, req.Days)
	if err != nil {
		svcmetrics.ForecastErrors.WithLabelValues(endpoint).Inc()
		if h.l != nil {
			h.l.Error("predict usecase error", applogger.String("symbol", req.Symbol), applogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}

	h.cacheSet(cacheKey, wrapEnvelope(res))
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) PredictBatch(c echo.Context) error {
	start := time.Now()
	endpoint := "predict_batch"
	defer func() { svcmetrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.BatchForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.rl.Allow(c.RealIP()+":batch", 3, 1) {
		if h.l != nil {
			h.l.Warn("predict_batch rate_limited", applogger.String("remote", c.RealIP()))
		}
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	res, err := h.forecasts.BatchForecast(c.Request().Context(), req.Symbols, forecast.ClampHorizon(req.Days))
	if err != nil {
		svcmetrics.ForecastErrors.WithLabelValues(endpoint).Inc()
		if h.l != nil {
			h.l.Error("predict_batch usecase error", applogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) Symbols(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbols": h.forecasts.Symbols(),
	})
}

func (h *ForecastHandler) ModelInfo(c echo.Context) error {
	endpoint := "model_info"
	req := &models.ModelInfoRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	meta, err := h.forecasts.ModelInfo(c.Request().Context(), req.Symbol)
	if err != nil {
		svcmetrics.ForecastErrors.WithLabelValues(endpoint).Inc()
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, meta)
}

func (h *ForecastHandler) Candles(c echo.Context) error {
	endpoint := "candles"
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.candles.GetLatestDaily(c.Request().Context(), req.Symbol, req.N)
	if err != nil {
		svcmetrics.ForecastErrors.WithLabelValues(endpoint).Inc()
		if h.l != nil {
			h.l.Error("candles usecase error", applogger.String("symbol", req.Symbol), applogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, mapDomainError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastHandler) cacheGet(key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		if h.l != nil {
			h.l.Warn("cache_get_error", applogger.String("key", key), applogger.Error(err))
		}
		return nil, false
	}
	return b, ok
}

func (h *ForecastHandler) cacheSet(key string, v interface{}) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := h.cache.SetBytes(key, b, h.cacheTTL); err != nil && h.l != nil {
		h.l.Warn("cache_set_error", applogger.String("key", key), applogger.Error(err))
	}
}

// wrapEnvelope mirrors the SuccessResponse body so cached bytes replay the
// exact same JSON shape.
func wrapEnvelope(data interface{}) xhttp.APIResponse {
	return xhttp.APIResponse{Status: 200, Message: "OK", Data: data}
}

// mapDomainError translates the domain error taxonomy into HTTP app errors.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrModelUnavailable):
		return xhttp.NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrInsufficientHistory):
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_HISTORY", err.Error()).WithError(err)
	case errors.Is(err, models.ErrNumericDegeneracy):
		return xhttp.UnprocessableError("ERR_NUMERIC_DEGENERACY", err.Error()).WithError(err)
	case errors.Is(err, models.ErrDataFetch):
		return xhttp.BadGatewayError("ERR_DATA_FETCH", err.Error()).WithError(err)
	default:
		return xhttp.InternalError(err.Error()).WithError(err)
	}
}
