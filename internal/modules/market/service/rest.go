package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	pkgerrors "github.com/pkg/errors"

	"signal_monitor/internal/detectors"
	"signal_monitor/internal/models"
	"signal_monitor/internal/modules/config"
)

// Rest ходит за свечами и рыночными скалярами по HTTP.
// Свечи — CryptoCompare, доминация — CoinGecko, деривативы — Binance futures.
type Rest struct {
	cfg  *config.Config
	http *http.Client
}

func NewRest(cfg *config.Config) *Rest {
	return &Rest{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Market.RequestTimeout},
	}
}

func (r *Rest) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return pkgerrors.Wrap(err, "market: build request")
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return pkgerrors.Wrapf(err, "market: GET %s", url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(err, "market: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return pkgerrors.Errorf("market: GET %s: status %d: %s", url, resp.StatusCode, truncate(body, 200))
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return pkgerrors.Wrapf(err, "market: decode %s", url)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

type ccBar struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	VolumeFrom float64 `json:"volumefrom"`
	VolumeTo   float64 `json:"volumeto"`
}

type ccHistResponse struct {
	Response string `json:"Response"`
	Message  string `json:"Message"`
	Data     struct {
		Data []ccBar `json:"Data"`
	} `json:"Data"`
}

// Candles отдаёт limit последних закрытых баров плюс текущий, от
// старого к новому.
func (r *Rest) Candles(ctx context.Context, key detectors.SeriesKey, limit int) ([]models.Candle, error) {
	endpoint := "histominute"
	if key.Gran == models.GranHour {
		endpoint = "histohour"
	}
	url := fmt.Sprintf("%s/data/v2/%s?fsym=%s&tsym=%s&limit=%d",
		r.cfg.Market.CandlesBaseURL, endpoint, key.Symbol, key.Quote, limit)

	var hist ccHistResponse
	if err := r.get(ctx, url, &hist); err != nil {
		return nil, err
	}
	if hist.Response != "Success" {
		return nil, pkgerrors.Errorf("market: candles %s: %s", key, hist.Message)
	}

	bars := make([]models.Candle, 0, len(hist.Data.Data))
	for _, b := range hist.Data.Data {
		if b.Close <= 0 {
			continue // биржа иногда отдаёт пустые хвостовые бары
		}
		bars = append(bars, models.Candle{
			Time:   time.Unix(b.Time, 0).UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.VolumeTo,
		})
	}
	return bars, nil
}

// Price — спот-цена без истории, фолбэк когда нет данных из стрима.
func (r *Rest) Price(ctx context.Context, key detectors.SeriesKey) (float64, error) {
	url := fmt.Sprintf("%s/data/price?fsym=%s&tsyms=%s",
		r.cfg.Market.CandlesBaseURL, key.Symbol, key.Quote)

	prices := map[string]float64{}
	if err := r.get(ctx, url, &prices); err != nil {
		return 0, err
	}
	p, ok := prices[key.Quote]
	if !ok || p <= 0 {
		return 0, pkgerrors.Errorf("market: no price for %s", key)
	}
	return p, nil
}

type cgGlobalResponse struct {
	Data struct {
		MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
	} `json:"data"`
}

// Dominance — доля BTC в общей капитализации, %.
func (r *Rest) Dominance(ctx context.Context) (models.ScalarPoint, error) {
	url := r.cfg.Market.GlobalBaseURL + "/api/v3/global"

	var global cgGlobalResponse
	if err := r.get(ctx, url, &global); err != nil {
		return models.ScalarPoint{}, err
	}
	dom, ok := global.Data.MarketCapPercentage["btc"]
	if !ok || dom <= 0 {
		return models.ScalarPoint{}, pkgerrors.New("market: global response without btc share")
	}
	return models.ScalarPoint{Time: time.Now().UTC(), Value: dom}, nil
}

type binancePremiumIndex struct {
	MarkPrice       string `json:"markPrice"`
	LastFundingRate string `json:"lastFundingRate"`
}

type binanceOpenInterest struct {
	OpenInterest string `json:"openInterest"`
}

// Funding — ставка финансирования BTC-перпа, % за 8 часов.
func (r *Rest) Funding(ctx context.Context) (models.ScalarPoint, error) {
	url := r.cfg.Market.DerivativesBaseURL + "/fapi/v1/premiumIndex?symbol=BTCUSDT"

	var idx binancePremiumIndex
	if err := r.get(ctx, url, &idx); err != nil {
		return models.ScalarPoint{}, err
	}
	rate, err := strconv.ParseFloat(idx.LastFundingRate, 64)
	if err != nil {
		return models.ScalarPoint{}, pkgerrors.Wrap(err, "market: parse funding rate")
	}
	return models.ScalarPoint{Time: time.Now().UTC(), Value: rate * 100}, nil
}

// OpenInterest — открытый интерес BTC-перпа в миллиардах долларов.
// Binance отдаёт OI в монетах, пересчитываем через mark price.
func (r *Rest) OpenInterest(ctx context.Context) (models.ScalarPoint, error) {
	var oi binanceOpenInterest
	if err := r.get(ctx, r.cfg.Market.DerivativesBaseURL+"/fapi/v1/openInterest?symbol=BTCUSDT", &oi); err != nil {
		return models.ScalarPoint{}, err
	}
	var idx binancePremiumIndex
	if err := r.get(ctx, r.cfg.Market.DerivativesBaseURL+"/fapi/v1/premiumIndex?symbol=BTCUSDT", &idx); err != nil {
		return models.ScalarPoint{}, err
	}

	coins, err1 := strconv.ParseFloat(oi.OpenInterest, 64)
	mark, err2 := strconv.ParseFloat(strings.TrimSpace(idx.MarkPrice), 64)
	if err1 != nil || err2 != nil || mark <= 0 {
		return models.ScalarPoint{}, pkgerrors.New("market: malformed open interest response")
	}
	return models.ScalarPoint{Time: time.Now().UTC(), Value: coins * mark / 1e9}, nil
}
