package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"signal_monitor/internal/modules/config"
	"signal_monitor/pkg/logger"
)

// Stream держит один WebSocket к Binance с пачкой miniTicker-подписок
// и отдаёт последнюю цену без похода в REST.
type Stream struct {
	cfg    *config.Config
	dialer *websocket.Dialer

	mu   sync.RWMutex
	last map[string]float64 // "BTCUSDT" -> цена
}

func NewStream(cfg *config.Config) *Stream {
	return &Stream{
		cfg:    cfg,
		dialer: &websocket.Dialer{},
		last:   make(map[string]float64),
	}
}

// Price — последняя цена из стрима, ok=false пока тикер не приходил.
func (s *Stream) Price(symbol, quote string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.last[strings.ToUpper(symbol+quote)]
	return p, ok
}

// Run блокируется до отмены контекста, переподключается сам.
func (s *Stream) Run(ctx context.Context) {
	if len(s.cfg.Market.StreamSymbols) == 0 {
		return
	}

	streams := make([]string, 0, len(s.cfg.Market.StreamSymbols))
	for _, sym := range s.cfg.Market.StreamSymbols {
		streams = append(streams, strings.ToLower(sym)+"@miniTicker")
	}
	url := s.cfg.Market.StreamURL + "/stream?streams=" + strings.Join(streams, "/")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		logger.Info("[STREAM] connect %d symbols", len(streams))
		conn, _, err := s.dialer.DialContext(ctx, url, nil)
		if err != nil {
			logger.Error("[STREAM] dial error: %v", err)
			time.Sleep(time.Second)
			continue
		}

		s.readLoop(ctx, conn)
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return
		default:
			time.Sleep(time.Second)
		}
	}
}

func (s *Stream) readLoop(ctx context.Context, conn *websocket.Conn) {
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("[STREAM] read error: %v", err)
			}
			return
		}

		var frame struct {
			Data struct {
				Symbol string `json:"s"`
				Close  string `json:"c"`
			} `json:"data"`
		}
		if err := sonic.Unmarshal(msg, &frame); err != nil {
			continue
		}
		if frame.Data.Symbol == "" {
			continue
		}
		price, err := strconv.ParseFloat(frame.Data.Close, 64)
		if err != nil || price <= 0 {
			continue
		}

		s.mu.Lock()
		s.last[frame.Data.Symbol] = price
		s.mu.Unlock()
	}
}
