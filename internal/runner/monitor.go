package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opentracing/opentracing-go"

	"signal_monitor/internal/catalyst"
	"signal_monitor/internal/detectors"
	"signal_monitor/internal/models"
	"signal_monitor/internal/modules/config"
	"signal_monitor/internal/notify"
	"signal_monitor/pkg/logger"
)

// Provider отдаёт рыночный снапшот под требования детекторов.
type Provider interface {
	Snapshot(ctx context.Context, reqs []detectors.SeriesReq, scalars []string) (detectors.Snapshot, error)
}

// Monitor гоняет все детекторы по общему снапшоту раз в цикл.
type Monitor struct {
	cfg      *config.Config
	provider Provider
	store    detectors.Store
	n        notify.Notifier
	cal      *catalyst.Calendar

	dets    []detectors.Detector
	running atomic.Bool

	mu        sync.Mutex
	cycles    int
	fired     int
	lastCycle time.Time
	lastErr   string
}

func NewMonitor(
	cfg *config.Config,
	provider Provider,
	store detectors.Store,
	n notify.Notifier,
	cal *catalyst.Calendar,
) *Monitor {
	return &Monitor{
		cfg:      cfg,
		provider: provider,
		store:    store,
		n:        n,
		cal:      cal,
		dets:     buildDetectors(cfg),
	}
}

func buildDetectors(cfg *config.Config) []detectors.Detector {
	var out []detectors.Detector
	if cfg.Acceleration.Enabled {
		out = append(out, detectors.NewAcceleration(cfg.Acceleration))
	}
	if cfg.Momentum.Enabled {
		out = append(out, detectors.NewMomentum(cfg.Momentum))
	}
	if cfg.Spike.Enabled {
		out = append(out, detectors.NewSpike(cfg.Spike))
	}
	if cfg.BTCRound.Enabled {
		out = append(out, detectors.NewRoundLevel(cfg.BTCRound))
	}
	if cfg.GoldRound.Enabled {
		out = append(out, detectors.NewRoundLevel(cfg.GoldRound))
	}
	if cfg.ETHBTCLevels.Enabled {
		out = append(out, detectors.NewLevelCross(cfg.ETHBTCLevels))
	}
	if cfg.BTCExtremum.Enabled {
		out = append(out, detectors.NewExtremum(cfg.BTCExtremum))
	}
	if cfg.GoldExtremum.Enabled {
		out = append(out, detectors.NewExtremum(cfg.GoldExtremum))
	}
	if cfg.Divergence.Enabled {
		out = append(out, detectors.NewDivergence(cfg.Divergence))
	}
	if cfg.Derivatives.Enabled {
		out = append(out, detectors.NewDerivatives(cfg.Derivatives))
	}
	if cfg.Dominance.Enabled {
		proxy := detectors.ProxyMomentum{
			Key:    detectors.SeriesKey{Symbol: "BTC", Quote: "USD", Gran: models.GranHour},
			Factor: 0.3,
		}
		out = append(out, detectors.NewDominance(cfg.Dominance, proxy))
	}
	return out
}

// RunCycle выполняет одну проверку всех детекторов. Если прошлый цикл
// ещё идёт, новый молча пропускается.
func (m *Monitor) RunCycle(ctx context.Context, now time.Time) {
	if !m.running.CompareAndSwap(false, true) {
		logger.Info("[MONITOR] цикл ещё идёт, пропуск")
		return
	}
	defer m.running.Store(false)

	span, ctx := opentracing.StartSpanFromContext(ctx, "monitor.cycle")
	defer span.Finish()

	fetchCtx, cancel := context.WithTimeout(ctx, m.cfg.FetchTimeout)
	defer cancel()

	var reqs []detectors.SeriesReq
	var scalars []string
	for _, d := range m.dets {
		req := d.Requires()
		reqs = append(reqs, req.Series...)
		scalars = append(scalars, req.Scalars...)
	}

	snap, err := m.provider.Snapshot(fetchCtx, reqs, scalars)
	if err != nil {
		logger.Error("[MONITOR] снапшот не собран: %v", err)
		m.note(now, 0, err)
		return
	}

	fired := 0
	for _, d := range m.dets {
		if m.evaluate(d, snap, now) {
			fired++
		}
	}
	m.note(now, fired, nil)
	logger.Debug("[MONITOR] цикл завершён, детекторов %d, сигналов %d", len(m.dets), fired)
}

// evaluate изолирует детектор: его паника или ошибка не валит цикл.
func (m *Monitor) evaluate(d detectors.Detector, snap detectors.Snapshot, now time.Time) (fired bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[MONITOR] паника в %s: %v", d.ID(), r)
		}
	}()

	st := m.store.Get(d.ID())
	res, err := d.Evaluate(snap, st, now)
	if err != nil {
		logger.Debug("[MONITOR] %s пропущен: %v", d.ID(), err)
		return false
	}

	if res.Observed != nil {
		st.LastObserved = *res.Observed
		st.HasObserved = true
	}
	if res.Event != nil {
		st.LastFiredAt = now
		fired = true

		logger.Info("[MONITOR] %s: %s", d.ID(), res.Event.Summary)
		m.n.Send(notify.Format(*res.Event, m.cal.Markers(now)))
	}
	m.store.Set(d.ID(), st)
	return fired
}

func (m *Monitor) note(now time.Time, fired int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles++
	m.fired += fired
	m.lastCycle = now
	if err != nil {
		m.lastErr = err.Error()
	} else {
		m.lastErr = ""
	}
}

// Status — ответ на /status в Telegram.
func (m *Monitor) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Мониторинг: %d детекторов\n", len(m.dets))
	fmt.Fprintf(&b, "Циклов: %d, сигналов: %d\n", m.cycles, m.fired)
	if !m.lastCycle.IsZero() {
		fmt.Fprintf(&b, "Последний цикл: %s\n", m.lastCycle.UTC().Format("15:04:05 MST"))
	}
	if m.lastErr != "" {
		fmt.Fprintf(&b, "⚠️ Последняя ошибка: %s\n", m.lastErr)
	}
	return b.String()
}

// Detectors — список активных детекторов, для стартового сообщения.
func (m *Monitor) Detectors() []string {
	ids := make([]string, 0, len(m.dets))
	for _, d := range m.dets {
		ids = append(ids, d.ID())
	}
	return ids
}
