package notify

import (
	"fmt"
	"strings"

	"signal_monitor/internal/models"
)

// Format собирает HTML-сообщение для Telegram из события. markers —
// строки о ближайших катализаторах, может быть пусто.
func Format(ev models.Event, markers []string) string {
	var b strings.Builder

	switch d := ev.Details.(type) {
	case models.AccelerationDetails:
		fmt.Fprintf(&b, "🔥 <b>ACCELERATION ALERT!</b>\n\n")
		fmt.Fprintf(&b, "₿ %s: $%s\n", d.Symbol, money(d.Price))
		fmt.Fprintf(&b, "Direction: <b>%s</b>\n\n", arrow(ev.Direction))
		fmt.Fprintf(&b, "Previous: %+.2f%%\n", d.PrevChange)
		fmt.Fprintf(&b, "Recent: %+.2f%%\n", d.RecentChange)
		fmt.Fprintf(&b, "<b>Difference: %+.2f%%</b>\n\n", d.Diff)
		fmt.Fprintf(&b, "💰 Volume: %+.0f%% vs avg\n", d.VolumeVsAvg)

	case models.MomentumDetails:
		emoji := "📈"
		if ev.Direction == models.DirDown {
			emoji = "📉"
		}
		fmt.Fprintf(&b, "%s <b>MOMENTUM ALERT!</b>\n\n", emoji)
		fmt.Fprintf(&b, "₿ %s: $%s\n", d.Symbol, money(d.Price))
		fmt.Fprintf(&b, "Direction: <b>%s</b>\n\n", arrow(ev.Direction))
		fmt.Fprintf(&b, "<b>%d consecutive %d-min periods:</b>\n", len(d.Changes), d.PeriodMin)
		for i, chg := range d.Changes {
			fmt.Fprintf(&b, "Period %d: %+.2f%%\n", i+1, chg)
		}
		fmt.Fprintf(&b, "\nTotal (%dmin): %+.2f%%\n\n", len(d.Changes)*d.PeriodMin, d.TotalChange)
		fmt.Fprintf(&b, "💰 Volume: %+.0f%% vs avg\n", d.VolumeVsAvg)

	case models.SpikeDetails:
		fmt.Fprintf(&b, "⚡ <b>SPIKE ALERT!</b> ⚡\n\n")
		fmt.Fprintf(&b, "₿ %s: $%s\n", d.Symbol, money(d.To))
		fmt.Fprintf(&b, "Direction: <b>%s</b>\n\n", arrow(ev.Direction))
		fmt.Fprintf(&b, "<b>%+.2f%% in %d minutes</b>\n", d.Change, d.PeriodMin)
		fmt.Fprintf(&b, "From $%s to $%s\n\n", money(d.From), money(d.To))
		fmt.Fprintf(&b, "💰 Volume: %+.0f%% vs avg\n", d.VolumeVsAvg)

	case models.RoundLevelDetails:
		emoji := "🚀"
		if ev.Direction == models.DirDown {
			emoji = "⚠️"
		}
		fmt.Fprintf(&b, "%s <b>%s LEVEL CROSS!</b>\n\n", emoji, d.Symbol)
		fmt.Fprintf(&b, "Crossed <b>$%s</b> (%s)\n", money(d.Level), arrow(ev.Direction))
		fmt.Fprintf(&b, "Price: $%s → $%s\n", money(d.Prev), money(d.Current))
		if d.RSI > 0 {
			fmt.Fprintf(&b, "\n📈 <b>CONTEXT:</b>\nRSI(14): %.0f %s\n", d.RSI, rsiTag(d.RSI))
		}

	case models.LevelCrossDetails:
		emoji := "🚀"
		if ev.Direction == models.DirDown {
			emoji = "⚠️"
		}
		fmt.Fprintf(&b, "%s <b>%s RATIO ALERT!</b> %s\n\n", emoji, d.Pair, emoji)
		fmt.Fprintf(&b, "Crossed <b>%.4f</b> (%s)\n", d.Level, arrow(ev.Direction))
		fmt.Fprintf(&b, "Ratio: %.5f → %.5f\n", d.Prev, d.Current)

	case models.ExtremumDetails:
		emoji, what := "🚀", "HIGH"
		if d.Side == models.ExtremumLow {
			emoji, what = "⚠️", "LOW"
		}
		fmt.Fprintf(&b, "%s <b>%s %dD %s BREAK!</b>\n\n", emoji, d.Symbol, d.WindowHours/24, what)
		fmt.Fprintf(&b, "%dd %s: $%s\n", d.WindowHours/24, strings.ToLower(what), money(d.Bound))
		fmt.Fprintf(&b, "Current: <b>$%s</b>\n\n", money(d.Current))
		fmt.Fprintf(&b, "💰 Volume: %+.0f%% vs avg\n", d.VolumeVsAvg)

	case models.DivergenceDetails:
		fmt.Fprintf(&b, "🔄 <b>%s/%s ROTATION ALERT</b>\n\n", d.Base, d.Ref)
		fmt.Fprintf(&b, "<b>%dh divergence: %+.2fpp</b>\n", d.Trigger.Horizon, d.Trigger.Diff)
		fmt.Fprintf(&b, "%s: %+.2f%%  |  %s: %+.2f%%\n\n", d.Base, d.Trigger.BaseChg, d.Ref, d.Trigger.RefChg)
		for _, h := range d.Horizons {
			mark := ""
			if h.Hit {
				mark = " ✅"
			}
			fmt.Fprintf(&b, "%dh: %+.2fpp (need ±%.1f)%s\n", h.Horizon, h.Diff, h.Threshold, mark)
		}
		fmt.Fprintf(&b, "\n💰 Volume: %+.0f%% vs avg\n", d.VolumeVsAvg)

	case models.DerivativesDetails:
		emoji := "⚠️"
		if d.Quadrant == models.QuadOpportunity {
			emoji = "🚀"
		}
		fmt.Fprintf(&b, "%s <b>DERIVATIVES ALERT: %s</b>\n\n", emoji, strings.ToUpper(string(d.Quadrant)))
		fmt.Fprintf(&b, "Funding: %+.3f%%/8h (%+.0f%% annualized)\n", d.FundingPct, d.FundingAnnualPct)
		fmt.Fprintf(&b, "Open Interest: $%.1fB\n", d.OIBillions)
		fmt.Fprintf(&b, "Risk: <b>%s</b>\n", d.Risk)

	case models.DominanceDetails:
		fmt.Fprintf(&b, "🌐 <b>BTC DOMINANCE: %s</b>\n\n", d.Zone)
		fmt.Fprintf(&b, "Dominance: <b>%.2f%%</b>\n", d.Current)
		fmt.Fprintf(&b, "24h momentum: %+.2fpp\n\n", d.Delta24h)
		for _, reason := range d.Reasons {
			fmt.Fprintf(&b, "• %s\n", reason)
		}

	default:
		b.WriteString(ev.Summary)
	}

	if len(markers) > 0 {
		fmt.Fprintf(&b, "\n📅 <b>Upcoming Catalysts:</b> %s\n", strings.Join(markers, " | "))
	}
	fmt.Fprintf(&b, "\n⏰ %s", ev.FiredAt.UTC().Format("15:04 MST"))

	return b.String()
}

func arrow(d models.Direction) string {
	switch d {
	case models.DirUp:
		return "UP 🚀"
	case models.DirDown:
		return "DOWN ⚠️"
	default:
		return "FLAT"
	}
}

func rsiTag(v float64) string {
	switch {
	case v >= 70:
		return "(overbought)"
	case v <= 30:
		return "(oversold)"
	default:
		return "(neutral)"
	}
}

// money форматирует цену с разделителями тысяч, как в алертах.
func money(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]

	neg := false
	if strings.HasPrefix(intPart, "-") {
		neg = true
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
