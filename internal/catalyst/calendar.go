package catalyst

import (
	"fmt"
	"sort"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/viper"

	"signal_monitor/pkg/logger"
)

const dateLayout = "2006-01-02"

// Entry — одно событие календаря катализаторов.
type Entry struct {
	Date  time.Time
	Title string
}

// Calendar отдаёт ближайшие события для приписки к алертам.
// Календарь статичный, правится руками в yaml.
type Calendar struct {
	entries []Entry
	horizon time.Duration
}

type rawEntry struct {
	Date  string `mapstructure:"date"`
	Title string `mapstructure:"title"`
}

// Load читает календарь из yaml-файла. Отсутствие файла не ошибка:
// алерты просто идут без приписки.
func Load(path string) (*Calendar, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		logger.Info("[CATALYST] календарь не загружен (%v), алерты без катализаторов", err)
		return &Calendar{horizon: 7 * 24 * time.Hour}, nil
	}

	var raw []rawEntry
	if err := v.UnmarshalKey("catalysts", &raw); err != nil {
		return nil, pkgerrors.Wrap(err, "catalyst: decode")
	}

	entries := make([]Entry, 0, len(raw))
	for _, r := range raw {
		d, err := time.Parse(dateLayout, r.Date)
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "catalyst: bad date %q", r.Date)
		}
		entries = append(entries, Entry{Date: d, Title: r.Title})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })

	return &Calendar{entries: entries, horizon: 7 * 24 * time.Hour}, nil
}

// Markers — строки вида "FOMC (3d)" для событий в пределах горизонта.
func (c *Calendar) Markers(now time.Time) []string {
	if c == nil {
		return nil
	}
	var out []string
	for _, e := range c.entries {
		until := e.Date.Sub(now)
		if until < -24*time.Hour || until > c.horizon {
			continue
		}
		days := int(until.Hours() / 24)
		switch {
		case days <= 0:
			out = append(out, fmt.Sprintf("%s (today)", e.Title))
		case days == 1:
			out = append(out, fmt.Sprintf("%s (tomorrow)", e.Title))
		default:
			out = append(out, fmt.Sprintf("%s (%dd)", e.Title, days))
		}
	}
	return out
}
