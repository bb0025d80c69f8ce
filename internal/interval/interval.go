package interval

import (
	"errors"
	"time"
)

// Ошибка валидации интервала: требуется строго start < end.
var ErrInvalidInterval = errors.New("invalid interval: start must be before end")

// TimeRange представляет полуоткрытый интервал [Start, End).
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange создаёт интервал и валидирует границы.
// Пустые, равные и перевёрнутые границы отклоняются.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.IsZero() || end.IsZero() {
		return TimeRange{}, ErrInvalidInterval
	}
	if !end.After(start) {
		return TimeRange{}, ErrInvalidInterval
	}
	return TimeRange{Start: start, End: end}, nil
}

// Overlaps проверяет пересечение двух полуоткрытых интервалов:
// [s1,e1) и [s2,e2) пересекаются, если s1 < e2 && s2 < e1.
// Касание границами (e1 == s2 или e2 == s1) пересечением не считается.
func Overlaps(a, b TimeRange) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// FirstConflict возвращает первый интервал из existing, пересекающийся
// с candidate, либо (TimeRange{}, false), если конфликтов нет.
func FirstConflict(candidate TimeRange, existing []TimeRange) (TimeRange, bool) {
	for _, tr := range existing {
		if Overlaps(candidate, tr) {
			return tr, true
		}
	}
	return TimeRange{}, false
}

// HasConflict — удобная форма FirstConflict.
func HasConflict(candidate TimeRange, existing []TimeRange) bool {
	_, ok := FirstConflict(candidate, existing)
	return ok
}

// WeekWindow возвращает окно «текущая неделя»: [полночь сегодняшнего дня,
// полночь + 7 суток). Полночь берётся в локации now; правая граница
// исключается.
func WeekWindow(now time.Time) TimeRange {
	year, month, day := now.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	return TimeRange{Start: midnight, End: midnight.AddDate(0, 0, 7)}
}
