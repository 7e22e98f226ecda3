// Package rates implements fixed tick windows for per-player action limits.
package rates

// Window counts uses since Start. The zero value opens at the first use.
type Window struct {
	Start uint64
	Count int
}

// Allow records one use at nowTick. A window of 0 or max <= 0 disables the
// limit. When denied, cooldown is the number of ticks until the window resets.
func (w *Window) Allow(nowTick, window uint64, max int) (ok bool, cooldown uint64) {
	if window == 0 || max <= 0 {
		return true, 0
	}
	if w.Count == 0 || nowTick < w.Start || nowTick-w.Start >= window {
		w.Start = nowTick
		w.Count = 0
	}
	w.Count++
	if w.Count <= max {
		return true, 0
	}
	return false, w.Start + window - nowTick
}

// Set holds one window per action kind.
type Set map[string]*Window

func (s Set) Allow(kind string, nowTick, window uint64, max int) (bool, uint64) {
	w := s[kind]
	if w == nil {
		w = &Window{}
		s[kind] = w
	}
	return w.Allow(nowTick, window, max)
}
