package bot

import (
	"sync"
	"time"
)

// cooldownMap tracks per-user per-command cooldowns.
type cooldownMap struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func newCooldownMap() *cooldownMap {
	return &cooldownMap{last: make(map[string]time.Time)}
}

// tryAcquire reports whether the user may run the command now, and if not,
// how long until they can. A successful acquire starts a new window.
func (c *cooldownMap) tryAcquire(command, userID string, window time.Duration) (bool, time.Duration) {
	key := command + ":" + userID
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.last[key]; ok {
		if wait := window - now.Sub(prev); wait > 0 {
			return false, wait
		}
	}
	c.last[key] = now
	return true, 0
}
