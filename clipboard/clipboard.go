// Package clipboard provides an in-memory clipboard for text fields.
package clipboard

import (
	"sync"

	"go.uber.org/zap"

	"github.com/agiangrant/toolkit/internal/logger"
)

// DefaultCapacity is the number of items kept before the oldest is dropped.
const DefaultCapacity = 16

// Clipboard stores copied text items, most recent first.
type Clipboard struct {
	mu       sync.RWMutex
	items    []string
	capacity int
	visible  bool
	log      *zap.Logger
}

// New creates a clipboard keeping up to capacity items.
func New(capacity int, log *zap.Logger) *Clipboard {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Clipboard{
		capacity: capacity,
		log:      logger.Or(log),
	}
}

// SetItem stores text as the newest item. Empty text is ignored.
func (c *Clipboard) SetItem(text string) bool {
	if text == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append([]string{text}, c.items...)
	if len(c.items) > c.capacity {
		c.items = c.items[:c.capacity]
	}
	c.log.Debug("clipboard item set", zap.Int("length", len(text)), zap.Int("items", len(c.items)))
	return true
}

// GetItem returns the item at index, 0 being the newest.
func (c *Clipboard) GetItem(index int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if index < 0 || index >= len(c.items) {
		return ""
	}
	return c.items[index]
}

// NumberOfItems returns how many items are stored.
func (c *Clipboard) NumberOfItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// ShowClipboard marks the clipboard UI visible.
func (c *Clipboard) ShowClipboard() {
	c.mu.Lock()
	c.visible = true
	c.mu.Unlock()
}

// HideClipboard marks the clipboard UI hidden.
func (c *Clipboard) HideClipboard() {
	c.mu.Lock()
	c.visible = false
	c.mu.Unlock()
}

// IsVisible reports whether the clipboard UI is shown.
func (c *Clipboard) IsVisible() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visible
}
