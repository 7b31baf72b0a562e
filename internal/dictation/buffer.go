// Package dictation holds the text being composed by voice and splices
// recognised fragments in at the caret.
package dictation

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSaveFunc is returned by Save when the buffer has nowhere to save to.
var ErrNoSaveFunc = errors.New("dictation: no save function configured")

// SaveFunc persists the buffer contents.
type SaveFunc func(ctx context.Context, text string) error

// Buffer is a thread-safe text buffer with a cursor. Offsets count runes.
type Buffer struct {
	text   []rune
	cursor int
	save   SaveFunc
	mu     sync.RWMutex
}

// NewBuffer creates an empty buffer. save may be nil.
func NewBuffer(save SaveFunc) *Buffer {
	return &Buffer{save: save}
}

// Text returns the buffer contents.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.text)
}

// Cursor returns the cursor offset.
func (b *Buffer) Cursor() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cursor
}

// Len returns the length of the contents in runes.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text)
}

// InsertAtCursor applies punctuation commands to fragment, splices it in at
// the cursor and moves the cursor past it. No spacing is added around the
// fragment.
func (b *Buffer) InsertAtCursor(fragment string) (string, int) {
	insert := []rune(ApplyPunctuation(fragment))

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(insert) == 0 {
		return string(b.text), b.cursor
	}

	text := make([]rune, 0, len(b.text)+len(insert))
	text = append(text, b.text[:b.cursor]...)
	text = append(text, insert...)
	text = append(text, b.text[b.cursor:]...)

	b.text = text
	b.cursor += len(insert)
	return string(b.text), b.cursor
}

// SetText replaces the contents after a manual edit, clamping cursor.
func (b *Buffer) SetText(text string, cursor int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.text = []rune(text)
	b.cursor = clamp(cursor, len(b.text))
}

// SetCursor moves the cursor, clamping it to the contents, and returns the
// new offset.
func (b *Buffer) SetCursor(offset int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cursor = clamp(offset, len(b.text))
	return b.cursor
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.text = nil
	b.cursor = 0
}

// Save hands the current contents to the buffer's SaveFunc.
func (b *Buffer) Save(ctx context.Context) error {
	b.mu.RLock()
	text, save := string(b.text), b.save
	b.mu.RUnlock()

	if save == nil {
		return ErrNoSaveFunc
	}
	return save(ctx, text)
}

func clamp(offset, length int) int {
	return min(max(offset, 0), length)
}
