package model

// MemoryWindowSize is the number of retained exchanges (user+assistant
// pairs) fed back into prompts. Storage keeps the full transcript; the
// window only keeps the tail.
const MemoryWindowSize = 5

// DefaultMemoryKey keys the window used before a chat id exists.
const DefaultMemoryKey = "default"

// MemoryEntry is one (role, content) pair inside a window.
type MemoryEntry struct {
	Role    Role
	Content string
}

// MemoryWindow is a per-chat sliding window over the most recent exchanges.
// It is created lazily, lives in process memory only, and is never resynced
// from storage once created.
type MemoryWindow struct {
	k       int
	entries []MemoryEntry
}

func NewMemoryWindow(k int) *MemoryWindow {
	if k <= 0 {
		k = MemoryWindowSize
	}
	return &MemoryWindow{k: k, entries: make([]MemoryEntry, 0, 2*k)}
}

func (w *MemoryWindow) AppendUser(content string) {
	w.append(MemoryEntry{Role: RoleUser, Content: content})
}

func (w *MemoryWindow) AppendAssistant(content string) {
	w.append(MemoryEntry{Role: RoleAssistant, Content: content})
}

// append evicts oldest-first once the window exceeds k exchanges. Eviction
// counts exchanges, not raw messages, so consecutive same-role entries
// (error retries) are tolerated.
func (w *MemoryWindow) append(e MemoryEntry) {
	w.entries = append(w.entries, e)
	if max := 2 * w.k; len(w.entries) > max {
		w.entries = append(w.entries[:0], w.entries[len(w.entries)-max:]...)
	}
}

// Entries returns a copy of the window in oldest-first order.
func (w *MemoryWindow) Entries() []MemoryEntry {
	out := make([]MemoryEntry, len(w.entries))
	copy(out, w.entries)
	return out
}

func (w *MemoryWindow) Len() int { return len(w.entries) }
