package sim

// feedCapacity is how many recent events the on-screen feed keeps.
const feedCapacity = 60

// FeedEntry is a single line in the event feed.
type FeedEntry struct {
	Tick    int
	Label   string // e.g. "Z4", "T"
	Message string
}

// EventFeed is a ring buffer of recent events for the front ends to show.
type EventFeed struct {
	entries []FeedEntry
	head    int
	count   int
}

func NewEventFeed() *EventFeed {
	return &EventFeed{
		entries: make([]FeedEntry, feedCapacity),
	}
}

// Add appends an entry, overwriting the oldest once full.
func (f *EventFeed) Add(tick int, label, msg string) {
	f.entries[f.head] = FeedEntry{
		Tick:    tick,
		Label:   label,
		Message: msg,
	}
	f.head = (f.head + 1) % feedCapacity
	if f.count < feedCapacity {
		f.count++
	}
}

// Recent returns entries in chronological order (oldest first).
func (f *EventFeed) Recent() []FeedEntry {
	result := make([]FeedEntry, f.count)
	for i := 0; i < f.count; i++ {
		idx := (f.head - f.count + i + feedCapacity) % feedCapacity
		result[i] = f.entries[idx]
	}
	return result
}

func (f *EventFeed) Len() int { return f.count }
