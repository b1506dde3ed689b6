package session

import (
	"sync"
	"time"
)

// Session is the in-memory working set for one room: the quantities the
// operator intends to commit, the raw text currently in each input, and the
// last-counted timestamps from the prior snapshot. It is never persisted
// directly; it is hydrated from and flushed into room count rows.
type Session struct {
	mu sync.Mutex

	orgID  int64
	roomID int64

	quantities    map[int64]float64
	rawInputs     map[int64]string
	lastCountedAt map[int64]time.Time

	hydratedAt time.Time
}

// Row is a hydration source or commit payload entry.
type Row struct {
	ItemID    int64
	Quantity  float64
	UpdatedAt time.Time
}

// New builds a session hydrated from persisted rows. Items without a row are
// absent from the maps and read as zero.
func New(orgID, roomID int64, rows []Row, hydratedAt time.Time) *Session {
	s := &Session{
		orgID:         orgID,
		roomID:        roomID,
		quantities:    make(map[int64]float64, len(rows)),
		rawInputs:     make(map[int64]string, len(rows)),
		lastCountedAt: make(map[int64]time.Time, len(rows)),
		hydratedAt:    hydratedAt,
	}
	for _, row := range rows {
		s.quantities[row.ItemID] = row.Quantity
		s.rawInputs[row.ItemID] = FormatQuantity(row.Quantity)
		s.lastCountedAt[row.ItemID] = row.UpdatedAt
	}
	return s
}

func (s *Session) OrgID() int64  { return s.orgID }
func (s *Session) RoomID() int64 { return s.roomID }

func (s *Session) HydratedAt() time.Time { return s.hydratedAt }

// Get returns the canonical quantity for an item, zero when never touched.
func (s *Session) Get(itemID int64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quantities[itemID]
}

// Display returns what the operator should see for an item: the raw text if
// one exists (it may legitimately be "" or "1." mid-typing), otherwise the
// formatted quantity.
func (s *Session) Display(itemID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if raw, ok := s.rawInputs[itemID]; ok {
		return raw
	}
	return FormatQuantity(s.quantities[itemID])
}

// Adjust applies a stepper press. The result is clamped at zero and rounded
// to one decimal on every step, and both representations are rewritten.
func (s *Session) Adjust(itemID int64, delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Round1(s.quantities[itemID] + delta)
	if next < 0 {
		next = 0
	}
	s.quantities[itemID] = next
	s.rawInputs[itemID] = FormatQuantity(next)
	return next
}

// SetText applies free-text entry. The raw text is stored verbatim in every
// case so the operator sees exactly what they typed. Empty and "." zero the
// quantity without a parse attempt. Unparseable text leaves the quantity
// untouched. Parseable text is clamped non-negative but NOT rounded.
func (s *Session) SetText(itemID int64, text string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rawInputs[itemID] = text

	if text == "" || text == "." {
		s.quantities[itemID] = 0
		return 0
	}

	value, ok := ParseQuantity(text)
	if !ok {
		return s.quantities[itemID]
	}
	if value < 0 {
		value = 0
	}
	s.quantities[itemID] = value
	return value
}

// Total is the sum of all quantities, rounded for display.
func (s *Session) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total float64
	for _, qty := range s.quantities {
		total += qty
	}
	return Round1(total)
}

// Entries returns a snapshot of every touched item, including items whose
// only touch so far is unparsed text in the input.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.quantities)+len(s.rawInputs))
	for itemID, qty := range s.quantities {
		entry := Entry{
			ItemID:   itemID,
			Quantity: qty,
			Display:  FormatQuantity(qty),
		}
		if raw, ok := s.rawInputs[itemID]; ok {
			entry.Display = raw
		}
		if counted, ok := s.lastCountedAt[itemID]; ok {
			countedAt := counted
			entry.LastCountedAt = &countedAt
		}
		entries = append(entries, entry)
	}
	for itemID, raw := range s.rawInputs {
		if _, ok := s.quantities[itemID]; ok {
			continue
		}
		entries = append(entries, Entry{
			ItemID:  itemID,
			Display: raw,
		})
	}
	return entries
}

// Entry is a read-only view of one ledger item.
type Entry struct {
	ItemID        int64
	Quantity      float64
	Display       string
	LastCountedAt *time.Time
}

// PersistableRows returns the commit payload: every entry with a quantity
// strictly above zero. Zero-quantity entries are dropped, which makes
// "counted to zero" indistinguishable from "never counted" in storage.
func (s *Session) PersistableRows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]Row, 0, len(s.quantities))
	for itemID, qty := range s.quantities {
		if qty > 0 {
			rows = append(rows, Row{ItemID: itemID, Quantity: qty})
		}
	}
	return rows
}
