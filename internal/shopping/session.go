package shopping

import (
	"errors"
	"sort"
)

var (
	ErrInvalidOverride = errors.New("quantity override must be greater than 0")
	ErrUnknownItem     = errors.New("item is not on the current list")
)

// Session carries the user's selection and overrides for one list. It is
// keyed by aggregation key and survives recomputation as long as the key
// does.
type Session struct {
	Keys              []string           `json:"keys"`
	Selected          map[string]bool    `json:"selected"`
	Purchased         map[string]bool    `json:"purchased"`
	QuantityOverrides map[string]float64 `json:"quantity_overrides"`
	NotesOverrides    map[string]string  `json:"notes_overrides"`
}

// NewSession returns an empty session: nothing selected, no overrides.
func NewSession() *Session {
	return &Session{
		Keys:              []string{},
		Selected:          make(map[string]bool),
		Purchased:         make(map[string]bool),
		QuantityOverrides: make(map[string]float64),
		NotesOverrides:    make(map[string]string),
	}
}

func (s *Session) ensure() {
	if s.Selected == nil {
		s.Selected = make(map[string]bool)
	}
	if s.Purchased == nil {
		s.Purchased = make(map[string]bool)
	}
	if s.QuantityOverrides == nil {
		s.QuantityOverrides = make(map[string]float64)
	}
	if s.NotesOverrides == nil {
		s.NotesOverrides = make(map[string]string)
	}
}

// Toggle flips selection of key and returns the new state.
func (s *Session) Toggle(key string) bool {
	s.ensure()
	if s.Selected[key] {
		delete(s.Selected, key)
		return false
	}
	s.Selected[key] = true
	return true
}

// IsSelected reports whether key is selected.
func (s *Session) IsSelected(key string) bool {
	return s.Selected[key]
}

// TogglePurchased flips the in-session purchased mark. Finalize ignores it.
func (s *Session) TogglePurchased(key string) bool {
	s.ensure()
	if s.Purchased[key] {
		delete(s.Purchased, key)
		return false
	}
	s.Purchased[key] = true
	return true
}

// SetQuantity overrides the amount exported for key.
func (s *Session) SetQuantity(key string, amount float64) error {
	if !(amount > 0) {
		return ErrInvalidOverride
	}
	s.ensure()
	s.QuantityOverrides[key] = amount
	return nil
}

// ClearQuantity drops the quantity override for key.
func (s *Session) ClearQuantity(key string) {
	delete(s.QuantityOverrides, key)
}

// SetNotes overrides the notes exported for key. Empty notes are a valid
// override; use ClearNotes to fall back to the computed notes.
func (s *Session) SetNotes(key, notes string) {
	s.ensure()
	s.NotesOverrides[key] = notes
}

// ClearNotes drops the notes override for key.
func (s *Session) ClearNotes(key string) {
	delete(s.NotesOverrides, key)
}

// SelectedKeys returns selected keys in sorted order.
func (s *Session) SelectedKeys() []string {
	keys := make([]string, 0, len(s.Selected))
	for k, v := range s.Selected {
		if v {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key was on the list the session was last
// reconciled against.
func (s *Session) Has(key string) bool {
	i := sort.SearchStrings(s.Keys, key)
	return i < len(s.Keys) && s.Keys[i] == key
}

// Reconcile forgets every key that is not in current and returns how many
// keys were dropped. current becomes the session's key set.
func (s *Session) Reconcile(current []string) int {
	s.ensure()
	live := make(map[string]struct{}, len(current))
	for _, k := range current {
		live[k] = struct{}{}
	}
	s.Keys = make([]string, 0, len(live))
	for k := range live {
		s.Keys = append(s.Keys, k)
	}
	sort.Strings(s.Keys)

	stale := make(map[string]struct{})
	for k := range s.Selected {
		if _, ok := live[k]; !ok {
			stale[k] = struct{}{}
			delete(s.Selected, k)
		}
	}
	for k := range s.Purchased {
		if _, ok := live[k]; !ok {
			stale[k] = struct{}{}
			delete(s.Purchased, k)
		}
	}
	for k := range s.QuantityOverrides {
		if _, ok := live[k]; !ok {
			stale[k] = struct{}{}
			delete(s.QuantityOverrides, k)
		}
	}
	for k := range s.NotesOverrides {
		if _, ok := live[k]; !ok {
			stale[k] = struct{}{}
			delete(s.NotesOverrides, k)
		}
	}
	return len(stale)
}

// Finalize applies session overrides to items for export. With a non-empty
// selection only selected items are returned. Every returned item starts
// unpurchased. items is not modified.
func Finalize(items []Item, session *Session) []Item {
	if session == nil {
		session = NewSession()
	}
	onlySelected := len(session.SelectedKeys()) > 0

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if onlySelected && !session.IsSelected(it.ID) {
			continue
		}
		final := it
		final.Sources = append([]Source(nil), it.Sources...)
		if q, ok := session.QuantityOverrides[it.ID]; ok {
			final.TotalAmount = q
			final.EstimatedCost = scaleCost(it.EstimatedCost, it.TotalAmount, q)
		}
		if n, ok := session.NotesOverrides[it.ID]; ok {
			final.Notes = n
		}
		final.IsPurchased = false
		out = append(out, final)
	}
	return out
}
