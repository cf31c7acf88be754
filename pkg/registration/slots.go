package registration

import (
	"sync"

	"partnerbot/pkg/models"
)

var (
	photoSlotNames    = []string{"main", "front", "back", "left", "right"}
	documentSlotNames = []string{"front", "back"}
)

// SlotSet holds a fixed number of named image slots that must all be
// filled before the batch is uploaded. It is safe for concurrent use.
type SlotSet struct {
	mu    sync.Mutex
	names []string
	files []*models.UploadFile
}

func NewPhotoSet() *SlotSet {
	return newSlotSet(photoSlotNames)
}

func NewDocumentSet() *SlotSet {
	return newSlotSet(documentSlotNames)
}

func newSlotSet(names []string) *SlotSet {
	return &SlotSet{
		names: names,
		files: make([]*models.UploadFile, len(names)),
	}
}

func (s *SlotSet) Len() int { return len(s.names) }

func (s *SlotSet) Name(i int) string { return s.names[i] }

func (s *SlotSet) Set(i int, f models.UploadFile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.files) {
		return false
	}
	s.files[i] = &f
	return true
}

func (s *SlotSet) Filled(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return i >= 0 && i < len(s.files) && s.files[i] != nil
}

// NextEmpty returns the first unfilled slot.
func (s *SlotSet) NextEmpty() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextEmpty()
}

func (s *SlotSet) nextEmpty() (int, bool) {
	for i, f := range s.files {
		if f == nil {
			return i, true
		}
	}
	return 0, false
}

func (s *SlotSet) FilledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.files {
		if f != nil {
			n++
		}
	}
	return n
}

func (s *SlotSet) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, empty := s.nextEmpty()
	return !empty
}

func (s *SlotSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.files {
		s.files[i] = nil
	}
}

// Files returns the batch in slot order; nil if any slot is empty.
func (s *SlotSet) Files() []models.UploadFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, empty := s.nextEmpty(); empty {
		return nil
	}
	out := make([]models.UploadFile, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, *f)
	}
	return out
}
