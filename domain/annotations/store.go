package annotations

import (
	"sync"

	"lineage-backend/domain/core/valueobjects"
	pkgerrors "lineage-backend/pkg/errors"
)

// GraphLookup answers existence checks against the live graph so listings
// can flag annotations whose target has since been removed
type GraphLookup interface {
	HasNode(valueobjects.NodeID) bool
	HasEdge(valueobjects.EdgeID) bool
}

// Record pairs an annotation with its orphan status at listing time. An
// orphaned annotation points at a node or edge the graph no longer holds;
// that is surfaced, never treated as an error, because commentary about
// removed assets is still history worth reading.
type Record struct {
	Annotation *Annotation
	Orphaned   bool
}

// Store keeps annotations in memory, keyed by id, with listing in creation
// order. Only the original author may edit or delete an annotation.
type Store struct {
	mu     sync.RWMutex
	byID   map[string]*Annotation
	order  []string
	lookup GraphLookup
}

// NewStore creates an annotation store. The lookup may be nil, in which case
// orphan detection is disabled and every record lists as attached.
func NewStore(lookup GraphLookup) *Store {
	return &Store{
		byID:   make(map[string]*Annotation),
		lookup: lookup,
	}
}

// Create validates and stores a new annotation
func (s *Store) Create(target Target, author string, category Category, content string) (*Annotation, error) {
	a, err := NewAnnotation(target, author, category, content)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[a.ID()] = a
	s.order = append(s.order, a.ID())
	return a, nil
}

// Get retrieves an annotation by id, deleted ones included
func (s *Store) Get(id string) (*Annotation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, pkgerrors.NewNotFound("annotation not found: " + id)
	}
	return a, nil
}

// Update edits an annotation's category and content. Only the author may
// edit; edits to deleted annotations are rejected.
func (s *Store) Update(id, author string, category Category, content string) (*Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return nil, pkgerrors.NewNotFound("annotation not found: " + id)
	}
	if a.Deleted() {
		return nil, pkgerrors.NewNotFound("annotation has been deleted: " + id)
	}
	if a.Author() != author {
		return nil, pkgerrors.NewUnauthorized("only the author may edit an annotation")
	}
	if err := a.edit(category, content); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete soft-deletes an annotation. Only the author may delete; deleting
// twice is rejected as not found.
func (s *Store) Delete(id, author string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return pkgerrors.NewNotFound("annotation not found: " + id)
	}
	if a.Deleted() {
		return pkgerrors.NewNotFound("annotation has been deleted: " + id)
	}
	if a.Author() != author {
		return pkgerrors.NewUnauthorized("only the author may delete an annotation")
	}
	a.markDeleted()
	return nil
}

// ListFor returns the live annotations attached to the target, oldest first
func (s *Store) ListFor(target Target) []Record {
	return s.list(target, false)
}

// ListForIncludingDeleted returns all annotations attached to the target,
// soft-deleted ones included, oldest first
func (s *Store) ListForIncludingDeleted(target Target) []Record {
	return s.list(target, true)
}

// ListAll returns every live annotation in creation order
func (s *Store) ListAll() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		a := s.byID[id]
		if a.Deleted() {
			continue
		}
		records = append(records, Record{Annotation: a, Orphaned: s.orphaned(a.Target())})
	}
	return records
}

// Len returns the number of live annotations
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, a := range s.byID {
		if !a.Deleted() {
			n++
		}
	}
	return n
}

func (s *Store) list(target Target, includeDeleted bool) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []Record
	for _, id := range s.order {
		a := s.byID[id]
		if !a.Target().Equals(target) {
			continue
		}
		if a.Deleted() && !includeDeleted {
			continue
		}
		records = append(records, Record{Annotation: a, Orphaned: s.orphaned(a.Target())})
	}
	return records
}

func (s *Store) orphaned(target Target) bool {
	if s.lookup == nil {
		return false
	}
	if target.IsNode() {
		return !s.lookup.HasNode(target.NodeID())
	}
	return !s.lookup.HasEdge(target.EdgeID())
}
