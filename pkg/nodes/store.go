package nodes

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
)

// Store is an in-memory graph implementing Actions. Nodes created for a
// source replace those of the previous pass once DeleteOwner has run.
// Returned nodes must not be modified.
type Store struct {
	mu     sync.RWMutex
	nodes  map[string]*Node
	order  map[string]uint64
	next   uint64
	owners map[string][]string
	links  map[string][]string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		nodes:  make(map[string]*Node),
		order:  make(map[string]uint64),
		owners: make(map[string][]string),
		links:  make(map[string][]string),
	}
}

// CreateNode adds or replaces a node.
func (s *Store) CreateNode(_ context.Context, node *Node) error {
	if node == nil || node.ID == "" {
		return errors.New("node id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[node.ID]; !exists {
		s.order[node.ID] = s.next
		s.next++
		s.owners[node.Internal.Owner] = append(s.owners[node.Internal.Owner], node.ID)
	}
	s.nodes[node.ID] = node
	return nil
}

// CreateParentChildLink records childID as a child of parentID.
func (s *Store) CreateParentChildLink(_ context.Context, parentID, childID string) error {
	if parentID == "" || childID == "" {
		return errors.New("parent and child ids are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.links[parentID], childID) {
		s.links[parentID] = append(s.links[parentID], childID)
	}
	return nil
}

// DeleteOwner removes every node owned by owner and the owner's links.
func (s *Store) DeleteOwner(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.owners[owner] {
		delete(s.nodes, id)
		delete(s.order, id)
	}
	delete(s.owners, owner)
	delete(s.links, owner)
	return nil
}

// Get returns the node with the given id.
func (s *Store) Get(id string) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	return n, ok
}

// Children returns the ids linked under parentID.
func (s *Store) Children(parentID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.links[parentID])
}

// Owners returns the sorted ids of sources with nodes in the store.
func (s *Store) Owners() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := make([]string, 0, len(s.owners))
	for owner := range s.owners {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// NodesOfType returns nodes of the given type in creation order.
func (s *Store) NodesOfType(typ string) []*Node {
	return s.collect(func(n *Node) bool { return n.Internal.Type == typ })
}

// Nodes returns every node in creation order.
func (s *Store) Nodes() []*Node {
	return s.collect(func(*Node) bool { return true })
}

func (s *Store) collect(keep func(*Node) bool) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		if keep(n) {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return s.order[result[i].ID] < s.order[result[j].ID]
	})
	return result
}
