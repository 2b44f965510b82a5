package search

import (
	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/storage"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterExactPhase(results []*core.Security)
	AfterPartialPhase(results []*core.Security)
	AfterFilterBuilt(filter storage.Filter)
	AfterFilteredMatch(results []*core.Security)
	Finish(results []*core.Security)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                        {}
func (n *noopMonitor) AfterExactPhase(_ []*core.Security)    {}
func (n *noopMonitor) AfterPartialPhase(_ []*core.Security)  {}
func (n *noopMonitor) AfterFilterBuilt(_ storage.Filter)     {}
func (n *noopMonitor) AfterFilteredMatch(_ []*core.Security) {}
func (n *noopMonitor) Finish(_ []*core.Security)             {}
