// Package state records what a deployment created so it can be listed and
// torn down later.
package state

import (
	"errors"
	"fmt"
	"sort"
	"time"

	hedgedoc "github.com/lex00/hedgedoc-aws-go"
)

// ErrNotFound is returned by a Store that holds no snapshot.
var ErrNotFound = errors.New("state: snapshot not found")

// CurrentVersion is the snapshot format version written by this package.
const CurrentVersion = 1

// Resource is a created provider resource.
type Resource struct {
	URN          string            `json:"urn"`
	Type         string            `json:"type"`
	Name         string            `json:"name"`
	LogicalID    string            `json:"logicalId"`
	ID           string            `json:"id"`
	Parent       string            `json:"parent,omitempty"`
	Dependencies []string          `json:"dependencies,omitempty"`
	Outputs      map[string]string `json:"outputs,omitempty"`
}

// Component is a logical grouping node with no provider counterpart.
type Component struct {
	URN    string `json:"urn"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
}

// Snapshot is the persisted record of one stack. Plan is the rendered
// plan its resources were created from and Zones the availability zones
// that plan spans.
type Snapshot struct {
	Version    int                `json:"version"`
	Stack      string             `json:"stack"`
	UpdatedAt  time.Time          `json:"updatedAt"`
	Zones      []string           `json:"zones,omitempty"`
	Components []Component        `json:"components,omitempty"`
	Resources  []Resource         `json:"resources,omitempty"`
	Outputs    map[string]string  `json:"outputs,omitempty"`
	Plan       *hedgedoc.Template `json:"plan,omitempty"`
}

// New returns an empty snapshot for stack.
func New(stack string) *Snapshot {
	return &Snapshot{Version: CurrentVersion, Stack: stack}
}

// Empty reports whether the snapshot holds no nodes.
func (s *Snapshot) Empty() bool {
	return s == nil || (len(s.Resources) == 0 && len(s.Components) == 0)
}

// Resource returns the resource with the given URN.
func (s *Snapshot) Resource(urn string) (Resource, bool) {
	for _, r := range s.Resources {
		if r.URN == urn {
			return r, true
		}
	}
	return Resource{}, false
}

// Remove drops the resource or component with the given URN.
func (s *Snapshot) Remove(urn string) {
	resources := s.Resources[:0]
	for _, r := range s.Resources {
		if r.URN != urn {
			resources = append(resources, r)
		}
	}
	s.Resources = resources

	components := s.Components[:0]
	for _, c := range s.Components {
		if c.URN != urn {
			components = append(components, c)
		}
	}
	s.Components = components
}

// Sort orders resources and components by URN so saved snapshots are
// stable across runs.
func (s *Snapshot) Sort() {
	sort.Slice(s.Resources, func(i, j int) bool { return s.Resources[i].URN < s.Resources[j].URN })
	sort.Slice(s.Components, func(i, j int) bool { return s.Components[i].URN < s.Components[j].URN })
}

// TeardownWaves groups every node into waves that can be removed
// concurrently. A node appears only after all of its dependents and all of
// its children are in earlier waves. URNs within a wave are sorted.
func (s *Snapshot) TeardownWaves() ([][]string, error) {
	// blockers[x] counts nodes that must go before x
	blockers := make(map[string]int)
	unblocks := make(map[string][]string)

	for _, c := range s.Components {
		blockers[c.URN] = 0
	}
	for _, r := range s.Resources {
		blockers[r.URN] = 0
	}

	edge := func(first, then string) {
		if _, ok := blockers[then]; !ok || first == then {
			return
		}
		unblocks[first] = append(unblocks[first], then)
		blockers[then]++
	}

	for _, c := range s.Components {
		if c.Parent != "" {
			edge(c.URN, c.Parent)
		}
	}
	for _, r := range s.Resources {
		if r.Parent != "" {
			edge(r.URN, r.Parent)
		}
		seen := make(map[string]bool)
		for _, dep := range r.Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			edge(r.URN, dep)
		}
	}

	var current []string
	for urn, n := range blockers {
		if n == 0 {
			current = append(current, urn)
		}
	}
	sort.Strings(current)

	var waves [][]string
	removed := 0
	for len(current) > 0 {
		waves = append(waves, current)
		removed += len(current)

		var next []string
		for _, urn := range current {
			for _, then := range unblocks[urn] {
				blockers[then]--
				if blockers[then] == 0 {
					next = append(next, then)
				}
			}
		}
		sort.Strings(next)
		current = next
	}

	if removed != len(blockers) {
		return nil, fmt.Errorf("state: dependency cycle among %d nodes", len(blockers)-removed)
	}
	return waves, nil
}

// TeardownOrder flattens TeardownWaves into a single removal order.
func (s *Snapshot) TeardownOrder() ([]string, error) {
	waves, err := s.TeardownWaves()
	if err != nil {
		return nil, err
	}
	var order []string
	for _, wave := range waves {
		order = append(order, wave...)
	}
	return order, nil
}
