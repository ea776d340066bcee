package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/spaghettifunk/vkscene/engine/core"
)

// dependent is an object that has to be rebuilt whenever the swapchain is.
type dependent struct {
	name     string
	requires []string
	create   func() error
	destroy  func()
	created  bool
}

// dependentGraph orders swapchain-dependent objects by their requires edges.
// Creation walks the order forward and destruction walks it backward, so the
// same list drives first construction, resize and shutdown.
type dependentGraph struct {
	nodes []*dependent
	index map[string]*dependent
	order []*dependent
}

func newDependentGraph() *dependentGraph {
	return &dependentGraph{index: map[string]*dependent{}}
}

func (g *dependentGraph) register(name string, requires []string, create func() error, destroy func()) {
	if _, exists := g.index[name]; exists {
		panic("dependent registered twice: " + name)
	}
	node := &dependent{name: name, requires: requires, create: create, destroy: destroy}
	g.nodes = append(g.nodes, node)
	g.index[name] = node
	g.order = nil
}

// sorted returns the nodes in dependency order. Ties keep registration order.
func (g *dependentGraph) sorted() ([]*dependent, error) {
	if g.order != nil {
		return g.order, nil
	}

	indegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		for _, req := range node.requires {
			if _, ok := g.index[req]; !ok {
				return nil, errors.Newf("dependent %q requires unknown %q", node.name, req)
			}
			indegree[node.name]++
		}
	}

	order := make([]*dependent, 0, len(g.nodes))
	done := make(map[string]bool, len(g.nodes))
	for len(order) < len(g.nodes) {
		progressed := false
		for _, node := range g.nodes {
			if done[node.name] || indegree[node.name] > 0 {
				continue
			}
			done[node.name] = true
			order = append(order, node)
			progressed = true
			for _, other := range g.nodes {
				for _, req := range other.requires {
					if req == node.name {
						indegree[other.name]--
					}
				}
			}
			// Restart from the top so earlier registrations win ties.
			break
		}
		if !progressed {
			return nil, errors.New("dependent graph has a cycle")
		}
	}
	g.order = order
	return order, nil
}

func (g *dependentGraph) names() []string {
	order, err := g.sorted()
	if err != nil {
		return nil
	}
	names := make([]string, len(order))
	for i, node := range order {
		names[i] = node.name
	}
	return names
}

// createOne creates a single node whose requirements already exist.
func (g *dependentGraph) createOne(name string) error {
	node, ok := g.index[name]
	if !ok {
		return errors.Newf("unknown dependent %q", name)
	}
	if node.created {
		return nil
	}
	for _, req := range node.requires {
		if !g.index[req].created {
			return errors.Newf("dependent %q created before %q", name, req)
		}
	}
	if err := node.create(); err != nil {
		return err
	}
	node.created = true
	return nil
}

func (g *dependentGraph) destroyOne(name string) {
	node, ok := g.index[name]
	if !ok || !node.created {
		return
	}
	node.destroy()
	node.created = false
}

// createAll creates every node not yet created, in dependency order.
func (g *dependentGraph) createAll() error {
	order, err := g.sorted()
	if err != nil {
		return err
	}
	for _, node := range order {
		if err := g.createOne(node.name); err != nil {
			return &StageError{Stage: node.name, Err: err}
		}
	}
	return nil
}

// destroyAll destroys every created node in reverse dependency order.
func (g *dependentGraph) destroyAll() {
	order, err := g.sorted()
	if err != nil {
		core.LogError("cannot order swapchain dependents: %s", err)
		return
	}
	for i := len(order) - 1; i >= 0; i-- {
		node := order[i]
		if !node.created {
			continue
		}
		node.destroy()
		node.created = false
	}
}

// releaseStack unwinds partially initialized state in reverse order.
type releaseStack struct {
	steps []releaseStep
}

type releaseStep struct {
	name string
	fn   func()
}

func (s *releaseStack) push(name string, fn func()) {
	s.steps = append(s.steps, releaseStep{name: name, fn: fn})
}

func (s *releaseStack) unwind() {
	for i := len(s.steps) - 1; i >= 0; i-- {
		core.LogDebug("releasing %s", s.steps[i].name)
		s.steps[i].fn()
	}
	s.steps = nil
}
