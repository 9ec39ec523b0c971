package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  NodeID
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs the Tier 1 structural checks and returns every finding.
// An empty slice means the graph is valid. It never mutates the graph.
func Validate(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateGridRequests(g)...)
	return errs
}

// ValidateAll runs the structural and geometric tiers and separates the
// findings into errors and warnings.
func ValidateAll(g *SceneGraph) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{NodeID: e.NodeID, Message: e.Message})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}

	geoErrs, geoWarnings := validateGeometry(g)
	result.Errors = append(result.Errors, geoErrs...)
	result.Warnings = append(result.Warnings, geoWarnings...)
	return result
}

// validateDAG reports the first cycle found. Nodes on the current DFS path
// are "open"; reaching an open node again closes a cycle.
func validateDAG(g *SceneGraph) []ValidationError {
	open := make(map[NodeID]bool)
	done := make(map[NodeID]bool)

	var cycleAt func(id NodeID) (NodeID, bool)
	cycleAt = func(id NodeID) (NodeID, bool) {
		if open[id] {
			return id, true
		}
		node, ok := g.Nodes[id]
		if done[id] || !ok {
			return "", false
		}
		open[id] = true
		for _, c := range node.Children {
			if at, found := cycleAt(c); found {
				return at, true
			}
		}
		delete(open, id)
		done[id] = true
		return "", false
	}

	for id := range g.Nodes {
		if at, found := cycleAt(id); found {
			return []ValidationError{{
				NodeID:   at,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", at.Short()),
				Severity: SeverityError,
			}}
		}
	}
	return nil
}

// validateReferences checks that every child ID points to an existing node.
func validateReferences(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateNames checks that no two nodes share a name and that every
// NameIndex entry points to an existing node.
func validateNames(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateRoots checks that roots exist and are grid requests, and warns
// about solids no grid request samples. A defsolid that is never used is
// legal but usually a typo in a solid reference.
func validateRoots(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	used := make(map[NodeID]bool)
	for _, rid := range g.Roots {
		root, ok := g.Nodes[rid]
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
			continue
		case root.Kind != NodeGrid:
			errs = append(errs, ValidationError{
				NodeID:   rid,
				Message:  fmt.Sprintf("root %q is a %s node, not a grid request", root.Label(), root.Kind),
				Severity: SeverityError,
			})
		}
		g.Walk(root, func(n *Node) bool {
			used[n.ID] = true
			return true
		})
	}

	for id, node := range g.Nodes {
		if used[id] {
			continue
		}
		what := "node"
		if node.Name != "" {
			what = "solid"
		}
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf("%s %q is not used by any grid request (orphan)", what, node.Label()),
			Severity: SeverityWarning,
		})
	}
	return errs
}

// validateGridRequests checks that grid requests have exactly one solid
// child, are not nested under other nodes, and that primitives are leaves.
func validateGridRequests(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		switch node.Kind {
		case NodeGrid:
			if len(node.Children) != 1 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("grid request %q has %d children, want exactly one solid", node.Label(), len(node.Children)),
					Severity: SeverityError,
				})
			}
		case NodePrimitive:
			if len(node.Children) != 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  "primitive has children",
					Severity: SeverityError,
				})
			}
		}
		for _, child := range g.Children(node) {
			if child.Kind == NodeGrid {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("grid request %q is nested under %s node", child.Label(), node.Kind),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}
