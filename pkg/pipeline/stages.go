package pipeline

// StageNode describes one pipeline stage and the stages it consumes.
type StageNode struct {
	Name     string
	Deps     []string
	Optional bool // stage can be skipped via precomputed inputs
}

// Graph returns the stage dependency graph in execution order. The colormap
// stage has no dependencies; it runs independently of the volume chain.
func Graph() []StageNode {
	return []StageNode{
		{Name: StageSegment, Optional: true},
		{Name: StageChecker, Deps: []string{StageSegment}},
		{Name: StageColormap},
		{Name: StageRegister, Optional: true},
		{Name: StageWarp, Deps: []string{StageChecker, StageRegister}},
		{Name: StageSurface, Deps: []string{StageSegment, StageWarp}},
	}
}

// StageNames returns the stage names in execution order.
func StageNames() []string {
	nodes := Graph()
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return names
}
