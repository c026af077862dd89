package depgraph

import (
	"fmt"
	"strings"

	"github.com/temirov/fleet/internal/manifest"
)

const (
	nodeLineTemplateConstant = "%d %s\n"
	edgeLineTemplateConstant = "%d %d\n"
	sectionSeparatorConstant = "#\n"
)

// Node pairs a graph vertex with its assigned index.
//
// Indexes are dense, start at one, and follow first appearance in the
// dependency record stream. Projects and package ids share one index space.
type Node struct {
	Index int
	Name  string
}

// Edge connects a referencing project to a referenced package by node index.
type Edge struct {
	From int
	To   int
}

// Graph is the dependency graph over projects and packages.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Build constructs the dependency graph from aggregated dependency records.
//
// One edge is emitted per record: a project referencing the same package at
// two versions contributes two edges. Node indexes are assigned in record
// order, project before package within each record.
func Build(records []manifest.DependencyRecord, skipDevelopmentDependencies bool) Graph {
	consideredRecords := records
	if skipDevelopmentDependencies {
		consideredRecords = manifest.FilterDevelopmentDependencies(records)
	}

	indexByName := make(map[string]int)
	graph := Graph{}

	assignIndex := func(name string) int {
		if existingIndex, known := indexByName[name]; known {
			return existingIndex
		}
		assignedIndex := len(graph.Nodes) + 1
		indexByName[name] = assignedIndex
		graph.Nodes = append(graph.Nodes, Node{Index: assignedIndex, Name: name})
		return assignedIndex
	}

	for _, record := range consideredRecords {
		projectIndex := assignIndex(record.ReferencingProject)
		packageIndex := assignIndex(record.PackageID)
		graph.Edges = append(graph.Edges, Edge{From: projectIndex, To: packageIndex})
	}

	return graph
}

// Render serializes the graph as indexed node lines, a separator line, and
// edge lines. Rendering the same graph twice yields byte-identical output.
func (graph Graph) Render() string {
	var output strings.Builder

	for _, node := range graph.Nodes {
		fmt.Fprintf(&output, nodeLineTemplateConstant, node.Index, node.Name)
	}
	output.WriteString(sectionSeparatorConstant)
	for _, edge := range graph.Edges {
		fmt.Fprintf(&output, edgeLineTemplateConstant, edge.From, edge.To)
	}

	return output.String()
}
