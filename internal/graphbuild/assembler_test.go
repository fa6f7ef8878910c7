package graphbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/repoanalyzer/internal/model"
)

func TestAssemblePythonMonorepoScenario(t *testing.T) {
	files := map[string]*model.FileRecord{
		"a.py": {Path: "a.py", Language: "python", Lines: 1, Deps: []model.OutboundDep{
			{Target: "b.py", Type: model.EdgeFileDependency},
		}},
		"b.py": {Path: "b.py", Language: "python", Lines: 1},
	}

	nodes, edges, stats := Assemble(files)

	require.Len(t, nodes, 2)
	assert.Equal(t, "a.py", nodes[0].ID)
	assert.Equal(t, "b.py", nodes[1].ID)

	require.Len(t, edges, 1)
	assert.Equal(t, model.Edge{Source: "a.py", Target: "b.py", Type: model.EdgeFileDependency}, edges[0])

	assert.Equal(t, 2, stats.NodeCount)
	assert.Equal(t, 1, stats.EdgeCount)
	assert.Equal(t, 2, stats.FileCount)
	assert.Equal(t, 0, stats.DirectoryCount)
	assert.Equal(t, 2, stats.TotalLines)
	assert.Equal(t, map[string]int{"python": 2}, stats.Languages)
}

func TestAssembleDropsDanglingEdges(t *testing.T) {
	files := map[string]*model.FileRecord{
		"a.py": {Path: "a.py", Language: "python", Lines: 1, Deps: []model.OutboundDep{
			{Target: "missing.py", Type: model.EdgeFileDependency},
		}},
	}

	nodes, edges, stats := Assemble(files)
	require.Len(t, nodes, 1)
	assert.Empty(t, edges)
	assert.Equal(t, 0, stats.EdgeCount)
}

func TestAssembleDedupesEdges(t *testing.T) {
	files := map[string]*model.FileRecord{
		"a.py": {Path: "a.py", Language: "python", Lines: 3, Deps: []model.OutboundDep{
			{Target: "b.py", Type: model.EdgeFileDependency},
			{Target: "b.py", Type: model.EdgeFileDependency},
		}},
		"b.py": {Path: "b.py", Language: "python", Lines: 1},
	}

	_, edges, _ := Assemble(files)
	assert.Len(t, edges, 1)
}

func TestAssembleUnknownLanguage(t *testing.T) {
	files := map[string]*model.FileRecord{
		"a.txt": {Path: "a.txt", Language: "", Lines: 5},
	}

	_, _, stats := Assemble(files)
	assert.Equal(t, map[string]int{"unknown": 1}, stats.Languages)
}

func TestAssembleIdempotent(t *testing.T) {
	files := map[string]*model.FileRecord{
		"b.py": {Path: "b.py", Language: "python", Lines: 2},
		"a.py": {Path: "a.py", Language: "python", Lines: 1, Deps: []model.OutboundDep{
			{Target: "b.py", Type: model.EdgeFileDependency},
		}},
	}

	nodes1, edges1, stats1 := Assemble(files)
	nodes2, edges2, stats2 := Assemble(files)

	assert.Equal(t, nodes1, nodes2)
	assert.Equal(t, edges1, edges2)
	assert.Equal(t, stats1, stats2)
}
