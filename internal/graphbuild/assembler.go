// Package graphbuild converts a snapshot's path -> FileRecord mapping into
// the deduplicated node/edge lists and aggregate stats that form the body
// of a GraphArtifact, per spec.md §4.6.
package graphbuild

import (
	"path"
	"sort"

	"github.com/rohankatakam/repoanalyzer/internal/model"
)

// Assemble builds nodes (one per FileRecord, ordered by path for
// deterministic, idempotent output), deduplicated edges (dangling edges —
// whose target is not itself a FileRecord key — are dropped), and the
// aggregate stats block.
func Assemble(files map[string]*model.FileRecord) ([]model.Node, []model.Edge, model.Stats) {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	nodes := make([]model.Node, 0, len(paths))
	for _, p := range paths {
		fr := files[p]
		nodes = append(nodes, model.Node{
			ID:       p,
			Name:     path.Base(p),
			Path:     p,
			Type:     "file",
			Lines:    fr.Lines,
			Language: fr.Language,
		})
	}

	type edgeKey struct {
		source, target string
		typ             model.EdgeType
	}
	seen := make(map[edgeKey]bool)
	var edges []model.Edge

	for _, p := range paths {
		fr := files[p]
		for _, dep := range fr.Deps {
			if _, ok := files[dep.Target]; !ok {
				continue // dangling edge: target is not a FileRecord in this snapshot
			}
			key := edgeKey{p, dep.Target, dep.Type}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, model.Edge{Source: p, Target: dep.Target, Type: dep.Type})
		}
	}

	return nodes, edges, computeStats(nodes, edges)
}

func computeStats(nodes []model.Node, edges []model.Edge) model.Stats {
	languages := make(map[string]int)
	totalLines := 0

	for _, n := range nodes {
		lang := n.Language
		if lang == "" {
			lang = "unknown"
		}
		languages[lang]++
		totalLines += n.Lines
	}

	return model.Stats{
		NodeCount:      len(nodes),
		EdgeCount:      len(edges),
		FileCount:      len(nodes),
		DirectoryCount: 0,
		TotalLines:     totalLines,
		Languages:      languages,
	}
}
