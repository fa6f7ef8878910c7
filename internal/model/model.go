// Package model holds the data types shared across the analyzer pipeline:
// the in-memory per-snapshot records (§3 of the specification) and the
// on-wire GraphArtifact shape uploaded to object storage.
package model

// EdgeType is a closed set of dependency kinds. Downstream graph consumers
// depend on the exact spelling, so this is never extended ad hoc.
type EdgeType string

const (
	EdgeFileDependency EdgeType = "file_dependency"
	EdgeLayoutInclude  EdgeType = "layout_include"
	EdgeClassReference EdgeType = "class_reference"
	EdgeModuleInclude  EdgeType = "module_include"
	EdgeInclude        EdgeType = "include"
	EdgeImport         EdgeType = "import"
)

// ArtifactVersion is the fixed version stamped into every artifact.
const ArtifactVersion = "2.1.0"

// CommitRef identifies one commit in the repository's history, along with
// its "impact" (insertions + deletions) as reported by `git log --shortstat`.
type CommitRef struct {
	Hash   string
	Date   string
	Impact int
}

// SymbolMap maps a language-specific symbol key (fully qualified class name,
// module path, resource id, header basename, relative path) to the
// repository-relative posix path that defines it. Built fresh per snapshot.
type SymbolMap map[string]string

// OutboundDep is a single candidate edge emitted by the dependency
// extractor, scoped to one FileRecord.
type OutboundDep struct {
	Target string
	Type   EdgeType
}

// FileRecord is the per-file analysis result for one snapshot.
type FileRecord struct {
	Path     string
	Language string
	Lines    int
	Deps     []OutboundDep
}

// Snapshot is one commit's full file-level analysis.
type Snapshot struct {
	Hash   string
	Date   string
	Impact int
	Files  map[string]*FileRecord // keyed by repo-relative posix path
}

// Node is a file as it appears in the final assembled graph.
type Node struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Lines    int    `json:"lines"`
	Language string `json:"language"`
}

// Edge is a deduplicated (source, target, type) triple in the final graph.
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"type"`
}

// FileStatus is a single-letter git name-status code (A, M, D, R, ...).
type FileStatus struct {
	Path   string `json:"path"`
	Status string `json:"status"`
}

// HistoryEntry describes one of the most recent HEAD commits.
type HistoryEntry struct {
	Hash      string       `json:"hash"`
	Subject   string       `json:"subject"`
	Author    string       `json:"author"`
	Timestamp int64        `json:"timestamp"`
	Files     []FileStatus `json:"files"`
}

// SnapshotArtifact is the on-wire shape of a Snapshot inside GraphArtifact.
type SnapshotArtifact struct {
	Hash   string `json:"hash"`
	Date   string `json:"date"`
	Impact int    `json:"impact"`
	Files  int    `json:"fileCount"`
}

// Stats is the aggregate statistics block in GraphArtifact.
type Stats struct {
	NodeCount      int            `json:"nodeCount"`
	EdgeCount      int            `json:"edgeCount"`
	FileCount      int            `json:"fileCount"`
	DirectoryCount int            `json:"directoryCount"`
	TotalLines     int            `json:"totalLines"`
	Languages      map[string]int `json:"languages"`
}

// Metadata is the artifact's identifying header.
type Metadata struct {
	RepoURL    string  `json:"repoUrl"`
	Ref        *string `json:"ref,omitempty"`
	AnalyzedAt *string `json:"analyzedAt"`
	Version    string  `json:"version"`
}

// GraphArtifact is the complete analysis result for one job, exactly as
// uploaded to object storage (spec.md §6).
type GraphArtifact struct {
	Metadata  Metadata           `json:"metadata"`
	Nodes     []Node             `json:"nodes"`
	Edges     []Edge             `json:"edges"`
	History   []HistoryEntry     `json:"history"`
	Stats     Stats              `json:"stats"`
	Snapshots []SnapshotArtifact `json:"snapshots"`
}
