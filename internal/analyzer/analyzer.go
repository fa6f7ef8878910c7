// Package analyzer drives one repository analysis job end to end: clone,
// select representative snapshots, build a symbol table and dependency
// edges per snapshot, assemble the final deduplicated graph from HEAD, and
// collect recent commit history, per spec.md §2 and §4.
package analyzer

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/rohankatakam/repoanalyzer/internal/depextract"
	analyzererrors "github.com/rohankatakam/repoanalyzer/internal/errors"
	"github.com/rohankatakam/repoanalyzer/internal/gitdriver"
	"github.com/rohankatakam/repoanalyzer/internal/graphbuild"
	"github.com/rohankatakam/repoanalyzer/internal/langclass"
	"github.com/rohankatakam/repoanalyzer/internal/model"
	"github.com/rohankatakam/repoanalyzer/internal/snapshot"
	"github.com/rohankatakam/repoanalyzer/internal/symbols"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc is invoked by Run as the job advances, with the progress
// fractions in spec.md §5 that belong to analysis (0.1 cloning, 0.3
// analyzing). The worker package wires this into job-store updates and
// reports 0.8 uploading itself.
type ProgressFunc = func(fraction float64, message string)

// Analyzer performs the clone/select/index/extract/assemble pipeline.
type Analyzer struct {
	git    *gitdriver.Driver
	logger *slog.Logger
}

// New constructs an Analyzer.
func New() *Analyzer {
	return &Analyzer{
		git:    gitdriver.New(),
		logger: slog.Default().With("component", "analyzer"),
	}
}

// Run clones repoURL (optionally checking out ref) into workspaceDir,
// builds the analysis artifact, and returns it. Metadata.Ref is set to ref;
// AnalyzedAt is left for the caller to stamp, so the artifact stays
// deterministic here.
func (a *Analyzer) Run(ctx context.Context, workspaceDir, repoURL string, ref *string, progress ProgressFunc) (*model.GraphArtifact, error) {
	report(progress, 0.1, "cloning repository")

	refValue := ""
	if ref != nil {
		refValue = *ref
	}
	if err := a.git.Clone(ctx, repoURL, refValue, workspaceDir); err != nil {
		return nil, err
	}

	report(progress, 0.3, "analyzing repository history")

	// EnumerateCommits and RecentHistory both read commit metadata (not
	// working-tree content) off the freshly cloned repo, so they can run
	// concurrently before any snapshot checkout moves HEAD.
	var commits []model.CommitRef
	var history []model.HistoryEntry

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var enumErr error
		commits, enumErr = a.git.EnumerateCommits(gctx, workspaceDir)
		if enumErr != nil {
			// git log exits non-zero on a repository with no commits; treat
			// that as no enumerable history so the current-tree fallback
			// below applies instead of failing the job.
			a.logger.Warn("commit enumeration failed, treating history as empty", "error", analyzererrors.Format(enumErr))
			commits = nil
		}
		return nil
	})
	g.Go(func() error {
		history = a.git.RecentHistory(gctx, workspaceDir)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var headFiles map[string]*model.FileRecord
	var snapshotArtifacts []model.SnapshotArtifact

	if len(commits) == 0 {
		// No enumerable history — fall back to analyzing the current
		// working tree as-is, matching the original's
		// analyze_current_tree fallback. The artifact is still returned,
		// just with no snapshots.
		a.logger.Warn("repository has no commits, analyzing current tree")
		files, err := a.buildFileRecords(workspaceDir)
		if err != nil {
			return nil, err
		}
		headFiles = files
	} else {
		selected := snapshot.Select(commits)

		snapshots := make([]*model.Snapshot, 0, len(selected))
		for _, c := range selected {
			snap, snapErr := a.analyzeSnapshot(ctx, workspaceDir, c)
			if snapErr != nil {
				a.logger.Warn("skipping snapshot after failure", "hash", c.Hash, "error", analyzererrors.Format(snapErr))
				continue
			}
			snapshots = append(snapshots, snap)
		}

		if len(snapshots) == 0 {
			// Every historical checkout failed — fall back to the
			// current tree rather than failing the job.
			a.logger.Warn("all snapshots failed analysis, analyzing current tree")
			files, err := a.buildFileRecords(workspaceDir)
			if err != nil {
				return nil, err
			}
			headFiles = files
		} else {
			// The final graph always reflects the most recent
			// (HEAD-ward) snapshot's file set; selected is oldest-first
			// so the last entry is HEAD per snapshot.Select's contract.
			head := snapshots[len(snapshots)-1]
			headFiles = head.Files

			snapshotArtifacts = make([]model.SnapshotArtifact, 0, len(snapshots))
			for _, s := range snapshots {
				snapshotArtifacts = append(snapshotArtifacts, model.SnapshotArtifact{
					Hash:   s.Hash,
					Date:   s.Date,
					Impact: s.Impact,
					Files:  len(s.Files),
				})
			}
		}
	}

	nodes, edges, stats := graphbuild.Assemble(headFiles)

	artifact := &model.GraphArtifact{
		Metadata: model.Metadata{
			RepoURL: repoURL,
			Ref:     ref,
			Version: model.ArtifactVersion,
		},
		Nodes:     nodes,
		Edges:     edges,
		History:   history,
		Stats:     stats,
		Snapshots: snapshotArtifacts,
	}

	return artifact, nil
}

// analyzeSnapshot checks out one commit and builds its full FileRecord set.
func (a *Analyzer) analyzeSnapshot(ctx context.Context, workspaceDir string, commit model.CommitRef) (*model.Snapshot, error) {
	if err := a.git.Checkout(ctx, workspaceDir, commit.Hash); err != nil {
		return nil, err
	}

	files, err := a.buildFileRecords(workspaceDir)
	if err != nil {
		return nil, err
	}

	return &model.Snapshot{
		Hash:   commit.Hash,
		Date:   commit.Date,
		Impact: commit.Impact,
		Files:  files,
	}, nil
}

// buildFileRecords builds the FileRecord set for workspaceDir in whatever
// state it is currently checked out to: symbol table first (all files, so
// later dependency resolution can see forward references), then per-file
// language classification, line counts, and dependency extraction. Files
// with an extension langclass does not recognize never become FileRecords
// (spec.md §4.5).
func (a *Analyzer) buildFileRecords(workspaceDir string) (map[string]*model.FileRecord, error) {
	symbolMap, err := symbols.Build(workspaceDir)
	if err != nil {
		return nil, analyzererrors.Wrap(err, analyzererrors.TypeSnapshot, "failed to build symbol table")
	}

	paths, err := listFiles(workspaceDir)
	if err != nil {
		return nil, analyzererrors.Wrap(err, analyzererrors.TypeSnapshot, "failed to list files")
	}

	files := make(map[string]*model.FileRecord)
	for _, relPosix := range paths {
		if !langclass.HasFileRecord(relPosix) {
			continue
		}
		lang := langclass.Classify(relPosix)

		content, ok := readText(filepath.Join(workspaceDir, filepath.FromSlash(relPosix)))
		if !ok {
			continue
		}

		lines := countLines(content)
		deps := depextract.Extract(workspaceDir, relPosix, content, symbolMap)

		files[relPosix] = &model.FileRecord{
			Path:     relPosix,
			Language: lang,
			Lines:    lines,
			Deps:     deps,
		}
	}

	return files, nil
}

func report(progress ProgressFunc, fraction float64, message string) {
	if progress != nil {
		progress(fraction, message)
	}
}

// countLines mirrors Python's str.splitlines() line count: a single
// trailing newline does not count as an extra line, and an empty file is 0
// lines, not 1.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(content, "\n"), "\n") + 1
}

