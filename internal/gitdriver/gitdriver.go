// Package gitdriver wraps the external git executable. Every operation is
// synchronous and carries its own timeout; non-zero exit or timeout is
// logged here and reported as an *errors.Error (or, for RecentHistory, as
// an empty result), never as a panic.
package gitdriver

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	analyzererrors "github.com/rohankatakam/repoanalyzer/internal/errors"
	"github.com/rohankatakam/repoanalyzer/internal/model"
)

const (
	cloneTimeout    = 300 * time.Second
	checkoutTimeout = 60 * time.Second
	logTimeout      = 60 * time.Second
	recentLimit     = 20
)

// Driver executes git operations against a single workspace directory.
type Driver struct {
	logger *slog.Logger
}

// New creates a Driver. A git binary must be discoverable on PATH.
func New() *Driver {
	return &Driver{logger: slog.Default().With("component", "gitdriver")}
}

// Clone performs a full clone (complete history is required for
// multi-snapshot analysis) into dest, optionally following with a checkout
// of ref. Any non-zero exit or timeout yields a *errors.Error of type
// TypeClone.
func (d *Driver) Clone(ctx context.Context, url, ref, dest string) error {
	cloneCtx, cancel := context.WithTimeout(ctx, cloneTimeout)
	defer cancel()

	cmd := exec.CommandContext(cloneCtx, "git", "clone", url, dest)
	if output, err := cmd.CombinedOutput(); err != nil {
		d.logger.Error("git clone failed", "url", url, "error", err, "output", string(output))
		return analyzererrors.CloneFailure(err, fmt.Sprintf("git clone %s failed", url))
	}

	if ref == "" {
		return nil
	}

	checkoutCtx, cancelCheckout := context.WithTimeout(ctx, checkoutTimeout)
	defer cancelCheckout()

	cmd = exec.CommandContext(checkoutCtx, "git", "checkout", ref)
	cmd.Dir = dest
	if output, err := cmd.CombinedOutput(); err != nil {
		d.logger.Error("git checkout ref failed", "ref", ref, "error", err, "output", string(output))
		return analyzererrors.CloneFailure(err, fmt.Sprintf("git checkout %s failed", ref))
	}

	return nil
}

// Checkout forces a checkout to an arbitrary commit. stdout/stderr are
// silenced; failures are non-fatal for the job — the caller simply skips
// the snapshot for this commit.
func (d *Driver) Checkout(ctx context.Context, workspace, hash string) error {
	checkoutCtx, cancel := context.WithTimeout(ctx, checkoutTimeout)
	defer cancel()

	cmd := exec.CommandContext(checkoutCtx, "git", "checkout", "-f", hash)
	cmd.Dir = workspace
	if err := cmd.Run(); err != nil {
		d.logger.Warn("checkout of historical commit failed, skipping snapshot", "hash", hash, "error", err)
		return analyzererrors.Wrap(err, analyzererrors.TypeSnapshot, fmt.Sprintf("checkout %s failed", hash))
	}
	return nil
}

// EnumerateCommits returns every commit reachable from HEAD, newest-first,
// with per-commit impact (insertions + deletions).
func (d *Driver) EnumerateCommits(ctx context.Context, workspace string) ([]model.CommitRef, error) {
	logCtx, cancel := context.WithTimeout(ctx, logTimeout)
	defer cancel()

	cmd := exec.CommandContext(logCtx, "git", "log", "--pretty=format:%H|%cd", "--date=iso-strict", "--shortstat")
	cmd.Dir = workspace
	output, err := cmd.Output()
	if err != nil {
		d.logger.Warn("git log for commit enumeration failed", "error", err)
		return nil, analyzererrors.Wrap(err, analyzererrors.TypeHistory, "git log --shortstat failed")
	}

	return parseShortstatLog(string(output)), nil
}

// parseShortstatLog parses `git log --pretty=format:%H|%cd --shortstat`
// output. Header lines are "<hash>|<date>"; an optional blank line and a
// "N files changed, A insertions(+), D deletions(-)" summary may follow.
// Missing summary lines, missing insertions, or missing deletions all
// default to zero.
func parseShortstatLog(output string) []model.CommitRef {
	var commits []model.CommitRef
	var current *model.CommitRef

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if isShortstatLine(trimmed) {
			if current != nil {
				current.Impact = parseShortstat(trimmed)
			}
			continue
		}

		parts := strings.SplitN(trimmed, "|", 2)
		if len(parts) != 2 {
			continue
		}

		if current != nil {
			commits = append(commits, *current)
		}
		current = &model.CommitRef{Hash: parts[0], Date: parts[1]}
	}

	if current != nil {
		commits = append(commits, *current)
	}

	return commits
}

func isShortstatLine(line string) bool {
	return strings.Contains(line, "changed") &&
		(strings.Contains(line, "insertion") || strings.Contains(line, "deletion"))
}

// parseShortstat extracts insertions+deletions from a line of the form
// "3 files changed, 42 insertions(+), 7 deletions(-)". Either count may be
// absent.
func parseShortstat(line string) int {
	insertions := extractCount(line, "insertion")
	deletions := extractCount(line, "deletion")
	return insertions + deletions
}

func extractCount(line, word string) int {
	idx := strings.Index(line, word)
	if idx < 0 {
		return 0
	}
	// Walk backwards from idx to collect the preceding integer.
	end := idx
	for end > 0 && line[end-1] == ' ' {
		end--
	}
	start := end
	for start > 0 && line[start-1] >= '0' && line[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0
	}
	n, err := strconv.Atoi(line[start:end])
	if err != nil {
		return 0
	}
	return n
}

// RecentHistory runs `git log -<limit> --pretty=format:%H|%s|%an|%at
// --name-status` and returns the parsed entries. Non-zero exit returns an
// empty list (HistoryCollectionFailure is non-fatal).
func (d *Driver) RecentHistory(ctx context.Context, workspace string) []model.HistoryEntry {
	logCtx, cancel := context.WithTimeout(ctx, logTimeout)
	defer cancel()

	cmd := exec.CommandContext(logCtx, "git", "log",
		fmt.Sprintf("-%d", recentLimit),
		"--pretty=format:%H|%s|%an|%at",
		"--name-status")
	cmd.Dir = workspace

	output, err := cmd.Output()
	if err != nil {
		d.logger.Warn("git log for recent history failed", "error", err)
		return nil
	}

	return parseRecentHistory(string(output))
}

// parseRecentHistory parses the combined header+name-status log format.
// Header lines are identified by having at least three '|' separators;
// subsequent non-empty lines until the next header are "<status>\t<path>"
// entries. Rename lines carry two tab-separated paths; only the last is
// kept.
func parseRecentHistory(output string) []model.HistoryEntry {
	var entries []model.HistoryEntry
	var current *model.HistoryEntry

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.Count(line, "|") >= 3 {
			if current != nil {
				entries = append(entries, *current)
			}
			parts := strings.SplitN(line, "|", 4)
			ts, _ := strconv.ParseInt(parts[3], 10, 64)
			current = &model.HistoryEntry{
				Hash:      parts[0],
				Subject:   parts[1],
				Author:    parts[2],
				Timestamp: ts,
			}
			continue
		}

		if current == nil {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		path := fields[len(fields)-1]
		if len(status) > 0 {
			status = status[:1]
		}
		current.Files = append(current.Files, model.FileStatus{Path: path, Status: status})
	}

	if current != nil {
		entries = append(entries, *current)
	}

	return entries
}
