package metadata

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	git "github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when the path is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// gitDateLayout matches `git show --format=%ci`.
const gitDateLayout = "2006-01-02 15:04:05 -0700"

// DirtyError lists tracked changes that have not been committed.
type DirtyError struct {
	Changes []string
}

func (e *DirtyError) Error() string {
	var b strings.Builder
	b.WriteString("repository has uncommitted changes:")
	for _, change := range e.Changes {
		b.WriteString("\n  ")
		b.WriteString(change)
	}
	return b.String()
}

// GitInfo identifies the commit a benchmark ran against.
type GitInfo struct {
	CommitHash      *string `json:"commit_hash"`
	CommitHashShort *string `json:"commit_hash_short"`
	CommitMessage   *string `json:"commit_message"`
	CommitDate      *string `json:"commit_date"`
	Branch          *string `json:"branch,omitempty"`
	Error           string  `json:"error,omitempty"`
}

type Git struct {
	path   string
	logger *log.Logger
}

func NewGit(path string, logger *log.Logger) *Git {
	if logger == nil {
		logger = log.Default()
	}
	return &Git{
		path:   path,
		logger: logger,
	}
}

func (g *Git) open() (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(g.path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, err
	}
	return repo, nil
}

func (g *Git) IsAvailable() bool {
	if _, err := g.open(); err != nil {
		g.logger.Debug("git repo not found", "path", g.path, "error", err)
		return false
	}
	return true
}

// Changes returns the tracked changes in the work tree in `git status
// --porcelain` form. Untracked files are not reported.
func (g *Git) Changes() ([]string, error) {
	repo, err := g.open()
	if err != nil {
		return nil, err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("read worktree status: %w", err)
	}

	var changes []string
	for path, file := range status {
		if file.Staging == git.Untracked && file.Worktree == git.Untracked {
			continue
		}
		if file.Staging == git.Unmodified && file.Worktree == git.Unmodified {
			continue
		}
		changes = append(changes, fmt.Sprintf("%c%c %s", file.Staging, file.Worktree, path))
	}
	slices.Sort(changes)
	return changes, nil
}

// CheckClean returns a *DirtyError when tracked files have uncommitted
// changes. A path outside any repository only logs a warning.
func (g *Git) CheckClean() error {
	changes, err := g.Changes()
	if errors.Is(err, ErrNotRepository) {
		g.logger.Warn("not in a git repository, skipping clean check", "path", g.path)
		return nil
	}
	if err != nil {
		return err
	}
	if len(changes) > 0 {
		return &DirtyError{Changes: changes}
	}
	return nil
}

// Info describes HEAD. Failures are recorded in the Error field.
func (g *Git) Info() GitInfo {
	info, err := g.headInfo()
	if err != nil {
		g.logger.Debug("git info unavailable", "path", g.path, "error", err)
		return GitInfo{Error: "git not available or not in a git repository: " + err.Error()}
	}
	return info
}

// commitSubject returns the first paragraph of a commit message with its
// lines joined by spaces, as git log --format=%s prints it.
func commitSubject(message string) string {
	var lines []string
	for line := range strings.Lines(message) {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(lines) > 0 {
				break
			}
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, " ")
}

func (g *Git) headInfo() (GitInfo, error) {
	repo, err := g.open()
	if err != nil {
		return GitInfo{}, err
	}
	head, err := repo.Head()
	if err != nil {
		return GitInfo{}, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return GitInfo{}, fmt.Errorf("read HEAD commit: %w", err)
	}

	hash := head.Hash().String()
	short := hash
	if len(short) > 8 {
		short = short[:8]
	}
	subject := commitSubject(commit.Message)
	date := commit.Committer.When.Format(gitDateLayout)

	info := GitInfo{
		CommitHash:      &hash,
		CommitHashShort: &short,
		CommitMessage:   &subject,
		CommitDate:      &date,
	}
	if head.Name().IsBranch() {
		branch := head.Name().Short()
		info.Branch = &branch
	}
	return info, nil
}
