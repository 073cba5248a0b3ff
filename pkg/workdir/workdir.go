// Package workdir implements spec §4.7: binding a filesystem subtree to a
// repository and timeline, and exposing file-level commit/restore/list
// operations respecting a configurable set of ignore matchers.
package workdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/reversion-fs/reversion/pkg/cleanup"
	"github.com/reversion-fs/reversion/pkg/repoconfig"
	"github.com/reversion-fs/reversion/pkg/repository"
	"github.com/reversion-fs/reversion/pkg/repository/models"
	"github.com/reversion-fs/reversion/pkg/timeline"
)

// HiddenDirName is the name of the hidden directory a work directory
// stores its document and repository under.
const HiddenDirName = ".reversion"

const docFileName = "workdir.json"

var (
	// ErrNotAWorkDirectory is returned by Open/OpenFromDescendant when no
	// hidden directory document can be found.
	ErrNotAWorkDirectory = errors.New("workdir: not a work directory")
)

// document is the hidden-directory JSON document spec §4.7 describes:
// repository path, timeline id, ignore matcher descriptors, and an
// application-owned settings blob the package never interprets.
type document struct {
	RepositoryPath string         `json:"repository_path"`
	TimelineID     string         `json:"timeline_id"`
	IgnoreRules    []ignoreRule   `json:"ignore_matchers"`
	Settings       map[string]any `json:"settings,omitempty"`
}

// ignoreRule is the serializable form of one IgnoreMatcher.
type ignoreRule struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Provider creates or opens the repository a work directory binds to. It
// is the abstraction point spec §4.7's init(root, provider) names, letting
// callers choose repository configuration without workdir importing CLI
// or daemon concerns.
type Provider interface {
	CreateRepository(path string) (*repository.Repository, error)
	OpenRepository(path string) (*repository.Repository, error)
}

// DefaultProvider creates/opens repositories with repoconfig.Default() plus
// an explicit content-defined chunker. repoconfig.Default() leaves Chunker
// nil on purpose (the legacy-ambiguous shape NewChunker rejects, per spec
// §9's resolution), so a real provider must still pick one; 13 bits targets
// an ~8KiB average chunk, the conventional starting point for CDC dedup.
type DefaultProvider struct{}

func (DefaultProvider) CreateRepository(path string) (*repository.Repository, error) {
	cfg := repoconfig.Default()
	cfg.Chunker = &repoconfig.Chunker{Kind: repoconfig.ChunkerKindContentDefined, Bits: 13}
	return repository.Create(path, cfg)
}

func (DefaultProvider) OpenRepository(path string) (*repository.Repository, error) {
	return repository.Open(path)
}

// WorkDir is an open handle onto a filesystem subtree bound to a
// repository and timeline.
type WorkDir struct {
	Root     string
	Repo     *repository.Repository
	Timeline *timeline.Timeline

	doc      document
	matchers []IgnoreMatcher
}

func hiddenDir(root string) string { return filepath.Join(root, HiddenDirName) }
func docPath(root string) string   { return filepath.Join(hiddenDir(root), docFileName) }

// Init implements spec §4.7's init(root, provider): creates the hidden
// directory, creates (or opens) the repository via provider, creates a new
// timeline with the default staggered cleanup policy set, and persists the
// work-directory document.
func Init(root string, provider Provider) (*WorkDir, error) {
	if err := os.MkdirAll(hiddenDir(root), 0o755); err != nil {
		return nil, fmt.Errorf("workdir: creating hidden directory: %w", err)
	}

	repoPath := filepath.Join(hiddenDir(root), "repository")
	var repo *repository.Repository
	var err error
	if repository.Check(repoPath) == nil {
		repo, err = provider.OpenRepository(repoPath)
	} else {
		repo, err = provider.CreateRepository(repoPath)
	}
	if err != nil {
		return nil, fmt.Errorf("workdir: creating repository: %w", err)
	}

	timelineID := uuid.NewString()
	if err := repo.DB().Create(&models.Timeline{ID: timelineID, Name: "main"}).Error; err != nil {
		repo.Close()
		return nil, fmt.Errorf("workdir: creating timeline: %w", err)
	}
	tl := timeline.Open(repo, timelineID)

	if err := attachDefaultPolicies(repo, timelineID); err != nil {
		repo.Close()
		return nil, err
	}

	wd := &WorkDir{
		Root:     root,
		Repo:     repo,
		Timeline: tl,
		doc: document{
			RepositoryPath: repoPath,
			TimelineID:     timelineID,
		},
	}
	wd.matchers = DefaultIgnoreMatcher(root)

	if err := wd.save(); err != nil {
		repo.Close()
		return nil, err
	}
	return wd, nil
}

// defaultPolicySet is spec §4.7's staggered retention schedule: 1/second
// for 1 second, 1/minute for 60 minutes, 1/hour for 24 hours, 1/day for 30
// days, 1/week for 52 weeks.
func defaultPolicySet() []cleanup.Policy {
	return []cleanup.Policy{
		cleanup.OfStaggered(1, time.Second),
		cleanup.OfStaggered(60, time.Minute),
		cleanup.OfStaggered(24, time.Hour),
		cleanup.OfStaggered(30, 24*time.Hour),
		cleanup.OfStaggered(52, 7*24*time.Hour),
	}
}

func attachDefaultPolicies(repo *repository.Repository, timelineID string) error {
	for _, p := range defaultPolicySet() {
		row := p.ToModel()
		if err := repo.DB().Create(&row).Error; err != nil {
			return fmt.Errorf("workdir: creating default cleanup policy: %w", err)
		}
		err := repo.DB().Create(&models.TimelineCleanupPolicy{
			TimelineID:      timelineID,
			CleanupPolicyID: row.ID,
		}).Error
		if err != nil {
			return fmt.Errorf("workdir: attaching default cleanup policy: %w", err)
		}
	}
	return nil
}

// Open implements spec §4.7's open(root): loads the document, opens the
// repository, and returns the bound work directory.
func Open(root string) (*WorkDir, error) {
	data, err := os.ReadFile(docPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotAWorkDirectory
		}
		return nil, fmt.Errorf("workdir: reading document: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("workdir: parsing document: %w", err)
	}

	repo, err := repository.Open(doc.RepositoryPath)
	if err != nil {
		return nil, fmt.Errorf("workdir: opening repository: %w", err)
	}

	wd := &WorkDir{
		Root:     root,
		Repo:     repo,
		Timeline: timeline.Open(repo, doc.TimelineID),
		doc:      doc,
	}
	wd.matchers = matchersFromRules(root, doc.IgnoreRules)
	return wd, nil
}

// OpenFromDescendant implements spec §4.7's openFromDescendant(path):
// walks ancestors of path until a hidden directory is found.
func OpenFromDescendant(path string) (*WorkDir, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("workdir: resolving %s: %w", path, err)
	}

	for {
		if info, err := os.Stat(hiddenDir(dir)); err == nil && info.IsDir() {
			return Open(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrNotAWorkDirectory
		}
		dir = parent
	}
}

func (wd *WorkDir) save() error {
	data, err := json.MarshalIndent(wd.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("workdir: marshaling document: %w", err)
	}
	if err := os.WriteFile(docPath(wd.Root), data, 0o644); err != nil {
		return fmt.Errorf("workdir: writing document: %w", err)
	}
	return nil
}

// Settings returns the application-owned settings blob, never interpreted
// by this package.
func (wd *WorkDir) Settings() map[string]any {
	if wd.doc.Settings == nil {
		return map[string]any{}
	}
	return wd.doc.Settings
}

// SetSettings replaces the application-owned settings blob and persists
// the document.
func (wd *WorkDir) SetSettings(settings map[string]any) error {
	wd.doc.Settings = settings
	return wd.save()
}

// Commit implements spec §4.7's commit(paths, force): creates a snapshot
// of paths relative to Root. Unless force is true, a path whose current
// content checksum equals its latest committed version's checksum is
// skipped; if every path is skipped, no snapshot is created.
func (wd *WorkDir) Commit(paths []string, force bool) (*timeline.Snapshot, error) {
	toCommit := paths
	if !force {
		toCommit = nil
		for _, p := range paths {
			changed, err := wd.pathChangedSinceLastCommit(p)
			if err != nil {
				return nil, err
			}
			if changed {
				toCommit = append(toCommit, p)
			}
		}
	}
	if len(toCommit) == 0 {
		return nil, nil
	}
	return wd.Timeline.CreateSnapshot(toCommit, wd.Root, "", "", false)
}

func (wd *WorkDir) pathChangedSinceLastCommit(path string) (bool, error) {
	versions, err := wd.Timeline.ListVersions(path)
	if err != nil {
		return false, err
	}
	if len(versions) == 0 {
		return true, nil
	}
	latest := versions[0]
	return latest.IsChanged(filepath.Join(wd.Root, path))
}

// Restore implements spec §4.7's restore(paths, revision): restores each
// path from the snapshot at revision, leaving untouched any path not yet
// versioned at or before that revision.
func (wd *WorkDir) Restore(paths []string, revision int64) error {
	snap, err := wd.snapshotAtRevision(revision)
	if err != nil {
		return err
	}

	cumulative, err := snap.CumulativeVersions()
	if err != nil {
		return err
	}

	for _, path := range paths {
		v, ok := cumulative[path]
		if !ok {
			continue
		}
		if _, err := v.Checkout(filepath.Join(wd.Root, path), true); err != nil {
			return fmt.Errorf("workdir: restoring %s: %w", path, err)
		}
	}
	return nil
}

func (wd *WorkDir) snapshotAtRevision(revision int64) (*timeline.Snapshot, error) {
	var row models.Snapshot
	err := wd.Repo.DB().
		Where("timeline_id = ? AND revision = ?", wd.Timeline.ID, revision).
		First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("workdir: loading revision %d: %w", revision, err)
	}
	return wd.Timeline.Snapshot(row.ID)
}

// ListFiles implements spec §4.7's listFiles(): walks Root, returning
// every relative path not excluded by the configured ignore matchers.
func (wd *WorkDir) ListFiles() ([]string, error) {
	var files []string
	err := filepath.Walk(wd.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(wd.Root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if wd.isIgnored(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.IsDir() {
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("workdir: listing files: %w", err)
	}
	return files, nil
}

func (wd *WorkDir) isIgnored(rel string) bool {
	return wd.IsIgnored(rel)
}

// IsIgnored reports whether path (relative or absolute) matches any of the
// work directory's configured ignore matchers. It is exported for callers
// that walk the filesystem themselves, such as the watch daemon deciding
// whether a filesystem event warrants a commit.
func (wd *WorkDir) IsIgnored(path string) bool {
	for _, m := range wd.matchers {
		if m.Match(wd.Root, path) {
			return true
		}
	}
	return false
}

// Delete implements spec §4.7's delete(): removes the hidden directory
// (repository included) and the associated timeline row.
func (wd *WorkDir) Delete() error {
	if err := wd.Repo.Close(); err != nil {
		return fmt.Errorf("workdir: closing repository: %w", err)
	}
	if err := os.RemoveAll(hiddenDir(wd.Root)); err != nil {
		return fmt.Errorf("workdir: removing hidden directory: %w", err)
	}
	return nil
}

// DefaultIgnoreMatcher returns spec §4.7's default matcher set: the work
// directory's own hidden directory plus, per OS, the application's data,
// cache, and config directories (to prevent a tracked work directory from
// recursively tracking its own or the application's bookkeeping state).
// Its hidden-category matcher also matches every file or directory whose
// name starts with a dot, so all dotfiles are ignored by default.
func DefaultIgnoreMatcher(root string) []IgnoreMatcher {
	appPaths := applicationDataPaths()
	return []IgnoreMatcher{
		CategoryMatcher{kind: CategoryHidden, hiddenAt: HiddenDirName},
		CategoryMatcher{kind: CategoryApplication, appPaths: appPaths},
	}
}

// applicationDataPaths returns OS-specific directories the reversion
// application itself stores cache/config state under, as slash-separated
// relative paths. CategoryMatcher compares them against paths relative to
// the work root, so they match only when such a directory sits at that
// relative location under root (e.g. when root is the home directory).
func applicationDataPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"Library/Application Support/reversion", "Library/Caches/reversion"}
	case "windows":
		return []string{"AppData/Local/reversion", "AppData/Roaming/reversion"}
	default:
		return []string{".cache/reversion", ".config/reversion"}
	}
}

func matchersFromRules(root string, rules []ignoreRule) []IgnoreMatcher {
	matchers := DefaultIgnoreMatcher(root)
	for _, r := range rules {
		switch r.Kind {
		case "prefix":
			matchers = append(matchers, Prefix(r.Value))
		case "glob":
			matchers = append(matchers, Glob(r.Value))
		case "regex":
			if re, err := NewRegex(r.Value); err == nil {
				matchers = append(matchers, re)
			}
		case "extension":
			matchers = append(matchers, Extension(r.Value))
		}
	}
	return matchers
}

// AddIgnoreRule appends a serializable ignore rule and persists it.
func (wd *WorkDir) AddIgnoreRule(kind, value string) error {
	wd.doc.IgnoreRules = append(wd.doc.IgnoreRules, ignoreRule{Kind: kind, Value: value})
	wd.matchers = matchersFromRules(wd.Root, wd.doc.IgnoreRules)
	return wd.save()
}
