// Package updater keeps local masterlist clones in sync with the
// loot/* repositories on GitHub. Each game's masterlist lives in its
// own clone under the masterlist directory.
package updater

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/lootlint/pkg/errors"
	"github.com/arthur-debert/lootlint/pkg/games"
	"github.com/arthur-debert/lootlint/pkg/logging"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// DefaultBranch is the branch the loot masterlist repositories
// publish on.
const DefaultBranch = "v0.26"

// Updater clones and fast-forwards masterlist repositories.
type Updater struct {
	// BaseDir is the directory holding one clone per game.
	BaseDir string
	// Branch is the masterlist branch to track. Empty means
	// DefaultBranch.
	Branch string
	// Progress receives clone/fetch progress output; nil disables it.
	Progress io.Writer
	// RepoURLFunc maps a game to its upstream repository. nil means
	// RepoURL.
	RepoURLFunc func(games.Game) string
}

func (u *Updater) url(game games.Game) string {
	if u.RepoURLFunc != nil {
		return u.RepoURLFunc(game)
	}
	return RepoURL(game)
}

// RepoURL returns the upstream repository for a game's masterlist.
func RepoURL(game games.Game) string {
	return fmt.Sprintf("https://github.com/loot/%s.git", game.MasterlistRepo)
}

// Dir returns the local clone directory for a game.
func (u *Updater) Dir(game games.Game) string {
	return filepath.Join(u.BaseDir, game.MasterlistRepo)
}

// MasterlistPath returns the masterlist file inside a game's clone.
func (u *Updater) MasterlistPath(game games.Game) string {
	return filepath.Join(u.Dir(game), "masterlist.yaml")
}

func (u *Updater) branch() string {
	if u.Branch != "" {
		return u.Branch
	}
	return DefaultBranch
}

// Update brings the game's masterlist clone up to date, cloning it
// first if necessary. It reports whether anything changed.
func (u *Updater) Update(game games.Game) (changed bool, err error) {
	logger := logging.GetLogger("updater")
	dir := u.Dir(game)

	repo, err := git.PlainOpen(dir)
	if err == git.ErrRepositoryNotExists {
		logger.Info().Str("game", game.Name).Str("url", u.url(game)).Msg("cloning masterlist")
		return true, u.clone(game, dir)
	}
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrUpdateFetch, "cannot open masterlist clone %s", dir).
			WithDetail("dir", dir)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrUpdateFetch, "cannot open masterlist worktree")
	}
	status, err := worktree.Status()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrUpdateFetch, "cannot read masterlist worktree status")
	}
	if !status.IsClean() {
		return false, errors.Newf(errors.ErrUpdateDirty,
			"masterlist clone %s has local changes, refusing to update", dir).
			WithDetail("dir", dir)
	}

	err = repo.Fetch(&git.FetchOptions{RemoteName: "origin", Progress: u.Progress})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return false, errors.Wrapf(err, errors.ErrUpdateFetch, "cannot fetch masterlist updates for %s", game.Name).
			WithDetail("url", u.url(game))
	}

	head, err := repo.Head()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrUpdateFetch, "cannot read masterlist HEAD")
	}
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", u.branch()), true)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrUpdateFetch, "masterlist branch %s not found", u.branch()).
			WithDetail("branch", u.branch())
	}

	if head.Hash() == remoteRef.Hash() {
		logger.Debug().Str("game", game.Name).Msg("masterlist already up to date")
		return false, nil
	}

	// Fast-forward only: the worktree is clean, so a hard reset to the
	// remote tip is equivalent.
	err = worktree.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset})
	if err != nil {
		return false, errors.Wrap(err, errors.ErrUpdateFetch, "cannot fast-forward masterlist")
	}
	logger.Info().
		Str("game", game.Name).
		Str("commit", remoteRef.Hash().String()[:8]).
		Msg("masterlist updated")
	return true, nil
}

func (u *Updater) clone(game games.Game, dir string) error {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrUpdateFetch, "cannot create masterlist directory %s", u.BaseDir)
	}
	branch := plumbing.NewBranchReferenceName(u.branch())
	_, err := git.PlainClone(dir, false, &git.CloneOptions{
		URL:           u.url(game),
		ReferenceName: branch,
		SingleBranch:  true,
		Progress:      u.Progress,
	})
	if err != nil {
		// A partial clone directory would poison the next run.
		_ = os.RemoveAll(dir)
		return errors.Wrapf(err, errors.ErrUpdateFetch, "cannot clone masterlist for %s", game.Name).
			WithDetail("url", u.url(game))
	}
	return nil
}

// Commit returns the short hash of the clone's current HEAD.
func (u *Updater) Commit(game games.Game) (string, error) {
	repo, err := git.PlainOpen(u.Dir(game))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrUpdateFetch, "cannot open masterlist clone %s", u.Dir(game))
	}
	head, err := repo.Head()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrUpdateFetch, "cannot read masterlist HEAD")
	}
	return head.Hash().String()[:8], nil
}
