package review

import "fmt"

// Key derives the cache key for one (repository, pull request) pair.
// Repositories with identical names under different owners collide; the
// backend contract keys reviews the same way, so we keep the shape.
func Key(repoName string, prNumber int) string {
	return fmt.Sprintf("%s#%d", repoName, prNumber)
}
