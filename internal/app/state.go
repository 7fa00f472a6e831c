package app

import (
	"gitaid/internal/model"
	"gitaid/internal/review"
	"gitaid/internal/session"
)

// State is the application context: every piece of session-scoped mutable
// state lives here and is injected into the TUI, so sign-out can reset it
// in one place. All mutation happens on the event-loop goroutine.
type State struct {
	Session session.Session

	credential string
	minted     bool

	Repos        []model.Repository
	PullRequests []model.PullRequest
	SelectedRepo *model.Repository
	SelectedPR   *model.PullRequest

	Reviews *review.Cache

	pullSeq       uint64
	loadingRepoID int64
	reviewing     bool

	// epoch identifies the current session; Reset bumps it so async
	// completions issued before sign-out can no longer write state.
	epoch uint64
}

func NewState() *State {
	return &State{
		Session: session.Session{Status: session.StatusLoading},
		Reviews: review.NewCache(),
	}
}

// BeginTokenMint reports whether a service-credential mint may be issued.
// At most one mint happens per session, including failed ones: the
// credential stays absent on failure until a new session.
func (s *State) BeginTokenMint() bool {
	if s.minted || !s.Session.Authenticated() {
		return false
	}
	s.minted = true
	return true
}

// Epoch returns the current session epoch. Commands capture it when they
// are issued and hand it back with their result.
func (s *State) Epoch() uint64 {
	return s.epoch
}

// StoreCredential records the minted service credential. A stale epoch
// means the session that requested the mint was signed out meanwhile; the
// result is dropped so it cannot leak into a later session.
func (s *State) StoreCredential(epoch uint64, token string) {
	if epoch != s.epoch {
		return
	}
	s.credential = token
}

// Credential returns the minted service credential, if any.
func (s *State) Credential() (string, bool) {
	return s.credential, s.credential != ""
}

// SetRepositories replaces the repository inventory wholesale.
func (s *State) SetRepositories(repos []model.Repository) {
	s.Repos = repos
}

// BeginPullRequestLoad marks the repository's pull requests as loading and
// returns the sequence number tagging this fetch. Selecting another
// repository bumps the sequence, so an older in-flight fetch can no longer
// apply its result.
func (s *State) BeginPullRequestLoad(repo model.Repository) uint64 {
	s.pullSeq++
	s.loadingRepoID = repo.ID
	r := repo
	s.SelectedRepo = &r
	return s.pullSeq
}

// FinishPullRequestLoad completes a pull-request fetch. The loading slot is
// cleared on every path for the current fetch; a stale sequence number
// means a newer selection superseded this fetch and its result is
// discarded. On error the previous list is kept (last good state wins).
// Reports whether the result was applied.
func (s *State) FinishPullRequestLoad(seq uint64, prs []model.PullRequest, err error) bool {
	if seq != s.pullSeq {
		return false
	}
	s.loadingRepoID = 0
	if err != nil {
		return false
	}
	s.PullRequests = prs
	s.SelectedPR = nil
	return true
}

// PullSeq returns the latest issued pull-request fetch sequence number.
func (s *State) PullSeq() uint64 {
	return s.pullSeq
}

// LoadingRepoID returns the identifier of the repository whose pull
// requests are loading, or 0 when none is.
func (s *State) LoadingRepoID() int64 {
	return s.loadingRepoID
}

// SelectPullRequest records the user's pull-request choice.
func (s *State) SelectPullRequest(pr model.PullRequest) {
	p := pr
	s.SelectedPR = &p
}

// BeginReview starts a review request for the current selection. Returns
// the review key and false when no selection exists or a review is already
// in flight (single-slot flag).
func (s *State) BeginReview() (string, bool) {
	if s.reviewing || s.SelectedRepo == nil || s.SelectedPR == nil {
		return "", false
	}
	s.reviewing = true
	return review.Key(s.SelectedRepo.Name, s.SelectedPR.Number), true
}

// CompleteReview stores the outcome under its key and clears the in-flight
// flag. Runs on every exit path of a review request; writing the same key
// again is the only way a cached result changes. A stale epoch means the
// requesting session was signed out; the result is discarded.
func (s *State) CompleteReview(epoch uint64, key, text string) {
	if epoch != s.epoch {
		return
	}
	s.Reviews.Set(key, text)
	s.reviewing = false
}

// Reviewing reports whether a review request is in flight.
func (s *State) Reviewing() bool {
	return s.reviewing
}

// Reset destroys all session state on sign-out. A later session for a
// different user must not observe the previous credential, inventories, or
// cached reviews.
func (s *State) Reset() {
	s.Session = session.Session{Status: session.StatusUnauthenticated}
	s.credential = ""
	s.minted = false
	s.Repos = nil
	s.PullRequests = nil
	s.SelectedRepo = nil
	s.SelectedPR = nil
	s.Reviews.Reset()
	s.loadingRepoID = 0
	s.reviewing = false
	s.epoch++
	// Outstanding pull-request fetches carry an older seq and go stale.
	s.pullSeq++
}
