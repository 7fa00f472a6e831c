package model

// User identifies the signed-in GitHub account.
type User struct {
	ID        string
	Login     string
	Name      string
	Email     string
	AvatarURL string
}

// Repository holds repository metadata fetched from the hosting API.
// Immutable once fetched; the catalog filters copies, never this.
type Repository struct {
	ID          int64
	Name        string
	Owner       string // owner login
	Description string
	Language    string // empty when GitHub reports none
	Private     bool
	Stars       int
	Forks       int
	HTMLURL     string
}

// PullRequest holds open pull-request metadata for one repository.
type PullRequest struct {
	Number    int
	Title     string
	CreatedAt string // RFC 3339, may be empty
	State     string // may be empty
}
