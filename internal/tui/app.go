package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitaid/internal/app"
	"gitaid/internal/catalog"
	"gitaid/internal/github"
	"gitaid/internal/model"
	"gitaid/internal/review"
	"gitaid/internal/session"
)

// — state ———————————————————————————————————————————————————————————————————

type uiState int

const (
	stateRepos uiState = iota
	stateSearch
	statePulls
)

// — styles ——————————————————————————————————————————————————————————————————

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	dimStyle  = lipgloss.NewStyle().Faint(true)
	boldStyle = lipgloss.NewStyle().Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	helpStyle = lipgloss.NewStyle().
			Faint(true).
			PaddingLeft(2)

	detailHeadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	labelStyle = lipgloss.NewStyle().Faint(true)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	reviewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

// — messages ————————————————————————————————————————————————————————————————

type sessionMsg struct {
	user model.User
	err  error
}

type tokenMintedMsg struct {
	epoch uint64
	token string
	err   error
}

type reposLoadedMsg struct {
	epoch uint64
	repos []model.Repository
	err   error
}

type pullsLoadedMsg struct {
	seq uint64
	prs []model.PullRequest
	err error
}

type reviewDoneMsg struct {
	epoch uint64
	key   string
	text  string
}

// — list item ———————————————————————————————————————————————————————————————

type repoItem struct {
	r model.Repository
}

func (i repoItem) Title() string {
	if i.r.Private {
		return i.r.Name + " 🔒"
	}
	return i.r.Name
}

func (i repoItem) Description() string {
	parts := []string{i.r.Owner}
	if i.r.Language != "" {
		parts = append(parts, i.r.Language)
	}
	parts = append(parts, fmt.Sprintf("★ %d", i.r.Stars))
	return strings.Join(parts, " · ")
}

func (i repoItem) FilterValue() string { return i.r.Name }

// — model ———————————————————————————————————————————————————————————————————

type Model struct {
	state   *app.State
	hosting *github.Client
	backend *review.Client
	timeout time.Duration

	list        list.Model
	searchInput textinput.Model
	spin        spinner.Model

	width  int
	height int

	ui           uiState
	visible      []model.Repository // current filter result backing the list items
	languages    []string
	langIdx      int // 0 = All, otherwise languages[langIdx-1]
	prCursor     int
	reviewOffset int
	loadingRepos bool
	errMsg       string
}

func New(state *app.State, hosting *github.Client, backend *review.Client, timeout time.Duration) Model {
	delegate := list.NewDefaultDelegate()

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Repositories"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	ti := textinput.New()
	ti.Placeholder = "Search repositories..."
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Line

	return Model{
		state:       state,
		hosting:     hosting,
		backend:     backend,
		timeout:     timeout,
		list:        l,
		searchInput: ti,
		spin:        sp,
	}
}

// — commands ————————————————————————————————————————————————————————————————

func (m Model) establishSessionCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		user, err := m.hosting.CurrentUser(ctx)
		return sessionMsg{user: user, err: err}
	}
}

// Async results carry the session epoch they were issued under; a sign-out
// in the meantime makes them stale and Update drops them.

func (m Model) mintTokenCmd(epoch uint64, userID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		token, err := m.backend.MintToken(ctx, userID)
		return tokenMintedMsg{epoch: epoch, token: token, err: err}
	}
}

func (m Model) loadReposCmd(epoch uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		repos, err := m.hosting.ListRepositories(ctx)
		return reposLoadedMsg{epoch: epoch, repos: repos, err: err}
	}
}

func (m Model) loadPullsCmd(repo model.Repository, seq uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		prs, err := m.hosting.ListPullRequests(ctx, repo.Owner, repo.Name)
		return pullsLoadedMsg{seq: seq, prs: prs, err: err}
	}
}

// requestReviewCmd always produces a reviewDoneMsg: every failure mode is
// folded into the cached result text.
func (m Model) requestReviewCmd(epoch uint64, key string, repo model.Repository, pr model.PullRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()

		text, err := m.backend.RequestReview(ctx, repo.Owner, repo.Name, pr.Number)
		return reviewDoneMsg{epoch: epoch, key: key, text: review.ResultText(text, err)}
	}
}

// — tea.Model ———————————————————————————————————————————————————————————————

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.establishSessionCmd(), m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		lw, lh := m.listDimensions()
		m.list.SetSize(lw, lh)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case sessionMsg:
		if msg.err != nil {
			m.state.Session = session.Session{Status: session.StatusUnauthenticated}
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.state.Session = session.Session{
			Status:      session.StatusAuthenticated,
			User:        msg.user,
			AccessToken: m.hosting.Token(),
		}
		epoch := m.state.Epoch()
		cmds := []tea.Cmd{m.loadReposCmd(epoch)}
		if m.state.BeginTokenMint() {
			cmds = append(cmds, m.mintTokenCmd(epoch, msg.user.ID))
		}
		m.loadingRepos = true
		return m, tea.Batch(cmds...)

	case tokenMintedMsg:
		// No retry on failure: the credential simply stays absent.
		if msg.err == nil {
			m.state.StoreCredential(msg.epoch, msg.token)
		}
		return m, nil

	case reposLoadedMsg:
		if msg.epoch != m.state.Epoch() {
			return m, nil
		}
		m.loadingRepos = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.state.SetRepositories(msg.repos)
		m.languages = catalog.DistinctLanguages(msg.repos)
		m.langIdx = 0
		m.buildItems()
		return m, nil

	case pullsLoadedMsg:
		applied := m.state.FinishPullRequestLoad(msg.seq, msg.prs, msg.err)
		if msg.err != nil && msg.seq == m.state.PullSeq() {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		if applied {
			m.ui = statePulls
			m.prCursor = 0
			m.reviewOffset = 0
			if len(msg.prs) > 0 {
				m.state.SelectPullRequest(msg.prs[0])
			}
		}
		return m, nil

	case reviewDoneMsg:
		m.state.CompleteReview(msg.epoch, msg.key, msg.text)
		m.reviewOffset = 0
		return m, nil
	}

	switch m.ui {
	case stateSearch:
		return m.updateSearch(msg)
	case statePulls:
		return m.updatePulls(msg)
	default:
		return m.updateRepos(msg)
	}
}

func (m Model) updateRepos(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			m.errMsg = ""
			return m, nil
		case "r":
			if m.state.Session.Authenticated() {
				m.loadingRepos = true
				return m, m.loadReposCmd(m.state.Epoch())
			}
			return m, nil
		case "/":
			m.ui = stateSearch
			m.searchInput.Focus()
			return m, textinput.Blink
		case "l":
			if len(m.languages) > 0 {
				m.langIdx = (m.langIdx + 1) % (len(m.languages) + 1)
				m.buildItems()
			}
			return m, nil
		case "x":
			m.signOut()
			return m, nil
		case "enter":
			// A fresh selection may supersede an in-flight fetch; the
			// sequence tag makes the stale response a no-op.
			repo := m.selectedRepo()
			if repo != nil {
				seq := m.state.BeginPullRequestLoad(*repo)
				return m, m.loadPullsCmd(*repo, seq)
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.ui = stateRepos
			m.searchInput.Blur()
			m.searchInput.Reset()
			m.buildItems()
			return m, nil
		case "enter":
			m.ui = stateRepos
			m.searchInput.Blur()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.buildItems()
	return m, cmd
}

func (m Model) updatePulls(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "esc":
			if m.errMsg != "" {
				m.errMsg = ""
				return m, nil
			}
			m.ui = stateRepos
			return m, nil
		case "up", "k":
			if m.prCursor > 0 {
				m.prCursor--
				m.reviewOffset = 0
				m.state.SelectPullRequest(m.state.PullRequests[m.prCursor])
			}
			return m, nil
		case "down", "j":
			if m.prCursor < len(m.state.PullRequests)-1 {
				m.prCursor++
				m.reviewOffset = 0
				m.state.SelectPullRequest(m.state.PullRequests[m.prCursor])
			}
			return m, nil
		case "pgup", "u":
			m.reviewOffset -= 5
			if m.reviewOffset < 0 {
				m.reviewOffset = 0
			}
			return m, nil
		case "pgdown", "d":
			m.reviewOffset += 5
			return m, nil
		case "enter":
			key, ok := m.state.BeginReview()
			if !ok {
				return m, nil
			}
			return m, m.requestReviewCmd(m.state.Epoch(), key, *m.state.SelectedRepo, *m.state.SelectedPR)
		case "x":
			m.signOut()
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) signOut() {
	m.state.Reset()
	m.ui = stateRepos
	m.visible = nil
	m.languages = nil
	m.langIdx = 0
	m.prCursor = 0
	m.loadingRepos = false
	m.errMsg = ""
	m.searchInput.Reset()
	m.list.SetItems(nil)
}

// buildItems rebuilds the repository list from the current filter.
func (m *Model) buildItems() {
	m.visible = catalog.Filter(m.state.Repos, m.searchInput.Value(), m.currentLanguage())
	items := make([]list.Item, len(m.visible))
	for i, r := range m.visible {
		items[i] = repoItem{r: r}
	}
	m.list.SetItems(items)
}

func (m Model) currentLanguage() string {
	if m.langIdx == 0 || m.langIdx > len(m.languages) {
		return catalog.LanguageAll
	}
	return m.languages[m.langIdx-1]
}

func (m Model) selectedRepo() *model.Repository {
	if len(m.visible) == 0 {
		return nil
	}
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.visible) {
		return nil
	}
	return &m.visible[idx]
}

// — view ————————————————————————————————————————————————————————————————————

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	switch m.state.Session.Status {
	case session.StatusLoading:
		return lipgloss.NewStyle().Padding(1, 2).Render(
			m.spin.View() + " Signing in to GitHub…",
		)
	case session.StatusUnauthenticated:
		return m.renderSignedOut()
	}

	if m.loadingRepos {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			m.spin.View() + " Loading your repositories…",
		)
	}

	header := m.renderHeader()
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), m.renderDetail())
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderHelp())
}

func (m Model) renderSignedOut() string {
	var b strings.Builder
	b.WriteString(boldStyle.Render("Signed out") + "\n\n")
	b.WriteString("No authenticated GitHub session.\n")
	b.WriteString(dimStyle.Render("Set GITHUB_TOKEN and restart gitaid to sign in.") + "\n\n")
	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg) + "\n\n")
	}
	b.WriteString(dimStyle.Render("q quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) renderHeader() string {
	u := m.state.Session.User
	who := u.Login
	if u.Name != "" {
		who = fmt.Sprintf("%s (%s)", u.Name, u.Login)
	}

	cred := dimStyle.Render("backend: no credential")
	if token, ok := m.state.Credential(); ok {
		cred = okStyle.Render("backend: ✓")
		if info, valid := review.InspectCredential(token); valid && !info.ExpiresAt.IsZero() {
			cred += dimStyle.Render(" expires " + info.ExpiresAt.Format("2006-01-02"))
		}
	}

	line := boldStyle.Render(" "+who) + "  " + cred
	if m.errMsg != "" {
		line += "  " + errStyle.Render(m.errMsg) + dimStyle.Render("  (esc to dismiss)")
	}
	return line
}

// — layout helpers ——————————————————————————————————————————————————————————

func (m Model) listDimensions() (width, height int) {
	return m.width / 3, m.height - 4
}

func (m Model) renderDetail() string {
	lw, _ := m.listDimensions()
	dw := m.width - lw
	dh := m.height - 4

	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		PaddingLeft(3).
		PaddingRight(2).
		Width(dw - 1).
		Height(dh)

	contentWidth := (dw - 1) - 3 - 2
	if contentWidth < 20 {
		contentWidth = 20
	}

	repo := m.detailRepo()
	if repo == nil {
		return style.Render(dimStyle.Render("No repositories found"))
	}

	row := func(lbl, val string) string {
		return labelStyle.Render(lbl) + val + "\n"
	}

	var b strings.Builder
	b.WriteString(detailHeadStyle.Render(repo.Name) + "\n\n")
	b.WriteString(row("Owner    ", repo.Owner))
	if repo.Description != "" {
		b.WriteString(row("About    ", truncate(repo.Description, contentWidth-9)))
	}
	if repo.Language != "" {
		b.WriteString(row("Language ", repo.Language))
	}
	b.WriteString(row("Stars    ", fmt.Sprintf("★ %d  ⑂ %d", repo.Stars, repo.Forks)))
	if repo.Private {
		b.WriteString(row("Access   ", warnStyle.Render("private")))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", contentWidth)) + "\n\n")

	switch {
	case m.state.LoadingRepoID() == repo.ID:
		b.WriteString(m.spin.View() + " Loading pull requests…\n")
	case m.ui == statePulls:
		b.WriteString(m.renderPulls(contentWidth, dh))
	default:
		b.WriteString(dimStyle.Render("Enter to load pull requests") + "\n")
	}

	return style.Render(b.String())
}

// detailRepo is the repository the right pane describes: the selection once
// its pull requests are open, otherwise the list cursor.
func (m Model) detailRepo() *model.Repository {
	if m.ui == statePulls && m.state.SelectedRepo != nil {
		return m.state.SelectedRepo
	}
	return m.selectedRepo()
}

func (m Model) renderPulls(contentWidth, paneHeight int) string {
	prs := m.state.PullRequests
	if len(prs) == 0 {
		return dimStyle.Render("No open pull requests") + "\n"
	}

	var b strings.Builder
	b.WriteString(boldStyle.Render(fmt.Sprintf("%d open pull requests", len(prs))) + "\n\n")

	for i, pr := range prs {
		line := fmt.Sprintf("#%d  %s", pr.Number, truncate(pr.Title, contentWidth-8))
		if i == m.prCursor {
			b.WriteString(cursorStyle.Render("› "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n")

	if m.state.Reviewing() {
		b.WriteString(m.spin.View() + " ✨ Analyzing PR…\n")
		return b.String()
	}

	if pr := m.state.SelectedPR; pr != nil && m.state.SelectedRepo != nil {
		key := review.Key(m.state.SelectedRepo.Name, pr.Number)
		if cached, ok := m.state.Reviews.Get(key); ok {
			b.WriteString(m.renderReview(cached, contentWidth, paneHeight-len(prs)-8))
		} else {
			b.WriteString(dimStyle.Render(fmt.Sprintf("Enter to review #%d", pr.Number)) + "\n")
		}
	}
	return b.String()
}

func (m Model) renderReview(cached string, contentWidth, visible int) string {
	head := okStyle.Render("🤖 AI Review")
	if review.IsFailure(cached) {
		head = errStyle.Render("🤖 AI Review (failed)")
	}

	lines := wrapText(cached, contentWidth)
	if visible < 3 {
		visible = 3
	}
	offset := m.reviewOffset
	if offset > len(lines)-1 {
		offset = len(lines) - 1
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + visible
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	b.WriteString(head + "\n")
	for _, line := range lines[offset:end] {
		b.WriteString(reviewStyle.Render(line) + "\n")
	}
	if end < len(lines) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("… %d more lines (d to scroll)", len(lines)-end)) + "\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	var text string
	switch m.ui {
	case stateSearch:
		return dimStyle.Render(strings.Repeat("─", m.width)) + "\n" +
			helpStyle.Render("Search: ") + m.searchInput.View() + "   " +
			dimStyle.Render("Enter apply   Esc clear")
	case statePulls:
		text = "↑/↓ select PR   Enter review   u/d scroll review   Esc back   x sign out   q quit"
	default:
		text = "↑/↓ navigate   Enter pull requests   / search   l language: " +
			m.currentLanguage() + "   r refresh   x sign out   q quit"
	}
	sep := dimStyle.Render(strings.Repeat("─", m.width))
	return sep + "\n" + helpStyle.Render(text)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

// wrapText splits text into lines that fit within maxWidth.
func wrapText(text string, maxWidth int) []string {
	var result []string
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			result = append(result, "")
			continue
		}
		runes := []rune(line)
		for len(runes) > maxWidth {
			result = append(result, string(runes[:maxWidth]))
			runes = runes[maxWidth:]
		}
		result = append(result, string(runes))
	}
	return result
}
