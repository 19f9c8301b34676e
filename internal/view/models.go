package view

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/vytor/codearena/internal/models"
	"github.com/vytor/codearena/internal/session"
)

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006 15:04:05"
	clockLayout    = "15:04:05"
)

// Tab is one entry of the navigation bar. Key is the Ctrl/Cmd shortcut digit.
type Tab struct {
	View   session.View
	Label  string
	Href   string
	Key    string
	Active bool
}

var tabs = []Tab{
	{View: session.ViewChallenges, Label: "Challenges", Href: "/challenges", Key: "1"},
	{View: session.ViewSubmit, Label: "Submit Solution", Href: "/submit", Key: "2"},
	{View: session.ViewStatus, Label: "My Submissions", Href: "/status", Key: "3"},
	{View: session.ViewLeaderboard, Label: "Leaderboard", Href: "/leaderboard", Key: "4"},
	{View: session.ViewExternal, Label: "External APIs", Href: "/external", Key: ""},
}

// Header is the part of every page above the tabs.
type Header struct {
	Participant    string
	HasParticipant bool
	Status         session.Status
	LastUpdate     string
}

// Page wraps a view's content with the shared chrome.
type Page struct {
	Title   string
	Path    string
	Header  Header
	Tabs    []Tab
	Notices []session.Notice
	Content any
}

// NewPage builds the chrome for st with active highlighted.
func NewPage(st *session.State, active session.View, title, path string, content any) Page {
	t := make([]Tab, len(tabs))
	copy(t, tabs)
	for i := range t {
		t[i].Active = t[i].View == active
	}
	return Page{
		Title:   title,
		Path:    path,
		Header:  BuildHeader(st),
		Tabs:    t,
		Notices: st.Notices(),
		Content: content,
	}
}

func BuildHeader(st *session.State) Header {
	last := "Never"
	if t := st.LastUpdate(); !t.IsZero() {
		last = t.Format(clockLayout)
	}
	return Header{
		Participant:    st.Participant(),
		HasParticipant: st.HasParticipant(),
		Status:         st.Status(),
		LastUpdate:     last,
	}
}

// ChallengeCard is one challenge in the catalog view.
type ChallengeCard struct {
	ID              int
	Title           string
	Description     string
	Difficulty      string
	DifficultyClass string
	Points          int
	Examples        []models.Example
	SolveURL        string
}

type ChallengesView struct {
	Filter       string
	Difficulties []string
	Cards        []ChallengeCard
}

// BuildChallenges renders list, already filtered, as one card per challenge.
func BuildChallenges(list []models.Challenge, filter string) ChallengesView {
	cards := make([]ChallengeCard, 0, len(list))
	for _, c := range list {
		cards = append(cards, ChallengeCard{
			ID:              c.ID,
			Title:           c.Title,
			Description:     c.Description,
			Difficulty:      c.Difficulty,
			DifficultyClass: c.DifficultyClass(),
			Points:          c.Points,
			Examples:        c.Examples,
			SolveURL:        fmt.Sprintf("/challenges/%d/solve", c.ID),
		})
	}
	return ChallengesView{
		Filter:       strings.ToLower(filter),
		Difficulties: models.Difficulties,
		Cards:        cards,
	}
}

type ChallengeOption struct {
	ID       int
	Label    string
	Selected bool
}

// ResultView is the submission result panel.
type ResultView struct {
	Success        bool
	SubmissionID   string
	ChallengeTitle string
	Status         string
	Score          int
	Time           string
	Message        string
	MissingFields  string
	RemainingMS    int64
}

type SubmitView struct {
	Options  []ChallengeOption
	Solution string
	Result   *ResultView
}

// BuildSubmit renders the submit form from the draft and the result panel
// still visible at now.
func BuildSubmit(st *session.State, now time.Time) SubmitView {
	draft := st.Draft()
	list := st.Challenges()
	opts := make([]ChallengeOption, 0, len(list))
	for _, c := range list {
		opts = append(opts, ChallengeOption{
			ID:       c.ID,
			Label:    fmt.Sprintf("%s (%s - %d pts)", c.Title, c.Difficulty, c.Points),
			Selected: c.ID == draft.ChallengeID,
		})
	}

	v := SubmitView{Options: opts, Solution: draft.Solution}
	if r := st.Result(now); r != nil {
		v.Result = buildResult(r, now)
	}
	return v
}

func buildResult(r *session.ResultPanel, now time.Time) *ResultView {
	v := &ResultView{
		Success:     r.Success,
		Message:     r.Message,
		RemainingMS: r.ExpiresAt.Sub(now).Milliseconds(),
	}
	if len(r.MissingFields) > 0 {
		v.MissingFields = strings.Join(r.MissingFields, ", ")
	}
	if r.Receipt != nil {
		v.SubmissionID = r.Receipt.SubmissionID
		v.ChallengeTitle = r.Receipt.ChallengeTitle
		v.Status = r.Receipt.Status
		v.Score = r.Receipt.Score
		v.Time = formatTime(r.Receipt.Timestamp.Time, dateTimeLayout)
	}
	return v
}

type SubmissionCard struct {
	ID             string
	ChallengeTitle string
	Status         string
	Score          int
	Submitted      string
	DetailURL      string
}

type DetailView struct {
	ID             string
	ChallengeTitle string
	Status         string
	Score          int
	Submitted      string
	ErrorMessage   string
}

type StatusView struct {
	Cards  []SubmissionCard
	Detail *DetailView
}

// BuildStatus renders the session's own submissions, newest first, and the
// optional detail being inspected.
func BuildStatus(subs []models.Submission, detail *models.SubmissionDetail) StatusView {
	cards := make([]SubmissionCard, 0, len(subs))
	for _, s := range subs {
		cards = append(cards, SubmissionCard{
			ID:             s.ID,
			ChallengeTitle: s.ChallengeTitle,
			Status:         s.Status,
			Score:          s.Score,
			Submitted:      formatTime(s.SubmittedAt.Time, dateTimeLayout),
			DetailURL:      "/submissions/" + url.PathEscape(s.ID),
		})
	}
	v := StatusView{Cards: cards}
	if detail != nil {
		v.Detail = &DetailView{
			ID:             detail.ID,
			ChallengeTitle: detail.ChallengeTitle,
			Status:         detail.Status,
			Score:          detail.Score,
			Submitted:      formatTime(detail.SubmittedAt.Time, dateTimeLayout),
			ErrorMessage:   detail.ErrorMessage,
		}
	}
	return v
}

// LeaderboardRow is one ranked participant. IsCurrent marks rows whose name
// equals the session's participant exactly; duplicates are all marked.
type LeaderboardRow struct {
	Rank        int
	RankClass   string
	Participant string
	IsCurrent   bool
	Score       int
	Solved      int
	LastActive  string
}

// LeaderboardView is rendered both in the page and as the polled fragment,
// so it carries the connection status and any pending error notices.
type LeaderboardView struct {
	Rows        []LeaderboardRow
	UpdatedAt   string
	PollSeconds int
	Status      session.Status
	Errors      []string
}

// Failed reports whether the last load failed and the rows are the
// previous snapshot.
func (v LeaderboardView) Failed() bool {
	return v.Status.Kind == session.StatusError
}

// BuildLeaderboard keeps the server's order and ranks as given.
func BuildLeaderboard(entries []models.LeaderboardEntry, participant string, at time.Time, poll time.Duration) LeaderboardView {
	rows := make([]LeaderboardRow, 0, len(entries))
	for _, e := range entries {
		class := fmt.Sprintf("rank-%d", e.Rank)
		if e.Rank >= 1 && e.Rank <= 3 {
			class += fmt.Sprintf(" top-%d", e.Rank)
		}
		rows = append(rows, LeaderboardRow{
			Rank:        e.Rank,
			RankClass:   class,
			Participant: e.ParticipantName,
			IsCurrent:   e.ParticipantName == participant,
			Score:       e.TotalScore,
			Solved:      e.ChallengesSolved,
			LastActive:  formatTime(e.LastSubmission.Time, dateLayout),
		})
	}
	return LeaderboardView{
		Rows:        rows,
		UpdatedAt:   formatTime(at, clockLayout),
		PollSeconds: int(poll / time.Second),
	}
}

// PanelView is one external demo panel.
type PanelView struct {
	Kind      string
	State     string
	Title     string
	Loading   string
	Error     string
	Source    string
	Timestamp string
	Status    string
	Body      string
}

type CustomFormView struct {
	URL     string
	Method  string
	Body    string
	Methods []string
}

type ExternalView struct {
	Panels      map[string]PanelView
	WeatherCity string
	Custom      CustomFormView
}

// BuildExternal renders every demo panel of st. Proxy bodies are shown as
// pretty-printed text.
func BuildExternal(st *session.State, city string, custom CustomFormView) ExternalView {
	panels := make(map[string]PanelView, len(session.ExternalKinds))
	for _, kind := range session.ExternalKinds {
		p := st.Panel(kind)
		pv := PanelView{
			Kind:    string(kind),
			State:   string(p.State),
			Title:   p.Title,
			Loading: p.Loading,
			Error:   p.Error,
		}
		if p.Result != nil {
			pv.Source = p.Result.Source
			pv.Timestamp = formatTime(p.Result.Timestamp.Time, dateTimeLayout)
			pv.Status = p.Result.Status
			pv.Body = p.Result.Pretty
		}
		panels[string(kind)] = pv
	}
	return ExternalView{Panels: panels, WeatherCity: city, Custom: custom}
}

// ErrorView is the content of the error page.
type ErrorView struct {
	Status     int
	StatusText string
	Message    string
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(layout)
}

// ErrorMessages returns the messages of the pending error notices, oldest first.
func ErrorMessages(notices []session.Notice) []string {
	var out []string
	for _, n := range notices {
		if n.Kind == session.NoticeError {
			out = append(out, n.Message)
		}
	}
	return out
}
