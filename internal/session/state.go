package session

import (
	"strings"
	"sync"
	"time"

	"github.com/vytor/codearena/internal/models"
)

// View names the portal's tabs.
type View string

const (
	ViewChallenges  View = "challenges"
	ViewSubmit      View = "submit"
	ViewStatus      View = "status"
	ViewLeaderboard View = "leaderboard"
	ViewExternal    View = "external"
)

// StatusKind drives the colour of the connection indicator.
type StatusKind string

const (
	StatusConnecting   StatusKind = "connecting"
	StatusLoading      StatusKind = "loading"
	StatusConnected    StatusKind = "connected"
	StatusError        StatusKind = "error"
	StatusDisconnected StatusKind = "disconnected"
)

type Status struct {
	Message string
	Kind    StatusKind
}

type NoticeKind string

const (
	NoticeError   NoticeKind = "error"
	NoticeSuccess NoticeKind = "success"
	NoticeInfo    NoticeKind = "info"
)

// Notice is a modal message shown until the participant dismisses it.
type Notice struct {
	Kind    NoticeKind
	Message string
	At      time.Time
}

const maxNotices = 5

// Draft is the submit form the participant is editing.
type Draft struct {
	ChallengeID int
	Solution    string
}

// ResultPanel is the outcome of the last submission attempt.
type ResultPanel struct {
	Success       bool
	Receipt       *models.SubmissionReceipt
	Message       string
	MissingFields []string
	ShownAt       time.Time
	ExpiresAt     time.Time
}

// ExternalKind identifies one of the external demo panels.
type ExternalKind string

const (
	ExternalPosts   ExternalKind = "jsonplaceholder"
	ExternalHTTPBin ExternalKind = "httpbin"
	ExternalWeather ExternalKind = "weather"
	ExternalCustom  ExternalKind = "custom"
)

// ExternalKinds lists the demo panels in display order.
var ExternalKinds = []ExternalKind{ExternalPosts, ExternalHTTPBin, ExternalWeather, ExternalCustom}

// ParseExternalKind maps a route segment to a panel kind.
func ParseExternalKind(s string) (ExternalKind, bool) {
	for _, k := range ExternalKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

type PanelState string

const (
	PanelIdle    PanelState = "idle"
	PanelLoading PanelState = "loading"
	PanelSuccess PanelState = "success"
	PanelError   PanelState = "error"
)

// Panel is the display state of one external demo.
type Panel struct {
	State     PanelState
	Title     string
	Loading   string
	Result    *models.ProxyResult
	Error     string
	UpdatedAt time.Time
}

// Cache names used for generation tickets.
const (
	CacheChallenges  = "challenges"
	CacheLeaderboard = "leaderboard"
)

// PanelCache is the ticket cache name of an external panel.
func PanelCache(kind ExternalKind) string {
	return "external:" + string(kind)
}

// Ticket identifies one issued request against a cache. Only the most
// recently issued ticket for a cache may apply its result.
type Ticket struct {
	Cache string
	Gen   uint64
}

// Option configures a State.
type Option func(*State)

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *State) {
		s.clock = clock
	}
}

// State is everything the portal knows about one browser session. It is safe
// for concurrent use; getters return copies.
type State struct {
	mu sync.Mutex

	id          string
	participant string
	createdAt   time.Time
	lastSeen    time.Time
	view        View
	initialized bool

	challenges       []models.Challenge
	challengesLoaded bool
	submissions      []models.Submission
	leaderboard      []models.LeaderboardEntry
	leaderboardAt    time.Time

	status     Status
	lastUpdate time.Time
	notices    []Notice
	draft      Draft
	result     *ResultPanel
	panels     map[ExternalKind]Panel
	gens       map[string]uint64

	clock func() time.Time
}

// New creates a fresh session with the default participant.
func New(id string, opts ...Option) *State {
	s := &State{
		id:          id,
		participant: models.DefaultParticipant,
		view:        ViewChallenges,
		challenges:  []models.Challenge{},
		submissions: []models.Submission{},
		leaderboard: []models.LeaderboardEntry{},
		status:      Status{Message: "Connecting...", Kind: StatusConnecting},
		panels:      make(map[ExternalKind]Panel, len(ExternalKinds)),
		gens:        make(map[string]uint64),
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, k := range ExternalKinds {
		s.panels[k] = Panel{State: PanelIdle}
	}
	now := s.clock()
	s.createdAt = now
	s.lastSeen = now
	return s
}

// FromRecord restores a persisted session. Caches start empty.
func FromRecord(rec models.SessionRecord, opts ...Option) *State {
	s := New(rec.ID, opts...)
	if rec.Participant != "" {
		s.participant = rec.Participant
	}
	if rec.Submissions != nil {
		s.submissions = append([]models.Submission{}, rec.Submissions...)
	}
	if !rec.CreatedAt.IsZero() {
		s.createdAt = rec.CreatedAt
	}
	if !rec.LastSeenAt.IsZero() {
		s.lastSeen = rec.LastSeenAt
	}
	return s
}

// Record returns the persisted part of the session.
func (s *State) Record() models.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.SessionRecord{
		ID:          s.id,
		Participant: s.participant,
		Submissions: append([]models.Submission{}, s.submissions...),
		CreatedAt:   s.createdAt,
		LastSeenAt:  s.lastSeen,
	}
}

func (s *State) ID() string {
	return s.id
}

// Now returns the session clock's current time.
func (s *State) Now() time.Time {
	return s.clock()
}

func (s *State) Participant() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participant
}

// HasParticipant reports whether a name other than the default was set.
func (s *State) HasParticipant() bool {
	return s.Participant() != models.DefaultParticipant
}

// SetParticipant replaces the name and empties the submission cache. The
// name must already be trimmed and non-empty.
func (s *State) SetParticipant(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participant = name
	s.submissions = []models.Submission{}
}

// Touch records activity on view at the current time.
func (s *State) Touch(view View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if view != "" {
		s.view = view
	}
	s.lastSeen = s.clock()
}

func (s *State) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *State) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *State) CreatedAt() time.Time {
	return s.createdAt
}

// Viewing reports whether the session was last seen on view at or after since.
func (s *State) Viewing(view View, since time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view == view && !s.lastSeen.Before(since)
}

// MarkInitialized returns true exactly once per session.
func (s *State) MarkInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return false
	}
	s.initialized = true
	return true
}

// Begin issues a new ticket for cache, invalidating earlier ones.
func (s *State) Begin(cache string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked(cache)
}

func (s *State) beginLocked(cache string) Ticket {
	s.gens[cache]++
	return Ticket{Cache: cache, Gen: s.gens[cache]}
}

// IsCurrent reports whether t is still the latest ticket for its cache.
func (s *State) IsCurrent(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked(t)
}

func (s *State) currentLocked(t Ticket) bool {
	return s.gens[t.Cache] == t.Gen
}

func (s *State) Challenges() []models.Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Challenge{}, s.challenges...)
}

// ChallengesLoaded reports whether at least one catalog fetch succeeded.
func (s *State) ChallengesLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.challengesLoaded
}

// Challenge looks up a cached challenge by id.
func (s *State) Challenge(id int) (models.Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.challenges {
		if c.ID == id {
			return c, true
		}
	}
	return models.Challenge{}, false
}

// ApplyChallenges replaces the catalog if t is current.
func (s *State) ApplyChallenges(t Ticket, list []models.Challenge) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t) {
		return false
	}
	s.challenges = append([]models.Challenge{}, list...)
	s.challengesLoaded = true
	return true
}

func (s *State) Submissions() []models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Submission{}, s.submissions...)
}

// PrependSubmission adds sub as the newest entry.
func (s *State) PrependSubmission(sub models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append([]models.Submission{sub}, s.submissions...)
}

// Leaderboard returns the last snapshot and when it was taken.
func (s *State) Leaderboard() ([]models.LeaderboardEntry, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.LeaderboardEntry{}, s.leaderboard...), s.leaderboardAt
}

// ApplyLeaderboard replaces the snapshot if t is current.
func (s *State) ApplyLeaderboard(t Ticket, entries []models.LeaderboardEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t) {
		return false
	}
	s.leaderboard = append([]models.LeaderboardEntry{}, entries...)
	s.leaderboardAt = s.clock()
	return true
}

func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *State) SetStatus(message string, kind StatusKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = Status{Message: message, Kind: kind}
}

// Connected sets the "Connected" status.
func (s *State) Connected() {
	s.SetStatus("Connected", StatusConnected)
}

// MarkUpdated stamps the last update time shown in the header.
func (s *State) MarkUpdated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdate = s.clock()
}

func (s *State) LastUpdate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdate
}

// Notify queues a notice. A notice identical to the newest one is dropped,
// and only the most recent notices are kept.
func (s *State) Notify(kind NoticeKind, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.notices); n > 0 && s.notices[n-1].Kind == kind && s.notices[n-1].Message == message {
		return
	}
	s.notices = append(s.notices, Notice{Kind: kind, Message: message, At: s.clock()})
	if len(s.notices) > maxNotices {
		s.notices = append([]Notice{}, s.notices[len(s.notices)-maxNotices:]...)
	}
}

func (s *State) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notice{}, s.notices...)
}

func (s *State) DismissNotices() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = nil
}

func (s *State) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *State) SetDraft(d Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
}

// SelectChallenge pre-fills the challenge selector, keeping the solution text.
func (s *State) SelectChallenge(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.ChallengeID = id
}

func (s *State) ClearSolution() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Solution = ""
}

// Result returns the result panel if it is still visible at now.
func (s *State) Result(now time.Time) *ResultPanel {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil || !now.Before(s.result.ExpiresAt) {
		return nil
	}
	r := *s.result
	r.MissingFields = append([]string(nil), s.result.MissingFields...)
	return &r
}

func (s *State) ShowResult(r ResultPanel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = &r
}

func (s *State) HideResult() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = nil
}

func (s *State) Panel(kind ExternalKind) Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panels[kind]
}

// BeginPanel moves a panel to loading and issues its ticket.
func (s *State) BeginPanel(kind ExternalKind, title, loading string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panels[kind] = Panel{State: PanelLoading, Title: title, Loading: loading, UpdatedAt: s.clock()}
	return s.beginLocked(PanelCache(kind))
}

// ApplyPanelSuccess shows res in the panel if t is current.
func (s *State) ApplyPanelSuccess(t Ticket, kind ExternalKind, res *models.ProxyResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t) {
		return false
	}
	p := s.panels[kind]
	p.State = PanelSuccess
	p.Result = res
	p.Error = ""
	p.UpdatedAt = s.clock()
	s.panels[kind] = p
	return true
}

// ApplyPanelError shows message in the panel if t is current.
func (s *State) ApplyPanelError(t Ticket, kind ExternalKind, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t) {
		return false
	}
	p := s.panels[kind]
	p.State = PanelError
	p.Result = nil
	p.Error = message
	p.UpdatedAt = s.clock()
	s.panels[kind] = p
	return true
}
