package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"footagelens/internal/client"
	"footagelens/internal/models"
)

// State is the upload machine's current position.
type State string

const (
	StateIdle      State = "idle"
	StateUploading State = "uploading"
	StateAnalyzed  State = "analyzed"
	StateSaving    State = "saving"
	StateReady     State = "ready"
	StateError     State = "error"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoActiveChat = errors.New("no conversation is open")
	ErrNoAnalysis   = errors.New("no analysis result to persist")
)

// FootageStore lists and creates footages scoped to an email.
type FootageStore interface {
	ListFootages(ctx context.Context, email string) ([]models.Footage, error)
	CreateFootage(ctx context.Context, email, name, label, analysis string) error
}

// Analyzer submits a video for analysis.
type Analyzer interface {
	Analyze(ctx context.Context, file io.Reader, filename, label, name string) (*client.AnalysisResult, error)
}

// Converser answers a question scoped to a footage.
type Converser interface {
	Ask(ctx context.Context, footageID, question string) (string, error)
}

// Analysis is a completed-but-unsaved analysis result held between
// submitUpload and persistFootage.
type Analysis struct {
	VideoID string
	Text    string
	Name    string
	Label   string
}

type uploadDraft struct {
	filename string
	open     func() (io.ReadCloser, error)
	name     string
	label    string
}

// Manager is the single authority coordinating the three backend clients
// with the in-memory view model: footage list, label counts, the upload
// draft and its state machine, and the active conversation thread.
//
// The upload machine allows at most one in-flight submit or persist at a
// time; re-entrant calls while Uploading/Saving are no-ops. Refreshing the
// footage list and sending chat messages are independent of the upload
// machine. Every network call is tagged with a generation at issue time and
// responses whose generation no longer matches are discarded, so a reply
// arriving after the user moved on is never applied to the wrong state.
//
// The active-chat handle is owned by the Manager instance; a host running
// several sessions in one process gets one handle per Manager.
type Manager struct {
	store    FootageStore
	analyzer Analyzer
	conv     Converser
	email    string

	mu          sync.Mutex
	state       State
	lastErr     error
	draft       uploadDraft
	pending     *Analysis
	footages    []models.Footage
	labelCounts map[string]int
	activeChat  string
	turns       []models.ConversationTurn
	uploadGen   uint64
	chatGen     uint64

	// sendMu serializes SendMessage so turns land in call-issue order.
	sendMu sync.Mutex
}

// NewManager builds a Manager for the signed-in user identified by email.
func NewManager(store FootageStore, analyzer Analyzer, conv Converser, email string) *Manager {
	return &Manager{
		store:       store,
		analyzer:    analyzer,
		conv:        conv,
		email:       email,
		state:       StateIdle,
		labelCounts: map[string]int{},
	}
}

// SelectFile stages a video for upload. open is invoked once per submit
// attempt, so a failed upload can be retried without reselecting the file.
// Selecting a new file discards any previous draft. Ignored while an upload
// or save is in flight.
func (m *Manager) SelectFile(filename string, open func() (io.ReadCloser, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateUploading || m.state == StateSaving {
		return
	}
	m.draft = uploadDraft{filename: filename, open: open}
	m.pending = nil
	if m.state == StateAnalyzed || m.state == StateError {
		m.state = StateIdle
		m.lastErr = nil
	}
}

// SetDraftDetails records the name and label the user typed before analysis.
// They win over the analysis service's suggestions only when the service
// omits its own.
func (m *Manager) SetDraftDetails(name, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft.name = name
	m.draft.label = label
}

// SubmitUpload sends the drafted file to the analysis service. With no file
// selected it is a no-op, not an error. On success the machine moves to
// Analyzed with the analysis text and suggested name/label populated; on
// failure it moves to Error with the draft preserved for retry.
func (m *Manager) SubmitUpload(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateUploading || m.state == StateSaving {
		m.mu.Unlock()
		return nil
	}
	if m.draft.open == nil {
		m.mu.Unlock()
		return nil
	}
	m.state = StateUploading
	m.lastErr = nil
	m.uploadGen++
	gen := m.uploadGen
	draft := m.draft
	m.mu.Unlock()

	result, err := m.runAnalysis(ctx, draft)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.uploadGen || m.state != StateUploading {
		// Superseded while in flight; drop the response.
		return nil
	}
	if err != nil {
		m.state = StateError
		m.lastErr = err
		return err
	}

	analysis := &Analysis{VideoID: result.VideoID, Text: result.Result, Name: result.Name, Label: result.Label}
	if analysis.Name == "" {
		analysis.Name = draft.name
	}
	if analysis.Label == "" {
		analysis.Label = draft.label
	}
	m.pending = analysis
	m.state = StateAnalyzed
	return nil
}

func (m *Manager) runAnalysis(ctx context.Context, draft uploadDraft) (*client.AnalysisResult, error) {
	file, err := draft.open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return m.analyzer.Analyze(ctx, file, draft.filename, draft.label, draft.name)
}

// PersistFootage saves the pending analysis to the footage store under the
// session's email. On success the machine moves to Ready, the draft is
// cleared and the footage list is refreshed; on failure the analysis is kept
// so persistence can be retried without re-running analysis.
func (m *Manager) PersistFootage(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateUploading || m.state == StateSaving {
		m.mu.Unlock()
		return nil
	}
	if m.pending == nil {
		m.mu.Unlock()
		return ErrNoAnalysis
	}
	m.state = StateSaving
	m.lastErr = nil
	analysis := *m.pending
	m.mu.Unlock()

	err := m.store.CreateFootage(ctx, m.email, analysis.Name, analysis.Label, analysis.Text)

	m.mu.Lock()
	if m.state != StateSaving {
		m.mu.Unlock()
		return nil
	}
	if err != nil {
		m.state = StateError
		m.lastErr = err
		m.mu.Unlock()
		return err
	}
	m.state = StateReady
	m.draft = uploadDraft{}
	m.pending = nil
	m.mu.Unlock()

	return m.RefreshFootages(ctx)
}

// RefreshFootages reloads the footage list and recomputes label counts.
// The list is replaced atomically; on failure the previous list stands.
func (m *Manager) RefreshFootages(ctx context.Context) error {
	footages, err := m.store.ListFootages(ctx, m.email)
	if err != nil {
		return err
	}
	counts := CountLabels(footages)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.footages = footages
	m.labelCounts = counts
	return nil
}

// OpenConversation points the chat view at footageID and starts a fresh
// thread. Prior turns are not reloaded; history lives on the backend only.
func (m *Manager) OpenConversation(footageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeChat = footageID
	m.turns = nil
	m.chatGen++
}

// SendMessage appends the user's question optimistically, asks the backend,
// and appends the assistant's answer. Whitespace-only input is rejected
// before any network call. On failure the user turn stays visible (an
// unanswered question beats a silently lost one) and the error is returned.
// An answer that arrives after the conversation switched is discarded.
func (m *Manager) SendMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	m.sendMu.Lock()
	defer m.sendMu.Unlock()

	m.mu.Lock()
	if m.activeChat == "" {
		m.mu.Unlock()
		return ErrNoActiveChat
	}
	footageID := m.activeChat
	gen := m.chatGen
	m.turns = append(m.turns, models.ConversationTurn{Role: models.RoleUser, Content: text})
	m.mu.Unlock()

	answer, err := m.conv.Ask(ctx, footageID, text)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.chatGen || m.activeChat != footageID {
		return nil
	}
	if err != nil {
		return err
	}
	m.turns = append(m.turns, models.ConversationTurn{Role: models.RoleAssistant, Content: answer})
	return nil
}

// State reports the upload machine's current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the failure cause retained for display, if any.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// PendingAnalysis returns the analysis awaiting persistence.
func (m *Manager) PendingAnalysis() (Analysis, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return Analysis{}, false
	}
	return *m.pending, true
}

// HasDraft reports whether a file is currently staged for upload.
func (m *Manager) HasDraft() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft.open != nil
}

// Footages returns a copy of the current footage list.
func (m *Manager) Footages() []models.Footage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Footage, len(m.footages))
	copy(out, m.footages)
	return out
}

// LabelCounts returns a copy of the label aggregation from the last refresh.
func (m *Manager) LabelCounts() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.labelCounts))
	for label, n := range m.labelCounts {
		out[label] = n
	}
	return out
}

// ActiveChat returns the footage id the chat view is pointed at, or "".
func (m *Manager) ActiveChat() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeChat
}

// Turns returns a copy of the current conversation thread.
func (m *Manager) Turns() []models.ConversationTurn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ConversationTurn, len(m.turns))
	copy(out, m.turns)
	return out
}

// CountLabels maps each label to the number of footages carrying it.
// Footages with an empty label are excluded rather than grouped under a
// synthetic "Unlabeled" bucket; the fallback text is display-only.
func CountLabels(footages []models.Footage) map[string]int {
	counts := make(map[string]int)
	for _, f := range footages {
		if f.Label == "" {
			continue
		}
		counts[f.Label]++
	}
	return counts
}
