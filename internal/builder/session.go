package builder

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Session is the per-user coordinator state for one in-progress build.
// Exactly one session exists per user; starting a new one cancels the old
// session's pending waits without saving its draft.
//
// Interaction handlers and the expiry timer run on separate goroutines, so
// everything below mu is accessed through Mutate, RenderPreview/RenderPost,
// and the locked helpers. UserID, GuildID, ChannelID, and StartedAt are set
// once at creation and never change.
type Session struct {
	UserID    string
	GuildID   string
	ChannelID string
	StartedAt time.Time

	mu sync.Mutex

	EditMessageID string

	Draft   *Draft
	Buttons *LinkButtonSet

	AboveText     string
	AboveImageURL string
	SuppressPings bool

	previewChannelID string
	previewMessageID string

	waits *waitTable
	seq   int64
	timer *time.Timer
	ended bool
}

// Mutate runs fn with exclusive access to the session's draft state. The
// renderers take the same lock, so a preview can never observe a
// half-applied edit.
func (s *Session) Mutate(fn func(draft *Draft, buttons *LinkButtonSet) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.Draft, s.Buttons)
}

// SetPreviewMessage records where the live preview lives so later
// mutations and the expiry hook can re-render it.
func (s *Session) SetPreviewMessage(channelID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewChannelID = channelID
	s.previewMessageID = messageID
}

// PreviewMessage returns the preview location, or empty strings when the
// preview was never posted.
func (s *Session) PreviewMessage() (channelID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewChannelID, s.previewMessageID
}

// NextWaitID mints a unique custom ID for a sub-editor and registers its
// pending wait. The timeout is the editor's own window, independent of the
// session lifetime.
func (s *Session) NextWaitID(action Action, payload string, timeout time.Duration, onExpire func(Action)) string {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	id := WaitID(action, s.UserID, strconv.FormatInt(seq, 10))
	s.waits.Open(id, action, payload, timeout, onExpire)
	return id
}

// ClaimWait resolves the pending wait for a submitted form. ErrTimeout
// means the form outlived its editor window or the session it belonged to.
func (s *Session) ClaimWait(id string) (Action, string, error) {
	return s.waits.Claim(id)
}

// CancelWait drops a pending wait without firing its expiry hook. Used when
// the form could not be delivered to the user in the first place.
func (s *Session) CancelWait(id string) {
	s.waits.Cancel(id)
}

// PendingWaits counts the sub-editor waits still open on this session.
func (s *Session) PendingWaits() int {
	return s.waits.Len()
}

// Owns reports whether the given user may interact with this session.
func (s *Session) Owns(userID string) bool {
	return s.UserID == userID
}

// EditMode reports whether the session targets an existing message.
func (s *Session) EditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.EditMessageID != ""
}

// Registry owns every live session, keyed by user ID.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	onExpire func(*Session)
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Registry{sessions: make(map[string]*Session), ttl: ttl}
}

// SetExpireFunc installs the hook run when a session's window elapses.
// The hook runs outside the registry lock.
func (r *Registry) SetExpireFunc(fn func(*Session)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = fn
}

// Start creates a session for the user, replacing and canceling any
// previous one. The old draft is discarded; there is no autosave.
func (r *Registry) Start(userID, guildID, channelID string) *Session {
	session := &Session{
		UserID:    userID,
		GuildID:   guildID,
		ChannelID: channelID,
		Draft:     NewDraft(),
		Buttons:   NewLinkButtonSet(),
		StartedAt: time.Now(),
		waits:     newWaitTable(),
	}

	r.mu.Lock()
	previous := r.sessions[userID]
	r.sessions[userID] = session
	ttl := r.ttl
	r.mu.Unlock()

	if previous != nil {
		previous.teardown()
	}

	session.timer = time.AfterFunc(ttl, func() {
		r.expire(session)
	})
	return session
}

// StartEdit creates an edit-mode session seeded from an existing message.
// The message must carry at least one embed and must be authored by the bot.
func (r *Registry) StartEdit(userID, guildID, channelID string, target *discordgo.Message, botID string) (*Session, error) {
	if target == nil || len(target.Embeds) == 0 {
		return nil, fmt.Errorf("message has no embed: %w", ErrNotFound)
	}
	if target.Author == nil || target.Author.ID != botID {
		return nil, fmt.Errorf("message is not authored by the bot: %w", ErrForbidden)
	}

	session := r.Start(userID, guildID, channelID)
	session.mu.Lock()
	session.EditMessageID = target.ID
	session.Draft = DraftFromEmbed(target.Embeds[0])
	session.Buttons = LinkButtonsFromComponents(target.Components)
	session.mu.Unlock()
	return session, nil
}

func (r *Registry) Get(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[userID]
	return session, ok
}

// End removes and cancels the user's session. Idempotent.
func (r *Registry) End(userID string) {
	r.mu.Lock()
	session := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()

	if session != nil {
		session.teardown()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) expire(session *Session) {
	r.mu.Lock()
	current, ok := r.sessions[session.UserID]
	if ok && current == session {
		delete(r.sessions, session.UserID)
	}
	hook := r.onExpire
	r.mu.Unlock()

	if !ok || current != session {
		return
	}
	session.teardown()
	if hook != nil {
		hook(session)
	}
}

func (s *Session) teardown() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	timer := s.timer
	s.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	s.waits.CancelAll()
}

// Ended reports whether the session has been torn down. A torn-down session
// rejects no calls by itself; the bot drops it from dispatch instead.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}
