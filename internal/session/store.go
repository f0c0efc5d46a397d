package session

import "sync"

// Stage identifies which sub-dialogue owns the user's next message.
type Stage string

const (
	StageNone             Stage = "none"
	StageAwaitingEmail    Stage = "awaiting_email"
	StageAwaitingPassword Stage = "awaiting_password"
)

// Session holds per-user conversation and authentication state.
//
// Invariants: PendingEmail is non-empty iff PendingStage is
// StageAwaitingPassword, and a non-empty AuthToken implies StageNone.
type Session struct {
	UserID       int64
	AuthToken    string
	PendingStage Stage
	PendingEmail string
}

// Authenticated reports whether the session carries a credential token.
func (s Session) Authenticated() bool { return s.AuthToken != "" }

// Store keeps one session per user id. Reads return copies; a session is
// only changed through Put, so concurrent readers never observe a partial
// transition.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]Session
	locks    map[int64]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]Session),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Get returns the user's session, or a fresh idle session when none exists.
func (s *Store) Get(userID int64) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	return Session{UserID: userID, PendingStage: StageNone}
}

// Put upserts the user's session.
func (s *Store) Put(userID int64, sess Session) {
	sess.UserID = userID
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = sess
}

// Clear resets the auth sub-dialogue fields, leaving the token in place.
// Clearing a session with no pending fields is a no-op.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return
	}
	sess.PendingStage = StageNone
	sess.PendingEmail = ""
	s.sessions[userID] = sess
}

// Logout clears the auth sub-dialogue fields and the credential token.
func (s *Store) Logout(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return
	}
	sess.AuthToken = ""
	sess.PendingStage = StageNone
	sess.PendingEmail = ""
	s.sessions[userID] = sess
}

// Acquire takes the per-user handling lock and returns its release func.
// Messages from the same user are serialized so a transition committed by
// message N is visible before message N+1 is read; different users never
// block each other.
func (s *Store) Acquire(userID int64) func() {
	s.mu.Lock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
