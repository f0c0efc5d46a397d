// Package dialog owns the per-user conversation state machine and the
// intent-to-action dispatch. An incoming message is either consumed by the
// authentication sub-dialogue or forwarded to intent resolution; credentials
// never reach the NLU collaborator.
package dialog

import (
	"context"
	"io"
	"log"
	"regexp"

	"github.com/antoniostano/taskpal/internal/history"
	"github.com/antoniostano/taskpal/internal/match"
	"github.com/antoniostano/taskpal/internal/nlu"
	"github.com/antoniostano/taskpal/internal/observability"
	"github.com/antoniostano/taskpal/internal/policy"
	"github.com/antoniostano/taskpal/internal/session"
	"github.com/antoniostano/taskpal/internal/speech"
	"github.com/antoniostano/taskpal/internal/taskapi"
)

var emailPattern = regexp.MustCompile(`^[\w.\-]+@[\w.\-]+\.\w+$`)

// Authenticator exchanges credentials for an opaque token.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (string, bool)
}

// Analyzer extracts an intent from free text. It must not fail; degraded
// results carry nlu.IntentUnknown.
type Analyzer interface {
	Analyze(ctx context.Context, message string) nlu.Result
}

// TaskClient drives the remote task store.
type TaskClient interface {
	List(ctx context.Context, token string) ([]taskapi.Task, bool)
	Create(ctx context.Context, title, token string) (taskapi.Task, bool)
	PatchStatus(ctx context.Context, taskID, status, token string) (taskapi.Task, bool)
	Delete(ctx context.Context, taskID, token string) bool
}

// Engine resolves each inbound message to exactly one reply. At most one
// external read and one external write happen per message.
type Engine struct {
	sessions    *session.Store
	auth        Authenticator
	analyzer    Analyzer
	tasks       TaskClient
	transcriber speech.Transcriber
	turnLog     history.Store
	metrics     *observability.Metrics
	threshold   int
}

func NewEngine(
	sessions *session.Store,
	auth Authenticator,
	analyzer Analyzer,
	tasks TaskClient,
	transcriber speech.Transcriber,
	turnLog history.Store,
	metrics *observability.Metrics,
	threshold int,
) *Engine {
	return &Engine{
		sessions:    sessions,
		auth:        auth,
		analyzer:    analyzer,
		tasks:       tasks,
		transcriber: transcriber,
		turnLog:     turnLog,
		metrics:     metrics,
		threshold:   threshold,
	}
}

// HandleText processes one text message and returns the reply. Messages
// from the same user are serialized; the session transition committed here
// is visible before the user's next message is read.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) string {
	release := e.sessions.Acquire(userID)
	defer release()

	e.metrics.MessagesTotal.WithLabelValues("text").Inc()
	return e.handleText(ctx, userID, text)
}

// HandleVoice transcribes a voice note and processes the transcript as text.
func (e *Engine) HandleVoice(ctx context.Context, userID int64, audio io.Reader) string {
	release := e.sessions.Acquire(userID)
	defer release()

	e.metrics.MessagesTotal.WithLabelValues("voice").Inc()
	if e.transcriber == nil {
		return e.reply(ctx, userID, replyVoiceUnavailable)
	}

	text, err := e.transcriber.Transcribe(ctx, audio)
	if err != nil {
		log.Printf("dialog: transcription failed for user %d: %v", userID, err)
		e.metrics.CollaboratorErrors.WithLabelValues("transcription").Inc()
		return e.reply(ctx, userID, replyVoiceRetry)
	}
	if text == "" {
		return e.reply(ctx, userID, replyVoiceRetry)
	}
	return e.handleText(ctx, userID, text)
}

// HandleStart begins the auth sub-dialogue for unauthenticated users.
func (e *Engine) HandleStart(ctx context.Context, userID int64) string {
	release := e.sessions.Acquire(userID)
	defer release()

	e.metrics.MessagesTotal.WithLabelValues("command").Inc()
	sess := e.sessions.Get(userID)
	if sess.Authenticated() {
		return e.reply(ctx, userID, replyAlreadyAuthed)
	}
	sess.PendingStage = session.StageAwaitingEmail
	sess.PendingEmail = ""
	e.sessions.Put(userID, sess)
	e.metrics.AuthEvents.WithLabelValues("prompted").Inc()
	return e.reply(ctx, userID, replyPromptEmail)
}

// HandleLogout tears down the session: token and auth sub-dialogue cleared.
func (e *Engine) HandleLogout(ctx context.Context, userID int64) string {
	release := e.sessions.Acquire(userID)
	defer release()

	e.metrics.MessagesTotal.WithLabelValues("command").Inc()
	e.sessions.Logout(userID)
	e.metrics.AuthEvents.WithLabelValues("logout").Inc()
	return e.reply(ctx, userID, replyLoggedOut)
}

func (e *Engine) handleText(ctx context.Context, userID int64, text string) string {
	sess := e.sessions.Get(userID)
	e.recordInbound(ctx, userID, text, sess.PendingStage != session.StageNone)

	// Auth gates are evaluated in fixed order before any intent resolution.
	switch sess.PendingStage {
	case session.StageAwaitingEmail:
		return e.reply(ctx, userID, e.consumeEmail(sess, text))
	case session.StageAwaitingPassword:
		return e.reply(ctx, userID, e.consumePassword(ctx, sess, text))
	}

	if !sess.Authenticated() {
		sess.PendingStage = session.StageAwaitingEmail
		e.sessions.Put(sess.UserID, sess)
		e.metrics.AuthEvents.WithLabelValues("prompted").Inc()
		return e.reply(ctx, userID, replyPromptEmail)
	}

	return e.reply(ctx, userID, e.resolveIntent(ctx, sess, text))
}

func (e *Engine) consumeEmail(sess session.Session, text string) string {
	if !emailPattern.MatchString(text) {
		// Stay in the same stage; PendingEmail untouched.
		return replyInvalidEmail
	}
	sess.PendingEmail = text
	sess.PendingStage = session.StageAwaitingPassword
	e.sessions.Put(sess.UserID, sess)
	e.metrics.AuthEvents.WithLabelValues("email_received").Inc()
	return replyPromptPassword
}

func (e *Engine) consumePassword(ctx context.Context, sess session.Session, password string) string {
	token, ok := e.auth.Authenticate(ctx, sess.PendingEmail, password)
	if !ok {
		// Failure restarts the whole sub-dialogue rather than retrying
		// the password.
		sess.AuthToken = ""
		sess.PendingEmail = ""
		sess.PendingStage = session.StageAwaitingEmail
		e.sessions.Put(sess.UserID, sess)
		e.metrics.AuthEvents.WithLabelValues("auth_failed").Inc()
		return replyAuthFailed
	}

	sess.AuthToken = token
	sess.PendingEmail = ""
	sess.PendingStage = session.StageNone
	e.sessions.Put(sess.UserID, sess)
	e.metrics.AuthEvents.WithLabelValues("auth_success").Inc()
	return replyAuthSuccess
}

func (e *Engine) resolveIntent(ctx context.Context, sess session.Session, text string) string {
	result := e.analyzer.Analyze(ctx, text)
	e.metrics.IntentsTotal.WithLabelValues(string(result.Intent)).Inc()

	switch result.Intent {
	case nlu.IntentCreateTask:
		if result.TaskName == "" {
			return replyCannotIdentify
		}
		task, ok := e.tasks.Create(ctx, result.TaskName, sess.AuthToken)
		if !ok {
			e.metrics.CollaboratorErrors.WithLabelValues("task_store").Inc()
			return replyOperationFailed
		}
		return replyTaskCreated(task.Title)

	case nlu.IntentCompleteTask, nlu.IntentMarkInProgress, nlu.IntentDeleteTask:
		return e.mutateMatchedTask(ctx, sess, result)

	case nlu.IntentListTasks:
		return e.listTasks(ctx, sess)

	case nlu.IntentGreeting:
		return replyGreeting

	case nlu.IntentThanks:
		return replyThanks

	default:
		return replyNotUnderstood
	}
}

func (e *Engine) mutateMatchedTask(ctx context.Context, sess session.Session, result nlu.Result) string {
	if result.TaskName == "" {
		return replyCannotIdentify
	}

	tasks, ok := e.tasks.List(ctx, sess.AuthToken)
	if !ok {
		e.metrics.CollaboratorErrors.WithLabelValues("task_store").Inc()
		return replyNoTasksFound(result.TaskName)
	}
	if len(tasks) == 0 {
		return replyNoTasksFound(result.TaskName)
	}

	task, score, found := match.Best(result.TaskName, tasks, e.threshold)
	if !found {
		return replyNoSimilarTask(result.TaskName)
	}
	e.metrics.MatchScore.Observe(float64(score))

	switch result.Intent {
	case nlu.IntentCompleteTask:
		if _, ok := e.tasks.PatchStatus(ctx, task.ID, taskapi.StatusCompleted, sess.AuthToken); !ok {
			e.metrics.CollaboratorErrors.WithLabelValues("task_store").Inc()
			return replyOperationFailed
		}
		return replyTaskCompleted(task.Title)
	case nlu.IntentMarkInProgress:
		if _, ok := e.tasks.PatchStatus(ctx, task.ID, taskapi.StatusInProgress, sess.AuthToken); !ok {
			e.metrics.CollaboratorErrors.WithLabelValues("task_store").Inc()
			return replyOperationFailed
		}
		return replyTaskInProgress(task.Title)
	default:
		if !e.tasks.Delete(ctx, task.ID, sess.AuthToken) {
			e.metrics.CollaboratorErrors.WithLabelValues("task_store").Inc()
			return replyOperationFailed
		}
		return replyTaskDeleted(task.Title)
	}
}

func (e *Engine) listTasks(ctx context.Context, sess session.Session) string {
	tasks, ok := e.tasks.List(ctx, sess.AuthToken)
	if !ok {
		e.metrics.CollaboratorErrors.WithLabelValues("task_store").Inc()
		return replyListUnavailable
	}

	active := tasks[:0:0]
	for _, t := range tasks {
		if t.Active() {
			active = append(active, t)
		}
	}
	if len(active) == 0 {
		return replyNoPendingTasks
	}
	return replyTaskList(active)
}

// reply records the outbound turn and counts it; exactly one reply is
// emitted per inbound message.
func (e *Engine) reply(ctx context.Context, userID int64, text string) string {
	e.metrics.RepliesTotal.Inc()
	if e.turnLog != nil {
		err := e.turnLog.SaveTurn(ctx, history.TurnRecord{UserID: userID, Role: history.RoleBot, Content: text})
		if err != nil {
			log.Printf("dialog: record reply for user %d: %v", userID, err)
		}
	}
	return text
}

// recordInbound logs the user turn. Content typed during the auth
// sub-dialogue is a credential and is redacted, never stored raw.
func (e *Engine) recordInbound(ctx context.Context, userID int64, text string, sensitive bool) {
	if e.turnLog == nil {
		return
	}
	record := history.TurnRecord{UserID: userID, Role: history.RoleUser, Content: text}
	if sensitive {
		record.Content = policy.CredentialPlaceholder
		record.Redacted = true
	} else {
		record.Content, record.Redacted = policy.RedactPII(text)
	}
	if err := e.turnLog.SaveTurn(ctx, record); err != nil {
		log.Printf("dialog: record message for user %d: %v", userID, err)
	}
}
