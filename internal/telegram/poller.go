package telegram

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/antoniostano/taskpal/internal/reliability"
	"github.com/antoniostano/taskpal/internal/session"
)

// Handler resolves one inbound message to one reply.
type Handler interface {
	HandleText(ctx context.Context, userID int64, text string) string
	HandleVoice(ctx context.Context, userID int64, audio io.Reader) string
	HandleStart(ctx context.Context, userID int64) string
	HandleLogout(ctx context.Context, userID int64) string
}

// Poller long-polls the Bot API and dispatches updates. Updates for
// different users are handled concurrently; updates for the same user are
// queued to one worker so they are processed strictly in arrival order.
type Poller struct {
	client   *Client
	handler  Handler
	sessions *session.Store
	timeout  time.Duration

	mu     sync.Mutex
	queues map[int64]chan Update
	wg     sync.WaitGroup
}

func NewPoller(client *Client, handler Handler, sessions *session.Store, handleTimeout time.Duration) *Poller {
	if handleTimeout <= 0 {
		handleTimeout = 30 * time.Second
	}
	return &Poller{
		client:   client,
		handler:  handler,
		sessions: sessions,
		timeout:  handleTimeout,
		queues:   make(map[int64]chan Update),
	}
}

// Run polls until ctx is cancelled, then drains the per-user workers.
func (p *Poller) Run(ctx context.Context) {
	log.Printf("telegram: poll loop started")
	var offset int64
	attempt := 0

	for {
		if ctx.Err() != nil {
			break
		}

		updates, err := p.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			delay := reliability.ExponentialBackoff(attempt, time.Second, 30*time.Second)
			if apiErr, ok := err.(*APIError); ok && !reliability.IsRetryableHTTPStatus(apiErr.Code) {
				// Non-retryable errors (e.g. 401 bad token) still back off,
				// just louder.
				log.Printf("telegram: getUpdates rejected: %v", err)
			} else {
				log.Printf("telegram: getUpdates failed (attempt %d): %v", attempt, err)
			}
			attempt++
			select {
			case <-ctx.Done():
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			p.enqueue(ctx, update)
		}
	}

	p.mu.Lock()
	for _, q := range p.queues {
		close(q)
	}
	p.queues = nil
	p.mu.Unlock()
	p.wg.Wait()
	log.Printf("telegram: poll loop stopped")
}

func (p *Poller) enqueue(ctx context.Context, update Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userID := update.Message.From.ID

	p.mu.Lock()
	if p.queues == nil {
		p.mu.Unlock()
		return
	}
	q, ok := p.queues[userID]
	if !ok {
		q = make(chan Update, 64)
		p.queues[userID] = q
		p.wg.Add(1)
		go p.worker(ctx, q)
	}
	p.mu.Unlock()

	select {
	case q <- update:
	default:
		log.Printf("telegram: dropping update %d for user %d: queue full", update.UpdateID, userID)
	}
}

func (p *Poller) worker(ctx context.Context, q <-chan Update) {
	defer p.wg.Done()
	for update := range q {
		p.handleUpdate(ctx, update)
	}
}

func (p *Poller) handleUpdate(ctx context.Context, update Update) {
	msg := update.Message
	userID := msg.From.ID
	chatID := msg.Chat.ID

	handleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	// Messages typed during the auth sub-dialogue carry credentials;
	// scrub them from the chat before processing.
	if msg.Text != "" && !strings.HasPrefix(msg.Text, "/") {
		if p.sessions.Get(userID).PendingStage != session.StageNone {
			if err := p.client.DeleteMessage(handleCtx, chatID, msg.MessageID); err != nil {
				log.Printf("telegram: delete credential message for user %d: %v", userID, err)
			}
		}
	}

	var reply string
	switch {
	case strings.HasPrefix(msg.Text, "/start"):
		reply = p.handler.HandleStart(handleCtx, userID)
	case strings.HasPrefix(msg.Text, "/logout"):
		reply = p.handler.HandleLogout(handleCtx, userID)
	case msg.Voice != nil:
		audio, err := p.client.DownloadVoice(handleCtx, msg.Voice.FileID)
		if err != nil {
			log.Printf("telegram: download voice for user %d: %v", userID, err)
			reply = p.handler.HandleVoice(handleCtx, userID, strings.NewReader(""))
		} else {
			reply = p.handler.HandleVoice(handleCtx, userID, audio)
			audio.Close()
		}
	case msg.Text != "":
		reply = p.handler.HandleText(handleCtx, userID, msg.Text)
	default:
		return
	}

	if reply == "" {
		return
	}
	if err := p.client.SendMessage(handleCtx, chatID, reply); err != nil {
		log.Printf("telegram: send reply to chat %d: %v", chatID, err)
	}
}
