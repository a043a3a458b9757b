package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"tabsentry/internal/llm"
	"tabsentry/internal/redact"
	"tabsentry/internal/session"
)

// Streamer is the model-streaming collaborator consumed by the
// controller. Satisfied by *llm.Client.
type Streamer interface {
	StreamChat(ctx context.Context, messages []llm.Message) (<-chan string, <-chan error)
	Enabled() bool
}

// Controller drives one request/response cycle: append the user turn,
// stream the model answer, accumulate it, and commit both turns to the
// session store once the stream is exhausted.
type Controller struct {
	store    *session.Store
	streamer Streamer
	builder  *Builder
	policy   redact.Policy
	logger   *slog.Logger
}

// NewController wires the controller to its collaborators.
func NewController(store *session.Store, streamer Streamer, builder *Builder, policy redact.Policy) *Controller {
	return &Controller{
		store:    store,
		streamer: streamer,
		builder:  builder,
		policy:   policy,
		logger:   slog.Default(),
	}
}

// Enabled reports whether the conversational feature is available.
func (c *Controller) Enabled() bool {
	return c.streamer.Enabled()
}

// Narrative produces a one-shot analysis of the current dataset for
// report generation. Unlike Ask it commits nothing to the conversation
// history and ignores prior turns.
func (c *Controller) Narrative(ctx context.Context) (string, error) {
	if !c.streamer.Enabled() {
		return "", llm.ErrMissingAPIKey
	}

	snap, err := c.store.Snapshot()
	if err != nil {
		return "", err
	}

	redacted := c.policy.Redact(snap.Table)
	messages := c.builder.BuildMessages(redacted, snap.Alerts, nil, narrativePrompt)

	contentCh, errCh := c.streamer.StreamChat(ctx, messages)

	var answer strings.Builder
	for fragment := range contentCh {
		answer.WriteString(fragment)
	}
	if streamErr := <-errCh; streamErr != nil {
		return "", fmt.Errorf("model stream: %w", streamErr)
	}
	return answer.String(), nil
}

const narrativePrompt = "请基于以上数据与风险提示，给出一段简明的整体分析结论，适合放入审计报告。"

// Ask runs one conversational turn. onToken is invoked for every
// received fragment so the caller can render partial output; it may be
// nil. On success the user and assistant turns are committed together.
// On a streaming failure only the user turn is committed, leaving the
// conversation consistent and resumable, and a recoverable error is
// returned.
func (c *Controller) Ask(ctx context.Context, question string, onToken func(string)) (string, error) {
	if !c.streamer.Enabled() {
		return "", llm.ErrMissingAPIKey
	}

	snap, err := c.store.Snapshot()
	if err != nil {
		return "", err
	}

	redacted := c.policy.Redact(snap.Table)
	messages := c.builder.BuildMessages(redacted, snap.Alerts, snap.History, question)

	contentCh, errCh := c.streamer.StreamChat(ctx, messages)

	var answer strings.Builder
	for fragment := range contentCh {
		answer.WriteString(fragment)
		if onToken != nil {
			onToken(fragment)
		}
	}

	if streamErr := <-errCh; streamErr != nil {
		// Keep the user turn so the question is preserved, but record
		// no assistant turn for the failed answer.
		if err := c.store.AppendTurns(snap.Generation, session.Turn{Role: session.RoleUser, Content: question}); err != nil {
			c.logger.Warn("discarding failed turn", "error", err)
		}
		return "", fmt.Errorf("model stream: %w", streamErr)
	}

	final := answer.String()
	err = c.store.AppendTurns(snap.Generation,
		session.Turn{Role: session.RoleUser, Content: question},
		session.Turn{Role: session.RoleAssistant, Content: final},
	)
	if err != nil {
		// The dataset changed mid-stream; the answer belongs to the
		// old generation and is discarded.
		c.logger.Info("discarding answer for replaced dataset", "error", err)
		return "", err
	}

	return final, nil
}
