package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tabsentry/internal/llm"
	"tabsentry/internal/redact"
	"tabsentry/internal/session"
	"tabsentry/internal/table"
)

// fakeStreamer replays canned fragments or a canned error.
type fakeStreamer struct {
	fragments []string
	err       error
	enabled   bool

	gotMessages []llm.Message
}

func (f *fakeStreamer) Enabled() bool { return f.enabled }

func (f *fakeStreamer) StreamChat(ctx context.Context, messages []llm.Message) (<-chan string, <-chan error) {
	f.gotMessages = messages
	contentCh := make(chan string, len(f.fragments))
	errCh := make(chan error, 1)
	for _, fr := range f.fragments {
		contentCh <- fr
	}
	close(contentCh)
	if f.err != nil {
		errCh <- f.err
	}
	close(errCh)
	return contentCh, errCh
}

func newTestController(streamer *fakeStreamer) (*Controller, *session.Store) {
	store := session.NewStore("secret")
	store.ReplaceTable(&table.Table{Columns: []table.Column{
		{Name: "姓名", Cells: []string{"张伟"}},
		{Name: "联系电话", Cells: []string{"13800138000"}},
	}}, "a.csv", nil)

	c := NewController(store, streamer, NewBuilder(BuilderConfig{}), redact.DefaultPolicy())
	return c, store
}

func TestAsk_Success(t *testing.T) {
	streamer := &fakeStreamer{enabled: true, fragments: []string{"答案", "片段"}}
	c, store := newTestController(streamer)

	var tokens []string
	answer, err := c.Ask(context.Background(), "问题", func(s string) { tokens = append(tokens, s) })
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer != "答案片段" {
		t.Errorf("answer = %q, want %q", answer, "答案片段")
	}
	if len(tokens) != 2 {
		t.Errorf("onToken called %d times, want 2", len(tokens))
	}
	if got := store.HistoryLen(); got != 2 {
		t.Errorf("HistoryLen() = %d, want user+assistant", got)
	}
}

func TestAsk_OutgoingPayloadIsRedacted(t *testing.T) {
	streamer := &fakeStreamer{enabled: true, fragments: []string{"ok"}}
	c, _ := newTestController(streamer)

	if _, err := c.Ask(context.Background(), "问题", nil); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	for _, m := range streamer.gotMessages {
		if strings.Contains(m.Content, "13800138000") {
			t.Error("raw phone value leaked into outgoing messages")
		}
		if strings.Contains(m.Content, "张伟") {
			t.Error("raw name value leaked into outgoing messages")
		}
	}
}

func TestAsk_StreamFailureKeepsUserTurnOnly(t *testing.T) {
	streamer := &fakeStreamer{enabled: true, fragments: []string{"部分"}, err: errors.New("connection reset")}
	c, store := newTestController(streamer)

	_, err := c.Ask(context.Background(), "问题", nil)
	if err == nil {
		t.Fatal("Ask() expected error for failed stream")
	}

	snap, serr := store.Snapshot()
	if serr != nil {
		t.Fatalf("Snapshot() error = %v", serr)
	}
	if len(snap.History) != 1 {
		t.Fatalf("HistoryLen() = %d, want user turn only", len(snap.History))
	}
	if snap.History[0].Role != session.RoleUser || snap.History[0].Content != "问题" {
		t.Errorf("surviving turn = %+v, want the user question", snap.History[0])
	}
}

func TestAsk_Disabled(t *testing.T) {
	c, _ := newTestController(&fakeStreamer{enabled: false})

	if c.Enabled() {
		t.Error("Enabled() = true, want false")
	}
	_, err := c.Ask(context.Background(), "问题", nil)
	if !errors.Is(err, llm.ErrMissingAPIKey) {
		t.Errorf("Ask() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestAsk_NoDataset(t *testing.T) {
	store := session.NewStore("secret")
	c := NewController(store, &fakeStreamer{enabled: true}, NewBuilder(BuilderConfig{}), redact.DefaultPolicy())

	_, err := c.Ask(context.Background(), "问题", nil)
	if !errors.Is(err, session.ErrNoDataset) {
		t.Errorf("Ask() error = %v, want ErrNoDataset", err)
	}
}

func TestAsk_DatasetReplacedMidStream(t *testing.T) {
	streamer := &fakeStreamer{enabled: true, fragments: []string{"旧答案"}}
	c, store := newTestController(streamer)

	// Swap the dataset between snapshot and commit by replacing it from
	// inside the token callback.
	_, err := c.Ask(context.Background(), "问题", func(string) {
		store.ReplaceTable(&table.Table{Columns: []table.Column{{Name: "x", Cells: []string{"1"}}}}, "b.csv", nil)
	})
	if !errors.Is(err, session.ErrStaleGeneration) {
		t.Fatalf("Ask() error = %v, want ErrStaleGeneration", err)
	}
	if got := store.HistoryLen(); got != 0 {
		t.Errorf("HistoryLen() = %d, want 0 (stale answer discarded)", got)
	}
}

func TestNarrative_NoHistoryCommitted(t *testing.T) {
	streamer := &fakeStreamer{enabled: true, fragments: []string{"整体结论"}}
	c, store := newTestController(streamer)

	got, err := c.Narrative(context.Background())
	if err != nil {
		t.Fatalf("Narrative() error = %v", err)
	}
	if got != "整体结论" {
		t.Errorf("Narrative() = %q, want %q", got, "整体结论")
	}
	if n := store.HistoryLen(); n != 0 {
		t.Errorf("HistoryLen() = %d, want 0", n)
	}
}
