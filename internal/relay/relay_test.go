package relay_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/gemini-relay/internal/providers/llm"
	"github.com/example/gemini-relay/internal/relay"
)

// stubClient records prompts and returns a fixed reply or error.
type stubClient struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
	wait    bool
}

func (s *stubClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	if s.wait {
		<-ctx.Done()
		return "", &llm.Error{Provider: "stub", Kind: llm.KindNetwork, Err: ctx.Err()}
	}
	return s.reply, s.err
}

func (s *stubClient) ModelName() string { return "stub-flash" }

func (s *stubClient) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

func TestSubmit_Success(t *testing.T) {
	stub := &stubClient{reply: "Hi there"}
	r := relay.New(stub)

	ex, err := r.Submit(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if ex.Output != "Hi there" || ex.Input != "Hello" {
		t.Fatalf("unexpected exchange: %+v", ex)
	}
	if ex.Model != "stub-flash" || ex.ID == "" || ex.Failed() {
		t.Fatalf("unexpected exchange metadata: %+v", ex)
	}
	if got := stub.calls(); len(got) != 1 || got[0] != "Hello" {
		t.Fatalf("calls = %q", got)
	}
}

func TestSubmit_BlankInput_NoCall(t *testing.T) {
	stub := &stubClient{reply: "unused"}
	r := relay.New(stub)

	for _, in := range []string{"", " ", "\n\t  "} {
		ex, err := r.Submit(context.Background(), in)
		if err != nil || ex != nil {
			t.Fatalf("Submit(%q) = %+v, %v", in, ex, err)
		}
	}
	if n := len(stub.calls()); n != 0 {
		t.Fatalf("expected no calls, got %d", n)
	}
}

func TestSubmit_PromptVerbatim(t *testing.T) {
	stub := &stubClient{reply: "ok"}
	r := relay.New(stub)

	in := "  multi\nline ünïcode 💬  "
	if _, err := r.Submit(context.Background(), in); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := stub.calls(); len(got) != 1 || got[0] != in {
		t.Fatalf("prompt altered: %q", got)
	}
}

func TestSubmit_Failure_Classified(t *testing.T) {
	cause := &llm.Error{Provider: "stub", Kind: llm.KindQuota, Status: 429, Err: errors.New("quota")}
	stub := &stubClient{err: cause}
	var buf bytes.Buffer
	r := relay.New(stub, relay.WithLogger(zerolog.New(&buf)))

	ex, err := r.Submit(context.Background(), "Hello")
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v", err)
	}
	if ex == nil || !ex.Failed() || ex.Output != "" {
		t.Fatalf("unexpected exchange: %+v", ex)
	}
	if ex.ErrorKind != string(llm.KindQuota) || ex.Error != llm.Message(llm.KindQuota) {
		t.Fatalf("unexpected error fields: %+v", ex)
	}
	if len(stub.calls()) != 1 {
		t.Fatalf("expected exactly one call (no retry), got %d", len(stub.calls()))
	}
	if !strings.Contains(buf.String(), `"kind":"quota"`) {
		t.Fatalf("failure not logged: %s", buf.String())
	}
}

func TestSubmit_UnclassifiedError_IsService(t *testing.T) {
	r := relay.New(&stubClient{err: errors.New("boom")})

	ex, err := r.Submit(context.Background(), "Hello")
	if err == nil || ex.ErrorKind != string(llm.KindService) {
		t.Fatalf("got %+v, %v", ex, err)
	}
}

func TestSubmit_Timeout(t *testing.T) {
	r := relay.New(&stubClient{wait: true}, relay.WithTimeout(20*time.Millisecond))

	done := make(chan struct{})
	var err error
	go func() {
		_, err = r.Submit(context.Background(), "Hello")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not return after its timeout")
	}
	if llm.KindOf(err) != llm.KindNetwork {
		t.Fatalf("kind = %q", llm.KindOf(err))
	}
}

func TestSubmit_LogsNoInputText(t *testing.T) {
	var buf bytes.Buffer
	r := relay.New(&stubClient{reply: "fine"}, relay.WithLogger(zerolog.New(&buf)))

	if _, err := r.Submit(context.Background(), "my private question"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if strings.Contains(buf.String(), "private") {
		t.Fatalf("prompt text leaked into logs: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "exchange complete") {
		t.Fatalf("missing log line: %s", buf.String())
	}
}

func TestSubmit_CallerCanceled_LoggedAtDebug(t *testing.T) {
	var buf bytes.Buffer
	r := relay.New(&stubClient{wait: true}, relay.WithLogger(zerolog.New(&buf)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex, err := r.Submit(ctx, "Hello")
	if !errors.Is(err, context.Canceled) || ex == nil || !ex.Failed() {
		t.Fatalf("got %+v, %v", ex, err)
	}
	if !strings.Contains(buf.String(), `"level":"debug"`) || strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("cancellation logged at the wrong level: %s", buf.String())
	}
}
