package sessions

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/Desarso/companion/gateway"
	"github.com/Desarso/companion/models"
	"github.com/Desarso/companion/phrases"
	"github.com/Desarso/companion/stores"
	"github.com/Desarso/companion/thread"
)

const testImage = "data:image/png;base64,AAEC"

type fakeBackend struct {
	mu sync.Mutex

	text   func(prompt string) (string, error)
	image  func(caption string) (string, error)
	speech func(text string) (string, error)

	prompts   []string
	histories [][]models.HistoryTurn
	images    []string
	captions  []string
	spoken    []string
}

func (f *fakeBackend) GenerateText(ctx context.Context, prompt string, cfg models.AgentConfig, history []models.HistoryTurn, image string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.histories = append(f.histories, history)
	f.images = append(f.images, image)
	fn := f.text
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fn == nil {
		return "Halo bestie!", nil
	}
	return fn(prompt)
}

func (f *fakeBackend) GenerateImage(ctx context.Context, caption string, cfg models.AgentConfig) (string, error) {
	f.mu.Lock()
	f.captions = append(f.captions, caption)
	fn := f.image
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fn == nil {
		return testImage, nil
	}
	return fn(caption)
}

func (f *fakeBackend) SynthesizeSpeech(ctx context.Context, text, voice string) (string, error) {
	f.mu.Lock()
	f.spoken = append(f.spoken, text)
	fn := f.speech
	f.mu.Unlock()
	if fn == nil {
		return "UENN", nil
	}
	return fn(text)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordingPublisher) Publish(e models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingPublisher) count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == kind {
			n++
		}
	}
	return n
}

var (
	testImagePool = phrases.NewSeededPool(1, "foto gagal satu", "foto gagal dua")
	testQuotaPool = phrases.NewSeededPool(2, "kuota abis satu", "kuota abis dua")
)

func newTestChat(t *testing.T, backend *fakeBackend) (*Chat, *recordingPublisher) {
	t.Helper()
	return newTestChatWithState(t, backend, stores.NewState(stores.NewMemoryStore()))
}

func newTestChatWithState(t *testing.T, backend *fakeBackend, state *stores.State) (*Chat, *recordingPublisher) {
	t.Helper()
	chat, err := NewChat(backend, state)
	if err != nil {
		t.Fatalf("NewChat: %v", err)
	}
	pub := &recordingPublisher{}
	chat.WithPhrases(testImagePool, testQuotaPool).
		WithPublisher(pub).
		WithLogger(log.New(io.Discard, "", 0))
	return chat, pub
}

func TestFirstTurnCreatesRoot(t *testing.T) {
	backend := &fakeBackend{}
	chat, pub := newTestChat(t, backend)

	res, err := chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "halo"})
	if err != nil {
		t.Fatalf("SubmitTurn: %v", err)
	}
	chat.Wait()

	if res.State != StateDone {
		t.Errorf("Expected DONE, got %s", res.State)
	}
	if res.UserMessage == nil || !res.UserMessage.IsRoot() {
		t.Fatalf("Expected a root user message, got %+v", res.UserMessage)
	}
	if res.AgentMessage == nil || res.AgentMessage.ParentID != res.UserMessage.ID {
		t.Fatalf("Expected agent reply under the user message, got %+v", res.AgentMessage)
	}
	if res.AgentMessage.Text != "Halo bestie!" {
		t.Errorf("Expected sanitized reply, got %q", res.AgentMessage.Text)
	}
	if chat.Thread().ActiveID() != res.AgentMessage.ID {
		t.Error("Expected the agent reply to be active")
	}
	if len(backend.histories[0]) != 0 {
		t.Errorf("Expected empty history for the first turn, got %v", backend.histories[0])
	}

	msg, _ := chat.Thread().Get(res.AgentMessage.ID)
	if msg.Audio != "UENN" {
		t.Errorf("Expected speech attached, got %q", msg.Audio)
	}
	if pub.count(models.EventAudioReady) != 1 {
		t.Errorf("Expected one audio_ready event, got %d", pub.count(models.EventAudioReady))
	}
	if chat.Busy() {
		t.Error("Expected the chat to be idle after the turn")
	}
}

func TestUserMessageActiveBeforeBackendCall(t *testing.T) {
	backend := &fakeBackend{}
	chat, _ := newTestChat(t, backend)
	var activeDuringCall models.Message
	backend.text = func(prompt string) (string, error) {
		path := chat.Thread().ActivePath()
		activeDuringCall = path[len(path)-1]
		return "oke", nil
	}
	res, _ := chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "halo"})
	chat.Wait()
	if activeDuringCall.ID != res.UserMessage.ID {
		t.Errorf("Expected user message active during generation, got %q", activeDuringCall.ID)
	}
}

func TestSecondTurnSendsHistory(t *testing.T) {
	backend := &fakeBackend{}
	chat, _ := newTestChat(t, backend)
	first, _ := chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "halo"})
	second, _ := chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "lagi apa?"})
	chat.Wait()

	if second.UserMessage.ParentID != first.AgentMessage.ID {
		t.Error("Expected second prompt to continue from the first reply")
	}
	h := backend.histories[1]
	if len(h) != 2 || h[0].Role != "user" || h[1].Role != "model" || h[1].Text != "Halo bestie!" {
		t.Errorf("Unexpected history %+v", h)
	}
}

func TestQuotaFailureAppendsScriptedReply(t *testing.T) {
	backend := &fakeBackend{text: func(string) (string, error) {
		return "", gateway.ErrQuotaExceeded
	}}
	chat, _ := newTestChat(t, backend)

	res, err := chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "halo"})
	if err != nil {
		t.Fatal(err)
	}
	chat.Wait()

	if chat.Thread().Len() != 2 {
		t.Fatalf("Expected user message plus one agent message, got %d", chat.Thread().Len())
	}
	if res.AgentMessage == nil || !testQuotaPool.Contains(res.AgentMessage.Text) {
		t.Fatalf("Expected a quota line, got %+v", res.AgentMessage)
	}
	if res.AgentMessage.Image != "" {
		t.Error("Expected no image on a quota reply")
	}
	if res.AgentMessage.ParentID != res.UserMessage.ID {
		t.Error("Expected quota reply under the user message")
	}
	if len(backend.captions) != 0 {
		t.Error("Expected image generation to be skipped")
	}
	if len(backend.spoken) != 1 || backend.spoken[0] != res.AgentMessage.Text {
		t.Errorf("Expected the quota line to be spoken, got %v", backend.spoken)
	}
}

func TestRawQuotaSignalIsRecognized(t *testing.T) {
	backend := &fakeBackend{text: func(string) (string, error) {
		return "", errors.New("Error 429, Message: slow down")
	}}
	chat, _ := newTestChat(t, backend)
	res, _ := chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "halo"})
	chat.Wait()
	if res.AgentMessage == nil || !testQuotaPool.Contains(res.AgentMessage.Text) {
		t.Errorf("Expected quota line, got %+v", res.AgentMessage)
	}
}

func TestImageFailureReplacesText(t *testing.T) {
	backend := &fakeBackend{
		text:  func(string) (string, error) { return "Nih buat lo [CAPTION: selfie nude di kamar]", nil },
		image: func(string) (string, error) { return "", gateway.ErrSafetyBlocked },
	}
	chat, _ := newTestChat(t, backend)

	res, _ := chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "pap dong"})
	chat.Wait()

	if res.AgentMessage == nil {
		t.Fatal("Expected an agent message")
	}
	if res.AgentMessage.Image != "" {
		t.Error("Expected no image after a failed generation")
	}
	if !testImagePool.Contains(res.AgentMessage.Text) {
		t.Errorf("Expected an image failure line, got %q", res.AgentMessage.Text)
	}
	if len(backend.captions) != 1 || backend.captions[0] != "selfie berpose cantik, sensual, dan aesthetic di kamar" {
		t.Errorf("Expected sanitized caption, got %v", backend.captions)
	}
}

func TestImageSuccessAttachesImage(t *testing.T) {
	backend := &fakeBackend{text: func(string) (string, error) { return "Nih buat lo [CAPTION: duduk santai]", nil }}
	chat, _ := newTestChat(t, backend)

	res, _ := chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "pap dong"})
	chat.Wait()

	if res.AgentMessage.Image != testImage {
		t.Errorf("Expected image attached, got %q", res.AgentMessage.Image)
	}
	if res.AgentMessage.Text != "Nih buat lo" {
		t.Errorf("Expected marker stripped from text, got %q", res.AgentMessage.Text)
	}
	if backend.captions[0] != "duduk santai" {
		t.Errorf("Expected caption 'duduk santai', got %q", backend.captions[0])
	}
}

func TestGenericFailureIsSilent(t *testing.T) {
	boom := errors.New("connection reset")
	backend := &fakeBackend{text: func(string) (string, error) { return "", boom }}
	chat, _ := newTestChat(t, backend)

	res, err := chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "halo"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	chat.Wait()

	if res.State != StateFailed || chat.State() != StateFailed {
		t.Errorf("Expected FAILED, got %s / %s", res.State, chat.State())
	}
	if !errors.Is(res.Err, boom) {
		t.Errorf("Expected the cause in the result, got %v", res.Err)
	}
	if chat.Thread().Len() != 1 || res.AgentMessage != nil {
		t.Error("Expected only the user message to remain")
	}
	if chat.Busy() {
		t.Error("Expected typing indicator cleared")
	}
	if len(backend.spoken) != 0 {
		t.Error("Expected no speech for a failed turn")
	}
}

func TestEmptyPromptWithImage(t *testing.T) {
	backend := &fakeBackend{}
	chat, _ := newTestChat(t, backend)

	res, err := chat.SubmitTurn(context.Background(), TurnRequest{Image: testImage})
	if err != nil {
		t.Fatal(err)
	}
	chat.Wait()
	if backend.prompts[0] != "Lanjut" {
		t.Errorf("Expected fallback prompt, got %q", backend.prompts[0])
	}
	if backend.images[0] != testImage || res.UserMessage.Image != testImage {
		t.Error("Expected the attachment to reach the backend and the user message")
	}
}

func TestInvalidRequests(t *testing.T) {
	chat, _ := newTestChat(t, &fakeBackend{})
	ctx := context.Background()
	if _, err := chat.SubmitTurn(ctx, TurnRequest{Prompt: "  "}); !errors.Is(err, ErrEmptyTurn) {
		t.Errorf("Expected ErrEmptyTurn, got %v", err)
	}
	if _, err := chat.SubmitTurn(ctx, TurnRequest{Prompt: "x", Image: "http://x/y.png"}); !errors.Is(err, ErrInvalidImage) {
		t.Errorf("Expected ErrInvalidImage, got %v", err)
	}
	if _, err := chat.SubmitTurn(ctx, TurnRequest{Prompt: "x", Mode: "sideways"}); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("Expected ErrInvalidMode, got %v", err)
	}
	if _, err := chat.SubmitTurn(ctx, TurnRequest{Prompt: "x", Mode: ModeForkFromEdit, ParentID: "gone"}); !errors.Is(err, thread.ErrNotFound) {
		t.Errorf("Expected thread.ErrNotFound, got %v", err)
	}
	if chat.Thread().Len() != 0 {
		t.Error("Expected no messages after rejected requests")
	}
}

func TestConcurrentTurnRefused(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &fakeBackend{text: func(string) (string, error) {
		close(started)
		<-release
		return "oke", nil
	}}
	chat, _ := newTestChat(t, backend)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "satu"})
	}()
	<-started
	if _, err := chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "dua"}); !errors.Is(err, ErrTurnInProgress) {
		t.Errorf("Expected ErrTurnInProgress, got %v", err)
	}
	if !chat.View().Typing {
		t.Error("Expected typing indicator while generating")
	}
	close(release)
	<-done
	chat.Wait()
}

func TestRegenerateForksSiblingReply(t *testing.T) {
	backend := &fakeBackend{}
	chat, _ := newTestChat(t, backend)
	ctx := context.Background()

	first, _ := chat.SubmitTurn(ctx, TurnRequest{Prompt: "halo", Image: testImage})
	backend.text = func(string) (string, error) { return "Halo lagi!", nil }
	res, err := chat.Regenerate(ctx)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	chat.Wait()

	if res.UserMessage != nil {
		t.Error("Expected no new user message when regenerating")
	}
	if res.AgentMessage.ParentID != first.UserMessage.ID {
		t.Error("Expected new reply under the same user message")
	}
	sibs, _ := chat.Siblings(first.AgentMessage.ID)
	if len(sibs) != 2 {
		t.Errorf("Expected 2 sibling replies, got %d", len(sibs))
	}
	if backend.prompts[1] != "halo" || backend.images[1] != testImage {
		t.Errorf("Expected original prompt and image replayed, got %q %q", backend.prompts[1], backend.images[1])
	}
	if len(backend.histories[1]) != 0 {
		t.Errorf("Expected history strictly before the user message, got %v", backend.histories[1])
	}
	old, _ := chat.Thread().Get(first.AgentMessage.ID)
	if old.Text != "Halo bestie!" {
		t.Error("Expected the previous reply to stay untouched")
	}
}

func TestRegenerateNothing(t *testing.T) {
	failing := &fakeBackend{text: func(string) (string, error) { return "", errors.New("down") }}
	chat, _ := newTestChat(t, failing)
	if _, err := chat.Regenerate(context.Background()); !errors.Is(err, ErrNothingToRegenerate) {
		t.Errorf("Expected ErrNothingToRegenerate on empty thread, got %v", err)
	}
	_, _ = chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "halo"})
	if _, err := chat.Regenerate(context.Background()); !errors.Is(err, ErrNothingToRegenerate) {
		t.Errorf("Expected ErrNothingToRegenerate when the path ends with a user message, got %v", err)
	}
}

func TestEditUserMessageForks(t *testing.T) {
	backend := &fakeBackend{}
	chat, _ := newTestChat(t, backend)
	ctx := context.Background()

	first, _ := chat.SubmitTurn(ctx, TurnRequest{Prompt: "halo"})
	second, _ := chat.SubmitTurn(ctx, TurnRequest{Prompt: "lagi apa?"})
	before := chat.Thread().Messages()

	res, err := chat.EditMessage(ctx, second.UserMessage.ID, "udah makan?")
	if err != nil {
		t.Fatal(err)
	}
	chat.Wait()

	if res.UserMessage.ParentID != first.AgentMessage.ID {
		t.Error("Expected the edit to fork at the original's parent")
	}
	if res.UserMessage.Text != "udah makan?" {
		t.Errorf("Expected edited text, got %q", res.UserMessage.Text)
	}
	sibs, _ := chat.Siblings(second.UserMessage.ID)
	if len(sibs) != 2 {
		t.Errorf("Expected 2 sibling user messages, got %d", len(sibs))
	}
	h := backend.histories[2]
	if len(h) != 2 || h[1].Text != first.AgentMessage.Text {
		t.Errorf("Expected history up to and including the parent, got %+v", h)
	}
	for _, m := range before {
		got, _ := chat.Thread().Get(m.ID)
		if got.Text != m.Text || got.ParentID != m.ParentID {
			t.Errorf("Message %s changed by the edit", m.ID)
		}
	}
}

func TestEditRootUserMessage(t *testing.T) {
	backend := &fakeBackend{}
	chat, _ := newTestChat(t, backend)
	ctx := context.Background()
	first, _ := chat.SubmitTurn(ctx, TurnRequest{Prompt: "halo"})
	res, err := chat.EditMessage(ctx, first.UserMessage.ID, "hai")
	if err != nil {
		t.Fatal(err)
	}
	chat.Wait()
	if !res.UserMessage.IsRoot() {
		t.Error("Expected edited root to be a new root")
	}
	if len(backend.histories[1]) != 0 {
		t.Errorf("Expected empty history when forking a root, got %v", backend.histories[1])
	}
}

func TestEditAgentMessageCopies(t *testing.T) {
	backend := &fakeBackend{text: func(string) (string, error) { return "Nih [CAPTION: senyum]", nil }}
	chat, _ := newTestChat(t, backend)
	ctx := context.Background()

	first, _ := chat.SubmitTurn(ctx, TurnRequest{Prompt: "pap"})
	chat.Wait()
	calls := len(backend.prompts)

	res, err := chat.EditMessage(ctx, first.AgentMessage.ID, "Nih, spesial buat lo")
	if err != nil {
		t.Fatal(err)
	}
	edited := res.AgentMessage
	if edited.ID == first.AgentMessage.ID || edited.ParentID != first.UserMessage.ID {
		t.Errorf("Expected a new sibling reply, got %+v", edited)
	}
	if edited.Audio != "" {
		t.Error("Expected the copy to drop audio")
	}
	if edited.Image != testImage {
		t.Error("Expected the copy to keep the image")
	}
	if len(backend.prompts) != calls {
		t.Error("Expected no backend call for an agent edit")
	}
	if chat.Thread().ActiveID() != edited.ID {
		t.Error("Expected the copy to be active")
	}
}

func TestEditValidation(t *testing.T) {
	chat, _ := newTestChat(t, &fakeBackend{})
	if _, err := chat.EditMessage(context.Background(), "x", " "); !errors.Is(err, ErrEmptyEdit) {
		t.Errorf("Expected ErrEmptyEdit, got %v", err)
	}
	if _, err := chat.EditMessage(context.Background(), "x", "teks"); !errors.Is(err, thread.ErrNotFound) {
		t.Errorf("Expected thread.ErrNotFound, got %v", err)
	}
}

func TestSwitchBranchLandsOnDeepest(t *testing.T) {
	backend := &fakeBackend{}
	chat, _ := newTestChat(t, backend)
	ctx := context.Background()

	first, _ := chat.SubmitTurn(ctx, TurnRequest{Prompt: "halo"})
	second, _ := chat.SubmitTurn(ctx, TurnRequest{Prompt: "terus?"})
	alt, _ := chat.EditMessage(ctx, first.UserMessage.ID, "hai")
	chat.Wait()

	if chat.Thread().ActiveID() != alt.AgentMessage.ID {
		t.Fatal("Expected the edited branch to be active")
	}
	tip, err := chat.SwitchBranch(first.UserMessage.ID)
	if err != nil {
		t.Fatal(err)
	}
	if tip != second.AgentMessage.ID {
		t.Errorf("Expected to land on %s, got %s", second.AgentMessage.ID, tip)
	}
	if _, err := chat.SwitchBranch("gone"); !errors.Is(err, thread.ErrNotFound) {
		t.Errorf("Expected thread.ErrNotFound, got %v", err)
	}
}

func TestViewActions(t *testing.T) {
	backend := &fakeBackend{}
	chat, _ := newTestChat(t, backend)
	ctx := context.Background()

	first, _ := chat.SubmitTurn(ctx, TurnRequest{Prompt: "halo"})
	_, _ = chat.Regenerate(ctx)
	chat.Wait()

	view := chat.View()
	if len(view.Messages) != 2 {
		t.Fatalf("Expected 2 messages on the path, got %d", len(view.Messages))
	}
	user, agent := view.Messages[0], view.Messages[1]
	if user.SiblingCount != 1 || user.CanRegenerate {
		t.Errorf("Unexpected user view %+v", user)
	}
	if agent.SiblingCount != 2 || agent.SiblingIndex != 1 || agent.PrevSiblingID != first.AgentMessage.ID || agent.NextSiblingID != "" {
		t.Errorf("Unexpected agent sibling info %+v", agent)
	}
	if !agent.CanRegenerate || !agent.HasAudio || agent.HasImage {
		t.Errorf("Unexpected agent actions %+v", agent)
	}
	if view.State != string(StateDone) || view.Typing {
		t.Errorf("Expected DONE and not typing, got %s %v", view.State, view.Typing)
	}
}

func TestSpeechFailureLeavesMessageSilent(t *testing.T) {
	backend := &fakeBackend{speech: func(string) (string, error) { return "", gateway.ErrNoAudio }}
	chat, pub := newTestChat(t, backend)
	res, _ := chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "halo"})
	chat.Wait()
	msg, _ := chat.Thread().Get(res.AgentMessage.ID)
	if msg.Audio != "" || pub.count(models.EventAudioReady) != 0 {
		t.Error("Expected no audio after a speech failure")
	}
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	state := stores.NewState(stores.NewMemoryStore())
	backend := &fakeBackend{}
	chat, _ := newTestChatWithState(t, backend, state)
	res, _ := chat.SubmitTurn(context.Background(), TurnRequest{Prompt: "halo"})
	chat.Wait()

	restarted, _ := newTestChatWithState(t, backend, state)
	if restarted.Thread().Len() != 2 {
		t.Errorf("Expected 2 persisted messages, got %d", restarted.Thread().Len())
	}
	if restarted.Thread().ActiveID() != res.AgentMessage.ID {
		t.Error("Expected the active pointer to persist")
	}
	msg, _ := restarted.Thread().Get(res.AgentMessage.ID)
	if msg.Audio != "UENN" {
		t.Error("Expected late audio to be persisted")
	}
}

func TestCancelledCallerStillGetsReply(t *testing.T) {
	backend := &fakeBackend{text: func(string) (string, error) { return "Nih [CAPTION: senyum]", nil }}
	gw := gateway.New(backend).WithLogger(log.New(io.Discard, "", 0))
	chat, err := NewChat(gw, stores.NewState(stores.NewMemoryStore()))
	if err != nil {
		t.Fatal(err)
	}
	chat.WithPhrases(testImagePool, testQuotaPool).WithLogger(log.New(io.Discard, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := chat.SubmitTurn(ctx, TurnRequest{Prompt: "pap"})
	if err != nil {
		t.Fatal(err)
	}
	chat.Wait()

	if res.State != StateDone || res.Err != nil {
		t.Fatalf("Expected DONE, got %s (%v)", res.State, res.Err)
	}
	if res.AgentMessage == nil || res.AgentMessage.Image != testImage {
		t.Errorf("Expected the reply with its image, got %+v", res.AgentMessage)
	}
	if chat.Thread().Len() != 2 {
		t.Errorf("Expected user message and reply, got %d messages", chat.Thread().Len())
	}
}

func TestRegenerateLaterTurnSendsEarlierHistory(t *testing.T) {
	backend := &fakeBackend{}
	chat, _ := newTestChat(t, backend)
	ctx := context.Background()

	first, _ := chat.SubmitTurn(ctx, TurnRequest{Prompt: "halo"})
	second, _ := chat.SubmitTurn(ctx, TurnRequest{Prompt: "lagi apa?"})
	res, err := chat.Regenerate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	chat.Wait()

	h := backend.histories[2]
	if len(h) != 2 || h[0].Text != "halo" || h[1].Text != first.AgentMessage.Text {
		t.Errorf("Expected history up to the replayed prompt, got %+v", h)
	}
	if backend.prompts[2] != "lagi apa?" || res.AgentMessage.ParentID != second.UserMessage.ID {
		t.Errorf("Expected the second prompt replayed under its own user message, got %q", backend.prompts[2])
	}
}
