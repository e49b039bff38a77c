package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Desarso/companion/gateway"
	"github.com/Desarso/companion/models"
	"github.com/Desarso/companion/sanitizer"
	"github.com/Desarso/companion/thread"
)

const speechTimeout = 2 * time.Minute

// turnPlan is a resolved TurnRequest.
type turnPlan struct {
	parentID string
	history  []models.Message
	prompt   string
	image    string
	// replyTo is set up front when regenerating; otherwise the new user message.
	replyTo string
}

// SubmitTurn runs one user turn to completion. Backend failures never come
// back as errors: they end in DONE with a scripted reply or in FAILED. The
// returned error covers invalid requests and a turn already in flight.
// Cancelling ctx does not abort a turn once it has started.
func (c *Chat) SubmitTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	ctx = context.WithoutCancel(ctx)
	if req.Mode == "" {
		req.Mode = ModeNormal
	}
	if req.Image != "" && !models.IsDataURI(req.Image) {
		return TurnResult{}, ErrInvalidImage
	}
	if req.Mode != ModeRegenerate && strings.TrimSpace(req.Prompt) == "" && req.Image == "" {
		return TurnResult{}, ErrEmptyTurn
	}

	if err := c.beginTurn(); err != nil {
		return TurnResult{}, err
	}
	defer c.endTurn()

	plan, err := c.resolve(req)
	if err != nil {
		return TurnResult{}, err
	}

	c.mu.Lock()
	cfg := c.config
	c.mu.Unlock()

	var result TurnResult
	if req.Mode != ModeRegenerate {
		userMsg, err := c.thread.Fork(plan.parentID, models.Message{
			Role:  models.RoleUser,
			Text:  plan.prompt,
			Image: plan.image,
		})
		if err != nil {
			return TurnResult{}, fmt.Errorf("failed to append user message: %w", err)
		}
		c.activate(userMsg)
		plan.replyTo = userMsg.ID
		result.UserMessage = &userMsg
	}

	c.setState(StateGeneratingText)
	prompt := plan.prompt
	if prompt == "" {
		prompt = fallbackPrompt
	}
	raw, err := c.backend.GenerateText(ctx, prompt, cfg, models.ToHistory(plan.history), plan.image)
	if err != nil {
		if !gateway.IsQuotaError(err) {
			c.logger.Printf("[PIPELINE] text generation failed: %v", err)
			c.setState(StateFailed)
			result.State = StateFailed
			result.Err = err
			return result, nil
		}
		c.logger.Printf("[PIPELINE] text generation out of quota: %v", err)
		return c.reply(ctx, result, plan.replyTo, models.Message{Text: c.quotaFailures.Pick()}, cfg)
	}

	agent := models.Message{Text: sanitizer.CleanResponse(raw)}
	if sanitizer.HasPhotoMarker(raw) {
		if caption, ok := sanitizer.ExtractCaption(raw); ok {
			c.setState(StateGeneratingImage)
			img, err := c.backend.GenerateImage(ctx, sanitizer.SanitizeForImageGen(caption), cfg)
			if err != nil {
				c.logger.Printf("[PIPELINE] image generation failed: %v", err)
				agent.Text = c.imageFailures.Pick()
			} else {
				agent.Image = img
			}
		} else {
			c.logger.Printf("[PIPELINE] photo marker without a complete caption, sending text only")
		}
	}
	return c.reply(ctx, result, plan.replyTo, agent, cfg)
}

// reply appends the agent message under parentID, activates it and starts speech.
func (c *Chat) reply(ctx context.Context, result TurnResult, parentID string, msg models.Message, cfg models.AgentConfig) (TurnResult, error) {
	msg.Role = models.RoleAgent
	agent, err := c.thread.Fork(parentID, msg)
	if err != nil {
		// the thread was swapped out from under the turn
		c.logger.Printf("[PIPELINE] dropping reply: %v", err)
		c.setState(StateFailed)
		result.State = StateFailed
		result.Err = err
		return result, nil
	}
	c.activate(agent)
	c.setState(StateDone)
	c.speak(ctx, agent.ID, agent.Text, cfg.Voice)

	result.State = StateDone
	result.AgentMessage = &agent
	return result, nil
}

func (c *Chat) resolve(req TurnRequest) (turnPlan, error) {
	switch req.Mode {
	case ModeNormal:
		return turnPlan{
			parentID: c.thread.ActiveID(),
			history:  c.thread.ActivePath(),
			prompt:   req.Prompt,
			image:    req.Image,
		}, nil

	case ModeForkFromEdit:
		plan := turnPlan{parentID: req.ParentID, prompt: req.Prompt, image: req.Image}
		if req.ParentID != "" {
			if _, ok := c.thread.Get(req.ParentID); !ok {
				return turnPlan{}, fmt.Errorf("%w: %s", thread.ErrNotFound, req.ParentID)
			}
			plan.history = c.thread.PathTo(req.ParentID)
		}
		return plan, nil

	case ModeRegenerate:
		path := c.thread.ActivePath()
		if len(path) == 0 {
			return turnPlan{}, ErrNothingToRegenerate
		}
		last := path[len(path)-1]
		if last.Role != models.RoleAgent || last.ParentID == "" {
			return turnPlan{}, ErrNothingToRegenerate
		}
		userMsg, ok := c.thread.Get(last.ParentID)
		if !ok {
			return turnPlan{}, ErrNothingToRegenerate
		}
		i := c.thread.IndexInPath(userMsg.ID)
		if i < 0 {
			return turnPlan{}, ErrNothingToRegenerate
		}
		return turnPlan{
			parentID: userMsg.ID,
			history:  path[:i],
			prompt:   userMsg.Text,
			image:    userMsg.Image,
			replyTo:  userMsg.ID,
		}, nil
	}
	return turnPlan{}, fmt.Errorf("%w: %q", ErrInvalidMode, req.Mode)
}

// activate makes msg the active tip, persists, and tells the UI.
func (c *Chat) activate(msg models.Message) {
	if err := c.thread.SetActive(msg.ID); err != nil {
		c.logger.Printf("[PIPELINE] %v", err)
	}
	c.persistThread()
	m := msg
	c.events.Publish(models.Event{Type: models.EventMessageAppended, MessageID: msg.ID, Message: &m})
}

// speak synthesizes text without blocking the turn and patches the audio onto
// the message by id once it arrives.
func (c *Chat) speak(ctx context.Context, messageID, text, voice string) {
	c.speech.Add(1)
	go func() {
		defer c.speech.Done()
		sctx, cancel := context.WithTimeout(ctx, speechTimeout)
		defer cancel()

		audio, err := c.backend.SynthesizeSpeech(sctx, text, voice)
		if err != nil {
			c.logger.Printf("[SPEECH] no audio for %s: %v", messageID, err)
			return
		}
		if err := c.thread.AttachAudio(messageID, audio); err != nil {
			if errors.Is(err, thread.ErrNotFound) {
				c.logger.Printf("[SPEECH] message %s left the thread, dropping audio", messageID)
				return
			}
			c.logger.Printf("[SPEECH] %v", err)
			return
		}
		c.persistThread()
		c.events.Publish(models.Event{Type: models.EventAudioReady, MessageID: messageID, Audio: audio})
	}()
}

// Regenerate asks for a new reply to the user message behind the trailing
// agent reply. The new reply becomes a sibling of the old one.
func (c *Chat) Regenerate(ctx context.Context) (TurnResult, error) {
	return c.SubmitTurn(ctx, TurnRequest{Mode: ModeRegenerate})
}

// EditMessage forks an edited copy of a message. Editing a user message runs
// a new turn from its parent; editing an agent message only appends the copy.
func (c *Chat) EditMessage(ctx context.Context, id, text string) (TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return TurnResult{}, ErrEmptyEdit
	}
	original, ok := c.thread.Get(id)
	if !ok {
		return TurnResult{}, fmt.Errorf("%w: %s", thread.ErrNotFound, id)
	}

	if original.Role == models.RoleUser {
		return c.SubmitTurn(ctx, TurnRequest{Prompt: text, Mode: ModeForkFromEdit, ParentID: original.ParentID})
	}

	edited, err := c.thread.Fork(original.ParentID, models.Message{
		Role:  original.Role,
		Text:  text,
		Image: original.Image,
	})
	if err != nil {
		return TurnResult{}, err
	}
	c.activate(edited)
	return TurnResult{State: StateDone, AgentMessage: &edited}, nil
}

// SwitchBranch activates the latest turn of the branch that starts at id.
func (c *Chat) SwitchBranch(id string) (string, error) {
	tip, err := c.thread.DeepestDescendant(id)
	if err != nil {
		return "", err
	}
	if err := c.thread.SetActive(tip); err != nil {
		return "", err
	}
	c.persistThread()
	c.events.Publish(models.Event{Type: models.EventActiveChanged, MessageID: tip})
	return tip, nil
}

// Siblings lists the alternatives to a message, itself included.
func (c *Chat) Siblings(id string) ([]models.Message, error) {
	return c.thread.SiblingsOf(id)
}

// View renders the active path with the actions the UI may offer.
func (c *Chat) View() models.ThreadView {
	path := c.thread.ActivePath()
	view := models.ThreadView{
		ActiveMessageID: c.thread.ActiveID(),
		Messages:        make([]models.MessageView, 0, len(path)),
	}
	c.mu.Lock()
	view.State = string(c.turnState)
	view.Typing = c.busy
	c.mu.Unlock()

	for i, m := range path {
		mv := models.MessageView{
			Message:  m,
			CanEdit:  !view.Typing,
			HasImage: models.IsDataURI(m.Image),
			HasAudio: m.Audio != "",
		}
		siblings, err := c.thread.SiblingsOf(m.ID)
		if err == nil {
			mv.SiblingCount = len(siblings)
			for j, s := range siblings {
				if s.ID != m.ID {
					continue
				}
				mv.SiblingIndex = j
				if j > 0 {
					mv.PrevSiblingID = siblings[j-1].ID
				}
				if j < len(siblings)-1 {
					mv.NextSiblingID = siblings[j+1].ID
				}
			}
		}
		if i == len(path)-1 && m.Role == models.RoleAgent && m.ParentID != "" && !view.Typing {
			_, mv.CanRegenerate = c.thread.Get(m.ParentID)
		}
		view.Messages = append(view.Messages, mv)
	}
	return view
}
