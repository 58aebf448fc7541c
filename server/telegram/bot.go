package telegram

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AntonV666/neyro-secretar/plugin/speech"
)

// Bot long-polls the Bot API and routes every message from the owner to
// the handler. Messages from anyone else get a fixed denial.
type Bot struct {
	client  *Client
	handler *Handler
	ownerID int64
	speech  speech.Service // nil when voice processing is disabled
	logger  *slog.Logger
}

// NewBot creates the bot loop. A nil speech service turns voice messages
// into a plain "can't process" text reply.
func NewBot(client *Client, handler *Handler, ownerID int64, sp speech.Service) *Bot {
	return &Bot{
		client:  client,
		handler: handler,
		ownerID: ownerID,
		speech:  sp,
		logger:  slog.Default(),
	}
}

// Notify implements the reminder Notifier by messaging the owner.
func (b *Bot) Notify(ctx context.Context, message string) error {
	return b.client.SendMessage(ctx, b.ownerID, message)
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := b.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Error("getUpdates failed", "err", err)
			time.Sleep(3 * time.Second)
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			if update.Message == nil {
				continue
			}
			b.dispatch(ctx, update.Message)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, m *Message) {
	if m.From == nil || m.From.ID != b.ownerID {
		if err := b.client.SendMessage(ctx, m.Chat.ID, denialText); err != nil {
			b.logger.Error("denial reply failed", "err", err)
		}
		return
	}

	switch {
	case m.Voice != nil:
		b.handleVoice(ctx, m)
	case m.Text != "":
		b.handleText(ctx, m)
	}
}

func (b *Bot) handleText(ctx context.Context, m *Message) {
	reply, err := b.handler.HandleText(ctx, m.Text)
	if err != nil {
		b.logger.Error("message handling failed", "err", err)
		reply = operationFailed
	}
	if err := b.client.SendMessage(ctx, m.Chat.ID, reply); err != nil {
		b.logger.Error("reply failed", "err", err)
	}
}

// handleVoice downloads the voice note, transcribes it, runs the text
// pipeline and answers with synthesized speech, falling back to text.
func (b *Bot) handleVoice(ctx context.Context, m *Message) {
	if b.speech == nil {
		if err := b.client.SendMessage(ctx, m.Chat.ID, "Голосовые сообщения отключены."); err != nil {
			b.logger.Error("reply failed", "err", err)
		}
		return
	}

	text, err := b.transcribeVoice(ctx, m.Voice)
	if err != nil {
		b.logger.Error("voice transcription failed", "err", err)
		if err := b.client.SendMessage(ctx, m.Chat.ID, fmt.Sprintf("Не смогла распознать голос: %v", err)); err != nil {
			b.logger.Error("reply failed", "err", err)
		}
		return
	}
	b.logger.Info("voice transcribed", "text", text)

	reply, err := b.handler.HandleText(ctx, text)
	if err != nil {
		b.logger.Error("message handling failed", "err", err)
		reply = operationFailed
	}

	audio, err := b.speech.Synthesize(ctx, reply)
	if err != nil {
		b.logger.Error("speech synthesis failed", "err", err)
		if err := b.client.SendMessage(ctx, m.Chat.ID, reply); err != nil {
			b.logger.Error("reply failed", "err", err)
		}
		return
	}
	if err := b.client.SendVoice(ctx, m.Chat.ID, audio, "reply.ogg"); err != nil {
		b.logger.Error("voice reply failed", "err", err)
		if err := b.client.SendMessage(ctx, m.Chat.ID, reply); err != nil {
			b.logger.Error("reply failed", "err", err)
		}
	}
}

func (b *Bot) transcribeVoice(ctx context.Context, voice *Voice) (string, error) {
	file, err := b.client.GetFile(ctx, voice.FileID)
	if err != nil {
		return "", err
	}
	data, err := b.client.DownloadFile(ctx, file.FilePath)
	if err != nil {
		return "", err
	}
	return b.speech.Transcribe(ctx, bytes.NewReader(data), voice.FileUniqueID+".ogg")
}
