package main

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// larger images are sent as documents, Telegram recompresses photos
	maxSizePhoto   = 150000
	maxMessageSize = 4096
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// telegramReporter delivers rendered summaries and charts to one chat.
type telegramReporter struct {
	api    telegramSender
	chatID int64
	logger *zap.Logger
}

func newTelegramReporter(token string, chatID int64, logger *zap.Logger) (*telegramReporter, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram")
	}
	return &telegramReporter{api: api, chatID: chatID, logger: logger}, nil
}

// splitMessage cuts text on line boundaries into chunks Telegram accepts.
// A single line longer than the limit is cut hard.
func splitMessage(text string, limit int) []string {
	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			flush()
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		if current.Len()+len(line) > limit {
			flush()
		}
		current.WriteString(line)
	}
	flush()
	return chunks
}

func (r *telegramReporter) SendText(text string) error {
	fence := "```\n"
	for _, chunk := range splitMessage(text, maxMessageSize-2*len(fence)) {
		msg := tgbotapi.NewMessage(r.chatID, fence+chunk+"\n```")
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := r.api.Send(msg); err != nil {
			return errors.Wrap(err, "send summary")
		}
	}
	return nil
}

// SendChart uploads a PNG chart, as a photo when small enough.
func (r *telegramReporter) SendChart(graph []byte, name string) error {
	file := tgbotapi.FileBytes{
		Name:  fmt.Sprintf("%s_%s.png", name, time.Now().Format("20060102-150405")),
		Bytes: graph,
	}
	caption := fmt.Sprintf("Code counts: %s", name)

	var msg tgbotapi.Chattable
	if len(graph) < maxSizePhoto {
		photo := tgbotapi.NewPhotoUpload(r.chatID, file)
		photo.Caption = caption
		msg = photo
	} else {
		doc := tgbotapi.NewDocumentUpload(r.chatID, file)
		doc.Caption = caption
		msg = doc
	}
	if _, err := r.api.Send(msg); err != nil {
		r.logger.Warn("chart not delivered", zap.String("chart", name), zap.Error(err))
		if _, err := r.api.Send(tgbotapi.NewMessage(r.chatID, fmt.Sprintf("Could not send chart %s: %v", name, err))); err != nil {
			return errors.Wrap(err, "send chart error")
		}
	}
	return nil
}
