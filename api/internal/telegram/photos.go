package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"squad-tracker/api/internal/ingest"
)

var photoClient = &http.Client{Timeout: 30 * time.Second}

func (r *Router) acceptPhoto(msg tgbotapi.Message) {
	cid := msg.Chat.ID

	// Telegram sends several sizes; the last is the largest.
	ph := msg.Photo[len(msg.Photo)-1]
	file, err := r.Bot.GetFile(tgbotapi.FileConfig{FileID: ph.FileID})
	if err != nil {
		r.sendError(cid, err)
		return
	}
	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", r.Bot.Token, file.FilePath)
	imgBytes, err := download(url)
	if err != nil {
		r.sendError(cid, err)
		return
	}

	report, err := r.Ingest.ProcessImage(context.Background(), cid, imgBytes)
	if err != nil {
		if err == ingest.ErrNoMatch {
			r.send(cid, "I couldn't find a scoreboard on that screenshot. Try a clearer post-match screen.")
			return
		}
		r.sendError(cid, err)
		return
	}
	r.send(cid, formatReport(report))
}

func download(url string) ([]byte, error) {
	resp, err := photoClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
