// Package telegram delivers the squad tracker over a bot: screenshots and
// pasted scoreboards come in, match reports and duo explanations go out.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"squad-tracker/api/internal/config"
	"squad-tracker/api/internal/explain"
	"squad-tracker/api/internal/identity"
	"squad-tracker/api/internal/ingest"
	"squad-tracker/api/internal/ocr"
	"squad-tracker/api/internal/ocr/gemini"
	"squad-tracker/api/internal/ocr/openai"
	"squad-tracker/api/internal/ocr/yandex"
	"squad-tracker/api/internal/stats"
	"squad-tracker/api/internal/store"
)

type Router struct {
	Bot        *tgbotapi.BotAPI
	EngManager *ocr.Manager
	Ingest     *ingest.Service
	Stats      *stats.Service
	Friends    *store.FriendRepo
	Explain    *explain.Client
	Cfg        *config.Config
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	cid := upd.Message.Chat.ID

	if upd.Message.IsCommand() {
		r.handleCommand(upd)
		return
	}

	if len(upd.Message.Photo) > 0 {
		r.acceptPhoto(*upd.Message)
		return
	}

	// Pasted scoreboard text: anything multi-line is worth a parse attempt.
	if txt := upd.Message.Text; strings.Contains(txt, "\n") {
		r.acceptText(cid, txt)
	}
}

func (r *Router) handleCommand(upd tgbotapi.Update) {
	cid := upd.Message.Chat.ID
	switch upd.Message.Command() {
	case "start":
		r.send(cid, "Send a post-match scoreboard screenshot and I'll track who you played with.\nCommands: /friends, /explain <name>, /engine, /health")
	case "health":
		r.send(cid, "✅ OK")
	case "engine":
		r.handleEngineCommand(cid, upd.Message.Text)
	case "friends":
		r.handleFriends(cid)
	case "explain":
		r.handleExplain(cid, strings.TrimSpace(upd.Message.CommandArguments()))
	default:
		r.send(cid, "Unknown command")
	}
}

// handleEngineCommand switches the chat's OCR engine, optionally with an
// explicit model: "/engine gemini gemini-2.5-pro".
func (r *Router) handleEngineCommand(cid int64, text string) {
	args := strings.Fields(strings.TrimSpace(strings.TrimPrefix(text, "/engine")))
	if len(args) == 0 {
		cur := r.EngManager.Get(cid)
		r.send(cid, "Current engine: "+cur.Name()+" ("+cur.GetModel()+")"+
			"\nUsage:\n/engine gemini [model]\n/engine openai [model]\n/engine yandex")
		return
	}
	name := strings.ToLower(args[0])
	var mdl string
	if len(args) > 1 {
		mdl = args[1]
	}

	switch name {
	case "gemini":
		if mdl == "" {
			mdl = r.Cfg.GeminiModel
		}
		r.EngManager.Set(cid, gemini.New(r.Cfg.GeminiAPIKey, mdl))
	case "openai":
		if r.Cfg.OpenAIAPIKey == "" {
			r.send(cid, "openai engine is not configured")
			return
		}
		if mdl == "" {
			mdl = r.Cfg.OpenAIModel
		}
		r.EngManager.Set(cid, openai.New(r.Cfg.OpenAIAPIKey, mdl))
	case "yandex":
		if r.Cfg.YCOAuthToken == "" || r.Cfg.YCFolderID == "" {
			r.send(cid, "yandex engine is not configured")
			return
		}
		r.EngManager.Set(cid, yandex.New(r.Cfg.YCOAuthToken, r.Cfg.YCFolderID))
	default:
		r.send(cid, "Unknown engine. Available: gemini | openai | yandex")
		return
	}
	if mdl != "" {
		r.send(cid, "Switched to "+name+" ("+mdl+")")
	} else {
		r.send(cid, "Switched to "+name)
	}
}

func (r *Router) handleFriends(cid int64) {
	ctx := context.Background()
	friends, err := r.Friends.ListByChat(ctx, cid)
	if err != nil {
		r.sendError(cid, err)
		return
	}
	if len(friends) == 0 {
		r.send(cid, "No friends tracked yet. Send a scoreboard screenshot to start.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your squad:\n")
	for _, f := range friends {
		name := f.DisplayName
		if name == "" {
			name = f.GameUserID
		}
		fmt.Fprintf(&sb, "• %s", name)
		if s, err := r.Friends.GetStats(ctx, f.ID); err == nil && s.GamesTogether > 0 {
			fmt.Fprintf(&sb, " — %d games, %d wins (%.0f%%)",
				s.GamesTogether, s.WinsTogether, s.SynergyScore*100)
		}
		sb.WriteString("\n")
	}
	r.send(cid, sb.String())
}

func (r *Router) handleExplain(cid int64, arg string) {
	if arg == "" {
		r.send(cid, "Usage: /explain <friend name>")
		return
	}
	ctx := context.Background()

	friends, err := r.Friends.ListByChat(ctx, cid)
	if err != nil {
		r.sendError(cid, err)
		return
	}
	candidates := make([]identity.Candidate, len(friends))
	for i, f := range friends {
		candidates[i] = identity.Candidate{GameUserID: f.GameUserID, DisplayName: f.DisplayName}
	}
	out := identity.Resolve(arg, arg, candidates, r.Cfg.ResolveThreshold)
	if out.Kind == identity.NoMatch {
		r.send(cid, "I don't know "+arg+" yet. Upload a scoreboard with them first.")
		return
	}

	var friend store.Friend
	for _, f := range friends {
		if f.GameUserID == out.Candidate.GameUserID {
			friend = f
			break
		}
	}

	sum, err := r.Stats.Recompute(ctx, friend.ID)
	if err != nil {
		r.sendError(cid, err)
		return
	}
	recent, err := r.Stats.Matches.ListByFriend(ctx, friend.ID)
	if err != nil {
		r.sendError(cid, err)
		return
	}
	fv := stats.Features(sum, recent, friend.ID)

	name := friend.DisplayName
	if name == "" {
		name = friend.GameUserID
	}
	exp, err := r.Explain.Explain(ctx, name, fv)
	if err != nil {
		r.sendError(cid, err)
		return
	}
	r.send(cid, formatExplanation(name, exp))
}

func formatExplanation(name string, e explain.Explanation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Playing with %s: %.0f%% win feel (confidence %.0f%%)\n\n%s\n",
		name, e.WinProb*100, e.Confidence*100, e.Summary)
	if len(e.Reasons) > 0 {
		sb.WriteString("\nWhy:\n")
		for _, s := range e.Reasons {
			sb.WriteString("• " + s + "\n")
		}
	}
	if len(e.DoThis) > 0 {
		sb.WriteString("\nDo:\n")
		for _, s := range e.DoThis {
			sb.WriteString("• " + s + "\n")
		}
	}
	if len(e.AvoidThis) > 0 {
		sb.WriteString("\nAvoid:\n")
		for _, s := range e.AvoidThis {
			sb.WriteString("• " + s + "\n")
		}
	}
	if len(e.HeroIdeas) > 0 {
		sb.WriteString("\nDuo ideas:\n")
		for _, h := range e.HeroIdeas {
			sb.WriteString("• " + h.Duo + ": " + h.Why + "\n")
		}
	}
	if e.FunCaption != "" {
		sb.WriteString("\n" + e.FunCaption)
	}
	return sb.String()
}

func (r *Router) acceptText(cid int64, text string) {
	report, err := r.Ingest.ProcessText(context.Background(), cid, text)
	if err != nil {
		if err == ingest.ErrNoMatch {
			r.send(cid, "That doesn't look like a scoreboard to me.")
			return
		}
		r.sendError(cid, err)
		return
	}
	r.send(cid, formatReport(report))
}

func formatReport(rep ingest.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Recorded match #%d: %s", rep.MatchID, rep.Result)
	if rep.Mode != "" {
		fmt.Fprintf(&sb, " (%s)", rep.Mode)
	}
	fmt.Fprintf(&sb, "\nPlayers parsed: %d", rep.PlayersParsed)
	if len(rep.NewFriends) > 0 {
		fmt.Fprintf(&sb, "\nNew friends: %s", strings.Join(rep.NewFriends, ", "))
	}
	if len(rep.LinkedFriends) > 0 {
		fmt.Fprintf(&sb, "\nSeen again: %s", strings.Join(rep.LinkedFriends, ", "))
	}
	if len(rep.Renamed) > 0 {
		fmt.Fprintf(&sb, "\nNames cleaned up: %s", strings.Join(rep.Renamed, ", "))
	}
	return sb.String()
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		log.Printf("send to %d: %v", chatID, err)
	}
}

func (r *Router) sendError(chatID int64, err error) {
	log.Printf("chat %d: %v", chatID, err)
	r.send(chatID, "Something went wrong: "+err.Error())
}
