package irc

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/fuelrats/ratboard/pkg/domain/model"
	"github.com/fuelrats/ratboard/pkg/domain/types"
	ircsvc "github.com/fuelrats/ratboard/pkg/service/irc"
	"github.com/fuelrats/ratboard/pkg/usecase"
	"github.com/fuelrats/ratboard/pkg/utils/async"
	"github.com/fuelrats/ratboard/pkg/utils/errutil"
)

// boardFeature is the rescue-board surface: prefixed case commands plus
// signal detection on everything else.
type boardFeature struct {
	deps *Deps

	mu        sync.Mutex
	lastLines map[string]string // lower nick -> last non-command line
}

func newBoardFeature(deps *Deps) Feature {
	return &boardFeature{
		deps:      deps,
		lastLines: make(map[string]string),
	}
}

func (f *boardFeature) Name() string { return FeatureBoard }

type boardHandler func(ctx context.Context, msg ircsvc.Message, args []string, reply func(string))

// boardUsage backs the help prefix. Keys must match the dispatch switch in
// Handle.
var boardUsage = map[string]string{
	"grab":     "grab <nick> - open a case from <nick>'s last line",
	"open":     "open <nick> [text] - open a case manually",
	"assign":   "assign <case> [rats...] - add responders (default: you)",
	"add":      "add <case> [rats...] - alias of assign",
	"unassign": "unassign <case> [rats...] - remove responders (default: you)",
	"rm":       "rm <case> [rats...] - alias of unassign",
	"cfj":      "cfj <case> - mark call for jump",
	"pause":    "pause <case> - put the case on hold",
	"resume":   "resume <case> - take the case off hold",
	"close":    "close <case> [success|invalid|purged|timeout] - close the case",
	"clear":    "clear <case> [reason] - alias of close",
	"sys":      "sys <case> <system> - set the star system",
	"platform": "platform <case> <pc|xb|ps> - set the platform",
	"quote":    "quote <case> - show the case with its notes",
	"list":     "list - show all open cases",
	"inject":   "inject <case> <text> - attach a note to the case",
}

func (f *boardFeature) Handle(ctx context.Context, msg ircsvc.Message, reply func(string)) bool {
	cfg := f.deps.Config

	if cmd, _, ok := splitCommand(cfg.HelpPrefix, msg.Text); ok {
		usage, known := boardUsage[cmd]
		if !known {
			return false
		}
		reply(cfg.Prefix + usage)
		return true
	}

	if cmd, args, ok := splitCommand(cfg.Prefix, msg.Text); ok {
		handler := f.commandHandler(cmd)
		if handler == nil {
			return false
		}
		handler(ctx, msg, args, reply)
		return true
	}

	return f.handleChatter(ctx, msg, reply)
}

func (f *boardFeature) commandHandler(cmd string) boardHandler {
	switch cmd {
	case "grab":
		return f.cmdGrab
	case "open":
		return f.cmdOpen
	case "assign", "add":
		return f.cmdAssign
	case "unassign", "rm":
		return f.cmdUnassign
	case "cfj":
		return f.eventCommand("cfj", types.CaseEventCallForJump, "call for jump, good luck")
	case "pause":
		return f.eventCommand("pause", types.CaseEventPause, "on hold")
	case "resume":
		return f.eventCommand("resume", types.CaseEventResume, "back on the board")
	case "close", "clear":
		return f.cmdClose
	case "sys":
		return f.cmdSys
	case "platform":
		return f.cmdPlatform
	case "quote":
		return f.cmdQuote
	case "list":
		return f.cmdList
	case "inject":
		return f.cmdInject
	default:
		return nil
	}
}

// handleChatter records the line for !grab and runs signal detection
func (f *boardFeature) handleChatter(ctx context.Context, msg ircsvc.Message, reply func(string)) bool {
	f.mu.Lock()
	f.lastLines[strings.ToLower(msg.Sender)] = msg.Text
	f.mu.Unlock()

	match := f.deps.Detector.Detect(msg.Text, msg.Sender, msg.Channel)
	if match == nil {
		return false
	}

	id, merged, err := f.deps.UseCases.Board.Open(ctx, match.Reporter, match.Text, match.Channel)
	if err != nil {
		errutil.Handle(ctx, err, "failed to open case from signal")
		reply(errorLine(err))
		return true
	}

	if merged {
		reply(fmt.Sprintf("%s: your case #%d is already on the board, noted", match.Reporter, id))
	} else {
		c := f.deps.UseCases.Board.Lookup(id)
		reply(fmt.Sprintf("signal received, case #%d opened for %s [%s]",
			id, match.Reporter, platformWord(c.Platform)))
	}
	return true
}

func (f *boardFeature) lastLine(nick string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	line, ok := f.lastLines[strings.ToLower(nick)]
	return line, ok
}

// resolveCase accepts a numeric case ID or a reporter nick
func (f *boardFeature) resolveCase(ref string) *model.Case {
	if id, err := strconv.Atoi(ref); err == nil {
		return f.deps.UseCases.Board.Lookup(id)
	}
	return f.deps.UseCases.Board.LookupByReporter(ref)
}

func (f *boardFeature) cmdGrab(ctx context.Context, msg ircsvc.Message, args []string, reply func(string)) {
	if len(args) < 1 {
		reply(boardUsage["grab"])
		return
	}
	nick := args[0]

	line, ok := f.lastLine(nick)
	if !ok {
		reply(fmt.Sprintf("nothing said by %s to grab", nick))
		return
	}

	id, merged, err := f.deps.UseCases.Board.Open(ctx, nick, line, msg.Channel)
	if err != nil {
		errutil.Handle(ctx, err, "failed to grab case")
		reply(errorLine(err))
		return
	}
	if merged {
		reply(fmt.Sprintf("appended %s's last line to case #%d", nick, id))
	} else {
		reply(fmt.Sprintf("case #%d opened for %s from their last line", id, nick))
	}
}

func (f *boardFeature) cmdOpen(ctx context.Context, msg ircsvc.Message, args []string, reply func(string)) {
	if len(args) < 1 {
		reply(boardUsage["open"])
		return
	}
	nick := args[0]
	text := strings.Join(args[1:], " ")

	id, err := f.deps.UseCases.Board.OpenExclusive(ctx, nick, text, msg.Channel)
	if err != nil {
		errutil.Handle(ctx, err, "failed to open case")
		reply(errorLine(err))
		return
	}
	reply(fmt.Sprintf("case #%d opened for %s", id, nick))
}

func (f *boardFeature) cmdAssign(ctx context.Context, msg ircsvc.Message, args []string, reply func(string)) {
	if len(args) < 1 {
		reply(boardUsage["assign"])
		return
	}
	c := f.resolveCase(args[0])
	if c == nil {
		reply(errorLine(usecase.ErrCaseNotFound))
		return
	}

	rats := args[1:]
	if len(rats) == 0 {
		rats = []string{msg.Sender}
	}
	for _, rat := range rats {
		if err := f.deps.UseCases.Board.Assign(ctx, c.ID, rat); err != nil {
			errutil.Handle(ctx, err, "failed to assign responder")
			reply(errorLine(err))
			return
		}
	}
	reply(fmt.Sprintf("%s: you're going to %s, case %s", strings.Join(rats, ", "), c.Reporter, caseTag(c)))
}

func (f *boardFeature) cmdUnassign(ctx context.Context, msg ircsvc.Message, args []string, reply func(string)) {
	if len(args) < 1 {
		reply(boardUsage["unassign"])
		return
	}
	c := f.resolveCase(args[0])
	if c == nil {
		reply(errorLine(usecase.ErrCaseNotFound))
		return
	}

	rats := args[1:]
	if len(rats) == 0 {
		rats = []string{msg.Sender}
	}
	for _, rat := range rats {
		if err := f.deps.UseCases.Board.Unassign(ctx, c.ID, rat); err != nil {
			errutil.Handle(ctx, err, "failed to unassign responder")
			reply(errorLine(err))
			return
		}
	}
	reply(fmt.Sprintf("removed %s from case %s", strings.Join(rats, ", "), caseTag(c)))
}

// eventCommand builds a handler for the single-event commands
func (f *boardFeature) eventCommand(name string, event types.CaseEvent, done string) boardHandler {
	return func(ctx context.Context, msg ircsvc.Message, args []string, reply func(string)) {
		if len(args) < 1 {
			reply(boardUsage[name])
			return
		}
		c := f.resolveCase(args[0])
		if c == nil {
			reply(errorLine(usecase.ErrCaseNotFound))
			return
		}

		if _, err := f.deps.UseCases.Board.Apply(ctx, c.ID, event); err != nil {
			errutil.Handle(ctx, err, "failed to apply case event")
			reply(errorLine(err))
			return
		}
		reply(fmt.Sprintf("case %s: %s", caseTag(c), done))
	}
}

func (f *boardFeature) cmdClose(ctx context.Context, msg ircsvc.Message, args []string, reply func(string)) {
	if len(args) < 1 {
		reply(boardUsage["close"])
		return
	}
	c := f.resolveCase(args[0])
	if c == nil {
		reply(errorLine(usecase.ErrCaseNotFound))
		return
	}

	reason := types.CloseReasonSuccess
	if len(args) > 1 {
		parsed, err := types.ParseCloseReason(args[1])
		if err != nil {
			reply("close reason must be one of: success, invalid, purged, timeout")
			return
		}
		reason = parsed
	}

	if err := f.deps.UseCases.Board.Close(ctx, c.ID, reason); err != nil {
		errutil.Handle(ctx, err, "failed to close case")
		reply(errorLine(err))
		return
	}
	reply(fmt.Sprintf("case %s closed (%s)", caseTag(c), strings.ToLower(string(reason))))
}

func (f *boardFeature) cmdSys(ctx context.Context, msg ircsvc.Message, args []string, reply func(string)) {
	if len(args) < 2 {
		reply(boardUsage["sys"])
		return
	}
	c := f.resolveCase(args[0])
	if c == nil {
		reply(errorLine(usecase.ErrCaseNotFound))
		return
	}
	system := strings.Join(args[1:], " ")

	if err := f.deps.UseCases.Board.SetSystem(ctx, c.ID, system); err != nil {
		errutil.Handle(ctx, err, "failed to set system")
		reply(errorLine(err))
		return
	}
	reply(fmt.Sprintf("case %s: system set to %q", caseTag(c), system))

	if f.deps.EDSM == nil {
		return
	}
	// Validation happens off the hot path; the annotation above already
	// landed on the board.
	caseID := c.ID
	async.Dispatch(ctx, func(ctx context.Context) error {
		f.validateSystem(ctx, caseID, system, reply)
		return nil
	})
}

// validateSystem checks the annotation against EDSM and reports
// canonicalization or permit requirements back to the channel.
func (f *boardFeature) validateSystem(ctx context.Context, caseID int, system string, reply func(string)) {
	found, err := f.deps.EDSM.Lookup(ctx, system)
	if err != nil {
		reply(fmt.Sprintf("warning: %q is not known to EDSM", system))
		return
	}
	if !strings.EqualFold(found.Name, system) {
		if err := f.deps.UseCases.Board.SetSystem(ctx, caseID, found.Name); err != nil {
			errutil.Handle(ctx, err, "failed to canonicalize system")
			return
		}
		reply(fmt.Sprintf("case #%d: system corrected to %q", caseID, found.Name))
	}
	if found.RequirePermit {
		permit := found.PermitName
		if permit == "" {
			permit = found.Name
		}
		reply(fmt.Sprintf("case #%d: %q requires a permit (%s)", caseID, found.Name, permit))
	}
}

func (f *boardFeature) cmdPlatform(ctx context.Context, msg ircsvc.Message, args []string, reply func(string)) {
	if len(args) < 2 {
		reply(boardUsage["platform"])
		return
	}
	c := f.resolveCase(args[0])
	if c == nil {
		reply(errorLine(usecase.ErrCaseNotFound))
		return
	}

	platform, ok := types.ParsePlatform(args[1])
	if !ok {
		reply("platform must be one of: pc, xb, ps")
		return
	}
	if err := f.deps.UseCases.Board.SetPlatform(ctx, c.ID, platform); err != nil {
		errutil.Handle(ctx, err, "failed to set platform")
		reply(errorLine(err))
		return
	}
	reply(fmt.Sprintf("case %s: platform set to %s", caseTag(c), platform))
}

func (f *boardFeature) cmdQuote(ctx context.Context, msg ircsvc.Message, args []string, reply func(string)) {
	if len(args) < 1 {
		reply(boardUsage["quote"])
		return
	}
	c := f.resolveCase(args[0])
	if c == nil {
		reply(errorLine(usecase.ErrCaseNotFound))
		return
	}

	for _, line := range detailLines(c) {
		reply(line)
	}
	if link := f.caseLink(ctx, c); link != "" {
		reply("details: " + link)
	}
}

// caseLink builds a (shortened) board link for the case, empty when no
// board URL is configured.
func (f *boardFeature) caseLink(ctx context.Context, c *model.Case) string {
	if f.deps.Config.BoardURL == "" {
		return ""
	}
	link := fmt.Sprintf("%s/case/%d", strings.TrimRight(f.deps.Config.BoardURL, "/"), c.ID)
	if f.deps.Shortener == nil {
		return link
	}
	short, err := f.deps.Shortener.Shorten(ctx, link)
	if err != nil {
		errutil.Handle(ctx, err, "failed to shorten case link")
		return link
	}
	return short
}

func (f *boardFeature) cmdList(ctx context.Context, msg ircsvc.Message, args []string, reply func(string)) {
	open := f.deps.UseCases.Board.ListOpen()
	if len(open) == 0 {
		reply("the board is clear")
		return
	}
	reply(fmt.Sprintf("%d case(s) on the board:", len(open)))
	for _, c := range open {
		reply(summaryLine(c))
	}
}

func (f *boardFeature) cmdInject(ctx context.Context, msg ircsvc.Message, args []string, reply func(string)) {
	if len(args) < 2 {
		reply(boardUsage["inject"])
		return
	}
	c := f.resolveCase(args[0])
	if c == nil {
		reply(errorLine(usecase.ErrCaseNotFound))
		return
	}
	note := strings.Join(args[1:], " ")

	if err := f.deps.UseCases.Board.Annotate(ctx, c.ID, msg.Sender, note); err != nil {
		errutil.Handle(ctx, err, "failed to inject note")
		reply(errorLine(err))
		return
	}
	reply(fmt.Sprintf("noted on case %s", caseTag(c)))
}
