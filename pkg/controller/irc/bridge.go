package irc

import (
	"context"
	"strings"

	ircsvc "github.com/fuelrats/ratboard/pkg/service/irc"
	"github.com/fuelrats/ratboard/pkg/utils/logging"
)

// Config holds the chat-facing settings of the bridge
type Config struct {
	Prefix     string // command prefix, e.g. "!"
	HelpPrefix string // help prefix, e.g. "?"
	Features   []string
	BoardURL   string // base URL for case detail links, optional
}

// Bridge routes inbound chat lines through the enabled features in
// configuration order.
type Bridge struct {
	sender   ircsvc.Sender
	features []Feature
}

// NewBridge builds a bridge from the static feature registry. Feature names
// must have been validated beforehand; unknown names are skipped with a log
// line so a stale config cannot take the bot down.
func NewBridge(sender ircsvc.Sender, deps *Deps) *Bridge {
	b := &Bridge{sender: sender}
	for _, name := range deps.Config.Features {
		factory, ok := registry[name]
		if !ok {
			logging.Default().Warn("skipping unknown feature", "feature", name)
			continue
		}
		b.features = append(b.features, factory(deps))
	}
	return b
}

// HandleMessage is the PRIVMSG entry point
func (b *Bridge) HandleMessage(ctx context.Context, msg ircsvc.Message) {
	if strings.TrimSpace(msg.Text) == "" {
		return
	}

	reply := func(line string) {
		b.sender.Privmsg(msg.Channel, line)
	}

	for _, f := range b.features {
		if f.Handle(ctx, msg, reply) {
			return
		}
	}
}

// splitCommand strips the prefix and splits the remainder into the command
// word and its arguments. ok is false for non-command lines.
func splitCommand(prefix, text string) (cmd string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}
