package irc

import (
	"context"
	"fmt"
	"sort"
	"strings"

	ircsvc "github.com/fuelrats/ratboard/pkg/service/irc"
	"github.com/fuelrats/ratboard/pkg/utils/errutil"
)

// factsFeature answers stored facts and manages them through the "fact"
// command. Any prefixed word that is not a board command falls through to
// here and is treated as a fact name, optionally suffixed with a language
// ("!prep-es").
type factsFeature struct {
	deps *Deps
}

func newFactsFeature(deps *Deps) Feature {
	return &factsFeature{deps: deps}
}

func (f *factsFeature) Name() string { return FeatureFacts }

func (f *factsFeature) Handle(ctx context.Context, msg ircsvc.Message, reply func(string)) bool {
	cmd, args, ok := splitCommand(f.deps.Config.Prefix, msg.Text)
	if !ok {
		return false
	}

	if cmd == "fact" {
		f.admin(ctx, msg, args, reply)
		return true
	}

	name, lang := splitFactName(cmd)
	fact, err := f.deps.UseCases.Facts.Lookup(ctx, name, lang)
	if err != nil {
		// Unknown word, not ours
		return false
	}

	if len(args) > 0 {
		reply(fmt.Sprintf("%s: %s", args[0], fact.Text))
	} else {
		reply(fact.Text)
	}
	return true
}

// splitFactName separates a trailing two-letter language code from the
// fact name. "prep-es" becomes ("prep", "es"); "prep" defaults to "en".
func splitFactName(word string) (name, lang string) {
	if i := strings.LastIndex(word, "-"); i > 0 && len(word)-i-1 == 2 {
		return word[:i], word[i+1:]
	}
	return word, "en"
}

func (f *factsFeature) admin(ctx context.Context, msg ircsvc.Message, args []string, reply func(string)) {
	if len(args) == 0 {
		reply("usage: fact set <name> <lang> <text> | fact del <name> [lang] | fact list")
		return
	}

	switch strings.ToLower(args[0]) {
	case "set":
		if len(args) < 4 {
			reply("usage: fact set <name> <lang> <text>")
			return
		}
		name, lang := strings.ToLower(args[1]), strings.ToLower(args[2])
		text := strings.Join(args[3:], " ")
		if err := f.deps.UseCases.Facts.Set(ctx, name, lang, text, msg.Sender); err != nil {
			errutil.Handle(ctx, err, "failed to set fact")
			reply(errorLine(err))
			return
		}
		reply(fmt.Sprintf("fact %s-%s saved", name, lang))

	case "del":
		if len(args) < 2 {
			reply("usage: fact del <name> [lang]")
			return
		}
		name := strings.ToLower(args[1])
		lang := "en"
		if len(args) > 2 {
			lang = strings.ToLower(args[2])
		}
		if err := f.deps.UseCases.Facts.Forget(ctx, name, lang); err != nil {
			errutil.Handle(ctx, err, "failed to delete fact")
			reply(errorLine(err))
			return
		}
		reply(fmt.Sprintf("fact %s-%s deleted", name, lang))

	case "list":
		facts, err := f.deps.UseCases.Facts.All(ctx)
		if err != nil {
			errutil.Handle(ctx, err, "failed to list facts")
			reply(errorLine(err))
			return
		}
		if len(facts) == 0 {
			reply("no facts stored")
			return
		}
		keys := make([]string, 0, len(facts))
		for _, fact := range facts {
			keys = append(keys, fact.Key())
		}
		sort.Strings(keys)
		reply("facts: " + strings.Join(keys, ", "))

	default:
		reply("usage: fact set <name> <lang> <text> | fact del <name> [lang] | fact list")
	}
}
