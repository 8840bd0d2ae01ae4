package irc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fuelrats/ratboard/pkg/service/edsm"
	ircsvc "github.com/fuelrats/ratboard/pkg/service/irc"
	"github.com/fuelrats/ratboard/pkg/utils/errutil"
)

// searchFeature answers star-system lookups straight from EDSM
type searchFeature struct {
	deps *Deps
}

func newSearchFeature(deps *Deps) Feature {
	return &searchFeature{deps: deps}
}

func (f *searchFeature) Name() string { return FeatureSearch }

func (f *searchFeature) Handle(ctx context.Context, msg ircsvc.Message, reply func(string)) bool {
	cmd, args, ok := splitCommand(f.deps.Config.Prefix, msg.Text)
	if !ok || cmd != "search" {
		return false
	}
	if f.deps.EDSM == nil {
		reply("system search is not configured")
		return true
	}
	if len(args) == 0 {
		reply("search <system> - look up a star system")
		return true
	}
	name := strings.Join(args, " ")

	sys, err := f.deps.EDSM.Lookup(ctx, name)
	if err != nil {
		if errors.Is(err, edsm.ErrSystemNotFound) {
			reply(fmt.Sprintf("no system named %q found", name))
		} else {
			errutil.Handle(ctx, err, "EDSM search failed")
			reply("system lookup failed, try again later")
		}
		return true
	}

	line := sys.Name
	if sys.Coords != nil {
		line += fmt.Sprintf(" at (%.2f, %.2f, %.2f)", sys.Coords.X, sys.Coords.Y, sys.Coords.Z)
	}
	if sys.RequirePermit {
		permit := sys.PermitName
		if permit == "" {
			permit = sys.Name
		}
		line += fmt.Sprintf(", permit required (%s)", permit)
	}
	reply(line)
	return true
}
