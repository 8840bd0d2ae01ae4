package irc

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fuelrats/ratboard/pkg/service/edsm"
	ircsvc "github.com/fuelrats/ratboard/pkg/service/irc"
	"github.com/fuelrats/ratboard/pkg/service/shortener"
	"github.com/fuelrats/ratboard/pkg/usecase"
)

// Feature is one chat capability. Handle returns true when the message was
// consumed; otherwise the bridge offers it to the next enabled feature.
type Feature interface {
	Name() string
	Handle(ctx context.Context, msg ircsvc.Message, reply func(string)) bool
}

// Deps carries everything a feature constructor may need
type Deps struct {
	UseCases  *usecase.UseCases
	Detector  *usecase.Detector
	EDSM      *edsm.Client
	Shortener *shortener.Client
	Config    Config
}

// Factory builds a feature from shared dependencies
type Factory func(deps *Deps) Feature

// registry is the static table of chat features. Enabled names from the
// bot config are checked against it at startup.
var registry = map[string]Factory{
	FeatureBoard:  newBoardFeature,
	FeatureFacts:  newFactsFeature,
	FeatureSearch: newSearchFeature,
}

const (
	FeatureBoard  = "rat-board"
	FeatureFacts  = "rat-facts"
	FeatureSearch = "rat-search"
)

// AvailableFeatures lists all registered feature names, sorted
func AvailableFeatures() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateFeatures rejects names absent from the registry
func ValidateFeatures(names []string) error {
	for _, name := range names {
		if _, ok := registry[name]; !ok {
			return goerr.New("unknown feature",
				goerr.V("feature", name),
				goerr.V("available", AvailableFeatures()))
		}
	}
	return nil
}
