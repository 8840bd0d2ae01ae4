package irc_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	irccontroller "github.com/fuelrats/ratboard/pkg/controller/irc"
	"github.com/fuelrats/ratboard/pkg/repository/memory"
	"github.com/fuelrats/ratboard/pkg/service/edsm"
	"github.com/fuelrats/ratboard/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestBridgeSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("systemName")
		if strings.EqualFold(name, "Fuelum") {
			_ = json.NewEncoder(w).Encode(edsm.System{
				Name:   "Fuelum",
				Coords: &edsm.Coords{X: 52, Y: -52.65625, Z: 49.8125},
			})
			return
		}
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	uc := usecase.New(memory.New())
	deps := &irccontroller.Deps{
		UseCases: uc,
		Detector: usecase.NewDetector("ratsignal", []string{"!"}),
		EDSM:     edsm.New(nil, edsm.WithBaseURL(server.URL)),
		Config: irccontroller.Config{
			Prefix:   "!",
			Features: []string{irccontroller.FeatureSearch},
		},
	}
	rec := &recorder{}
	bridge := irccontroller.NewBridge(rec, deps)

	say(bridge, "Rat1", "!search Fuelum")
	gt.Bool(t, strings.Contains(rec.last(), "Fuelum at (52.00")).True()

	say(bridge, "Rat1", "!search Nowhere At All")
	gt.Bool(t, strings.Contains(rec.last(), "no system named")).True()
}
