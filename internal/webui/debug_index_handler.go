package webui

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"github.com/spleiner/slussen/internal/appconf"
	"github.com/spleiner/slussen/internal/board"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

type debugData struct {
	Title string
	Pre   string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	err := debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   spew.Sdump(data),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// debugIndexHandler dumps what the board manager currently holds. Reading a
// resource goes through the cache, so it may trigger a fetch cycle.
func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	switch dataType {
	case "departures":
		snapshot, err := webUI.Board.Departures(r.Context())
		data = debugResult(snapshot, err)
		title = "SL - Departures"
	case "disruptions":
		snapshot, err := webUI.Board.Disruptions(r.Context())
		data = debugResult(snapshot, err)
		title = "SL - Disruptions"
	case "lines":
		snapshot, err := webUI.Board.Departures(r.Context())
		data = debugResult(board.ListLines(snapshot.Departures), err)
		title = "SL - Lines"
	case "status":
		data = webUI.Board.Status()
		title = "Cache status"
	case "config":
		data = redactedConfig(webUI.Config)
		title = "Configuration"
	default:
		data = map[string]string{
			"error": "Please use one of the following: departures, disruptions, lines, status, config.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}

const redacted = "[redacted]"

// redactedConfig returns a copy of cfg that is safe to print.
func redactedConfig(cfg appconf.Config) appconf.Config {
	if len(cfg.RefreshKeys) > 0 {
		keys := make([]string, len(cfg.RefreshKeys))
		for i := range keys {
			keys[i] = redacted
		}
		cfg.RefreshKeys = keys
	}
	return cfg
}

func debugResult(value interface{}, err error) interface{} {
	if err == nil {
		return value
	}
	return map[string]interface{}{
		"error": err.Error(),
		"value": value,
	}
}
