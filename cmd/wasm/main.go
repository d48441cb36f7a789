//go:build js && wasm

// Command wasm exposes the kart engine to the browser via WebAssembly.
// After loading, it registers two global JavaScript functions:
//
//	runReplay(jsonString) -> jsonString
//	listTracks() -> jsonString
//
// runReplay takes a ReplayInput and returns a ReplayLog, matching the contract
// used by the CLI. listTracks returns the embedded track file.
package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/cxd309/kart-engine/internal/session"
	"github.com/cxd309/kart-engine/internal/track"
)

func main() {
	js.Global().Set("runReplay", js.FuncOf(runReplay))
	js.Global().Set("listTracks", js.FuncOf(listTracks))
	select {} // keep the WASM module alive until the page is closed
}

func runReplay(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided"}
	}

	result, err := session.RunJSON(args[0].String())
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return result
}

func listTracks(_ js.Value, _ []js.Value) any {
	catalog, err := track.Default()
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	out, err := json.Marshal(track.File{Tracks: catalog.List()})
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return string(out)
}
