// Command kart-replay reads a ReplayInput JSON from a file argument (or stdin),
// runs the replay, and writes the ReplayLog JSON to stdout.
//
// Set KART_LOG_LEVEL to debug to see session events on stderr.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cxd309/kart-engine/internal/log"
	"github.com/cxd309/kart-engine/internal/session"
)

func main() {
	var (
		data []byte
		err  error
	)

	if len(os.Args) > 1 {
		data, err = os.ReadFile(os.Args[1])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.New(log.Config{Level: levelFromEnv(), Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	input, err := session.DecodeInput(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	replayLog, err := session.RunWithLogger(input, logger)
	if err != nil {
		logger.Error("replay failed", log.Err(err))
		fmt.Fprintf(os.Stderr, "replay error: %v\n", err)
		os.Exit(1)
	}

	out, err := json.Marshal(replayLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error encoding output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func levelFromEnv() string {
	if lvl := os.Getenv("KART_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "warn"
}
