package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"shorts-studio/stage"
)

func main() {
	// Load .env (local dev only)
	_ = godotenv.Load()

	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, errorLine(err))
		}
		os.Exit(1)
	}
}

// errorLine is what the user sees for a failed command; stage failures get their generic message
func errorLine(err error) string {
	if se, ok := stage.As(err); ok {
		return "❌ " + se.UserMessage()
	}
	return "❌ " + err.Error()
}
