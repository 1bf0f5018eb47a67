package main

import (
	"os"

	"github.com/joho/godotenv"

	coursepilotcmder "github.com/oceanlabs/coursepilot/cmd/coursepilot"
)

func main() {
	// Best effort: a missing .env file is fine, the environment may
	// already carry OPENAI_API_KEY.
	_ = godotenv.Load()

	cmd := coursepilotcmder.NewCoursepilotCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
