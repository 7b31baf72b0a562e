package main

import "github.com/lexiqai/voice-input/internal/cli"

func main() {
	cli.Execute()
}
