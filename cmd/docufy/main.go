package main

import "github.com/docufy-ai/docufy/internal/cli"

func main() {
	cli.Execute()
}
