package main

import "github.com/forPelevin/tempocut/internal/cli"

func main() {
	cli.Main()
}
