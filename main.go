package main

import "github.com/sentinelai/sentinel-agents/internal/cli"

func main() {
	cli.Run()
}
