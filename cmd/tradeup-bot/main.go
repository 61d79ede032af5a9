package main

import (
	"github.com/andrescamacho/tradeup-bot/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
