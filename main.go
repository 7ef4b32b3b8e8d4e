package main

import (
	"github.com/edhtools/deckscope/cmd"
)

func main() {
	cmd.Execute()
}
