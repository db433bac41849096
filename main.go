// main is the entry point for the quotagraph CLI.
package main

import (
	"github.com/huangsam/quotagraph/cmd"
	"github.com/huangsam/quotagraph/internal/contract"
	"github.com/huangsam/quotagraph/internal/history"
)

func main() {
	err := cmd.Execute()
	history.CloseHistory()
	if err != nil {
		contract.LogFatal("quotagraph", err)
	}
}
