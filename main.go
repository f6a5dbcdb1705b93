package main

import (
	"os"

	"sjsage522/pagewatch/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
