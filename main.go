package main

import (
	"os"

	"github.com/secsweep/secsweep/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
