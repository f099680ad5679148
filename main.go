package main

import (
	"github.com/lance13c/ytmon/cmd"
)

var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
