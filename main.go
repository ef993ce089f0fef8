package main

import (
	"os"

	"github.com/U-Jay-git/ResumeRise/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
