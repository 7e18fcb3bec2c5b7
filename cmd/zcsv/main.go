package main

import (
	"os"

	zcsvapp "github.com/warptools/zcsv/app"
)

func main() {
	zcsvapp.App.Reader = os.Stdin
	zcsvapp.App.Writer = os.Stdout
	zcsvapp.App.ErrWriter = os.Stderr
	if err := zcsvapp.App.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
