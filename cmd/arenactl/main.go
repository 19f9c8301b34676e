package main

import (
	"os"

	"github.com/vytor/codearena/internal/logger"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
