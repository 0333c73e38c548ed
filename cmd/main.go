package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/penwyp/go-error-capture/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		if !errors.Is(err, commands.ErrErrorsFound) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
