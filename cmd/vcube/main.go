// Command vcube composes OLAP cube operators into plans and derives the
// metadata they expose.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/vcube/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// ExitErrors were already written by the command. Flag and argument
	// errors were not.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(exitErr.Code)
}
