/*
File   : spl/cmd/spl/main.go

main.go is the thinnest possible entry point: it exists so `go build`
has somewhere to put `func main`, and defers everything else to cmd.
*/
package main

import (
	"fmt"
	"os"

	"github.com/gospl/spl/cmd/spl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
