// Command graphctl is the operator CLI over a graphdb.Engine database,
// replacing the teacher's flag-parsed, stdin-REPL src/main.go + sgbd.Run
// with a cobra command tree (spec.md §6's external interface, rebuilt in
// the ambient-stack idiom of SPEC_FULL.md §9).
package main

import (
	"fmt"
	"os"

	"github.com/jgodjo/pagegraph/cmd/graphctl/cli"
)

func main() {
	if err := cli.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
