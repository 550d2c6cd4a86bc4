package main

import (
	"github.com/haskel/bigo/internal/cli"
	"github.com/haskel/bigo/internal/executor"

	// Built-in candidates must be registered in the child as well.
	_ "github.com/haskel/bigo/internal/workload"
)

var (
	version = "0.1.0"
)

func main() {
	// A re-executed child runs one candidate and exits here.
	executor.ServeChild()

	cli.SetVersion(version)
	cli.Execute()
}
