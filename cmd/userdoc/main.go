package main

import (
	"os"

	"github.com/steveyegge/userdoc/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
