package main

import (
	"os"

	"github.com/mcmanager/devtask/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
