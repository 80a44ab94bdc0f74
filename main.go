package main

import (
	"github.com/markusressel/growctl/cmd"
)

func main() {
	cmd.Execute()
}
