package main

import (
	"github.com/mcoot/rpsarena-go/internal/cli"
)

func main() {
	cli.Execute()
}
