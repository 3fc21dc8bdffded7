package main

import (
	"github.com/drugsafe/dilictl/pkg/cli"
)

func main() {
	cli.Execute()
}
