package main

import "github.com/rustyeddy/optionsim/cli"

func main() {
	cli.Execute()
}
