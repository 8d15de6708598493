package main

import "github.com/pfrederiksen/evalregistry/internal/cli"

func main() {
	cli.Execute()
}
