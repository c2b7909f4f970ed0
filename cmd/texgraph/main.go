package main

import "github.com/DrSkyle/texgraph/cmd/texgraph/commands"

func main() {
	commands.Execute()
}
