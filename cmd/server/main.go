package main

import "github.com/storyhub-api/cmd/server/commands"

func main() {
	commands.Execute()
}
