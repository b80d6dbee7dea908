package main

import "storyhub/cmd/cli/command"

func main() {
	command.Execute()
}
