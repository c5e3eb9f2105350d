package main

import "martianoff/fakesmith/cmd/fakesmith/commands"

func main() {
	commands.Execute()
}
