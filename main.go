package main

import "github.com/junaidrashid-git/aurelia-api/commands"

func main() {
	commands.Execute()
}
