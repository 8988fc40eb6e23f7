package main

import "yamdb/cmd/yamdbctl/command"

func main() {
	command.Execute()
}
