package main

import "github.com/chriserin/rfl/cmd"

func main() {
	cmd.Execute()
}
