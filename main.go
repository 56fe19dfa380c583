package main

import "github.com/jjenkins/globeguru/cmd"

func main() {
	cmd.Execute()
}
