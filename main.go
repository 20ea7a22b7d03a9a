package main

import "github.com/jjenkins/adressen/cmd"

func main() {
	cmd.Execute()
}
