package main

import "github.com/ichaly/entschema/cmd"

func main() {
	cmd.Execute()
}
