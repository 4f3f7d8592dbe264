package main

import (
	"schallwerk/cmd"
)

func main() {
	cmd.Execute()
}
