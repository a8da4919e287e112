package main

import "github.com/securo-skn/crimefeed/cmd"

func main() {
	cmd.Execute()
}
