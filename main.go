package main

import "github.com/productdevbook/port-kill/cmd"

func main() {
	cmd.Execute()
}
