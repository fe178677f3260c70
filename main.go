package main

import "tokoshop/cmd"

func main() {
	cmd.Execute()
}
