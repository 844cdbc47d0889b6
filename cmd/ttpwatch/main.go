package main

import "ttpwatch/cmd/ttpwatch/cmd"

func main() {
	cmd.Execute()
}
