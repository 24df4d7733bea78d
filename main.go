package main

import "sg-reconciler/cmd"

func main() {
	cmd.Execute()
}
