package main

import "taskdigest/cmd"

func main() {
	cmd.Run()
}
