package main

import "snapback/cmd"

func main() {
	cmd.Execute()
}
