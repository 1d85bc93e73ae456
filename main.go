package main

import "github.com/iksnae/manoj-chat/cmd"

func main() {
	cmd.Execute()
}
