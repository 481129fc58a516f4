package main

import "github.com/apifuzz/apifuzz/cmd"

func main() {
	cmd.Execute()
}
