package main

import "github.com/KaramelBytes/loaneda/cmd"

func main() {
	cmd.Execute()
}
