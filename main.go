package main

import "github.com/mj1618/axsim/cmd"

func main() {
	cmd.Execute()
}
