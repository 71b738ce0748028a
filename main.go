package main

import "github.com/jsphweid/parle/cmd"

func main() {
	cmd.Execute()
}
