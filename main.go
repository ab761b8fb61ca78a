package main

import "github.com/mensylisir/xmetl/cmd"

func main() {
	cmd.Execute()
}
