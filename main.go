package main

import "github.com/pazarbot/pazarbot/cmd"

func main() {
	cmd.Execute()
}
