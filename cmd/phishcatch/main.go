package main

import "github.com/stoik/phishcatch/cmd/phishcatch/cmd"

func main() {
	cmd.Execute()
}
