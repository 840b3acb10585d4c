package main

import "github.com/oshokin/silent-setup/cmd/silent-setup/cmd"

func main() {
	cmd.Execute()
}
