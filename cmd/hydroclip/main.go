package main

import "hydroclip/cmd/hydroclip/cmd"

func main() {
	cmd.Execute()
}
