package main

import "github.com/VineetKiragi/cinemind/cmd"

func main() {
	cmd.Execute()
}
