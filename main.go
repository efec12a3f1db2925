package main

import "github.com/viswayadeedya/TodoIQ-BE/cmd"

func main() {
	cmd.Execute()
}
