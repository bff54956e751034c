package main

import "github.com/WanderLanka/wanderlanka-web-app-sub002/cmd/server/cmd"

func main() {
	cmd.Execute()
}
