// Package main is the entry point for the escape room game server.
// It only handles command dispatch. NO business logic belongs here.
package main

import "github.com/MRamiBalles/EscapeRoomGame/server/cmd/escape-server/root"

func main() {
	root.Execute()
}
