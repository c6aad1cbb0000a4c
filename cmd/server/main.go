package main

import "luchwallet/internal/app/server"

func main() {
	server.Run()
}
