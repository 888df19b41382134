// wsc is a command line client for a single WebSocket endpoint
package main

func main() {
	Execute()
}
