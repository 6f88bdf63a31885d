// Package main is the entry point for the Leap dashboard TUI.
package main

func main() {
	Execute()
}
