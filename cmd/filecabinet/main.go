/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/filecabinet/cmd/filecabinet/cmd"

func main() {
	cmd.Execute()
}
