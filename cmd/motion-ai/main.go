package main

import "github.com/AyoAlfonso/motion-ai/internal/cli"

func main() {
	cli.Execute()
}
