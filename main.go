package main

import (
	"PromptFM/cmd"
)

func main() {
	cmd.Execute()
}
