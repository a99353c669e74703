package main

import "github.com/forumkit/aibot/cmd"

func main() {
	cmd.Execute()
}
