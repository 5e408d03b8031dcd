package main

import "github.com/avesovich/reporting-with-rss-news/cmd"

func main() {
	cmd.Execute()
}
