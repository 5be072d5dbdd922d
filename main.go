package main

import "github.com/redjonzaci/union-bank-statement-extractor/cmd"

func main() {
	cmd.Execute()
}
