package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func printInfo(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.BlueString("i"), msg)
}

func printSuccess(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.GreenString("+"), msg)
}

func printError(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("x"), msg)
}

func printHeader(msg string) {
	fmt.Println(color.New(color.Bold, color.Underline).Sprint(msg))
}
