package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirm prompts on stdout and reads the answer from stdin.
func Confirm(prompt string) bool {
	return ConfirmFrom(os.Stdin, os.Stdout, prompt)
}

// ConfirmDanger is like Confirm but styled with the error color.
func ConfirmDanger(prompt string) bool {
	fmt.Print(StyleError.Render("⚠ " + prompt))
	return readYes(os.Stdin, os.Stdout)
}

// ConfirmFrom writes prompt to w and reads a yes/no answer from r.
// Anything other than "y" or "yes" is a no, including EOF.
func ConfirmFrom(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprint(w, StyleWarning.Render(prompt))
	return readYes(r, w)
}

func readYes(r io.Reader, w io.Writer) bool {
	fmt.Fprint(w, " [y/N]: ")
	line, _ := bufio.NewReader(r).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}
