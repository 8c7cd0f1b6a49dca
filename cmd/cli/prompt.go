package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// lineReader reads answers from a non-terminal stdin, one per line.
type lineReader struct {
	br *bufio.Reader
}

func newLineReader(in io.Reader) *lineReader {
	if in == nil {
		in = strings.NewReader("")
	}
	return &lineReader{br: bufio.NewReader(in)}
}

func (l *lineReader) line() (string, error) {
	s, err := l.br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// ask prints prompt and reads one line.
func (a *app) ask(prompt string) (string, error) {
	fmt.Fprint(a.errOut, prompt)
	return a.lines.line()
}

// secret reads a password without echo when stdin is a terminal.
func (a *app) secret(prompt string) (string, error) {
	fmt.Fprint(a.errOut, prompt)
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.errOut)
		return string(b), err
	}
	return a.lines.line()
}

// password returns flagValue or prompts for it.
func (a *app) password(flagValue string, confirm bool) (pwd, again string, err error) {
	if flagValue != "" {
		return flagValue, flagValue, nil
	}
	if pwd, err = a.secret("Password: "); err != nil {
		return "", "", err
	}
	if !confirm {
		return pwd, pwd, nil
	}
	if again, err = a.secret("Confirm password: "); err != nil {
		return "", "", err
	}
	return pwd, again, nil
}
