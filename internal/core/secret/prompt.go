package secret

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadPIN prompts on w and reads a PIN without echo when in is a terminal.
func ReadPIN(w io.Writer, in *os.File) (string, error) {
	fmt.Fprint(w, "PIN: ")

	var pin string
	if term.IsTerminal(int(in.Fd())) {
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", fmt.Errorf("failed to read PIN: %w", err)
		}
		pin = string(b)
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read PIN: %w", err)
		}
		pin = line
	}

	pin = strings.TrimSpace(pin)
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}
	return pin, nil
}
