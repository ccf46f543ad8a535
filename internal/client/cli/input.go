package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// GetSimpleText prints prompt and reads one trimmed line. A final line
// without a newline is still returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetRequiredText repeats the prompt until a non-empty line is entered.
func GetRequiredText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	for {
		s, err := GetSimpleText(reader, prompt, w)
		if err != nil || s != "" {
			return s, err
		}
		fmt.Fprintln(w, "value is required")
	}
}

// GetPassword reads a password from the terminal without echo.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetInt repeats the prompt until a non-negative integer is entered.
func GetInt(reader *bufio.Reader, prompt string, w io.Writer) (int, error) {
	for {
		v, err := GetOptionalInt(reader, prompt, w)
		if err != nil {
			return 0, err
		}
		if v != nil {
			return *v, nil
		}
		fmt.Fprintln(w, "value is required")
	}
}

// GetOptionalInt returns nil for an empty line.
func GetOptionalInt(reader *bufio.Reader, prompt string, w io.Writer) (*int, error) {
	for {
		s, err := GetSimpleText(reader, prompt, w)
		if err != nil || s == "" {
			return nil, err
		}
		v, err := strconv.Atoi(s)
		if err == nil && v >= 0 {
			return &v, nil
		}
		fmt.Fprintln(w, "enter a whole number, 0 or more")
	}
}

func GetFloat(reader *bufio.Reader, prompt string, w io.Writer) (float64, error) {
	for {
		v, err := GetOptionalFloat(reader, prompt, w)
		if err != nil {
			return 0, err
		}
		if v != nil {
			return *v, nil
		}
		fmt.Fprintln(w, "value is required")
	}
}

// GetOptionalFloat returns nil for an empty line.
func GetOptionalFloat(reader *bufio.Reader, prompt string, w io.Writer) (*float64, error) {
	for {
		s, err := GetSimpleText(reader, prompt, w)
		if err != nil || s == "" {
			return nil, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err == nil && v >= 0 {
			return &v, nil
		}
		fmt.Fprintln(w, "enter a number, 0 or more")
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
