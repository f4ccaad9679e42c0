package cli

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var errStdinUnavailable = errors.New("stdin unavailable")

func readLine(input io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
