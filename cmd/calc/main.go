// Command calc is a terminal front end for the keypad calculator. Each input
// line holds whitespace-separated key names (for example "1 2 + 3 Enter");
// after every line the two display lines and the operator keys are printed,
// with the pending operator bracketed.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"keypad-calculator/internal/keypad"
)

const displayWidth = 24

var operatorKeys = []keypad.Operator{keypad.OpAdd, keypad.OpSubtract, keypad.OpMultiply, keypad.OpDivide}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(os.Stdin, os.Stdout, logger); err != nil {
		logger.Fatal("calc failed", zap.Error(err))
	}
}

func run(in io.Reader, out io.Writer, logger *zap.Logger) error {
	m := keypad.New()
	if _, err := io.WriteString(out, render(m.Snapshot())); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		for _, key := range strings.Fields(scanner.Text()) {
			outcome, err := m.Press(key)
			if errors.Is(err, keypad.ErrUnknownKey) {
				logger.Warn("ignoring key", zap.String("key", key))
				continue
			}
			if outcome == keypad.DivideByZero {
				logger.Debug("division by zero", zap.String("key", key))
			}
		}
		if _, err := io.WriteString(out, render(m.Snapshot())); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// render draws the display right-aligned above the operator row.
func render(s keypad.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%*s\n", displayWidth, s.Previous)
	fmt.Fprintf(&b, "%*s\n", displayWidth, s.Current)

	ops := make([]string, 0, len(operatorKeys))
	for _, op := range operatorKeys {
		if s.ActiveOperator(op) {
			ops = append(ops, "["+op.Symbol()+"]")
		} else {
			ops = append(ops, " "+op.Symbol()+" ")
		}
	}
	b.WriteString(strings.Join(ops, " "))
	b.WriteString("\n")
	return b.String()
}
