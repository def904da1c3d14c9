package scan

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/martinsuchenak/pingsweep/internal/subnet"
)

// largeScanThreshold is the block size above which the user is asked to
// confirm before scanning.
const largeScanThreshold = 1024

// promptSubnet interactively asks for a CIDR block, re-prompting until the
// input parses, and asks for confirmation before very large blocks.
func promptSubnet(in io.Reader, out io.Writer, skipConfirm bool) (string, error) {
	reader := bufio.NewReader(in)

	for {
		fmt.Fprintln(out, "Subnet Ping Scanner")
		fmt.Fprintln(out, "Enter the subnet to scan for unreachable IPs, e.g.:")
		fmt.Fprintln(out, "  192.168.1.0/24")
		fmt.Fprintln(out, "  172.16.0.0/16")
		fmt.Fprintln(out, "  192.168.1.0/28")
		fmt.Fprint(out, "Enter subnet (CIDR notation): ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("reading subnet: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			fmt.Fprintln(out, "Error: please enter a subnet")
			continue
		}

		sub, err := subnet.Parse(input)
		if err != nil {
			fmt.Fprintln(out, "Error: invalid subnet format, use CIDR notation (e.g. 192.168.1.0/24)")
			continue
		}

		if !skipConfirm {
			ok, err := confirmLarge(reader, out, sub)
			if err != nil {
				return "", err
			}
			if !ok {
				continue
			}
		}

		return sub.String(), nil
	}
}

// confirmLargeScan wraps confirmLarge for callers that have a raw reader.
func confirmLargeScan(in io.Reader, out io.Writer, sub *subnet.Subnet) (bool, error) {
	return confirmLarge(bufio.NewReader(in), out, sub)
}

func confirmLarge(reader *bufio.Reader, out io.Writer, sub *subnet.Subnet) (bool, error) {
	if sub.NumAddresses() <= largeScanThreshold {
		return true, nil
	}

	fmt.Fprintf(out, "Warning: %s contains %d addresses and may take a while. Continue? (y/n): ",
		sub.String(), sub.NumAddresses())

	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
