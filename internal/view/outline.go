package view

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

func statusMark(status string) string {
	switch status {
	case string(ColorRed):
		return "[!]"
	case string(ColorYellow):
		return "[~]"
	case string(ColorGreen):
		return "[+]"
	case string(ColorGray):
		return "[ ]"
	case "approved":
		return "+"
	case "new":
		return "*"
	case "rejected":
		return "x"
	case "hidden":
		return "-"
	}
	return "."
}

// WriteOutline prints nodes as an indented text outline.
func WriteOutline(w io.Writer, nodes []*Node) error {
	bw := bufio.NewWriter(w)
	Walk(nodes, func(n *Node, depth int) {
		indent := strings.Repeat("  ", depth)
		mark := statusMark(n.Status)
		if n.Leaf {
			fmt.Fprintf(bw, "%s%s %s\n", indent, mark, n.Label)
			return
		}
		fmt.Fprintf(bw, "%s%s %s (%d)\n", indent, mark, n.Label, n.Count)
	})
	return bw.Flush()
}
