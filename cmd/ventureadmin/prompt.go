// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// promptConfirmer asks on out and reads a y/N answer from in.
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (p *promptConfirmer) Confirm(msg string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", msg)
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// alwaysConfirm backs --yes.
type alwaysConfirm struct{}

func (alwaysConfirm) Confirm(string) bool { return true }

// writerAlerter prints alerts on a line of their own.
type writerAlerter struct {
	w io.Writer
}

func (a *writerAlerter) Alert(msg string) {
	fmt.Fprintln(a.w, "!", msg)
}
